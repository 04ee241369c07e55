package rate

import (
	"fmt"
	"math"
)

type Resolution struct {
	Tier         Tier
	RatePercent  float64
	BracketYears int
}

type Resolver struct{ table *Table }

func NewResolver(t *Table) *Resolver { return &Resolver{table: t} }

// Resolve picks the most favorable tier whose threshold the borrower meets and looks up
// its rate for the duration's bracket. A ratio exactly on a boundary qualifies for the
// more favorable tier.
func (r *Resolver) Resolve(durationYears int, contributionRatio float64) (Resolution, error) {
	if math.IsNaN(contributionRatio) || math.IsInf(contributionRatio, 0) || contributionRatio < 0 {
		return Resolution{}, fmt.Errorf("%w: %v", ErrInvalidRatio, contributionRatio)
	}
	bracket, err := r.table.Bracket(durationYears)
	if err != nil {
		return Resolution{}, err
	}

	tier := r.table.thresholds[len(r.table.thresholds)-1].Tier
	for _, th := range r.table.thresholds {
		if th.matches(durationYears, contributionRatio) {
			tier = th.Tier
			break
		}
	}

	pct, err := r.table.Rate(bracket, tier)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Tier: tier, RatePercent: pct, BracketYears: bracket}, nil
}

// ContributionRatio is downPayment / totalProjectCost, or 0 when there is no project cost.
func ContributionRatio(downPayment, totalProjectCost float64) float64 {
	if totalProjectCost <= 0 {
		return 0
	}
	return downPayment / totalProjectCost
}
