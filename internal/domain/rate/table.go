package rate

import (
	"errors"
	"fmt"
	"sort"
)

type Tier string

const (
	TierPrime    Tier = "prime"
	TierStandard Tier = "standard"
	TierCautious Tier = "cautious"
)

// Supported loan durations, inclusive.
const (
	MinDurationYears = 5
	MaxDurationYears = 30
)

var (
	ErrInvalidTable       = errors.New("invalid rate table")
	ErrMissingCell        = errors.New("rate table cell missing")
	ErrDurationOutOfRange = errors.New("duration out of supported range")
	ErrInvalidRatio       = errors.New("contribution ratio must be a non-negative number")
)

// Threshold is the eligibility rule of one tier. MaxDurationYears == 0 means no cap.
type Threshold struct {
	Tier                 Tier
	MinContributionRatio float64
	MaxDurationYears     int
}

func (th Threshold) matches(durationYears int, ratio float64) bool {
	if ratio < th.MinContributionRatio {
		return false
	}
	return th.MaxDurationYears == 0 || durationYears <= th.MaxDurationYears
}

// Table is the immutable (duration bracket × tier) → nominal annual rate matrix.
type Table struct {
	thresholds []Threshold // most favorable first
	brackets   []int       // ascending
	rates      map[int]map[Tier]float64
}

// NewTable validates and freezes a rate matrix. thresholds must be ordered from most to
// least favorable and the last one must accept every borrower. Every bracket needs a
// rate for every tier.
func NewTable(thresholds []Threshold, rates map[int]map[Tier]float64) (*Table, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no duration brackets", ErrInvalidTable)
	}

	seen := make(map[Tier]bool, len(thresholds))
	for i, th := range thresholds {
		if th.Tier == "" {
			return nil, fmt.Errorf("%w: tier %d has no name", ErrInvalidTable, i)
		}
		if seen[th.Tier] {
			return nil, fmt.Errorf("%w: duplicate tier %q", ErrInvalidTable, th.Tier)
		}
		seen[th.Tier] = true
		if th.MinContributionRatio < 0 || th.MaxDurationYears < 0 {
			return nil, fmt.Errorf("%w: tier %q has negative threshold", ErrInvalidTable, th.Tier)
		}
		if i > 0 && th.MinContributionRatio > thresholds[i-1].MinContributionRatio {
			return nil, fmt.Errorf("%w: tier %q is listed after a less demanding tier", ErrInvalidTable, th.Tier)
		}
	}
	last := thresholds[len(thresholds)-1]
	if last.MinContributionRatio != 0 || last.MaxDurationYears != 0 {
		return nil, fmt.Errorf("%w: default tier %q must accept every borrower", ErrInvalidTable, last.Tier)
	}

	t := &Table{
		thresholds: append([]Threshold(nil), thresholds...),
		rates:      make(map[int]map[Tier]float64, len(rates)),
	}
	for years, row := range rates {
		if years < MinDurationYears || years > MaxDurationYears {
			return nil, fmt.Errorf("%w: bracket %d outside [%d,%d]", ErrInvalidTable, years, MinDurationYears, MaxDurationYears)
		}
		cp := make(map[Tier]float64, len(thresholds))
		for _, th := range thresholds {
			r, ok := row[th.Tier]
			if !ok {
				return nil, fmt.Errorf("%w: %d years / %s", ErrMissingCell, years, th.Tier)
			}
			if r < 0 {
				return nil, fmt.Errorf("%w: negative rate at %d years / %s", ErrInvalidTable, years, th.Tier)
			}
			cp[th.Tier] = r
		}
		t.rates[years] = cp
		t.brackets = append(t.brackets, years)
	}
	sort.Ints(t.brackets)
	return t, nil
}

// Tiers returns the thresholds from most to least favorable.
func (t *Table) Tiers() []Threshold { return append([]Threshold(nil), t.thresholds...) }

// Brackets returns the configured durations in ascending order.
func (t *Table) Brackets() []int { return append([]int(nil), t.brackets...) }

// Bracket maps a duration in [MinDurationYears, MaxDurationYears] to the nearest configured
// bracket. An exact tie goes to the longer bracket.
func (t *Table) Bracket(durationYears int) (int, error) {
	if durationYears < MinDurationYears || durationYears > MaxDurationYears {
		return 0, fmt.Errorf("%w: %d years (supported %d-%d)", ErrDurationOutOfRange, durationYears, MinDurationYears, MaxDurationYears)
	}
	best := t.brackets[0]
	for _, b := range t.brackets[1:] {
		if abs(b-durationYears) <= abs(best-durationYears) {
			best = b
		}
	}
	return best, nil
}

// Rate returns the cell for an exact bracket.
func (t *Table) Rate(bracketYears int, tier Tier) (float64, error) {
	row, ok := t.rates[bracketYears]
	if !ok {
		return 0, fmt.Errorf("%w: %d years", ErrMissingCell, bracketYears)
	}
	r, ok := row[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %d years / %s", ErrMissingCell, bracketYears, tier)
	}
	return r, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
