package simulation

import (
	"fmt"

	"mortgage-underwriting/internal/domain/rate"
	domain "mortgage-underwriting/internal/domain/simulation"
	"mortgage-underwriting/pkg/money"
)

type Usecase struct {
	resolver *rate.Resolver
	calc     *domain.Calculator
}

func NewUsecase(r *rate.Resolver, c *domain.Calculator) *Usecase {
	return &Usecase{resolver: r, calc: c}
}

type QuoteDTO struct {
	Input             domain.Input  `json:"input"`
	ContributionRatio float64       `json:"contribution_ratio"`
	Tier              rate.Tier     `json:"tier,omitempty"`
	RatePercent       float64       `json:"rate_percent"`
	BracketYears      int           `json:"bracket_years,omitempty"`
	Result            domain.Result `json:"result"`
}

// Simulate never fails: input that cannot be priced comes back as an invalid result.
func (u *Usecase) Simulate(in domain.Input) QuoteDTO {
	q, err := u.Quote(in)
	if err != nil {
		return QuoteDTO{Input: in, Result: domain.Result{InvalidReason: err.Error()}}
	}
	return q
}

// Quote resolves the rate and prices the input, failing with ErrInvalidInput when it
// cannot be priced.
func (u *Usecase) Quote(in domain.Input) (QuoteDTO, error) {
	if err := in.Validate(); err != nil {
		return QuoteDTO{}, err
	}
	ratio := in.ContributionRatio()
	res, err := u.resolver.Resolve(in.DurationYears, ratio)
	if err != nil {
		return QuoteDTO{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	result := u.calc.Simulate(in, res.RatePercent)
	if !result.IsValid {
		return QuoteDTO{}, fmt.Errorf("%w: rate %v cannot be priced", domain.ErrInvalidInput, res.RatePercent)
	}
	return QuoteDTO{
		Input:             in,
		ContributionRatio: money.Round(ratio, 4),
		Tier:              res.Tier,
		RatePercent:       res.RatePercent,
		BracketYears:      res.BracketYears,
		Result:            result,
	}, nil
}
