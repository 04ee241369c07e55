package simulation

import (
	"errors"
	"fmt"
	"math"

	"mortgage-underwriting/internal/domain/rate"
)

var ErrInvalidInput = errors.New("invalid simulation input")

type Input struct {
	PropertyPrice float64 `json:"property_price"`
	NotaryFees    float64 `json:"notary_fees"`
	AgencyFees    float64 `json:"agency_fees"`
	WorksAmount   float64 `json:"works_amount"`
	DownPayment   float64 `json:"down_payment"`
	DurationYears int     `json:"duration_years"`
}

func (in Input) TotalProjectCost() float64 {
	return in.PropertyPrice + in.NotaryFees + in.AgencyFees + in.WorksAmount
}

func (in Input) LoanAmount() float64 { return in.TotalProjectCost() - in.DownPayment }

func (in Input) ContributionRatio() float64 {
	return rate.ContributionRatio(in.DownPayment, in.TotalProjectCost())
}

func (in Input) Months() int { return in.DurationYears * 12 }

// Validate reports the first reason the input cannot be priced, wrapped in ErrInvalidInput.
func (in Input) Validate() error {
	amounts := []struct {
		name string
		v    float64
	}{
		{"property_price", in.PropertyPrice},
		{"notary_fees", in.NotaryFees},
		{"agency_fees", in.AgencyFees},
		{"works_amount", in.WorksAmount},
		{"down_payment", in.DownPayment},
	}
	for _, a := range amounts {
		if math.IsNaN(a.v) || math.IsInf(a.v, 0) || a.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative amount", ErrInvalidInput, a.name)
		}
	}
	if in.DurationYears < rate.MinDurationYears || in.DurationYears > rate.MaxDurationYears {
		return fmt.Errorf("%w: duration_years must be between %d and %d", ErrInvalidInput, rate.MinDurationYears, rate.MaxDurationYears)
	}
	if in.DownPayment > in.TotalProjectCost() {
		return fmt.Errorf("%w: down_payment exceeds total project cost", ErrInvalidInput)
	}
	if in.LoanAmount() <= 0 {
		return fmt.Errorf("%w: nothing left to finance", ErrInvalidInput)
	}
	return nil
}

type Result struct {
	LoanAmount       float64 `json:"loan_amount"`
	MonthlyCredit    float64 `json:"monthly_credit"`
	MonthlyInsurance float64 `json:"monthly_insurance"`
	MonthlyTotal     float64 `json:"monthly_total"`
	TotalInterest    float64 `json:"total_interest"`
	TotalInsurance   float64 `json:"total_insurance"`
	BankFees         float64 `json:"bank_fees"`
	TotalCost        float64 `json:"total_cost"`
	TAEGEstimate     float64 `json:"taeg_estimate"`
	IsValid          bool    `json:"is_valid"`
	InvalidReason    string  `json:"invalid_reason,omitempty"`
}

type BankFeeMode string

const (
	BankFeeFixed   BankFeeMode = "fixed"
	BankFeePercent BankFeeMode = "percent"
)

// BankFeeSchedule is either a flat Amount, or Percent of the loan amount clamped to
// [Min, Max]. A zero Max means no cap.
type BankFeeSchedule struct {
	Mode    BankFeeMode
	Amount  float64
	Percent float64
	Min     float64
	Max     float64
}

func (s BankFeeSchedule) For(loanAmount float64) float64 {
	if s.Mode != BankFeePercent {
		return s.Amount
	}
	fee := loanAmount * s.Percent / 100
	if fee < s.Min {
		fee = s.Min
	}
	if s.Max > 0 && fee > s.Max {
		fee = s.Max
	}
	return fee
}

type Pricing struct {
	InsuranceAnnualRate float64 // fraction, e.g. 0.0036
	BankFees            BankFeeSchedule
}

func (p Pricing) Validate() error {
	if p.InsuranceAnnualRate < 0 {
		return errors.New("insurance annual rate must not be negative")
	}
	f := p.BankFees
	switch f.Mode {
	case BankFeeFixed:
		if f.Amount < 0 {
			return errors.New("fixed bank fee must not be negative")
		}
	case BankFeePercent:
		if f.Percent < 0 || f.Min < 0 || f.Max < 0 || (f.Max > 0 && f.Max < f.Min) {
			return errors.New("invalid percentage bank fee schedule")
		}
	default:
		return fmt.Errorf("unknown bank fee mode %q", f.Mode)
	}
	return nil
}
