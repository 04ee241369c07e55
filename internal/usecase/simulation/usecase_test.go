package simulation

import (
	"errors"
	"testing"

	"mortgage-underwriting/internal/catalog"
	"mortgage-underwriting/internal/domain/rate"
	domain "mortgage-underwriting/internal/domain/simulation"
)

func newUsecase(t *testing.T) *Usecase {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return NewUsecase(rate.NewResolver(c.Rates), domain.NewCalculator(c.Pricing))
}

func TestSimulate_ScenarioA(t *testing.T) {
	uc := newUsecase(t)
	q := uc.Simulate(domain.Input{
		PropertyPrice: 250_000, NotaryFees: 20_000, AgencyFees: 5_000,
		DownPayment: 30_000, DurationYears: 20,
	})
	if q.Tier != rate.TierStandard || q.RatePercent != 3.22 || q.BracketYears != 20 {
		t.Fatalf("resolution: %+v", q)
	}
	if q.ContributionRatio != 0.1091 {
		t.Fatalf("ratio = %v", q.ContributionRatio)
	}
	if !q.Result.IsValid || q.Result.LoanAmount != 245_000 || q.Result.MonthlyCredit != 1385.90 || q.Result.MonthlyTotal != 1459.40 {
		t.Fatalf("result: %+v", q.Result)
	}
}

func TestSimulate_InvalidReturnsResultNotError(t *testing.T) {
	uc := newUsecase(t)
	q := uc.Simulate(domain.Input{DurationYears: 20})
	if q.Result.IsValid || q.Result.InvalidReason == "" || q.Tier != "" {
		t.Fatalf("quote: %+v", q)
	}

	q = uc.Simulate(domain.Input{PropertyPrice: 100_000, DurationYears: 40})
	if q.Result.IsValid {
		t.Fatal("40 years must not be priced")
	}
}

func TestQuote_Errors(t *testing.T) {
	uc := newUsecase(t)
	if _, err := uc.Quote(domain.Input{PropertyPrice: 100_000, DownPayment: 200_000, DurationYears: 15}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Quote(domain.Input{PropertyPrice: 100_000, DurationYears: 3}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}
