package simulation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func defaultPricing() Pricing {
	return Pricing{
		InsuranceAnnualRate: 0.0036,
		BankFees:            BankFeeSchedule{Mode: BankFeeFixed, Amount: 1000},
	}
}

func scenarioA() Input {
	return Input{
		PropertyPrice: 250_000,
		NotaryFees:    20_000,
		AgencyFees:    5_000,
		DownPayment:   30_000,
		DurationYears: 20,
	}
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestSimulate_ScenarioA(t *testing.T) {
	c := NewCalculator(defaultPricing())
	in := scenarioA()

	if r := in.ContributionRatio(); !near(r, 0.1091, 0.0001) {
		t.Fatalf("contribution ratio = %v", r)
	}

	got := c.Simulate(in, 3.22)
	if !got.IsValid {
		t.Fatalf("expected valid result, reason=%q", got.InvalidReason)
	}
	want := Result{
		LoanAmount:       245000,
		MonthlyCredit:    1385.90,
		MonthlyInsurance: 73.50,
		MonthlyTotal:     1459.40,
		TotalInterest:    87617.02,
		TotalInsurance:   17640.00,
		BankFees:         1000,
		TotalCost:        106257.02,
		TAEGEstimate:     3.92,
		IsValid:          true,
	}
	if got != want {
		t.Fatalf("scenario A mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSimulate_ScenarioB_Invalid(t *testing.T) {
	c := NewCalculator(defaultPricing())
	in := scenarioA()
	in.PropertyPrice = 0
	in.DownPayment = 0
	in.NotaryFees = 0
	in.AgencyFees = 0

	got := c.Simulate(in, 3.22)
	if got.IsValid {
		t.Fatal("expected invalid result")
	}
	if got.LoanAmount > 0 {
		t.Fatalf("loan amount = %v", got.LoanAmount)
	}
	if got.InvalidReason == "" {
		t.Fatal("expected an invalid reason")
	}
}

func TestSimulate_InvalidInputsYieldZeroResult(t *testing.T) {
	c := NewCalculator(defaultPricing())
	mutate := map[string]func(*Input){
		"negative notary fees":   func(in *Input) { in.NotaryFees = -1 },
		"negative down payment":  func(in *Input) { in.DownPayment = -10 },
		"NaN works":              func(in *Input) { in.WorksAmount = math.NaN() },
		"duration too short":     func(in *Input) { in.DurationYears = 4 },
		"duration too long":      func(in *Input) { in.DurationYears = 31 },
		"down payment over cost": func(in *Input) { in.DownPayment = 300_000 },
		"fully self-funded":      func(in *Input) { in.DownPayment = 275_000 },
	}
	for name, m := range mutate {
		t.Run(name, func(t *testing.T) {
			in := scenarioA()
			m(&in)
			got := c.Simulate(in, 3.22)
			reason := got.InvalidReason
			got.InvalidReason = ""
			if got != (Result{}) {
				t.Fatalf("want zero result, got %+v", got)
			}
			if !strings.Contains(reason, ErrInvalidInput.Error()) {
				t.Fatalf("reason %q", reason)
			}
			if err := in.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestSimulate_InterestRoundTrip(t *testing.T) {
	c := NewCalculator(defaultPricing())
	for _, years := range []int{5, 10, 17, 25, 30} {
		for _, pct := range []float64{0, 1.1, 3.22, 4.75} {
			in := scenarioA()
			in.DurationYears = years
			r := c.Simulate(in, pct)
			months := float64(years * 12)
			// monthlyCredit is rounded, so the product can drift by half a cent per month.
			tol := 0.005*months + 0.01
			if !near(r.TotalInterest+r.LoanAmount, r.MonthlyCredit*months, tol) {
				t.Fatalf("years=%d rate=%v: %v + %v vs %v", years, pct, r.TotalInterest, r.LoanAmount, r.MonthlyCredit*months)
			}
		}
	}
}

func TestSimulate_ZeroRate(t *testing.T) {
	c := NewCalculator(Pricing{BankFees: BankFeeSchedule{Mode: BankFeeFixed}})
	in := Input{PropertyPrice: 240_000, DurationYears: 20}
	r := c.Simulate(in, 0)
	if r.MonthlyCredit != 1000 || r.TotalInterest != 0 {
		t.Fatalf("zero rate: %+v", r)
	}
	if r.TAEGEstimate != 0 {
		t.Fatalf("TAEG with no cost of credit = %v", r.TAEGEstimate)
	}
}

func TestSimulate_TAEGAboveNominal(t *testing.T) {
	c := NewCalculator(defaultPricing())
	r := c.Simulate(scenarioA(), 3.22)
	if r.TAEGEstimate <= 3.22 {
		t.Fatalf("TAEG %v must exceed the nominal rate once insurance and fees are included", r.TAEGEstimate)
	}
}

func TestEffectiveAnnualRate_MatchesNominalWithoutCosts(t *testing.T) {
	// With no fees or insurance the monthly rate is recovered exactly.
	p := MonthlyPayment(100_000, 6, 120)
	got := EffectiveAnnualRate(100_000, p, 120)
	want := (math.Pow(1.005, 12) - 1) * 100
	if !near(got, want, 1e-6) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestEffectiveAnnualRate_BisectionAgreesWithNewton(t *testing.T) {
	net, pay, n := 244_000.0, 1459.4042547787258, 240
	i, ok := newton(net, pay, n)
	if !ok {
		t.Fatal("newton did not converge")
	}
	if b := bisect(net, pay, n); !near(i, b, 1e-9) {
		t.Fatalf("newton %v bisect %v", i, b)
	}
}

func TestBankFeeSchedule(t *testing.T) {
	cases := []struct {
		name string
		s    BankFeeSchedule
		loan float64
		want float64
	}{
		{"fixed", BankFeeSchedule{Mode: BankFeeFixed, Amount: 750}, 200_000, 750},
		{"percent", BankFeeSchedule{Mode: BankFeePercent, Percent: 1}, 150_000, 1500},
		{"percent floor", BankFeeSchedule{Mode: BankFeePercent, Percent: 1, Min: 800}, 50_000, 800},
		{"percent cap", BankFeeSchedule{Mode: BankFeePercent, Percent: 1, Min: 800, Max: 2000}, 400_000, 2000},
	}
	for _, tc := range cases {
		if got := tc.s.For(tc.loan); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestPricing_Validate(t *testing.T) {
	if err := defaultPricing().Validate(); err != nil {
		t.Fatalf("default pricing: %v", err)
	}
	bad := []Pricing{
		{InsuranceAnnualRate: -0.1, BankFees: BankFeeSchedule{Mode: BankFeeFixed}},
		{BankFees: BankFeeSchedule{Mode: "tiered"}},
		{BankFees: BankFeeSchedule{Mode: BankFeePercent, Percent: 1, Min: 500, Max: 100}},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
