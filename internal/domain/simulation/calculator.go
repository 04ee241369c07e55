package simulation

import (
	"math"

	"mortgage-underwriting/pkg/money"
)

type Calculator struct{ pricing Pricing }

func NewCalculator(p Pricing) *Calculator { return &Calculator{pricing: p} }

func (c *Calculator) Pricing() Pricing { return c.pricing }

// Simulate prices in at the given nominal annual rate. Invalid input yields a zero result
// with IsValid=false. Figures are computed unrounded and rounded to cents only on output.
func (c *Calculator) Simulate(in Input, ratePercent float64) Result {
	if err := in.Validate(); err != nil {
		return Result{InvalidReason: err.Error()}
	}
	if math.IsNaN(ratePercent) || ratePercent < 0 {
		return Result{InvalidReason: ErrInvalidInput.Error() + ": rate must not be negative"}
	}

	amount := in.LoanAmount()
	months := in.Months()

	credit := MonthlyPayment(amount, ratePercent, months)
	insurance := amount * c.pricing.InsuranceAnnualRate / 12
	total := credit + insurance
	interest := credit*float64(months) - amount
	insuranceTotal := insurance * float64(months)
	fees := c.pricing.BankFees.For(amount)

	return Result{
		LoanAmount:       money.Cents(amount),
		MonthlyCredit:    money.Cents(credit),
		MonthlyInsurance: money.Cents(insurance),
		MonthlyTotal:     money.Cents(total),
		TotalInterest:    money.Cents(interest),
		TotalInsurance:   money.Cents(insuranceTotal),
		BankFees:         money.Cents(fees),
		TotalCost:        money.Cents(interest + insuranceTotal + fees),
		TAEGEstimate:     money.Round(EffectiveAnnualRate(amount-fees, total, months), 2),
		IsValid:          true,
	}
}

// MonthlyPayment is the constant annuity repaying principal over months at a nominal
// annual rate in percent.
func MonthlyPayment(principal, ratePercent float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	i := ratePercent / 100 / 12
	if i == 0 {
		return principal / float64(months)
	}
	return principal * i / (1 - math.Pow(1+i, -float64(months)))
}

const (
	solverTolerance = 1e-12
	solverMaxIter   = 100
	bisectionHigh   = 1.0 // 100% per month is far beyond any realistic cost of credit
)

// EffectiveAnnualRate returns, in percent, the annual rate (1+i)^12-1 at which months
// payments of payment discount to net. It is 0 when the payments do not exceed net.
func EffectiveAnnualRate(net, payment float64, months int) float64 {
	if months <= 0 || net <= 0 || payment <= 0 || payment*float64(months) <= net {
		return 0
	}
	i, ok := newton(net, payment, months)
	if !ok {
		i = bisect(net, payment, months)
	}
	return (math.Pow(1+i, 12) - 1) * 100
}

// npv is the present value of the payment stream minus net; strictly decreasing in i.
func npv(i, net, payment float64, n int) float64 {
	return payment*(1-math.Pow(1+i, -float64(n)))/i - net
}

func npvPrime(i, payment float64, n int) float64 {
	fn := float64(n)
	v := math.Pow(1+i, -fn)
	return payment * (fn*i*v/(1+i) - (1 - v)) / (i * i)
}

func newton(net, payment float64, n int) (float64, bool) {
	// Start from the rate that would be implied by simple interest over the term.
	i := (payment*float64(n)/net - 1) / float64(n)
	for k := 0; k < solverMaxIter; k++ {
		if i <= 0 || i > bisectionHigh || math.IsNaN(i) {
			return 0, false
		}
		f := npv(i, net, payment, n)
		d := npvPrime(i, payment, n)
		if d == 0 {
			return 0, false
		}
		next := i - f/d
		if math.Abs(next-i) < solverTolerance {
			return next, next > 0
		}
		i = next
	}
	return 0, false
}

func bisect(net, payment float64, n int) float64 {
	lo, hi := 1e-12, bisectionHigh
	for k := 0; k < 200 && hi-lo > solverTolerance; k++ {
		mid := (lo + hi) / 2
		if npv(mid, net, payment, n) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
