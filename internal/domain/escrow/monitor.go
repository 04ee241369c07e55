package escrow

import (
	"errors"
	"math"

	"mortgage-underwriting/pkg/money"
)

type Status string

const (
	StatusNone       Status = "none"
	StatusPartial    Status = "partial"
	StatusComplete   Status = "complete"
	StatusOverfunded Status = "overfunded"
)

var (
	ErrNegativeAmount = errors.New("escrow amounts must be non-negative")
	ErrExpectedNotSet = errors.New("escrow expected amount must be set before funds are received")
	ErrLoanClosed     = errors.New("escrow is closed for a rejected loan")
)

// State is the escrow snapshot carried on a loan.
type State struct {
	Expected           float64
	Received           float64
	Status             Status
	CompletionSignaled bool
}

type Evaluation struct {
	Status          Status
	Expected        float64
	Received        float64
	FiresCompletion bool
}

// Funded reports whether the status counts as fully funded.
func (s Status) Funded() bool { return s == StatusComplete || s == StatusOverfunded }

// Evaluate classifies received against expected at cent precision. FiresCompletion is
// true only the first time the loan reaches a funded status.
func Evaluate(prior State, expected, received float64) (Evaluation, error) {
	if bad(expected) || bad(received) {
		return Evaluation{}, ErrNegativeAmount
	}
	expected, received = money.Cents(expected), money.Cents(received)
	if received > 0 && expected <= 0 {
		return Evaluation{}, ErrExpectedNotSet
	}

	var st Status
	switch c := money.Cmp(received, expected); {
	case received == 0:
		st = StatusNone
	case c < 0:
		st = StatusPartial
	case c == 0:
		st = StatusComplete
	default:
		st = StatusOverfunded
	}
	return Evaluation{
		Status:          st,
		Expected:        expected,
		Received:        received,
		FiresCompletion: st.Funded() && !prior.CompletionSignaled,
	}, nil
}

func bad(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) || v < 0 }
