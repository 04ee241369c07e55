package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mortgage-underwriting/internal/domain/escrow"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/lock"
	"mortgage-underwriting/internal/domain/simulation"
	simUC "mortgage-underwriting/internal/usecase/simulation"
	"mortgage-underwriting/pkg/id"
)

// Quoter prices a simulation on the server side.
type Quoter interface {
	Quote(in simulation.Input) (simUC.QuoteDTO, error)
}

type Usecase struct {
	repo   loan.Repository
	quoter Quoter
	locker lock.Locker
	hints  loan.Hints
	now    func() time.Time
}

func NewUsecase(r loan.Repository, q Quoter, locker lock.Locker, hints loan.Hints) *Usecase {
	return &Usecase{repo: r, quoter: q, locker: locker, hints: hints, now: func() time.Time { return time.Now().UTC() }}
}

// the draft guard is keyed by borrower, apart from per-loan keys
func draftLockKey(borrowerID string) string { return "borrower:" + borrowerID }

// Create opens a draft application from a simulation. Figures are recomputed here and
// frozen on the loan; whatever the client displayed is not trusted.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if !id.Valid(in.BorrowerID) {
		return nil, fmt.Errorf("%w: borrower_id must be 32-char lowercase hex", loan.ErrInvalidInput)
	}
	if !in.ProjectType.Valid() {
		return nil, fmt.Errorf("%w: unknown project type %q", loan.ErrInvalidInput, in.ProjectType)
	}
	q, err := u.quoter.Quote(in.Simulation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", loan.ErrInvalidInput, err)
	}

	var l *loan.Loan
	err = u.locker.WithLoanLock(ctx, draftLockKey(in.BorrowerID), func(ctx context.Context) error {
		// Block if the borrower already has an open draft.
		draft, err := u.repo.GetOpenDraftByBorrowerID(ctx, in.BorrowerID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", loan.ErrDraftExists, draft.LoanID)
		case !errors.Is(err, loan.ErrNotFound):
			return err
		}
		l = u.newDraft(in, q)
		return u.repo.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

func (u *Usecase) newDraft(in CreateLoanInput, q simUC.QuoteDTO) *loan.Loan {
	s, r := in.Simulation, q.Result
	return &loan.Loan{
		LoanID:           id.NewID32(),
		BorrowerID:       in.BorrowerID,
		Amount:           r.LoanAmount,
		DurationYears:    s.DurationYears,
		Rate:             q.RatePercent,
		Tier:             q.Tier,
		PropertyPrice:    s.PropertyPrice,
		NotaryFees:       s.NotaryFees,
		AgencyFees:       s.AgencyFees,
		WorksAmount:      s.WorksAmount,
		DownPayment:      s.DownPayment,
		MonthlyCredit:    r.MonthlyCredit,
		MonthlyInsurance: r.MonthlyInsurance,
		MonthlyTotal:     r.MonthlyTotal,
		TotalInterest:    r.TotalInterest,
		TotalInsurance:   r.TotalInsurance,
		BankFees:         r.BankFees,
		TotalCost:        r.TotalCost,
		TAEGEstimate:     r.TAEGEstimate,
		ProjectType:      in.ProjectType,
		HasCoborrower:    in.HasCoborrower,
		Status:           loan.StatusDraft,
		StatusUpdatedAt:  u.now(),
		EscrowStatus:     escrow.StatusNone,
		NextAction:       u.hints.For(loan.StatusDraft),
	}
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}
