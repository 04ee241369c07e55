package escrow

import (
	"context"
	"errors"
	"fmt"

	domain "mortgage-underwriting/internal/domain/escrow"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/lock"
	"mortgage-underwriting/internal/domain/uow"
	"mortgage-underwriting/pkg/money"

	"github.com/sirupsen/logrus"
)

const defaultMaxRetries = 3

// Listener stores an evaluation made against the loan at basisVersion.
type Listener interface {
	EscrowEvaluated(ctx context.Context, loanID string, ev domain.Evaluation, basisVersion uint64) (bool, error)
}

type Usecase struct {
	uow        uow.UnitOfWork
	locker     lock.Locker
	listener   Listener
	log        logrus.FieldLogger
	maxRetries int
}

func NewUsecase(tx uow.UnitOfWork, locker lock.Locker, listener Listener, log logrus.FieldLogger) *Usecase {
	return &Usecase{uow: tx, locker: locker, listener: listener, log: log, maxRetries: defaultMaxRetries}
}

// Update replaces both escrow amounts.
func (u *Usecase) Update(ctx context.Context, in UpdateInput) (*EscrowDTO, error) {
	return u.evaluate(ctx, in.LoanID, func(domain.State) (float64, float64) {
		return in.AmountExpected, in.AmountReceived
	})
}

// RecordReceipt adds a single incoming payment to the received amount.
func (u *Usecase) RecordReceipt(ctx context.Context, in ReceiptInput) (*EscrowDTO, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: receipt must be positive", domain.ErrNegativeAmount)
	}
	return u.evaluate(ctx, in.LoanID, func(s domain.State) (float64, float64) {
		return s.Expected, money.Sum(s.Received, in.Amount)
	})
}

// Get returns the stored escrow snapshot.
func (u *Usecase) Get(ctx context.Context, loanID string) (*EscrowDTO, error) {
	var out *EscrowDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(_ uow.Repos, l *loan.Loan) error {
		out = toDTO(l.LoanID, l.EscrowState(), false)
		return nil
	})
	return out, err
}

func (u *Usecase) evaluate(ctx context.Context, loanID string, amounts func(domain.State) (float64, float64)) (*EscrowDTO, error) {
	var out *EscrowDTO
	err := u.locker.WithLoanLock(ctx, loanID, func(ctx context.Context) error {
		for attempt := 0; ; attempt++ {
			dto, err := u.evaluateOnce(ctx, loanID, amounts)
			if errors.Is(err, loan.ErrConflict) && attempt < u.maxRetries {
				u.log.WithFields(logrus.Fields{"loan_id": loanID, "attempt": attempt + 1}).Warn("escrow: conflict, retrying")
				continue
			}
			out = dto
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) evaluateOnce(ctx context.Context, loanID string, amounts func(domain.State) (float64, float64)) (*EscrowDTO, error) {
	var (
		prior   domain.State
		version uint64
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(_ uow.Repos, l *loan.Loan) error {
		if l.Status == loan.StatusRejected {
			return domain.ErrLoanClosed
		}
		prior, version = l.EscrowState(), l.Version
		return nil
	})
	if err != nil {
		return nil, err
	}

	expected, received := amounts(prior)
	ev, err := domain.Evaluate(prior, expected, received)
	if err != nil {
		return nil, err
	}
	fired, err := u.listener.EscrowEvaluated(ctx, loanID, ev, version)
	if err != nil {
		return nil, err
	}
	return toDTO(loanID, domain.State{
		Expected:           ev.Expected,
		Received:           ev.Received,
		Status:             ev.Status,
		CompletionSignaled: prior.CompletionSignaled || fired,
	}, fired), nil
}

func toDTO(loanID string, s domain.State, fired bool) *EscrowDTO {
	return &EscrowDTO{
		LoanID:             loanID,
		Status:             s.Status,
		AmountExpected:     s.Expected,
		AmountReceived:     s.Received,
		CompletionSignaled: s.CompletionSignaled,
		Fired:              fired,
	}
}
