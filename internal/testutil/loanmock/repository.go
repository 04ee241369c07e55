package loanmock

import (
	"context"

	domain "mortgage-underwriting/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled so a forgotten stub fails loudly.
type Repo struct {
	CreateFn                   func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn              func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByIDFn                  func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetOpenDraftByBorrowerIDFn func(ctx context.Context, borrowerID string) (*domain.Loan, error)
	CompareAndSwapFn           func(ctx context.Context, l *domain.Loan, expectedStatus domain.Status, expectedVersion uint64) error
	ListByStatusesFn           func(ctx context.Context, statuses []domain.Status, limit int) ([]domain.Loan, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetOpenDraftByBorrowerID(ctx context.Context, borrowerID string) (*domain.Loan, error) {
	if m.GetOpenDraftByBorrowerIDFn != nil {
		return m.GetOpenDraftByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, context.Canceled
}

func (m *Repo) CompareAndSwap(ctx context.Context, l *domain.Loan, expectedStatus domain.Status, expectedVersion uint64) error {
	if m.CompareAndSwapFn != nil {
		return m.CompareAndSwapFn(ctx, l, expectedStatus, expectedVersion)
	}
	return nil
}

func (m *Repo) ListByStatuses(ctx context.Context, statuses []domain.Status, limit int) ([]domain.Loan, error) {
	if m.ListByStatusesFn != nil {
		return m.ListByStatusesFn(ctx, statuses, limit)
	}
	return nil, nil
}
