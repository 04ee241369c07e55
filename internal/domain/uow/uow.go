package uow

import (
	"context"

	"mortgage-underwriting/internal/domain/audit"
	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/loan"
)

type Repos struct {
	Loans       loan.Repository
	Transitions audit.Repository
	Documents   document.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: load the loan by public id first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
