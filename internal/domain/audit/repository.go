package audit

import "context"

type Repository interface {
	// Create appends a record; rows are never updated.
	Create(ctx context.Context, r *Record) error

	// ListByLoanID returns the loan's history, oldest first.
	ListByLoanID(ctx context.Context, loanID uint64) ([]Record, error)
}
