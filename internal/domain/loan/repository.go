package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	GetOpenDraftByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	// CompareAndSwap writes l's mutable fields only if the row still has expectedStatus and
	// expectedVersion, then bumps l.Version. ErrConflict when nothing matched.
	CompareAndSwap(ctx context.Context, l *Loan, expectedStatus Status, expectedVersion uint64) error
	ListByStatuses(ctx context.Context, statuses []Status, limit int) ([]Loan, error)
}
