package document

import "context"

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByDocumentID(ctx context.Context, documentID string) (*Document, error)
	ListByLoanID(ctx context.Context, loanID uint64) ([]Document, error)
	Save(ctx context.Context, d *Document) error
}
