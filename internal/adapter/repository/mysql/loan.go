package mysql

import (
	"context"
	"errors"

	loanDomain "mortgage-underwriting/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return loanResult(&out, res.Error)
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return loanResult(&out, res.Error)
}

func (r *LoanRepository) GetOpenDraftByBorrowerID(ctx context.Context, borrowerID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("borrower_id = ? AND status = ?", borrowerID, loanDomain.StatusDraft).
		Order("status_updated_at DESC, id DESC").
		First(&out)
	return loanResult(&out, res.Error)
}

// CompareAndSwap persists the mutable part of the loan guarded by status and version.
func (r *LoanRepository) CompareAndSwap(ctx context.Context, l *loanDomain.Loan, expectedStatus loanDomain.Status, expectedVersion uint64) error {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("id = ? AND status = ? AND version = ?", l.ID, expectedStatus, expectedVersion).
		Updates(map[string]any{
			"status":                     l.Status,
			"status_updated_at":          l.StatusUpdatedAt,
			"documents_complete":         l.DocumentsComplete,
			"escrow_status":              l.EscrowStatus,
			"escrow_amount_expected":     l.EscrowAmountExpected,
			"escrow_amount_received":     l.EscrowAmountReceived,
			"escrow_completion_signaled": l.EscrowCompletionSignaled,
			"rejection_reason":           l.RejectionReason,
			"next_action":                l.NextAction,
			"version":                    expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrConflict
	}
	l.Version = expectedVersion + 1
	return nil
}

func (r *LoanRepository) ListByStatuses(ctx context.Context, statuses []loanDomain.Status, limit int) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	q := r.db.WithContext(ctx).Where("status IN ?", statuses).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func loanResult(l *loanDomain.Loan, err error) (*loanDomain.Loan, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
