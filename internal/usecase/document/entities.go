package document

import (
	"time"

	domain "mortgage-underwriting/internal/domain/document"
)

type RegisterInput struct {
	LoanID    string           `json:"loan_id"`
	Category  domain.Category  `json:"category"`
	Direction domain.Direction `json:"direction"`
	Owner     domain.Owner     `json:"owner"`
	BlobPath  string           `json:"blob_path"`
	FileName  string           `json:"file_name"`
}

type ReviewInput struct {
	DocumentID string        `json:"document_id"`
	Status     domain.Status `json:"status"`
	Reason     string        `json:"reason"`
	ReviewerID string        `json:"reviewer_id"`
}

type DocumentDTO struct {
	DocumentID      string           `json:"document_id"`
	LoanID          string           `json:"loan_id"`
	Category        domain.Category  `json:"category"`
	Direction       domain.Direction `json:"direction"`
	Owner           domain.Owner     `json:"owner"`
	Status          domain.Status    `json:"status"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
	FileName        string           `json:"file_name"`
	URL             string           `json:"url,omitempty"`
	ReviewedBy      string           `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

type ReviewDTO struct {
	Document      *DocumentDTO   `json:"document"`
	Verdict       domain.Verdict `json:"verdict"`
	MovedToReview bool           `json:"moved_to_review"`
}

type ChecklistDTO struct {
	LoanID   string               `json:"loan_id"`
	Required []domain.Requirement `json:"required"`
	Missing  []domain.Requirement `json:"missing"`
	Complete bool                 `json:"complete"`
}

func toDTO(loanID string, d *domain.Document) *DocumentDTO {
	return &DocumentDTO{
		DocumentID:      d.DocumentID,
		LoanID:          loanID,
		Category:        d.Category,
		Direction:       d.Direction,
		Owner:           d.Owner,
		Status:          d.Status,
		RejectionReason: d.RejectionReason,
		FileName:        d.FileName,
		ReviewedBy:      d.ReviewedBy,
		ReviewedAt:      d.ReviewedAt,
		CreatedAt:       d.CreatedAt,
	}
}
