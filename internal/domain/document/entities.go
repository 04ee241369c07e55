package document

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Category string

const (
	CategoryIdentity         Category = "identity"
	CategoryProofOfAddress   Category = "proof_of_address"
	CategoryTaxNotice        Category = "tax_notice"
	CategoryPayslips         Category = "payslips"
	CategoryBankStatements   Category = "bank_statements"
	CategoryCompromiseOfSale Category = "compromise_of_sale"
	CategoryOther            Category = "other"
)

var Categories = []Category{
	CategoryIdentity, CategoryProofOfAddress, CategoryTaxNotice, CategoryPayslips,
	CategoryBankStatements, CategoryCompromiseOfSale, CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Direction: outgoing travels borrower → institution, incoming institution → borrower.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

type Owner string

const (
	OwnerPrimary    Owner = "primary"
	OwnerCoborrower Owner = "coborrower"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type ProjectType string

const (
	ProjectPrimaryResidence   ProjectType = "primary_residence"
	ProjectSecondaryResidence ProjectType = "secondary_residence"
	ProjectRentalInvestment   ProjectType = "rental_investment"
	ProjectConstruction       ProjectType = "construction"
	ProjectRenovation         ProjectType = "renovation"
)

var ProjectTypes = []ProjectType{
	ProjectPrimaryResidence, ProjectSecondaryResidence, ProjectRentalInvestment,
	ProjectConstruction, ProjectRenovation,
}

func (p ProjectType) Valid() bool {
	for _, v := range ProjectTypes {
		if v == p {
			return true
		}
	}
	return false
}

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidReview     = errors.New("invalid document review")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrUnknownProject    = errors.New("unknown project type")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrCoborrowerMissing = errors.New("loan has no co-borrower")
)

type Document struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	DocumentID      string         `gorm:"size:32;uniqueIndex:ux_documents_document_id" json:"document_id"`
	LoanID          uint64         `gorm:"index:idx_documents_loan;not null" json:"-"`
	BorrowerID      string         `gorm:"size:32;index:idx_documents_borrower" json:"borrower_id"`
	Category        Category       `gorm:"size:32" json:"category"`
	Direction       Direction      `gorm:"size:16" json:"direction"`
	Owner           Owner          `gorm:"size:16" json:"owner"`
	Status          Status         `gorm:"size:16;default:'pending'" json:"status"`
	RejectionReason *string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	BlobPath        string         `gorm:"type:text" json:"-"`
	FileName        string         `gorm:"size:255" json:"file_name"`
	ReviewedBy      string         `gorm:"size:32" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string { return "documents" }

// Review moves the document to approved or rejected. A pending document may go either way,
// an approved one may still be rejected (e.g. found expired); rejected is final, the borrower
// uploads a new copy instead.
func (d *Document) Review(to Status, reason, reviewer string, at time.Time) error {
	switch {
	case to == StatusApproved && d.Status == StatusPending:
	case to == StatusRejected && (d.Status == StatusPending || d.Status == StatusApproved):
		if reason == "" {
			return ErrReasonRequired
		}
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidReview, d.Status, to)
	}
	d.Status = to
	if to == StatusRejected {
		d.RejectionReason = &reason
	} else {
		d.RejectionReason = nil
	}
	d.ReviewedBy = reviewer
	d.ReviewedAt = &at
	return nil
}
