package loan

import (
	"time"

	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/escrow"
	"mortgage-underwriting/internal/domain/rate"

	"gorm.io/gorm"
)

type Loan struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanID        string    `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	BorrowerID    string    `gorm:"size:32;index:idx_loans_borrower_active" json:"borrower_id"`
	Amount        float64   `gorm:"type:decimal(18,2)" json:"amount"`
	DurationYears int       `json:"duration_years"`
	Rate          float64   `gorm:"type:decimal(6,4)" json:"rate"`
	Tier          rate.Tier `gorm:"size:16" json:"tier"`

	// Figures frozen from the simulation the loan was created from.
	PropertyPrice    float64 `gorm:"type:decimal(18,2)" json:"property_price"`
	NotaryFees       float64 `gorm:"type:decimal(18,2)" json:"notary_fees"`
	AgencyFees       float64 `gorm:"type:decimal(18,2)" json:"agency_fees"`
	WorksAmount      float64 `gorm:"type:decimal(18,2)" json:"works_amount"`
	DownPayment      float64 `gorm:"type:decimal(18,2)" json:"down_payment"`
	MonthlyCredit    float64 `gorm:"type:decimal(18,2)" json:"monthly_credit"`
	MonthlyInsurance float64 `gorm:"type:decimal(18,2)" json:"monthly_insurance"`
	MonthlyTotal     float64 `gorm:"type:decimal(18,2)" json:"monthly_total"`
	TotalInterest    float64 `gorm:"type:decimal(18,2)" json:"total_interest"`
	TotalInsurance   float64 `gorm:"type:decimal(18,2)" json:"total_insurance"`
	BankFees         float64 `gorm:"type:decimal(18,2)" json:"bank_fees"`
	TotalCost        float64 `gorm:"type:decimal(18,2)" json:"total_cost"`
	TAEGEstimate     float64 `gorm:"type:decimal(6,2)" json:"taeg_estimate"`

	ProjectType     document.ProjectType `gorm:"size:32" json:"project_type"`
	HasCoborrower   bool                 `json:"has_coborrower"`
	Status          Status               `gorm:"size:32;index:idx_loans_status;default:'draft'" json:"status"`
	StatusUpdatedAt time.Time            `json:"status_updated_at"`

	// Last positive completeness verdict; edge detection for the automatic review trigger.
	DocumentsComplete bool `json:"documents_complete"`

	EscrowStatus             escrow.Status `gorm:"size:16;default:'none'" json:"escrow_status"`
	EscrowAmountExpected     float64       `gorm:"type:decimal(18,2)" json:"escrow_amount_expected"`
	EscrowAmountReceived     float64       `gorm:"type:decimal(18,2)" json:"escrow_amount_received"`
	EscrowCompletionSignaled bool          `json:"escrow_completion_signaled"`

	RejectionReason *string `gorm:"type:text" json:"rejection_reason,omitempty"`
	NextAction      string  `gorm:"type:text" json:"next_action"`
	Version         uint64  `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy string         `gorm:"size:32" json:"-"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) EscrowState() escrow.State {
	st := l.EscrowStatus
	if st == "" {
		st = escrow.StatusNone
	}
	return escrow.State{
		Expected:           l.EscrowAmountExpected,
		Received:           l.EscrowAmountReceived,
		Status:             st,
		CompletionSignaled: l.EscrowCompletionSignaled,
	}
}
