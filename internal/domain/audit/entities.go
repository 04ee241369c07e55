package audit

import (
	"time"

	"mortgage-underwriting/internal/domain/loan"
)

type Trigger string

const (
	TriggerManual            Trigger = "manual"
	TriggerDocumentsComplete Trigger = "documents_complete"
	TriggerEscrowFunded      Trigger = "escrow_funded"
)

// Record is one applied lifecycle event. Escrow funding keeps the status, so its
// record has From == To.
type Record struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	TransitionID string `gorm:"column:transition_id;type:char(32);not null;uniqueIndex:ux_loan_transitions_transition_id" json:"transition_id"`
	// FK to loans.id (numeric)
	LoanID     uint64      `gorm:"column:loan_id;not null;index:idx_loan_transitions_loan" json:"-"`
	FromStatus loan.Status `gorm:"column:from_status;size:32;not null" json:"from"`
	ToStatus   loan.Status `gorm:"column:to_status;size:32;not null" json:"to"`
	Trigger    Trigger     `gorm:"column:trigger_kind;size:32;not null" json:"trigger"`
	ActorID    string      `gorm:"column:actor_id;size:32" json:"actor_id,omitempty"`
	Reason     string      `gorm:"column:reason;type:text" json:"reason,omitempty"`
	OccurredAt time.Time   `gorm:"column:occurred_at;not null" json:"occurred_at"`
	CreatedAt  time.Time   `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (Record) TableName() string { return "loan_transitions" }
