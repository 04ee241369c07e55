package lifecycle

import (
	"time"

	"mortgage-underwriting/internal/domain/audit"
	"mortgage-underwriting/internal/domain/loan"
)

type TransitionInput struct {
	LoanID  string      `json:"loan_id"`
	To      loan.Status `json:"to"`
	ActorID string      `json:"actor_id"`
	Reason  string      `json:"reason"`
}

type TransitionDTO struct {
	TransitionID string        `json:"transition_id"`
	LoanID       string        `json:"loan_id"`
	From         loan.Status   `json:"from"`
	To           loan.Status   `json:"to"`
	Trigger      audit.Trigger `json:"trigger"`
	NextAction   string        `json:"next_action"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

func toDTO(l *loan.Loan, rec *audit.Record) *TransitionDTO {
	return &TransitionDTO{
		TransitionID: rec.TransitionID,
		LoanID:       l.LoanID,
		From:         rec.FromStatus,
		To:           rec.ToStatus,
		Trigger:      rec.Trigger,
		NextAction:   l.NextAction,
		OccurredAt:   rec.OccurredAt,
	}
}
