package loan

import (
	"time"

	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/escrow"
	domain "mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/rate"
	"mortgage-underwriting/internal/domain/simulation"
)

type CreateLoanInput struct {
	BorrowerID    string               `json:"borrower_id"`
	Simulation    simulation.Input     `json:"simulation"`
	ProjectType   document.ProjectType `json:"project_type"`
	HasCoborrower bool                 `json:"has_coborrower"`
}

type EscrowDTO struct {
	Status             escrow.Status `json:"status"`
	AmountExpected     float64       `json:"amount_expected"`
	AmountReceived     float64       `json:"amount_received"`
	CompletionSignaled bool          `json:"completion_signaled"`
}

type LoanDTO struct {
	LoanID            string               `json:"loan_id"`
	BorrowerID        string               `json:"borrower_id"`
	Amount            float64              `json:"amount"`
	DurationYears     int                  `json:"duration_years"`
	Rate              float64              `json:"rate"`
	Tier              rate.Tier            `json:"tier"`
	Figures           simulation.Result    `json:"figures"`
	ProjectType       document.ProjectType `json:"project_type"`
	HasCoborrower     bool                 `json:"has_coborrower"`
	Status            string               `json:"status"`
	StatusUpdatedAt   time.Time            `json:"status_updated_at"`
	AllowedNext       []domain.Status      `json:"allowed_next"`
	DocumentsComplete bool                 `json:"documents_complete"`
	Escrow            EscrowDTO            `json:"escrow"`
	RejectionReason   *string              `json:"rejection_reason,omitempty"`
	NextAction        string               `json:"next_action"`
	Version           uint64               `json:"version"`
	CreatedAt         time.Time            `json:"created_at"`
}

func ToDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:        l.LoanID,
		BorrowerID:    l.BorrowerID,
		Amount:        l.Amount,
		DurationYears: l.DurationYears,
		Rate:          l.Rate,
		Tier:          l.Tier,
		Figures: simulation.Result{
			LoanAmount:       l.Amount,
			MonthlyCredit:    l.MonthlyCredit,
			MonthlyInsurance: l.MonthlyInsurance,
			MonthlyTotal:     l.MonthlyTotal,
			TotalInterest:    l.TotalInterest,
			TotalInsurance:   l.TotalInsurance,
			BankFees:         l.BankFees,
			TotalCost:        l.TotalCost,
			TAEGEstimate:     l.TAEGEstimate,
			IsValid:          true,
		},
		ProjectType:       l.ProjectType,
		HasCoborrower:     l.HasCoborrower,
		Status:            string(l.Status),
		StatusUpdatedAt:   l.StatusUpdatedAt,
		AllowedNext:       domain.Next(l.Status),
		DocumentsComplete: l.DocumentsComplete,
		Escrow: EscrowDTO{
			Status:             l.EscrowState().Status,
			AmountExpected:     l.EscrowAmountExpected,
			AmountReceived:     l.EscrowAmountReceived,
			CompletionSignaled: l.EscrowCompletionSignaled,
		},
		RejectionReason: l.RejectionReason,
		NextAction:      l.NextAction,
		Version:         l.Version,
		CreatedAt:       l.CreatedAt,
	}
}
