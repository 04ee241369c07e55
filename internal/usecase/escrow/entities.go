package escrow

import domain "mortgage-underwriting/internal/domain/escrow"

type UpdateInput struct {
	LoanID         string  `json:"loan_id"`
	AmountExpected float64 `json:"amount_expected"`
	AmountReceived float64 `json:"amount_received"`
}

type ReceiptInput struct {
	LoanID string  `json:"loan_id"`
	Amount float64 `json:"amount"`
}

type EscrowDTO struct {
	LoanID             string        `json:"loan_id"`
	Status             domain.Status `json:"status"`
	AmountExpected     float64       `json:"amount_expected"`
	AmountReceived     float64       `json:"amount_received"`
	CompletionSignaled bool          `json:"completion_signaled"`
	// Fired is true on the single call that first reached full funding.
	Fired bool `json:"fired"`
}
