package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health      *Handler
	Simulations *SimulationHandler
	Loans       *LoanHandler
	Documents   *DocumentHandler
	Escrow      *EscrowHandler
}

// RegisterRoutes mounts the API. mutating wraps every state-changing route (idempotency);
// simulations are pure and stay outside it.
func RegisterRoutes(e *echo.Echo, h Handlers, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.POST("/simulations", h.Simulations.Simulate)

	e.GET("/loans/:loan_id", h.Loans.GetLoan)
	e.GET("/loans/:loan_id/transitions", h.Loans.History)
	e.GET("/loans/:loan_id/checklist", h.Documents.Checklist)
	e.GET("/loans/:loan_id/documents", h.Documents.List)
	e.GET("/loans/:loan_id/escrow", h.Escrow.Get)

	e.POST("/loans", h.Loans.CreateLoan, mutating...)
	e.POST("/loans/:loan_id/transitions", h.Loans.Transition, mutating...)
	e.POST("/loans/:loan_id/documents", h.Documents.Register, mutating...)
	e.POST("/documents/:document_id/review", h.Documents.Review, mutating...)
	e.PUT("/loans/:loan_id/escrow", h.Escrow.Update, mutating...)
	e.POST("/loans/:loan_id/escrow/receipts", h.Escrow.RecordReceipt, mutating...)
}
