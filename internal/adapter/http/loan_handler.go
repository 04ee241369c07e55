package http

import (
	"net/http"

	"mortgage-underwriting/internal/domain/document"
	domainLoan "mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/usecase/lifecycle"
	"mortgage-underwriting/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct {
	uc      *loan.Usecase
	machine *lifecycle.Machine
}

func NewLoanHandler(uc *loan.Usecase, m *lifecycle.Machine) *LoanHandler {
	return &LoanHandler{uc: uc, machine: m}
}

type createLoanReq struct {
	BorrowerID    string        `json:"borrower_id"    validate:"required,hex32"`
	ProjectType   string        `json:"project_type"   validate:"required,projecttype"`
	HasCoborrower bool          `json:"has_coborrower"`
	Simulation    simulationReq `json:"simulation"`
}

type transitionReq struct {
	To      string `json:"to"       validate:"required,loanstatus"`
	ActorID string `json:"actor_id" validate:"required,hex32"`
	Reason  string `json:"reason"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput{
		BorrowerID:    req.BorrowerID,
		Simulation:    req.Simulation.input(),
		ProjectType:   document.ProjectType(req.ProjectType),
		HasCoborrower: req.HasCoborrower,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Transition applies a manual move. A 409 means the loan changed underneath; re-read and retry.
func (h *LoanHandler) Transition(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req transitionReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.machine.Transition(c.Request().Context(), lifecycle.TransitionInput{
		LoanID:  loanID,
		To:      domainLoan.Status(req.To),
		ActorID: req.ActorID,
		Reason:  req.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) History(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	recs, err := h.machine.History(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "transitions": recs})
}
