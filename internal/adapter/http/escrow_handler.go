package http

import (
	"net/http"

	"mortgage-underwriting/internal/usecase/escrow"

	"github.com/labstack/echo/v4"
)

type EscrowHandler struct{ uc *escrow.Usecase }

func NewEscrowHandler(uc *escrow.Usecase) *EscrowHandler { return &EscrowHandler{uc: uc} }

type updateEscrowReq struct {
	AmountExpected float64 `json:"amount_expected" validate:"gte=0,dec2"`
	AmountReceived float64 `json:"amount_received" validate:"gte=0,dec2"`
}

type receiptReq struct {
	Amount float64 `json:"amount" validate:"gt=0,dec2"`
}

func (h *EscrowHandler) Get(c echo.Context) error {
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

func (h *EscrowHandler) Update(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req updateEscrowReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Update(c.Request().Context(), escrow.UpdateInput{
		LoanID:         loanID,
		AmountExpected: req.AmountExpected,
		AmountReceived: req.AmountReceived,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *EscrowHandler) RecordReceipt(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req receiptReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RecordReceipt(c.Request().Context(), escrow.ReceiptInput{LoanID: loanID, Amount: req.Amount})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
