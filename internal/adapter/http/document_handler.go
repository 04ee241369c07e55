package http

import (
	"net/http"

	domain "mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/usecase/document"

	"github.com/labstack/echo/v4"
)

type DocumentHandler struct{ uc *document.Usecase }

func NewDocumentHandler(uc *document.Usecase) *DocumentHandler { return &DocumentHandler{uc: uc} }

type registerDocumentReq struct {
	Category  string `json:"category"  validate:"required,doccategory"`
	Direction string `json:"direction" validate:"omitempty,oneof=outgoing incoming"`
	Owner     string `json:"owner"     validate:"omitempty,oneof=primary coborrower"`
	BlobPath  string `json:"blob_path" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
}

type reviewDocumentReq struct {
	Status     string `json:"status"      validate:"required,oneof=approved rejected"`
	ReviewerID string `json:"reviewer_id" validate:"required,hex32"`
	Reason     string `json:"reason"`
}

func (h *DocumentHandler) Register(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req registerDocumentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Register(c.Request().Context(), document.RegisterInput{
		LoanID:    loanID,
		Category:  domain.Category(req.Category),
		Direction: domain.Direction(req.Direction),
		Owner:     domain.Owner(req.Owner),
		BlobPath:  req.BlobPath,
		FileName:  req.FileName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *DocumentHandler) List(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	docs, err := h.uc.List(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_id": loanID, "documents": docs})
}

func (h *DocumentHandler) Checklist(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Checklist(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DocumentHandler) Review(c echo.Context) error {
	documentID, ok, err := pathID(c, "document_id")
	if !ok {
		return err
	}
	var req reviewDocumentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Review(c.Request().Context(), document.ReviewInput{
		DocumentID: documentID,
		Status:     domain.Status(req.Status),
		Reason:     req.Reason,
		ReviewerID: req.ReviewerID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
