package http

import (
	"errors"
	"net/http"
	"strings"

	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/escrow"
	"mortgage-underwriting/internal/domain/loan"
	"mortgage-underwriting/internal/domain/lock"
	"mortgage-underwriting/internal/domain/rate"
	"mortgage-underwriting/internal/domain/simulation"

	"github.com/labstack/echo/v4"
)

// Map domain errors → HTTP codes. Order matters: ErrConflict and ErrInvalidTransition
// must stay distinct so clients know whether a retry can help.
var errorStatus = []struct {
	err  error
	code int
}{
	{loan.ErrNotFound, http.StatusNotFound},
	{document.ErrNotFound, http.StatusNotFound},
	{loan.ErrConflict, http.StatusConflict},
	{loan.ErrDraftExists, http.StatusConflict},
	{lock.ErrNotObtained, http.StatusConflict},
	{loan.ErrInvalidTransition, http.StatusUnprocessableEntity},
	{loan.ErrReasonRequired, http.StatusUnprocessableEntity},
	{loan.ErrInvalidInput, http.StatusUnprocessableEntity},
	{simulation.ErrInvalidInput, http.StatusUnprocessableEntity},
	{rate.ErrDurationOutOfRange, http.StatusUnprocessableEntity},
	{document.ErrInvalidReview, http.StatusUnprocessableEntity},
	{document.ErrReasonRequired, http.StatusUnprocessableEntity},
	{document.ErrInvalidDocument, http.StatusUnprocessableEntity},
	{document.ErrCoborrowerMissing, http.StatusUnprocessableEntity},
	{escrow.ErrNegativeAmount, http.StatusUnprocessableEntity},
	{escrow.ErrExpectedNotSet, http.StatusUnprocessableEntity},
	{escrow.ErrLoanClosed, http.StatusUnprocessableEntity},
}

func respondError(c echo.Context, err error) error {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return c.JSON(m.code, ErrorResponse{Error: err.Error()})
		}
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func pathID(c echo.Context, name string) (string, bool, error) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + name + " path param"})
	}
	return v, true, nil
}
