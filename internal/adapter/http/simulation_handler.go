package http

import (
	"net/http"
	"strings"

	"mortgage-underwriting/internal/domain/simulation"
	ucSimulation "mortgage-underwriting/internal/usecase/simulation"

	"github.com/labstack/echo/v4"
)

type SimulationHandler struct{ uc *ucSimulation.Usecase }

func NewSimulationHandler(uc *ucSimulation.Usecase) *SimulationHandler {
	return &SimulationHandler{uc: uc}
}

// Range checks are left to the calculator. Any input that binds is answered with a
// result; only an unreadable body is an error.
type simulationReq struct {
	PropertyPrice float64 `json:"property_price" validate:"dec2"`
	NotaryFees    float64 `json:"notary_fees"    validate:"dec2"`
	AgencyFees    float64 `json:"agency_fees"    validate:"dec2"`
	WorksAmount   float64 `json:"works_amount"   validate:"dec2"`
	DownPayment   float64 `json:"down_payment"   validate:"dec2"`
	DurationYears int     `json:"duration_years"`
}

func (r simulationReq) input() simulation.Input {
	return simulation.Input{
		PropertyPrice: r.PropertyPrice,
		NotaryFees:    r.NotaryFees,
		AgencyFees:    r.AgencyFees,
		WorksAmount:   r.WorksAmount,
		DownPayment:   r.DownPayment,
		DurationYears: r.DurationYears,
	}
}

func (h *SimulationHandler) Simulate(c echo.Context) error {
	var req simulationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK, ucSimulation.QuoteDTO{
			Input:  req.input(),
			Result: simulation.Result{InvalidReason: invalidReason(err)},
		})
	}
	return c.JSON(http.StatusOK, h.uc.Simulate(req.input()))
}

func invalidReason(err error) string {
	fields := ToFieldErrors(err)
	if len(fields) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, "; ")
}
