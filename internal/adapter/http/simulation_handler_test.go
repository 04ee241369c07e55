package http

import (
	stdhttp "net/http"
	"strings"
	"testing"

	ucSimulation "mortgage-underwriting/internal/usecase/simulation"
)

func TestSimulate_ScenarioA(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, stdhttp.MethodPost, "/simulations", scenarioA())
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	q := decode[ucSimulation.QuoteDTO](t, rec)
	r := q.Result
	if !r.IsValid || q.Tier != "standard" || q.RatePercent != 3.22 {
		t.Fatalf("quote = %+v", q)
	}
	if r.MonthlyCredit != 1385.90 || r.MonthlyInsurance != 73.50 || r.TotalCost != 106257.02 || r.TAEGEstimate != 3.92 {
		t.Fatalf("result = %+v", r)
	}
}

func TestSimulate_InvalidInputIsAResultNotAnError(t *testing.T) {
	api := newTestAPI(t)
	sim := scenarioA()
	sim["down_payment"] = 400000
	rec := api.do(t, stdhttp.MethodPost, "/simulations", sim)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	r := decode[ucSimulation.QuoteDTO](t, rec).Result
	if r.IsValid || r.InvalidReason == "" || r.MonthlyTotal != 0 || r.TotalCost != 0 {
		t.Fatalf("result = %+v", r)
	}
}

func TestSimulate_SubCentAmountIsAnInvalidResult(t *testing.T) {
	api := newTestAPI(t)
	sim := scenarioA()
	sim["notary_fees"] = 20000.001
	rec := api.do(t, stdhttp.MethodPost, "/simulations", sim)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	q := decode[ucSimulation.QuoteDTO](t, rec)
	r := q.Result
	if r.IsValid || r.MonthlyTotal != 0 || r.LoanAmount != 0 {
		t.Fatalf("result = %+v", r)
	}
	if !strings.Contains(r.InvalidReason, "notary_fees") || !strings.Contains(r.InvalidReason, "2 decimal") {
		t.Fatalf("invalid_reason = %q", r.InvalidReason)
	}
	if q.Input.NotaryFees != 20000.001 {
		t.Fatalf("input not echoed: %+v", q.Input)
	}
}

func TestSimulate_UnreadableBody(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, stdhttp.MethodPost, "/simulations", `{"property_price":`)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
