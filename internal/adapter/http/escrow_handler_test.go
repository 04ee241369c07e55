package http

import (
	stdhttp "net/http"
	"testing"

	ucEscrow "mortgage-underwriting/internal/usecase/escrow"
	ucLoan "mortgage-underwriting/internal/usecase/loan"
)

func TestEscrow_ReceiptsFireOnce(t *testing.T) {
	api := newTestAPI(t)
	id := api.createLoan(t, "primary_residence")

	if rec := api.do(t, stdhttp.MethodPut, "/loans/"+id+"/escrow", map[string]any{"amount_expected": 100000}); rec.Code != stdhttp.StatusOK {
		t.Fatalf("set expected: %d %s", rec.Code, rec.Body.String())
	}

	steps := []struct {
		amount float64
		status string
		fired  bool
	}{
		{40000, "partial", false},
		{60000, "complete", true},
		{1, "overfunded", false},
	}
	for i, s := range steps {
		rec := api.do(t, stdhttp.MethodPost, "/loans/"+id+"/escrow/receipts", map[string]any{"amount": s.amount})
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("step %d: status = %d", i, rec.Code)
		}
		dto := decode[ucEscrow.EscrowDTO](t, rec)
		if string(dto.Status) != s.status || dto.Fired != s.fired {
			t.Fatalf("step %d: dto = %+v", i, dto)
		}
	}
	if api.notifier.Count("loan.escrow_funded") != 1 {
		t.Fatalf("notifications = %+v", api.notifier.Calls())
	}

	loan := decode[ucLoan.LoanDTO](t, api.do(t, stdhttp.MethodGet, "/loans/"+id, nil))
	if loan.Escrow.AmountReceived != 100001 || !loan.Escrow.CompletionSignaled || loan.Status != "draft" {
		t.Fatalf("loan = %+v", loan)
	}
	got := decode[ucEscrow.EscrowDTO](t, api.do(t, stdhttp.MethodGet, "/loans/"+id+"/escrow", nil))
	if got.Status != "overfunded" {
		t.Fatalf("escrow = %+v", got)
	}
}

func TestEscrow_Validation(t *testing.T) {
	api := newTestAPI(t)
	id := api.createLoan(t, "primary_residence")

	if rec := api.do(t, stdhttp.MethodPost, "/loans/"+id+"/escrow/receipts", map[string]any{"amount": 0}); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("zero receipt: %d", rec.Code)
	}
	// expected not set yet
	if rec := api.do(t, stdhttp.MethodPost, "/loans/"+id+"/escrow/receipts", map[string]any{"amount": 10}); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("receipt before expected: %d", rec.Code)
	}
	if rec := api.do(t, stdhttp.MethodPut, "/loans/"+id+"/escrow", map[string]any{"amount_expected": -1}); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("negative expected: %d", rec.Code)
	}
	if rec := api.do(t, stdhttp.MethodPut, "/loans/"+id+"/escrow", `{"amount_expected":`); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("broken body: %d", rec.Code)
	}
}
