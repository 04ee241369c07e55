package http

import (
	"bytes"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mortgage-underwriting/internal/catalog"
	"mortgage-underwriting/internal/domain/rate"
	"mortgage-underwriting/internal/domain/simulation"
	"mortgage-underwriting/internal/infrastructure/lock"
	"mortgage-underwriting/internal/infrastructure/logging"
	"mortgage-underwriting/internal/testutil/memstore"
	"mortgage-underwriting/internal/testutil/notifymock"
	ucDocument "mortgage-underwriting/internal/usecase/document"
	ucEscrow "mortgage-underwriting/internal/usecase/escrow"
	"mortgage-underwriting/internal/usecase/lifecycle"
	ucLoan "mortgage-underwriting/internal/usecase/loan"
	ucSimulation "mortgage-underwriting/internal/usecase/simulation"

	"github.com/labstack/echo/v4"
)

// -------- helpers --------

const (
	borrower = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	staff    = "ssssssssssssssssssssssssssssssss"
)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) io.Reader {
	if s, ok := v.(string); ok {
		return strings.NewReader(s)
	}
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func testQuoter(t *testing.T, cat *catalog.Catalog) *ucSimulation.Usecase {
	t.Helper()
	return ucSimulation.NewUsecase(rate.NewResolver(cat.Rates), simulation.NewCalculator(cat.Pricing))
}

// testAPI is the whole engine over an in-memory store behind the real router.
type testAPI struct {
	e        *echo.Echo
	store    *memstore.Store
	notifier *notifymock.Notifier
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	store := memstore.New()
	n := &notifymock.Notifier{}
	locker := lock.NewLocalLocker()
	m := lifecycle.NewMachine(store, locker, n, cat.Hints, cat.EscrowFundedLabel, logging.Discard())
	quoter := testQuoter(t, cat)

	e := newEchoWithValidator()
	RegisterRoutes(e, Handlers{
		Health:      NewHandler(nil),
		Simulations: NewSimulationHandler(quoter),
		Loans:       NewLoanHandler(ucLoan.NewUsecase(store.Repos().Loans, quoter, locker, cat.Hints), m),
		Documents:   NewDocumentHandler(ucDocument.NewUsecase(store, cat.Requirements, locker, m, nil)),
		Escrow:      NewEscrowHandler(ucEscrow.NewUsecase(store, locker, m, logging.Discard())),
	})
	return &testAPI{e: e, store: store, notifier: n}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = mustJSON(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return v
}

func scenarioA() map[string]any {
	return map[string]any{
		"property_price": 250000,
		"notary_fees":    20000,
		"agency_fees":    5000,
		"down_payment":   30000,
		"duration_years": 20,
	}
}

// createLoan opens a draft through the API and returns its public id.
func (a *testAPI) createLoan(t *testing.T, projectType string) string {
	t.Helper()
	rec := a.do(t, stdhttp.MethodPost, "/loans", map[string]any{
		"borrower_id":  borrower,
		"project_type": projectType,
		"simulation":   scenarioA(),
	})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create loan: status = %d body=%s", rec.Code, rec.Body.String())
	}
	return decode[ucLoan.LoanDTO](t, rec).LoanID
}

func (a *testAPI) transition(t *testing.T, loanID, to, reason string) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, stdhttp.MethodPost, "/loans/"+loanID+"/transitions", map[string]any{"to": to, "actor_id": staff, "reason": reason})
}
