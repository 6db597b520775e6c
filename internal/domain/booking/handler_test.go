package booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newRouter(f *fixture) http.Handler {
	h := NewHandler(f.svc)
	auth := middleware.Auth(f.jwt)

	r := chi.NewRouter()
	r.Mount("/bookings", h.Routes(auth, nil))
	r.With(auth, middleware.RequireAdmin()).Get("/hostels/{id}/bookings", h.ListByHostel)
	return r
}

func do(t *testing.T, f *fixture, router http.Handler, role, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	userID := "admin-1"
	if role == jwt.RoleStudent {
		userID = "s-1"
	}
	token, err := f.jwt.GenerateAccessToken(userID, role, "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return w, env
}

func TestHandlerPaymentFlow(t *testing.T) {
	f := newFixture(t)
	f.backend.AddBooking(partiallyPaid())
	router := newRouter(f)

	w, env := do(t, f, router, jwt.RoleAdmin, http.MethodPost, "/bookings/b-1/payments", `{"amount":600,"payment_method":"cash"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var data struct {
		Booking struct {
			PaymentStatus string          `json:"payment_status"`
			AmountDue     decimal.Decimal `json:"amount_due"`
		} `json:"booking"`
		Gate       Gate     `json:"gate"`
		Actions    []string `json:"actions"`
		ReceiptURL string   `json:"receipt_url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Booking.PaymentStatus != "PAID" || !data.Booking.AmountDue.IsZero() {
		t.Fatalf("unexpected booking: %+v", data.Booking)
	}
	if !data.Gate.CanCheckIn || data.ReceiptURL == "" {
		t.Fatalf("unexpected response: %+v", data)
	}
	if len(data.Actions) != 2 || data.Actions[0] != "cancel" || data.Actions[1] != "check_in" {
		t.Fatalf("unexpected actions: %v", data.Actions)
	}
}

func TestHandlerRejectsOverpaymentWith422(t *testing.T) {
	f := newFixture(t)
	f.backend.AddBooking(partiallyPaid())
	router := newRouter(f)

	w, env := do(t, f, router, jwt.RoleAdmin, http.MethodPost, "/bookings/b-1/payments", `{"amount":"700.00","payment_method":"CASH"}`)
	if w.Code != http.StatusUnprocessableEntity || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 422 VALIDATION_ERROR, got %d: %s", w.Code, w.Body.String())
	}
	if _, ok := env.Error.Details["amount"]; !ok {
		t.Fatalf("expected amount detail, got %+v", env.Error.Details)
	}
	if n := f.backend.Mutations(); n != 0 {
		t.Fatalf("expected no mutation requests, got %d", n)
	}
}

func TestHandlerRejectsUnknownPaymentMethod(t *testing.T) {
	f := newFixture(t)
	f.backend.AddBooking(partiallyPaid())
	router := newRouter(f)

	w, env := do(t, f, router, jwt.RoleAdmin, http.MethodPost, "/bookings/b-1/payments", `{"amount":100,"payment_method":"BITCOIN"}`)
	if w.Code != http.StatusUnprocessableEntity || env.Error.Details["payment_method"] == "" {
		t.Fatalf("expected payment_method error, got %d: %s", w.Code, w.Body.String())
	}
	if n := f.backend.Calls("GET", "/bookings/b-1"); n != 0 {
		t.Fatalf("malformed request must not reach the backend, got %d calls", n)
	}
}

func TestHandlerActionNotAllowed(t *testing.T) {
	f := newFixture(t)
	f.backend.AddBooking(partiallyPaid())
	router := newRouter(f)

	w, env := do(t, f, router, jwt.RoleAdmin, http.MethodPost, "/bookings/b-1/confirm", "")
	if w.Code != http.StatusConflict || env.Error.Code != "ACTION_NOT_ALLOWED" {
		t.Fatalf("expected 409 ACTION_NOT_ALLOWED, got %d: %s", w.Code, w.Body.String())
	}
	if env.Error.Details["status"] != "CONFIRMED" {
		t.Fatalf("expected current status in details, got %+v", env.Error.Details)
	}
}

func TestHandlerStudentCannotConfirm(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	w, _ := do(t, f, router, jwt.RoleStudent, http.MethodPost, "/bookings/b-1/confirm", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestHandlerMissingBookingMapsBackendKind(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	w, env := do(t, f, router, jwt.RoleAdmin, http.MethodGet, "/bookings/nope", "")
	if w.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandlerCancelRequiresReason(t *testing.T) {
	f := newFixture(t)
	f.backend.AddBooking(partiallyPaid())
	router := newRouter(f)

	w, env := do(t, f, router, jwt.RoleAdmin, http.MethodPost, "/bookings/b-1/cancel", `{"notes":"called"}`)
	if w.Code != http.StatusUnprocessableEntity || env.Error.Details["reason"] == "" {
		t.Fatalf("expected reason error, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandlerListByHostel(t *testing.T) {
	f := newFixture(t)
	f.backend.AddBooking(partiallyPaid())
	router := newRouter(f)

	w, env := do(t, f, router, jwt.RoleAdmin, http.MethodGet, "/hostels/h-1/bookings?status=confirmed", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var rows []SnapshotResponse
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || !rows[0].Gate.CanCancel || rows[0].Gate.CanCheckIn {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if f.backend.Calls("GET", "/bookings/hostel/h-1") != 1 {
		t.Fatal("expected status filter to be sent to the backend")
	}

	w, _ = do(t, f, router, jwt.RoleAdmin, http.MethodGet, "/hostels/h-1/bookings?status=LOST", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown status, got %d", w.Code)
	}
}
