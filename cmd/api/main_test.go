package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/domain/booking"
	"github.com/hostelhub/hostelhub-api/internal/domain/dashboard"
	"github.com/hostelhub/hostelhub-api/internal/domain/realtime"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi/hostelapitest"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type app struct {
	router  http.Handler
	backend *hostelapitest.Backend
	files   string
}

func newApp(t *testing.T) *app {
	t.Helper()

	jwtSvc := jwt.NewService("test-secret", time.Hour)
	backend := hostelapitest.New(jwtSvc)
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	api := hostelapi.NewClient(server.URL, 2*time.Second, "test")
	hub := realtime.NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	files := t.TempDir()
	return &app{
		router: newRouter(deps{
			API:         api,
			JWT:         jwtSvc,
			Bookings:    booking.NewService(api, booking.Options{Events: hub}),
			Dashboard:   dashboard.NewService(api, nil, dashboard.Config{}),
			Hub:         hub,
			FilesDir:    files,
			FilesPrefix: "/files",
		}),
		backend: backend,
		files:   files,
	}
}

func (a *app) do(t *testing.T, token, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (a *app) login(t *testing.T, email string) string {
	t.Helper()
	w, env := a.do(t, "", http.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"secret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil || body.AccessToken == "" {
		t.Fatalf("no access token in %s", env.Data)
	}
	return body.AccessToken
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	w, _ := a.do(t, "", http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestBackOfficeFlow(t *testing.T) {
	a := newApp(t)
	a.backend.AddUser(hostelapi.User{ID: "admin-1", Email: "warden@example.com", Role: jwt.RoleAdmin, EmailVerified: true}, "secret")
	a.backend.AddUser(hostelapi.User{ID: "s-1", Email: "amina@example.com", Role: jwt.RoleStudent, EmailVerified: true}, "secret")
	a.backend.AddHostel(hostelapi.Hostel{ID: "h-1", Name: "Sunrise"})
	a.backend.AddBooking(hostelapi.Booking{
		ID:            "b-1",
		Status:        "PENDING",
		PaymentStatus: "PENDING",
		TotalAmount:   decimal.NewFromInt(1000),
		AmountDue:     decimal.NewFromInt(1000),
		Hostel:        &hostelapi.HostelRef{ID: "h-1", Name: "Sunrise"},
		Student:       &hostelapi.UserRef{ID: "s-1", Name: "Amina"},
	})

	admin := a.login(t, "warden@example.com")
	student := a.login(t, "amina@example.com")

	if w, env := a.do(t, admin, http.MethodPost, "/api/v1/bookings/b-1/check-in", `{}`); w.Code != http.StatusConflict || env.Error.Code != "ACTION_NOT_ALLOWED" {
		t.Fatalf("expected ACTION_NOT_ALLOWED, got %d %s", w.Code, w.Body.String())
	}

	steps := []struct {
		path, body string
	}{
		{"/api/v1/bookings/b-1/confirm", `{}`},
		{"/api/v1/bookings/b-1/payments", `{"amount":1000,"payment_method":"CASH"}`},
		{"/api/v1/bookings/b-1/check-in", `{}`},
		{"/api/v1/bookings/b-1/check-out", `{"room_condition":"GOOD","key_returned":true}`},
	}
	for _, s := range steps {
		if w, _ := a.do(t, admin, http.MethodPost, s.path, s.body); w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d %s", s.path, w.Code, w.Body.String())
		}
	}

	w, env := a.do(t, student, http.MethodGet, "/api/v1/bookings/b-1/actions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("actions: %d %s", w.Code, w.Body.String())
	}
	var snap struct {
		Actions []string `json:"actions"`
	}
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	if len(snap.Actions) != 1 || snap.Actions[0] != string(booking.ActionWriteReview) {
		t.Fatalf("expected only write_review, got %v", snap.Actions)
	}

	if w, _ := a.do(t, student, http.MethodPost, "/api/v1/bookings/b-1/review", `{"rating":5,"comment":"Clean and quiet"}`); w.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d %s", w.Code, w.Body.String())
	}

	// No database configured.
	if w, _ := a.do(t, admin, http.MethodGet, "/api/v1/bookings/b-1/history", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("history: expected 503, got %d", w.Code)
	}
}

func TestRoleBoundaries(t *testing.T) {
	a := newApp(t)
	a.backend.AddUser(hostelapi.User{ID: "s-1", Email: "amina@example.com", Role: jwt.RoleStudent, EmailVerified: true}, "secret")
	student := a.login(t, "amina@example.com")

	for _, path := range []string{"/api/v1/dashboard/summary", "/api/v1/users", "/api/v1/feedback", "/api/v1/hostels/h-1/bookings"} {
		if w, _ := a.do(t, student, http.MethodGet, path, ""); w.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", path, w.Code)
		}
	}
	if w, _ := a.do(t, "", http.MethodGet, "/api/v1/hostels", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestServesLocalFiles(t *testing.T) {
	a := newApp(t)
	dir := filepath.Join(a.files, "receipts", "b-1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "r.pdf"), []byte("%PDF-1.3"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, _ := a.do(t, "", http.MethodGet, "/files/receipts/b-1/r.pdf", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("expected stored file, got %d %q", w.Code, w.Body.String())
	}
}
