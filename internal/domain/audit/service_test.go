package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type memoryStore struct {
	entries []Entry
}

func (m *memoryStore) Insert(_ context.Context, e *Entry) error {
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memoryStore) ListByBooking(_ context.Context, bookingID string, limit, offset int) ([]Entry, error) {
	var out []Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].BookingID == bookingID {
			out = append(out, m.entries[i])
		}
	}
	if offset >= len(out) {
		return []Entry{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) CountByBooking(_ context.Context, bookingID string) (int, error) {
	n := 0
	for _, e := range m.entries {
		if e.BookingID == bookingID {
			n++
		}
	}
	return n, nil
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store)
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	if err := svc.Record(context.Background(), Entry{BookingID: "b-1", Action: "confirm", Outcome: OutcomeSucceeded}); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := store.entries[0]
	if got.ID == uuid.Nil || !got.CreatedAt.Equal(fixed) {
		t.Fatalf("expected id and timestamp, got %+v", got)
	}
}

func TestHistoryPaginates(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store)
	for i := 0; i < 5; i++ {
		_ = svc.Record(context.Background(), Entry{BookingID: "b-1", Action: "confirm", Outcome: OutcomeRejected})
	}
	_ = svc.Record(context.Background(), Entry{BookingID: "b-2", Action: "cancel", Outcome: OutcomeSucceeded})

	entries, total, err := svc.History(context.Background(), "b-1", 2, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 5 || len(entries) != 2 {
		t.Fatalf("expected total=5 len=2, got total=%d len=%d", total, len(entries))
	}
}

func TestHistoryHandler(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store)
	_ = svc.Record(context.Background(), Entry{BookingID: "b-1", Action: "check_in", Outcome: OutcomeSucceeded})

	r := chi.NewRouter()
	r.Get("/bookings/{id}/history", NewHandler(svc).History)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/b-1/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []Entry `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 || body.Meta.Total != 1 || body.Data[0].Action != "check_in" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHistoryHandlerWithoutDatabase(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/bookings/{id}/history", NewHandler(nil).History)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/b-1/history", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
