package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists audit entries.
type Store interface {
	Insert(ctx context.Context, e *Entry) error
	ListByBooking(ctx context.Context, bookingID string, limit, offset int) ([]Entry, error)
	CountByBooking(ctx context.Context, bookingID string) (int, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Record stores e, assigning an id and timestamp when missing.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	return s.store.Insert(ctx, &e)
}

// History returns one page of a booking's audit trail and the total count.
func (s *Service) History(ctx context.Context, bookingID string, page, limit int) ([]Entry, int, error) {
	total, err := s.store.CountByBooking(ctx, bookingID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []Entry{}, 0, nil
	}
	entries, err := s.store.ListByBooking(ctx, bookingID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// NopRecorder drops entries; used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }
