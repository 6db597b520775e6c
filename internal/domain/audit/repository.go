package audit

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, e *Entry) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO booking_actions (
			id, booking_id, hostel_id, action, actor_id, actor_role, outcome,
			error_kind, error_message, status_before, status_after,
			payment_status_before, payment_status_after, metadata, created_at
		) VALUES (
			:id, :booking_id, :hostel_id, :action, :actor_id, :actor_role, :outcome,
			:error_kind, :error_message, :status_before, :status_after,
			:payment_status_before, :payment_status_after, :metadata, :created_at
		)
	`, e)
	return err
}

// ListByBooking returns entries newest first.
func (r *Repository) ListByBooking(ctx context.Context, bookingID string, limit, offset int) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, booking_id, hostel_id, action, actor_id, actor_role, outcome,
		       error_kind, error_message, status_before, status_after,
		       payment_status_before, payment_status_after, metadata, created_at
		FROM booking_actions
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, bookingID, limit, offset)
	return entries, err
}

func (r *Repository) CountByBooking(ctx context.Context, bookingID string) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM booking_actions WHERE booking_id = $1`, bookingID)
	return total, err
}
