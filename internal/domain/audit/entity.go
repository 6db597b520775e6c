package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome of a booking action attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeRejected  Outcome = "REJECTED"
	OutcomeFailed    Outcome = "FAILED"
)

// Entry is one attempted booking action, successful or not.
type Entry struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	BookingID           string    `db:"booking_id" json:"booking_id"`
	HostelID            string    `db:"hostel_id" json:"hostel_id,omitempty"`
	Action              string    `db:"action" json:"action"`
	ActorID             string    `db:"actor_id" json:"actor_id"`
	ActorRole           string    `db:"actor_role" json:"actor_role"`
	Outcome             Outcome   `db:"outcome" json:"outcome"`
	ErrorKind           string    `db:"error_kind" json:"error_kind,omitempty"`
	ErrorMessage        string    `db:"error_message" json:"error_message,omitempty"`
	StatusBefore        string    `db:"status_before" json:"status_before"`
	StatusAfter         string    `db:"status_after" json:"status_after,omitempty"`
	PaymentStatusBefore string    `db:"payment_status_before" json:"payment_status_before"`
	PaymentStatusAfter  string    `db:"payment_status_after" json:"payment_status_after,omitempty"`
	Metadata            Metadata  `db:"metadata" json:"metadata,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// Metadata is stored as jsonb.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("audit metadata: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	out := Metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("audit metadata: %w", err)
	}
	*m = out
	return nil
}
