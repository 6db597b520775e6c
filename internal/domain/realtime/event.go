package realtime

import "time"

// EventType for WebSocket messages
type EventType string

const (
	EventBookingUpdated EventType = "booking.updated"
	EventSubscribed     EventType = "subscribed"
	EventError          EventType = "error"
)

// TopicAll receives events of every hostel.
const TopicAll = "all"

// BookingUpdated tells subscribers a booking changed. It is a hint to
// re-fetch; clients must not treat it as the booking state.
type BookingUpdated struct {
	Type          EventType `json:"type"`
	BookingID     string    `json:"booking_id"`
	HostelID      string    `json:"hostel_id"`
	Action        string    `json:"action"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	ActorID       string    `json:"actor_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type clientMessage struct {
	Type     string `json:"type"`
	HostelID string `json:"hostel_id"`
}
