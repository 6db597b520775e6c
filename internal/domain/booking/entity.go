package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
)

// Status is the booking lifecycle state owned by the hostel backend.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// AllStatuses lists every booking status in lifecycle order.
var AllStatuses = []Status{
	StatusPending, StatusConfirmed, StatusCheckedIn,
	StatusCheckedOut, StatusCancelled, StatusNoShow,
}

// ParseStatus normalizes s into a known Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// PaymentStatus is the payment track that runs in parallel to Status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentOverdue  PaymentStatus = "OVERDUE"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

var AllPaymentStatuses = []PaymentStatus{
	PaymentPending, PaymentPartial, PaymentPaid, PaymentOverdue, PaymentRefunded,
}

// PaymentMethod is the channel a payment was received through.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	MethodCard         PaymentMethod = "CARD"
	MethodCheque       PaymentMethod = "CHEQUE"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodMobileMoney, MethodCard, MethodCheque:
		return true
	}
	return false
}

// IsElectronic reports whether the method leaves a transaction reference.
func (m PaymentMethod) IsElectronic() bool {
	return m == MethodBankTransfer || m == MethodMobileMoney || m == MethodCard
}

// Action is an operator or student operation on a booking.
type Action string

const (
	ActionConfirm       Action = "confirm"
	ActionCancel        Action = "cancel"
	ActionRecordPayment Action = "record_payment"
	ActionCheckIn       Action = "check_in"
	ActionCheckOut      Action = "check_out"
	ActionWriteReview   Action = "write_review"
)

// Booking is the local view of a backend booking snapshot.
// It is never persisted; every read comes from the backend.
type Booking struct {
	ID            string
	Status        Status
	PaymentStatus PaymentStatus
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal
	CheckInDate   string
	CheckOutDate  string
	CheckedInAt   *time.Time
	CheckedOutAt  *time.Time
	HasReview     bool
	Notes         string
	HostelID      string
	HostelName    string
	RoomID        string
	RoomNumber    string
	StudentID     string
	StudentName   string
	StudentEmail  string
	CreatedAt     *time.Time
}

// FromAPI converts the backend representation. Status strings are upper-cased
// but otherwise passed through so unknown values disable every action.
func FromAPI(b *hostelapi.Booking) Booking {
	out := Booking{
		ID:            b.ID,
		Status:        Status(strings.ToUpper(b.Status)),
		PaymentStatus: PaymentStatus(strings.ToUpper(b.PaymentStatus)),
		TotalAmount:   b.TotalAmount,
		AmountPaid:    b.AmountPaid,
		AmountDue:     b.AmountDue,
		CheckInDate:   b.CheckInDate,
		CheckOutDate:  b.CheckOutDate,
		CheckedInAt:   b.CheckedInAt,
		CheckedOutAt:  b.CheckedOutAt,
		HasReview:     b.HasReview,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
	}
	if b.Hostel != nil {
		out.HostelID = b.Hostel.ID
		out.HostelName = b.Hostel.Name
	}
	if b.Room != nil {
		out.RoomID = b.Room.ID
		out.RoomNumber = b.Room.RoomNumber
	}
	if b.Student != nil {
		out.StudentID = b.Student.ID
		out.StudentName = b.Student.Name
		out.StudentEmail = b.Student.Email
	}
	return out
}
