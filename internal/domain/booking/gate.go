package booking

import (
	"fmt"
	"strings"
	"time"
)

// ReviewPolicy decides whether a checked-out booking may still be reviewed.
type ReviewPolicy func(b Booking) bool

// DefaultReviewPolicy allows one review per booking.
func DefaultReviewPolicy(b Booking) bool {
	return !b.HasReview
}

// Actions permitted by booking status. Record payment and the extra
// conditions of check-in and review are applied in Evaluate.
var statusActions = map[Status]map[Action]bool{
	StatusPending:    {ActionConfirm: true, ActionCancel: true},
	StatusConfirmed:  {ActionCancel: true, ActionCheckIn: true},
	StatusCheckedIn:  {ActionCheckOut: true},
	StatusCheckedOut: {ActionWriteReview: true},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

var payableStatuses = map[PaymentStatus]bool{
	PaymentPending: true,
	PaymentPartial: true,
}

// Warning codes.
const (
	WarnPaymentIncomplete = "PAYMENT_INCOMPLETE"
	WarnCheckInFuture     = "CHECK_IN_FUTURE"
	WarnCheckInLate       = "CHECK_IN_LATE"
	WarnEarlyCheckOut     = "EARLY_CHECK_OUT"
	WarnCheckOutLate      = "CHECK_OUT_LATE"
)

// Warning is informational and never blocks an action.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Days    int    `json:"days,omitempty"`
}

// Gate is the set of actions currently permitted for a booking.
type Gate struct {
	CanConfirm       bool      `json:"can_confirm"`
	CanCancel        bool      `json:"can_cancel"`
	CanRecordPayment bool      `json:"can_record_payment"`
	CanCheckIn       bool      `json:"can_check_in"`
	CanCheckOut      bool      `json:"can_check_out"`
	CanWriteReview   bool      `json:"can_write_review"`
	CheckInWarnings  []Warning `json:"check_in_warnings"`
	CheckOutWarnings []Warning `json:"check_out_warnings"`
}

// Evaluate derives the gate. Permissions depend only on status and payment
// status; dates only produce warnings. A nil policy uses DefaultReviewPolicy.
func Evaluate(b Booking, today time.Time, canReview ReviewPolicy) Gate {
	if canReview == nil {
		canReview = DefaultReviewPolicy
	}

	allowed := statusActions[b.Status]
	g := Gate{
		CanConfirm:       allowed[ActionConfirm],
		CanCancel:        allowed[ActionCancel],
		CanRecordPayment: payableStatuses[b.PaymentStatus],
		CanCheckIn:       allowed[ActionCheckIn] && b.PaymentStatus == PaymentPaid,
		CanCheckOut:      allowed[ActionCheckOut],
		CheckInWarnings:  []Warning{},
		CheckOutWarnings: []Warning{},
	}
	g.CanWriteReview = allowed[ActionWriteReview] && canReview(b)

	if b.Status == StatusConfirmed {
		g.CheckInWarnings = checkInWarnings(b, today)
	}
	if b.Status == StatusCheckedIn {
		g.CheckOutWarnings = checkOutWarnings(b, today)
	}
	return g
}

// Allows reports whether the gate permits action.
func (g Gate) Allows(a Action) bool {
	switch a {
	case ActionConfirm:
		return g.CanConfirm
	case ActionCancel:
		return g.CanCancel
	case ActionRecordPayment:
		return g.CanRecordPayment
	case ActionCheckIn:
		return g.CanCheckIn
	case ActionCheckOut:
		return g.CanCheckOut
	case ActionWriteReview:
		return g.CanWriteReview
	}
	return false
}

// Actions lists the permitted actions in a stable order.
func (g Gate) Actions() []Action {
	all := []Action{ActionConfirm, ActionCancel, ActionRecordPayment, ActionCheckIn, ActionCheckOut, ActionWriteReview}
	out := make([]Action, 0, len(all))
	for _, a := range all {
		if g.Allows(a) {
			out = append(out, a)
		}
	}
	return out
}

// Warnings returns the warnings relevant to action.
func (g Gate) Warnings(a Action) []Warning {
	switch a {
	case ActionCheckIn:
		return g.CheckInWarnings
	case ActionCheckOut:
		return g.CheckOutWarnings
	}
	return nil
}

func checkInWarnings(b Booking, today time.Time) []Warning {
	warnings := []Warning{}
	if b.PaymentStatus != PaymentPaid {
		warnings = append(warnings, Warning{Code: WarnPaymentIncomplete, Message: "Payment is not fully completed"})
	}

	days, ok := DaysSince(b.CheckInDate, today)
	if !ok {
		return warnings
	}
	switch {
	case days < 0:
		warnings = append(warnings, Warning{Code: WarnCheckInFuture, Message: "Check-in date is in the future", Days: -days})
	case days > 1:
		warnings = append(warnings, Warning{Code: WarnCheckInLate, Message: fmt.Sprintf("Check-in is %s late", pluralDays(days)), Days: days})
	}
	return warnings
}

func checkOutWarnings(b Booking, today time.Time) []Warning {
	warnings := []Warning{}
	days, ok := DaysSince(b.CheckOutDate, today)
	if !ok {
		return warnings
	}
	switch {
	case days < 0:
		warnings = append(warnings, Warning{Code: WarnEarlyCheckOut, Message: "Early check-out", Days: -days})
	case days > 0:
		warnings = append(warnings, Warning{Code: WarnCheckOutLate, Message: fmt.Sprintf("Check-out is %s late", pluralDays(days)), Days: days})
	}
	return warnings
}

// DaysSince returns the number of calendar days from date to today, both
// taken in today's location. Negative means date is in the future.
func DaysSince(date string, today time.Time) (int, bool) {
	d, ok := parseDate(strings.TrimSpace(date), today.Location())
	if !ok {
		return 0, false
	}
	ty, tm, td := today.Date()
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(d).Hours() / 24), true
}

// parseDate accepts a calendar date or an RFC3339 timestamp and returns
// the calendar day at UTC midnight.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, true
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
