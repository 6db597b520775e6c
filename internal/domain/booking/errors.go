package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrActionNotAllowed   = errors.New("action not allowed for current booking state")
	ErrMutationInProgress = errors.New("another action is already in progress for this booking")
	ErrInvalidStatus      = errors.New("invalid booking status")
)

// NotAllowedError reports which state blocked an action.
type NotAllowedError struct {
	Action        Action
	Status        Status
	PaymentStatus PaymentStatus
}

func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("%s is not allowed when status=%s payment_status=%s", e.Action, e.Status, e.PaymentStatus)
}

func (e *NotAllowedError) Unwrap() error { return ErrActionNotAllowed }

// ValidationError is returned by pre-submission guards. No backend call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrNotOwner is returned when a student acts on another student's booking.
var ErrNotOwner = errors.New("booking belongs to another student")
