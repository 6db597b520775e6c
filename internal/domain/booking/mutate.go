package booking

import (
	"context"

	"github.com/hostelhub/hostelhub-api/internal/domain/audit"
	"github.com/hostelhub/hostelhub-api/internal/domain/realtime"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
)

// Error kinds recorded for rejections made before the backend is called.
const (
	kindNotAllowed = "ACTION_NOT_ALLOWED"
	kindValidation = "VALIDATION_ERROR"
	kindNotOwner   = "FORBIDDEN"
)

type mutation struct {
	action   Action
	metadata audit.Metadata
	// precheck runs after the gate and before the backend call.
	precheck func(b Booking) error
	// call issues the single backend mutation. It may return a nil booking
	// when the endpoint does not echo one.
	call func(ctx context.Context, before Booking) (*hostelapi.Booking, error)
}

// mutate runs one action: lock, fetch, owner, gate, precheck, call, re-fetch.
// Every attempt past the fetch is audited. Nothing is retried or rolled back.
func (s *Service) mutate(ctx context.Context, actor Actor, id string, m mutation) (*MutationResult, error) {
	release, err := s.guard.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	log := logger.FromContext(ctx).With().
		Str("booking_id", id).
		Str("action", string(m.action)).
		Str("actor_id", actor.ID).
		Logger()

	current, err := s.api.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	before := FromAPI(current)

	entry := audit.Entry{
		BookingID:           id,
		HostelID:            before.HostelID,
		Action:              string(m.action),
		ActorID:             actor.ID,
		ActorRole:           actor.Role,
		StatusBefore:        string(before.Status),
		PaymentStatusBefore: string(before.PaymentStatus),
		Metadata:            m.metadata,
	}

	if err := checkOwner(actor, before); err != nil {
		s.record(ctx, entry, audit.OutcomeRejected, kindNotOwner, err)
		return nil, err
	}

	gate := Evaluate(before, s.today(), s.policy)
	if !gate.Allows(m.action) {
		err := &NotAllowedError{Action: m.action, Status: before.Status, PaymentStatus: before.PaymentStatus}
		s.record(ctx, entry, audit.OutcomeRejected, kindNotAllowed, err)
		log.Info().Str("status", string(before.Status)).Str("payment_status", string(before.PaymentStatus)).Msg("Booking action rejected by gate")
		return nil, err
	}

	if m.precheck != nil {
		if err := m.precheck(before); err != nil {
			s.record(ctx, entry, audit.OutcomeRejected, kindValidation, err)
			return nil, err
		}
	}

	echoed, err := m.call(ctx, before)
	if err != nil {
		kind := string(hostelapi.KindOf(err))
		if kind == "" {
			kind = string(hostelapi.KindUnknown)
		}
		s.record(ctx, entry, audit.OutcomeFailed, kind, err)
		log.Warn().Err(err).Str("kind", kind).Msg("Booking action failed")
		return nil, err
	}

	after := s.refetch(ctx, id, echoed, before)
	entry.StatusAfter = string(after.Status)
	entry.PaymentStatusAfter = string(after.PaymentStatus)
	s.record(ctx, entry, audit.OutcomeSucceeded, "", nil)

	if s.events != nil {
		s.events.PublishBookingUpdated(ctx, realtime.BookingUpdated{
			Type:          realtime.EventBookingUpdated,
			BookingID:     id,
			HostelID:      after.HostelID,
			Action:        string(m.action),
			Status:        string(after.Status),
			PaymentStatus: string(after.PaymentStatus),
			ActorID:       actor.ID,
			OccurredAt:    s.now().UTC(),
		})
	}

	log.Info().
		Str("status_before", string(before.Status)).
		Str("status_after", string(after.Status)).
		Str("payment_status_after", string(after.PaymentStatus)).
		Msg("Booking action applied")

	return &MutationResult{
		Before:   before,
		Booking:  after,
		Gate:     Evaluate(after, s.today(), s.policy),
		Warnings: gate.Warnings(m.action),
	}, nil
}

// refetch reads the authoritative state after a mutation. When the read fails
// it falls back to the echoed booking, then to the pre-mutation snapshot.
func (s *Service) refetch(ctx context.Context, id string, echoed *hostelapi.Booking, before Booking) Booking {
	fresh, err := s.api.GetBooking(ctx, id)
	if err == nil {
		return withRefs(FromAPI(fresh), before)
	}
	logger.FromContext(ctx).Warn().Err(err).Str("booking_id", id).Msg("Failed to re-fetch booking after action")

	if echoed != nil {
		return withRefs(FromAPI(echoed), before)
	}
	return before
}

// withRefs fills denormalized references an endpoint left out.
func withRefs(b, fallback Booking) Booking {
	if b.ID == "" {
		b.ID = fallback.ID
	}
	if b.HostelID == "" {
		b.HostelID, b.HostelName = fallback.HostelID, fallback.HostelName
	}
	if b.RoomID == "" {
		b.RoomID, b.RoomNumber = fallback.RoomID, fallback.RoomNumber
	}
	if b.StudentID == "" {
		b.StudentID, b.StudentName, b.StudentEmail = fallback.StudentID, fallback.StudentName, fallback.StudentEmail
	}
	return b
}

// record never fails the action; audit errors are logged.
func (s *Service) record(ctx context.Context, e audit.Entry, outcome audit.Outcome, kind string, cause error) {
	e.Outcome = outcome
	e.ErrorKind = kind
	if cause != nil {
		e.ErrorMessage = cause.Error()
	}
	if err := s.audit.Record(ctx, e); err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("booking_id", e.BookingID).Msg("Failed to record booking action")
	}
}
