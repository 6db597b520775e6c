package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/domain/audit"
	"github.com/hostelhub/hostelhub-api/internal/domain/realtime"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
	"github.com/hostelhub/hostelhub-api/internal/pkg/receipt"
)

// BackendAPI is the subset of the hostel backend the booking workflow uses.
type BackendAPI interface {
	GetBooking(ctx context.Context, id string) (*hostelapi.Booking, error)
	ListHostelBookings(ctx context.Context, hostelID string, opts hostelapi.ListOptions) (*hostelapi.Page[hostelapi.Booking], error)
	ListMyBookings(ctx context.Context, opts hostelapi.ListOptions) (*hostelapi.Page[hostelapi.Booking], error)
	ConfirmBooking(ctx context.Context, id string, req hostelapi.ConfirmRequest) (*hostelapi.Booking, error)
	CancelBooking(ctx context.Context, id string, req hostelapi.CancelRequest) (*hostelapi.Booking, error)
	CheckIn(ctx context.Context, id string, req hostelapi.CheckInRequest) (*hostelapi.Booking, error)
	CheckOut(ctx context.Context, id string, req hostelapi.CheckOutRequest) (*hostelapi.Booking, error)
	RecordPayment(ctx context.Context, id string, req hostelapi.PaymentRequest) (*hostelapi.PaymentResult, error)
	CreateReview(ctx context.Context, req hostelapi.ReviewRequest) (*hostelapi.Review, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

type Publisher interface {
	PublishBookingUpdated(ctx context.Context, ev realtime.BookingUpdated)
}

type ReceiptIssuer interface {
	Issue(ctx context.Context, d receipt.Data) (string, error)
}

// Actor is the authenticated caller performing an action.
type Actor struct {
	ID   string
	Role string
}

// Options configure optional collaborators. Nil fields get no-op defaults.
type Options struct {
	Guard    Guard
	Audit    AuditRecorder
	Events   Publisher
	Receipts ReceiptIssuer
	Policy   ReviewPolicy
	Location *time.Location
}

type Service struct {
	api      BackendAPI
	guard    Guard
	audit    AuditRecorder
	events   Publisher
	receipts ReceiptIssuer
	policy   ReviewPolicy
	loc      *time.Location
	now      func() time.Time
}

func NewService(api BackendAPI, opts Options) *Service {
	s := &Service{
		api:      api,
		guard:    opts.Guard,
		audit:    opts.Audit,
		events:   opts.Events,
		receipts: opts.Receipts,
		policy:   opts.Policy,
		loc:      opts.Location,
		now:      time.Now,
	}
	if s.guard == nil {
		s.guard = NewMemoryGuard()
	}
	if s.audit == nil {
		s.audit = audit.NopRecorder{}
	}
	if s.policy == nil {
		s.policy = DefaultReviewPolicy
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

// Snapshot is a booking with the gate derived from it.
type Snapshot struct {
	Booking Booking
	Gate    Gate
}

// MutationResult is the outcome of a successful action.
type MutationResult struct {
	Before     Booking
	Booking    Booking
	Gate       Gate
	Warnings   []Warning
	Payment    *hostelapi.Payment
	Review     *hostelapi.Review
	ReceiptURL string
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) snapshot(b Booking) Snapshot {
	return Snapshot{Booking: b, Gate: Evaluate(b, s.today(), s.policy)}
}

// Get returns the current booking and its gate.
func (s *Service) Get(ctx context.Context, actor Actor, id string) (*Snapshot, error) {
	raw, err := s.api.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	b := FromAPI(raw)
	if err := checkOwner(actor, b); err != nil {
		return nil, err
	}
	snap := s.snapshot(b)
	return &snap, nil
}

// ListByHostel lists a hostel's bookings. The status filter is applied by the backend.
func (s *Service) ListByHostel(ctx context.Context, hostelID string, opts hostelapi.ListOptions) ([]Snapshot, hostelapi.Pagination, error) {
	page, err := s.api.ListHostelBookings(ctx, hostelID, opts)
	if err != nil {
		return nil, hostelapi.Pagination{}, err
	}
	return s.snapshots(page.Data), page.Pagination, nil
}

// ListMine lists the caller's own bookings.
func (s *Service) ListMine(ctx context.Context, opts hostelapi.ListOptions) ([]Snapshot, hostelapi.Pagination, error) {
	page, err := s.api.ListMyBookings(ctx, opts)
	if err != nil {
		return nil, hostelapi.Pagination{}, err
	}
	return s.snapshots(page.Data), page.Pagination, nil
}

func (s *Service) snapshots(rows []hostelapi.Booking) []Snapshot {
	out := make([]Snapshot, 0, len(rows))
	for i := range rows {
		out = append(out, s.snapshot(FromAPI(&rows[i])))
	}
	return out
}

type ConfirmInput struct {
	Notes string
}

type CancelInput struct {
	Reason string
	Notes  string
}

type CheckInInput struct {
	Notes      string
	ActualTime time.Time
	Checklist  map[string]bool
}

type CheckOutInput struct {
	Notes         string
	ActualTime    time.Time
	RoomCondition string
	KeyReturned   bool
	DamageNotes   string
	CleaningFee   decimal.Decimal
	DepositRefund decimal.Decimal
}

type ReviewInput struct {
	Rating  int
	Comment string
}

func (s *Service) Confirm(ctx context.Context, actor Actor, id string, in ConfirmInput) (*MutationResult, error) {
	return s.mutate(ctx, actor, id, mutation{
		action: ActionConfirm,
		call: func(ctx context.Context, _ Booking) (*hostelapi.Booking, error) {
			return s.api.ConfirmBooking(ctx, id, hostelapi.ConfirmRequest{Notes: in.Notes})
		},
	})
}

func (s *Service) Cancel(ctx context.Context, actor Actor, id string, in CancelInput) (*MutationResult, error) {
	return s.mutate(ctx, actor, id, mutation{
		action:   ActionCancel,
		metadata: audit.Metadata{"reason": in.Reason},
		call: func(ctx context.Context, _ Booking) (*hostelapi.Booking, error) {
			return s.api.CancelBooking(ctx, id, hostelapi.CancelRequest{Reason: in.Reason, Notes: in.Notes})
		},
	})
}

func (s *Service) CheckIn(ctx context.Context, actor Actor, id string, in CheckInInput) (*MutationResult, error) {
	return s.mutate(ctx, actor, id, mutation{
		action:   ActionCheckIn,
		metadata: audit.Metadata{"checklist": in.Checklist},
		call: func(ctx context.Context, _ Booking) (*hostelapi.Booking, error) {
			at := in.ActualTime
			if at.IsZero() {
				at = s.now()
			}
			return s.api.CheckIn(ctx, id, hostelapi.CheckInRequest{
				Notes:             in.Notes,
				ActualCheckInTime: at.UTC(),
				Checklist:         in.Checklist,
			})
		},
	})
}

func (s *Service) CheckOut(ctx context.Context, actor Actor, id string, in CheckOutInput) (*MutationResult, error) {
	return s.mutate(ctx, actor, id, mutation{
		action: ActionCheckOut,
		metadata: audit.Metadata{
			"room_condition": in.RoomCondition,
			"key_returned":   in.KeyReturned,
		},
		call: func(ctx context.Context, _ Booking) (*hostelapi.Booking, error) {
			at := in.ActualTime
			if at.IsZero() {
				at = s.now()
			}
			return s.api.CheckOut(ctx, id, hostelapi.CheckOutRequest{
				Notes:              in.Notes,
				ActualCheckOutTime: at.UTC(),
				RoomCondition:      in.RoomCondition,
				KeyReturned:        in.KeyReturned,
				DamageNotes:        in.DamageNotes,
				CleaningFee:        in.CleaningFee,
				DepositRefund:      in.DepositRefund,
			})
		},
	})
}

// RecordPayment validates the payment against the current amount due before
// any network call, then posts it and issues a receipt.
func (s *Service) RecordPayment(ctx context.Context, actor Actor, id string, in PaymentInput) (*MutationResult, error) {
	var payment *hostelapi.Payment

	res, err := s.mutate(ctx, actor, id, mutation{
		action: ActionRecordPayment,
		metadata: audit.Metadata{
			"amount":          in.Amount.String(),
			"payment_method":  string(in.Method),
			"transaction_ref": in.TransactionRef,
		},
		precheck: func(b Booking) error {
			return ValidatePayment(in, b.AmountDue)
		},
		call: func(ctx context.Context, _ Booking) (*hostelapi.Booking, error) {
			out, err := s.api.RecordPayment(ctx, id, hostelapi.PaymentRequest{
				Amount:         in.Amount,
				PaymentMethod:  string(in.Method),
				TransactionRef: in.TransactionRef,
				Notes:          in.Notes,
			})
			if err != nil {
				return nil, err
			}
			payment = out.Payment
			return &out.Booking, nil
		},
	})
	if err != nil {
		return nil, err
	}

	res.Payment = payment
	res.ReceiptURL = s.issueReceipt(ctx, actor, res, in)
	return res, nil
}

// WriteReview posts a student review for a checked-out booking.
func (s *Service) WriteReview(ctx context.Context, actor Actor, id string, in ReviewInput) (*MutationResult, error) {
	var review *hostelapi.Review

	res, err := s.mutate(ctx, actor, id, mutation{
		action:   ActionWriteReview,
		metadata: audit.Metadata{"rating": in.Rating},
		precheck: func(b Booking) error {
			if in.Rating < 1 || in.Rating > 5 {
				return &ValidationError{Fields: map[string]string{"rating": "Rating must be between 1 and 5"}}
			}
			return nil
		},
		call: func(ctx context.Context, b Booking) (*hostelapi.Booking, error) {
			out, err := s.api.CreateReview(ctx, hostelapi.ReviewRequest{
				BookingID: id,
				HostelID:  b.HostelID,
				Rating:    in.Rating,
				Comment:   in.Comment,
			})
			if err != nil {
				return nil, err
			}
			review = out
			return nil, nil
		},
	})
	if err != nil {
		return nil, err
	}

	res.Review = review
	return res, nil
}

// checkOwner restricts students to their own bookings. A booking without a
// known owner is refused.
func checkOwner(actor Actor, b Booking) error {
	if actor.Role == jwt.RoleStudent && (b.StudentID == "" || b.StudentID != actor.ID) {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) issueReceipt(ctx context.Context, actor Actor, res *MutationResult, in PaymentInput) string {
	if s.receipts == nil {
		return ""
	}

	paidAt := s.now()
	if res.Payment != nil && !res.Payment.PaidAt.IsZero() {
		paidAt = res.Payment.PaidAt
	}
	b := res.Booking

	url, err := s.receipts.Issue(ctx, receipt.Data{
		BookingID:      b.ID,
		HostelName:     b.HostelName,
		RoomNumber:     b.RoomNumber,
		StudentName:    b.StudentName,
		StudentEmail:   b.StudentEmail,
		Amount:         in.Amount,
		PaymentMethod:  string(in.Method),
		TransactionRef: in.TransactionRef,
		TotalAmount:    b.TotalAmount,
		AmountPaid:     b.AmountPaid,
		AmountDue:      b.AmountDue,
		PaymentStatus:  string(b.PaymentStatus),
		RecordedBy:     actor.ID,
		PaidAt:         paidAt.In(s.loc),
	})
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("booking_id", b.ID).Msg("Failed to issue payment receipt")
		return ""
	}
	return url
}
