package booking

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
)

// ConfirmRequest for POST /bookings/{id}/confirm
type ConfirmRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

// CancelRequest for POST /bookings/{id}/cancel
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
	Notes  string `json:"notes" validate:"omitempty,max=1000"`
}

// CheckInRequest for POST /bookings/{id}/check-in
type CheckInRequest struct {
	Notes             string          `json:"notes" validate:"omitempty,max=1000"`
	ActualCheckInTime *time.Time      `json:"actual_check_in_time"`
	Checklist         map[string]bool `json:"checklist"`
}

// CheckOutRequest for POST /bookings/{id}/check-out
type CheckOutRequest struct {
	Notes              string          `json:"notes" validate:"omitempty,max=1000"`
	ActualCheckOutTime *time.Time      `json:"actual_check_out_time"`
	RoomCondition      string          `json:"room_condition" validate:"room_condition"`
	KeyReturned        bool            `json:"key_returned"`
	DamageNotes        string          `json:"damage_notes" validate:"omitempty,max=1000"`
	CleaningFee        decimal.Decimal `json:"cleaning_fee"`
	DepositRefund      decimal.Decimal `json:"deposit_refund"`
}

// PaymentRequest for POST /bookings/{id}/payments. Amount bounds are checked
// against the live amount due, not here.
type PaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"payment_method" validate:"payment_method"`
	TransactionRef string          `json:"transaction_ref" validate:"omitempty,max=100"`
	Notes          string          `json:"notes" validate:"omitempty,max=500"`
}

// ReviewRequest for POST /bookings/{id}/review
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

func (r ConfirmRequest) toInput() ConfirmInput {
	return ConfirmInput{Notes: strings.TrimSpace(r.Notes)}
}

func (r CancelRequest) toInput() CancelInput {
	return CancelInput{Reason: strings.TrimSpace(r.Reason), Notes: strings.TrimSpace(r.Notes)}
}

func (r CheckInRequest) toInput() CheckInInput {
	in := CheckInInput{Notes: strings.TrimSpace(r.Notes), Checklist: r.Checklist}
	if r.ActualCheckInTime != nil {
		in.ActualTime = *r.ActualCheckInTime
	}
	return in
}

func (r CheckOutRequest) toInput() CheckOutInput {
	in := CheckOutInput{
		Notes:         strings.TrimSpace(r.Notes),
		RoomCondition: strings.ToUpper(strings.TrimSpace(r.RoomCondition)),
		KeyReturned:   r.KeyReturned,
		DamageNotes:   strings.TrimSpace(r.DamageNotes),
		CleaningFee:   r.CleaningFee,
		DepositRefund: r.DepositRefund,
	}
	if r.ActualCheckOutTime != nil {
		in.ActualTime = *r.ActualCheckOutTime
	}
	return in
}

func (r PaymentRequest) toInput() PaymentInput {
	return PaymentInput{
		Amount:         r.Amount,
		Method:         PaymentMethod(strings.ToUpper(strings.TrimSpace(r.PaymentMethod))),
		TransactionRef: strings.TrimSpace(r.TransactionRef),
		Notes:          strings.TrimSpace(r.Notes),
	}
}

func (r ReviewRequest) toInput() ReviewInput {
	return ReviewInput{Rating: r.Rating, Comment: strings.TrimSpace(r.Comment)}
}

// Responses

type RefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type BookingResponse struct {
	ID            string          `json:"id"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	CheckInDate   string          `json:"check_in_date"`
	CheckOutDate  string          `json:"check_out_date"`
	CheckedInAt   *time.Time      `json:"checked_in_at,omitempty"`
	CheckedOutAt  *time.Time      `json:"checked_out_at,omitempty"`
	HasReview     bool            `json:"has_review"`
	Notes         string          `json:"notes,omitempty"`
	Hostel        *RefResponse    `json:"hostel,omitempty"`
	Room          *RefResponse    `json:"room,omitempty"`
	Student       *RefResponse    `json:"student,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
}

func BookingResponseFromEntity(b Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
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
	if b.HostelID != "" {
		resp.Hostel = &RefResponse{ID: b.HostelID, Name: b.HostelName}
	}
	if b.RoomID != "" {
		resp.Room = &RefResponse{ID: b.RoomID, Name: b.RoomNumber}
	}
	if b.StudentID != "" {
		resp.Student = &RefResponse{ID: b.StudentID, Name: b.StudentName, Email: b.StudentEmail}
	}
	return resp
}

// SnapshotResponse is a booking with the actions currently permitted on it.
type SnapshotResponse struct {
	Booking BookingResponse `json:"booking"`
	Gate    Gate            `json:"gate"`
	Actions []Action        `json:"actions"`
}

func SnapshotResponseFrom(s Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Booking: BookingResponseFromEntity(s.Booking),
		Gate:    s.Gate,
		Actions: s.Gate.Actions(),
	}
}

type PaymentResponse struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"payment_method"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	PaidAt         time.Time       `json:"paid_at"`
}

type ReviewResponse struct {
	ID        string     `json:"id"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// MutationResponse is returned by every booking action.
type MutationResponse struct {
	Booking    BookingResponse  `json:"booking"`
	Gate       Gate             `json:"gate"`
	Actions    []Action         `json:"actions"`
	Warnings   []Warning        `json:"warnings"`
	Payment    *PaymentResponse `json:"payment,omitempty"`
	Review     *ReviewResponse  `json:"review,omitempty"`
	ReceiptURL string           `json:"receipt_url,omitempty"`
}

func MutationResponseFrom(res *MutationResult) MutationResponse {
	resp := MutationResponse{
		Booking:    BookingResponseFromEntity(res.Booking),
		Gate:       res.Gate,
		Actions:    res.Gate.Actions(),
		Warnings:   res.Warnings,
		ReceiptURL: res.ReceiptURL,
	}
	if resp.Warnings == nil {
		resp.Warnings = []Warning{}
	}
	if p := res.Payment; p != nil {
		resp.Payment = paymentResponse(p)
	}
	if rv := res.Review; rv != nil {
		resp.Review = &ReviewResponse{ID: rv.ID, Rating: rv.Rating, Comment: rv.Comment, CreatedAt: rv.CreatedAt}
	}
	return resp
}

func paymentResponse(p *hostelapi.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:             p.ID,
		Amount:         p.Amount,
		PaymentMethod:  p.PaymentMethod,
		TransactionRef: p.TransactionRef,
		PaidAt:         p.PaidAt,
	}
}
