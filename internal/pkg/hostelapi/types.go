package hostelapi

import (
	"time"

	"github.com/shopspring/decimal"
)

// HostelRef is the denormalized hostel embedded in other resources.
type HostelRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomRef is the denormalized room embedded in bookings.
type RoomRef struct {
	ID         string `json:"id"`
	RoomNumber string `json:"roomNumber"`
	RoomType   string `json:"roomType,omitempty"`
}

// UserRef is the denormalized user embedded in bookings and reviews.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Booking is the backend's booking snapshot.
type Booking struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	AmountDue     decimal.Decimal `json:"amountDue"`
	CheckInDate   string          `json:"checkInDate"`
	CheckOutDate  string          `json:"checkOutDate"`
	CheckedInAt   *time.Time      `json:"checkedInAt,omitempty"`
	CheckedOutAt  *time.Time      `json:"checkedOutAt,omitempty"`
	HasReview     bool            `json:"hasReview"`
	Notes         string          `json:"notes,omitempty"`
	Student       *UserRef        `json:"student,omitempty"`
	Hostel        *HostelRef      `json:"hostel,omitempty"`
	Room          *RoomRef        `json:"room,omitempty"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
}

// Payment is one ledger entry recorded against a booking.
type Payment struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"paymentMethod"`
	TransactionRef string          `json:"transactionRef,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	PaidAt         time.Time       `json:"paidAt"`
}

// PaymentResult is returned by the payments endpoint.
type PaymentResult struct {
	Booking Booking  `json:"booking"`
	Payment *Payment `json:"payment,omitempty"`
}

type Hostel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Description string `json:"description,omitempty"`
	TotalRooms  int    `json:"totalRooms"`
	IsActive    bool   `json:"isActive"`
}

type Room struct {
	ID               string          `json:"id"`
	HostelID         string          `json:"hostelId"`
	RoomNumber       string          `json:"roomNumber"`
	RoomType         string          `json:"roomType"`
	Capacity         int             `json:"capacity"`
	CurrentOccupancy int             `json:"currentOccupancy"`
	PricePerNight    decimal.Decimal `json:"pricePerNight"`
	Status           string          `json:"status"`
}

type Review struct {
	ID        string     `json:"id"`
	BookingID string     `json:"bookingId"`
	HostelID  string     `json:"hostelId"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	Student   *UserRef   `json:"student,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type Feedback struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Category  string     `json:"category,omitempty"`
	User      *UserRef   `json:"user,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"emailVerified"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// Pagination mirrors the backend's list metadata.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of a paginated list.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListOptions are the query parameters shared by paginated endpoints.
// Empty fields are omitted from the query.
type ListOptions struct {
	Status string
	Role   string
	Page   int
	Limit  int
}

// Request bodies

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken,omitempty"`
	User         UserRef `json:"user"`
	Role         string  `json:"role"`
}

type ConfirmRequest struct {
	Notes string `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

type CheckInRequest struct {
	Notes             string          `json:"notes"`
	ActualCheckInTime time.Time       `json:"actualCheckInTime"`
	Checklist         map[string]bool `json:"checklist"`
}

type CheckOutRequest struct {
	Notes              string          `json:"notes"`
	ActualCheckOutTime time.Time       `json:"actualCheckOutTime"`
	RoomCondition      string          `json:"roomCondition"`
	KeyReturned        bool            `json:"keyReturned"`
	DamageNotes        string          `json:"damageNotes"`
	CleaningFee        decimal.Decimal `json:"cleaningFee"`
	DepositRefund      decimal.Decimal `json:"depositRefund"`
}

type PaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"paymentMethod"`
	TransactionRef string          `json:"transactionRef,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

type ReviewRequest struct {
	BookingID string `json:"bookingId"`
	HostelID  string `json:"hostelId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

type FeedbackRequest struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
}
