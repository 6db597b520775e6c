// Package hostelapitest runs an in-memory hostel backend over real HTTP.
// It applies the same state transitions as the production backend so
// handlers and the client can be tested end to end.
package hostelapitest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
)

type account struct {
	user     hostelapi.User
	password string
}

// Backend holds the fake backend state. All methods are safe for concurrent use.
type Backend struct {
	jwt *jwt.Service

	mu          sync.Mutex
	accounts    map[string]*account
	hostels     []hostelapi.Hostel
	rooms       map[string][]hostelapi.Room
	bookings    map[string]*hostelapi.Booking
	order       []string
	payments    map[string][]hostelapi.Payment
	reviews     []hostelapi.Review
	feedback    []hostelapi.Feedback
	failHostels map[string]bool
	calls       map[string]int

	now func() time.Time
}

// New creates an empty backend. When jwtSvc is nil bearer tokens are not checked
// and login is disabled.
func New(jwtSvc *jwt.Service) *Backend {
	return &Backend{
		jwt:         jwtSvc,
		accounts:    make(map[string]*account),
		rooms:       make(map[string][]hostelapi.Room),
		bookings:    make(map[string]*hostelapi.Booking),
		payments:    make(map[string][]hostelapi.Payment),
		failHostels: make(map[string]bool),
		calls:       make(map[string]int),
		now:         time.Now,
	}
}

// Handler returns the HTTP API. Mount it at the client base URL.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(b.count)

	r.Post("/auth/login", b.login)

	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)

		r.Get("/hostels/fetch", b.listHostels)
		r.Get("/hostels/{id}", b.getHostel)
		r.Get("/rooms/hostel/{id}", b.listRooms)

		r.Get("/bookings/my", b.listMyBookings)
		r.Get("/bookings/hostel/{id}", b.listHostelBookings)
		r.Get("/bookings/{id}", b.getBooking)
		r.Post("/bookings/{id}/confirm", b.confirm)
		r.Post("/bookings/{id}/cancel", b.cancel)
		r.Post("/bookings/{id}/check-in", b.checkIn)
		r.Post("/bookings/{id}/check-out", b.checkOut)
		r.Post("/bookings/{id}/payments", b.recordPayment)

		r.Get("/reviews/hostel/{id}", b.listReviews)
		r.Post("/reviews", b.createReview)

		r.Post("/feedback", b.createFeedback)
		r.Get("/feedback", b.listFeedback)
		r.Get("/users", b.listUsers)
	})

	return r
}

// Seeding

func (b *Backend) AddUser(u hostelapi.User, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[strings.ToLower(u.Email)] = &account{user: u, password: password}
}

func (b *Backend) AddHostel(h hostelapi.Hostel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hostels = append(b.hostels, h)
}

func (b *Backend) AddRoom(room hostelapi.Room) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms[room.HostelID] = append(b.rooms[room.HostelID], room)
}

// AddBooking stores a copy of bk, replacing any booking with the same id.
func (b *Backend) AddBooking(bk hostelapi.Booking) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bookings[bk.ID]; !ok {
		b.order = append(b.order, bk.ID)
	}
	cp := bk
	b.bookings[bk.ID] = &cp
}

// Booking returns the stored booking.
func (b *Backend) Booking(id string) (hostelapi.Booking, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bk, ok := b.bookings[id]
	if !ok {
		return hostelapi.Booking{}, false
	}
	return *bk, true
}

// FailHostel makes the per-hostel booking and room listings answer 503.
func (b *Backend) FailHostel(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failHostels[id] = true
}

// Calls returns how many requests hit method and path, e.g. Calls("POST", "/bookings/b-1/payments").
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

// Mutations counts every POST except login.
func (b *Backend) Mutations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for k, v := range b.calls {
		if strings.HasPrefix(k, http.MethodPost+" ") && k != "POST /auth/login" {
			n += v
		}
	}
	return n
}

// SetNow overrides the clock used for check-in/out timestamps.
func (b *Backend) SetNow(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// Middleware

type claimsKey struct{}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.jwt == nil {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			writeError(w, http.StatusUnauthorized, hostelapi.KindInvalidToken, "Missing bearer token")
			return
		}
		claims, err := b.jwt.ValidateAccessToken(token)
		if err == jwt.ErrExpiredToken {
			writeError(w, http.StatusUnauthorized, hostelapi.KindTokenExpired, "Token expired")
			return
		}
		if err != nil {
			writeError(w, http.StatusUnauthorized, hostelapi.KindInvalidToken, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r, claims)))
	})
}

// Auth

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req hostelapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, hostelapi.KindValidation, "Invalid JSON body")
		return
	}
	if b.jwt == nil {
		writeError(w, http.StatusServiceUnavailable, hostelapi.KindUnavailable, "Login disabled")
		return
	}

	b.mu.Lock()
	acc, ok := b.accounts[strings.ToLower(req.Email)]
	b.mu.Unlock()

	if !ok || acc.password != req.Password {
		writeError(w, http.StatusUnauthorized, hostelapi.KindInvalidCredentials, "Invalid email or password")
		return
	}
	if !acc.user.EmailVerified {
		writeError(w, http.StatusForbidden, hostelapi.KindEmailUnverified, "Please verify your email before logging in")
		return
	}

	token, err := b.jwt.GenerateAccessToken(acc.user.ID, acc.user.Role, acc.user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, hostelapi.KindUnknown, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, hostelapi.LoginResponse{
		AccessToken:  token,
		RefreshToken: uuid.NewString(),
		User:         hostelapi.UserRef{ID: acc.user.ID, Name: acc.user.Name, Email: acc.user.Email},
		Role:         acc.user.Role,
	})
}

// Catalog

func (b *Backend) listHostels(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := append([]hostelapi.Hostel{}, b.hostels...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getHostel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.hostels {
		if h.ID == id {
			writeJSON(w, http.StatusOK, h)
			return
		}
	}
	writeError(w, http.StatusNotFound, hostelapi.KindNotFound, "Hostel not found")
}

func (b *Backend) listRooms(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	failing := b.failHostels[id]
	out := append([]hostelapi.Room{}, b.rooms[id]...)
	b.mu.Unlock()

	if failing {
		writeError(w, http.StatusServiceUnavailable, hostelapi.KindUnavailable, "Rooms temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Bookings

func (b *Backend) listHostelBookings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := strings.ToUpper(r.URL.Query().Get("status"))

	b.mu.Lock()
	if b.failHostels[id] {
		b.mu.Unlock()
		writeError(w, http.StatusServiceUnavailable, hostelapi.KindUnavailable, "Bookings temporarily unavailable")
		return
	}
	out := b.filterBookings(func(bk *hostelapi.Booking) bool {
		return bk.Hostel != nil && bk.Hostel.ID == id && (status == "" || bk.Status == status)
	})
	b.mu.Unlock()

	writePage(w, r, out)
}

func (b *Backend) listMyBookings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, hostelapi.KindInvalidToken, "Missing bearer token")
		return
	}

	b.mu.Lock()
	out := b.filterBookings(func(bk *hostelapi.Booking) bool {
		return bk.Student != nil && bk.Student.ID == claims.UserID
	})
	b.mu.Unlock()

	writePage(w, r, out)
}

// filterBookings must be called with b.mu held.
func (b *Backend) filterBookings(keep func(*hostelapi.Booking) bool) []hostelapi.Booking {
	out := []hostelapi.Booking{}
	for _, id := range b.order {
		if bk := b.bookings[id]; keep(bk) {
			out = append(out, *bk)
		}
	}
	return out
}

func (b *Backend) getBooking(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	bk, ok := b.bookings[chi.URLParam(r, "id")]
	var cp hostelapi.Booking
	if ok {
		cp = *bk
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, hostelapi.KindNotFound, "Booking not found")
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

// transition applies fn to the booking under lock. fn returns an HTTP status
// and message when the transition is refused.
func (b *Backend) transition(w http.ResponseWriter, r *http.Request, body any, fn func(bk *hostelapi.Booking, now time.Time) (int, hostelapi.Kind, string)) {
	if body != nil {
		if err := json.NewDecoder(r.Body).Decode(body); err != nil {
			writeError(w, http.StatusBadRequest, hostelapi.KindValidation, "Invalid JSON body")
			return
		}
	}

	b.mu.Lock()
	bk, ok := b.bookings[chi.URLParam(r, "id")]
	if !ok {
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, hostelapi.KindNotFound, "Booking not found")
		return
	}
	status, kind, msg := fn(bk, b.now())
	cp := *bk
	b.mu.Unlock()

	if status != 0 {
		writeError(w, status, kind, msg)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func conflict(bk *hostelapi.Booking, action string) (int, hostelapi.Kind, string) {
	return http.StatusConflict, hostelapi.KindConflict, "Cannot " + action + " a booking with status " + bk.Status
}

func (b *Backend) confirm(w http.ResponseWriter, r *http.Request) {
	var req hostelapi.ConfirmRequest
	b.transition(w, r, &req, func(bk *hostelapi.Booking, _ time.Time) (int, hostelapi.Kind, string) {
		if bk.Status != "PENDING" {
			return conflict(bk, "confirm")
		}
		bk.Status = "CONFIRMED"
		if req.Notes != "" {
			bk.Notes = req.Notes
		}
		return 0, "", ""
	})
}

func (b *Backend) cancel(w http.ResponseWriter, r *http.Request) {
	var req hostelapi.CancelRequest
	b.transition(w, r, &req, func(bk *hostelapi.Booking, _ time.Time) (int, hostelapi.Kind, string) {
		if bk.Status != "PENDING" && bk.Status != "CONFIRMED" {
			return conflict(bk, "cancel")
		}
		bk.Status = "CANCELLED"
		if req.Reason != "" {
			bk.Notes = req.Reason
		}
		return 0, "", ""
	})
}

func (b *Backend) checkIn(w http.ResponseWriter, r *http.Request) {
	var req hostelapi.CheckInRequest
	b.transition(w, r, &req, func(bk *hostelapi.Booking, now time.Time) (int, hostelapi.Kind, string) {
		if bk.Status != "CONFIRMED" {
			return conflict(bk, "check in")
		}
		if bk.PaymentStatus != "PAID" {
			return http.StatusConflict, hostelapi.KindConflict, "Booking must be fully paid before check-in"
		}
		at := req.ActualCheckInTime
		if at.IsZero() {
			at = now
		}
		bk.Status = "CHECKED_IN"
		bk.CheckedInAt = &at
		return 0, "", ""
	})
}

func (b *Backend) checkOut(w http.ResponseWriter, r *http.Request) {
	var req hostelapi.CheckOutRequest
	b.transition(w, r, &req, func(bk *hostelapi.Booking, now time.Time) (int, hostelapi.Kind, string) {
		if bk.Status != "CHECKED_IN" {
			return conflict(bk, "check out")
		}
		at := req.ActualCheckOutTime
		if at.IsZero() {
			at = now
		}
		bk.Status = "CHECKED_OUT"
		bk.CheckedOutAt = &at
		return 0, "", ""
	})
}

func (b *Backend) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req hostelapi.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, hostelapi.KindValidation, "Invalid JSON body")
		return
	}

	b.mu.Lock()
	bk, ok := b.bookings[chi.URLParam(r, "id")]
	if !ok {
		b.mu.Unlock()
		writeError(w, http.StatusNotFound, hostelapi.KindNotFound, "Booking not found")
		return
	}
	if bk.PaymentStatus != "PENDING" && bk.PaymentStatus != "PARTIAL" {
		b.mu.Unlock()
		writeError(w, http.StatusConflict, hostelapi.KindConflict, "Booking payment status is "+bk.PaymentStatus)
		return
	}
	if !req.Amount.IsPositive() || req.Amount.GreaterThan(bk.AmountDue) {
		b.mu.Unlock()
		writeError(w, http.StatusUnprocessableEntity, hostelapi.KindValidation, "Amount must be between 0 and "+bk.AmountDue.StringFixed(2))
		return
	}

	bk.AmountPaid = bk.AmountPaid.Add(req.Amount)
	bk.AmountDue = decimal.Max(bk.TotalAmount.Sub(bk.AmountPaid), decimal.Zero)
	if bk.AmountDue.IsZero() {
		bk.PaymentStatus = "PAID"
	} else {
		bk.PaymentStatus = "PARTIAL"
	}
	p := hostelapi.Payment{
		ID:             uuid.NewString(),
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		TransactionRef: req.TransactionRef,
		Notes:          req.Notes,
		PaidAt:         b.now().UTC(),
	}
	b.payments[bk.ID] = append(b.payments[bk.ID], p)
	res := hostelapi.PaymentResult{Booking: *bk, Payment: &p}
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, res)
}

// Reviews, feedback, users

func (b *Backend) listReviews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	out := []hostelapi.Review{}
	for _, rv := range b.reviews {
		if rv.HostelID == id {
			out = append(out, rv)
		}
	}
	b.mu.Unlock()
	writePage(w, r, out)
}

func (b *Backend) createReview(w http.ResponseWriter, r *http.Request) {
	var req hostelapi.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, hostelapi.KindValidation, "Invalid JSON body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusUnprocessableEntity, hostelapi.KindValidation, "Rating must be between 1 and 5")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bk, ok := b.bookings[req.BookingID]
	if !ok {
		writeError(w, http.StatusNotFound, hostelapi.KindNotFound, "Booking not found")
		return
	}
	if bk.Status != "CHECKED_OUT" {
		writeError(w, http.StatusConflict, hostelapi.KindConflict, "Only checked-out bookings can be reviewed")
		return
	}
	if bk.HasReview {
		writeError(w, http.StatusConflict, hostelapi.KindConflict, "Booking already reviewed")
		return
	}
	bk.HasReview = true

	now := b.now().UTC()
	rv := hostelapi.Review{
		ID:        uuid.NewString(),
		BookingID: req.BookingID,
		HostelID:  req.HostelID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Student:   bk.Student,
		CreatedAt: &now,
	}
	if rv.HostelID == "" && bk.Hostel != nil {
		rv.HostelID = bk.Hostel.ID
	}
	b.reviews = append(b.reviews, rv)
	writeJSON(w, http.StatusCreated, rv)
}

func (b *Backend) createFeedback(w http.ResponseWriter, r *http.Request) {
	var req hostelapi.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, hostelapi.KindValidation, "Invalid JSON body")
		return
	}

	now := b.now().UTC()
	f := hostelapi.Feedback{
		ID:        uuid.NewString(),
		Subject:   req.Subject,
		Message:   req.Message,
		Category:  req.Category,
		CreatedAt: &now,
	}
	if claims := claimsFrom(r); claims != nil {
		f.User = &hostelapi.UserRef{ID: claims.UserID, Email: claims.Email}
	}

	b.mu.Lock()
	b.feedback = append(b.feedback, f)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, f)
}

func (b *Backend) listFeedback(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := append([]hostelapi.Feedback{}, b.feedback...)
	b.mu.Unlock()
	writePage(w, r, out)
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	role := strings.ToUpper(r.URL.Query().Get("role"))

	b.mu.Lock()
	out := []hostelapi.User{}
	for _, acc := range b.accounts {
		if role == "" || acc.user.Role == role {
			out = append(out, acc.user)
		}
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	writePage(w, r, out)
}

// Helpers

func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, hostelapi.Page[T]{
		Data: items[start:end],
		Pagination: hostelapi.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind hostelapi.Kind, message string) {
	writeJSON(w, status, map[string]string{"kind": string(kind), "message": message})
}
