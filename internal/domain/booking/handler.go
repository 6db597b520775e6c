package booking

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
	"github.com/hostelhub/hostelhub-api/internal/pkg/errorhandler"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
	"github.com/hostelhub/hostelhub-api/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(r *http.Request) Actor {
	return Actor{ID: middleware.GetUserID(r.Context()), Role: middleware.GetRole(r.Context())}
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, SnapshotResponseFrom(*snap))
}

// Actions handles GET /bookings/{id}/actions
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"gate":    snap.Gate,
		"actions": snap.Gate.Actions(),
	})
}

// ListByHostel handles GET /hostels/{id}/bookings?status=&page=&limit=
func (h *Handler) ListByHostel(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}

	rows, pagination, err := h.service.ListByHostel(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeList(w, rows, pagination)
}

// ListMine handles GET /bookings/me
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}

	rows, pagination, err := h.service.ListMine(r.Context(), opts)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeList(w, rows, pagination)
}

// Confirm handles POST /bookings/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !decode(w, r, &req, true) {
		return
	}
	res, err := h.service.Confirm(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.toInput())
	h.writeMutation(w, r, res, err)
}

// Cancel handles POST /bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if !decode(w, r, &req, false) {
		return
	}
	res, err := h.service.Cancel(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.toInput())
	h.writeMutation(w, r, res, err)
}

// CheckIn handles POST /bookings/{id}/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !decode(w, r, &req, true) {
		return
	}
	res, err := h.service.CheckIn(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.toInput())
	h.writeMutation(w, r, res, err)
}

// CheckOut handles POST /bookings/{id}/check-out
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req CheckOutRequest
	if !decode(w, r, &req, true) {
		return
	}
	res, err := h.service.CheckOut(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.toInput())
	h.writeMutation(w, r, res, err)
}

// RecordPayment handles POST /bookings/{id}/payments
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !decode(w, r, &req, false) {
		return
	}
	res, err := h.service.RecordPayment(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.toInput())
	h.writeMutation(w, r, res, err)
}

// WriteReview handles POST /bookings/{id}/review
func (h *Handler) WriteReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !decode(w, r, &req, false) {
		return
	}
	res, err := h.service.WriteReview(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.toInput())
	h.writeMutation(w, r, res, err)
}

func (h *Handler) writeMutation(w http.ResponseWriter, r *http.Request, res *MutationResult, err error) {
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, MutationResponseFrom(res))
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var notAllowed *NotAllowedError
	var invalid *ValidationError

	switch {
	case errors.As(err, &notAllowed):
		response.ErrorWithDetails(w, http.StatusConflict, "ACTION_NOT_ALLOWED", "This action is not available for the booking's current state", map[string]string{
			"action":         string(notAllowed.Action),
			"status":         string(notAllowed.Status),
			"payment_status": string(notAllowed.PaymentStatus),
		})
	case errors.Is(err, ErrMutationInProgress):
		response.Error(w, http.StatusConflict, "MUTATION_IN_PROGRESS", "Another action on this booking is in progress")
	case errors.As(err, &invalid):
		errorhandler.LogValidationError(r.Context(), invalid.Fields)
		response.ValidationError(w, invalid.Fields)
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, "Booking belongs to another student")
	default:
		errorhandler.HandleUpstreamError(r.Context(), w, err)
	}
}

// decode reads and validates the JSON body. An empty body is accepted when
// every field is optional.
func decode(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) bool {
	if err := response.DecodeJSON(r.Body, v); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			response.BadRequest(w, "Invalid JSON body")
			return false
		}
	}
	if errs := validator.Validate(v); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return false
	}
	return true
}

func listOptions(w http.ResponseWriter, r *http.Request) (hostelapi.ListOptions, bool) {
	page, limit := response.PageParams(r, 20, 100)
	status := r.URL.Query().Get("status")
	if status != "" {
		st, err := ParseStatus(status)
		if err != nil {
			response.ValidationError(w, map[string]string{"status": "Invalid booking status"})
			return hostelapi.ListOptions{}, false
		}
		status = string(st)
	}
	return hostelapi.ListOptions{Status: status, Page: page, Limit: limit}, true
}

func writeList(w http.ResponseWriter, rows []Snapshot, p hostelapi.Pagination) {
	items := make([]SnapshotResponse, 0, len(rows))
	for _, s := range rows {
		items = append(items, SnapshotResponseFrom(s))
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(p.Total))
	response.WithMeta(w, items, response.NewMeta(p.Total, p.Page, p.Limit))
}
