package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
	"github.com/hostelhub/hostelhub-api/internal/pkg/errorhandler"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
	"github.com/hostelhub/hostelhub-api/internal/pkg/validator"
)

type Backend interface {
	CreateFeedback(ctx context.Context, req hostelapi.FeedbackRequest) (*hostelapi.Feedback, error)
	ListFeedback(ctx context.Context, opts hostelapi.ListOptions) (*hostelapi.Page[hostelapi.Feedback], error)
}

// CreateRequest for POST /feedback
type CreateRequest struct {
	Subject  string `json:"subject" validate:"required,min=3,max=200"`
	Message  string `json:"message" validate:"required,min=10,max=5000"`
	Category string `json:"category" validate:"omitempty,oneof=BUG FEATURE COMPLAINT OTHER"`
}

type FeedbackResponse struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Category  string     `json:"category,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	UserEmail string     `json:"user_email,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func responseFrom(f hostelapi.Feedback) FeedbackResponse {
	resp := FeedbackResponse{
		ID:        f.ID,
		Subject:   f.Subject,
		Message:   f.Message,
		Category:  f.Category,
		CreatedAt: f.CreatedAt,
	}
	if f.User != nil {
		resp.UserID = f.User.ID
		resp.UserEmail = f.User.Email
	}
	return resp
}

type Handler struct {
	api Backend
}

func NewHandler(api Backend) *Handler {
	return &Handler{api: api}
}

// Create handles POST /feedback
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	req.Category = strings.ToUpper(strings.TrimSpace(req.Category))

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	f, err := h.api.CreateFeedback(r.Context(), hostelapi.FeedbackRequest{
		Subject:  req.Subject,
		Message:  req.Message,
		Category: req.Category,
	})
	if err != nil {
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}

	response.Created(w, responseFrom(*f))
}

// List handles GET /feedback
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r, 20, 100)

	res, err := h.api.ListFeedback(r.Context(), hostelapi.ListOptions{Page: page, Limit: limit})
	if err != nil {
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}

	items := make([]FeedbackResponse, 0, len(res.Data))
	for _, f := range res.Data {
		items = append(items, responseFrom(f))
	}
	response.WithMeta(w, items, response.NewMeta(res.Pagination.Total, page, limit))
}

// Routes returns the /feedback router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.With(middleware.RequireSuperAdmin()).Get("/", h.List)

	return r
}
