package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
	"github.com/hostelhub/hostelhub-api/internal/pkg/errorhandler"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
	"github.com/hostelhub/hostelhub-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login handles POST /auth/login. Backend error kinds such as
// EMAIL_UNVERIFIED and INVALID_CREDENTIALS are returned as error codes.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrUntrustedToken) {
			response.Error(w, http.StatusBadGateway, "UNTRUSTED_TOKEN", "Login succeeded but the issued token could not be verified")
			return
		}
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}

	response.OK(w, result)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "unauthorized")
		return
	}
	response.OK(w, Me(claims))
}

// Routes mounts /login publicly and /me behind authMiddleware.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.With(authMiddleware).Get("/me", h.Me)
	return r
}
