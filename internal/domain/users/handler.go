package users

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
	"github.com/hostelhub/hostelhub-api/internal/pkg/errorhandler"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
	"github.com/hostelhub/hostelhub-api/internal/pkg/response"
)

type Backend interface {
	ListUsers(ctx context.Context, opts hostelapi.ListOptions) (*hostelapi.Page[hostelapi.User], error)
}

var roles = map[string]bool{
	jwt.RoleStudent:    true,
	jwt.RoleAdmin:      true,
	jwt.RoleSuperAdmin: true,
}

type UserResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

type Handler struct {
	api Backend
}

func NewHandler(api Backend) *Handler {
	return &Handler{api: api}
}

// List handles GET /users?role=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r, 20, 100)

	role := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("role")))
	if role != "" && !roles[role] {
		response.ValidationError(w, map[string]string{"role": "Invalid role. Must be: STUDENT, ADMIN, SUPER_ADMIN"})
		return
	}

	res, err := h.api.ListUsers(r.Context(), hostelapi.ListOptions{Role: role, Page: page, Limit: limit})
	if err != nil {
		errorhandler.HandleUpstreamError(r.Context(), w, err)
		return
	}

	items := make([]UserResponse, 0, len(res.Data))
	for _, u := range res.Data {
		items = append(items, UserResponse{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Role:          u.Role,
			EmailVerified: u.EmailVerified,
			IsActive:      u.IsActive,
			CreatedAt:     u.CreatedAt,
		})
	}
	response.WithMeta(w, items, response.NewMeta(res.Pagination.Total, page, limit))
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireSuperAdmin())

	r.Get("/", h.List)

	return r
}
