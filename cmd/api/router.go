package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hostelhub/hostelhub-api/internal/domain/audit"
	"github.com/hostelhub/hostelhub-api/internal/domain/auth"
	"github.com/hostelhub/hostelhub-api/internal/domain/booking"
	"github.com/hostelhub/hostelhub-api/internal/domain/catalog"
	"github.com/hostelhub/hostelhub-api/internal/domain/dashboard"
	"github.com/hostelhub/hostelhub-api/internal/domain/feedback"
	"github.com/hostelhub/hostelhub-api/internal/domain/realtime"
	"github.com/hostelhub/hostelhub-api/internal/domain/users"
	"github.com/hostelhub/hostelhub-api/internal/middleware"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
	pkgresponse "github.com/hostelhub/hostelhub-api/internal/pkg/response"
)

// deps holds everything the router needs. Optional fields may be nil.
type deps struct {
	API            *hostelapi.Client
	JWT            *jwt.Service
	Bookings       *booking.Service
	Dashboard      *dashboard.Service
	Audit          *audit.Service
	Hub            *realtime.Hub
	AllowedOrigins []string

	// FilesDir is served under FilesPrefix when receipts are stored locally.
	FilesDir    string
	FilesPrefix string
}

func newRouter(d deps) http.Handler {
	authMiddleware := middleware.Auth(d.JWT)

	authHandler := auth.NewHandler(auth.NewService(d.API, d.JWT))
	bookingHandler := booking.NewHandler(d.Bookings)
	auditHandler := audit.NewHandler(d.Audit)
	catalogHandler := catalog.NewHandler(d.API)
	dashboardHandler := dashboard.NewHandler(d.Dashboard)
	feedbackHandler := feedback.NewHandler(d.API)
	usersHandler := users.NewHandler(d.API)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(d.AllowedOrigins))

	if d.Hub != nil {
		wsHandler := realtime.NewHandler(d.Hub, d.JWT, d.API, d.AllowedOrigins)
		r.Get("/ws", wsHandler.ServeWS)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	if d.FilesDir != "" {
		prefix := "/" + strings.Trim(d.FilesPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(d.FilesDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/bookings", bookingHandler.Routes(authMiddleware, auditHandler.History))
		r.Mount("/hostels", catalogHandler.Routes(authMiddleware, bookingHandler.ListByHostel))
		r.Mount("/dashboard", dashboard.Routes(dashboardHandler, authMiddleware))
		r.Mount("/feedback", feedbackHandler.Routes(authMiddleware))
		r.Mount("/users", usersHandler.Routes(authMiddleware))
	})

	return r
}
