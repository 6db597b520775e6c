// Command devbackend serves an in-memory hostel backend with sample data,
// for running the API locally without the real service.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/config"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi/hostelapitest"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: "development"})

	backend := hostelapitest.New(jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL))
	seed(backend, time.Now().In(cfg.Location()))

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", backend.Handler()))

	log.Info().Str("addr", *addr).Msg("Dev hostel backend listening")
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal().Err(err).Msg("Dev backend stopped")
	}
}

// Every seeded account uses the password "password".
func seed(b *hostelapitest.Backend, now time.Time) {
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format("2006-01-02") }

	b.AddUser(hostelapi.User{ID: "u-root", Name: "Root", Email: "root@hostelhub.local", Role: jwt.RoleSuperAdmin, EmailVerified: true, IsActive: true}, "password")
	b.AddUser(hostelapi.User{ID: "u-warden", Name: "Warden", Email: "warden@hostelhub.local", Role: jwt.RoleAdmin, EmailVerified: true, IsActive: true}, "password")
	b.AddUser(hostelapi.User{ID: "u-new", Name: "Unverified", Email: "new@hostelhub.local", Role: jwt.RoleStudent, IsActive: true}, "password")

	hostels := []hostelapi.Hostel{
		{ID: "h-sunrise", Name: "Sunrise", City: "Almaty", Address: "12 Abay Ave", TotalRooms: 4, IsActive: true},
		{ID: "h-harbor", Name: "Harbor", City: "Aktau", Address: "3 Seaside St", TotalRooms: 4, IsActive: true},
	}
	for _, h := range hostels {
		b.AddHostel(h)
		for i := 1; i <= 4; i++ {
			b.AddRoom(hostelapi.Room{
				ID:            fmt.Sprintf("%s-r%d", h.ID, i),
				HostelID:      h.ID,
				RoomNumber:    fmt.Sprintf("%d0%d", i, i),
				RoomType:      "DOUBLE",
				Capacity:      2,
				PricePerNight: decimal.NewFromInt(100),
				Status:        "AVAILABLE",
			})
		}
	}

	type row struct {
		status, payment string
		paid            int64
		in, out         int
	}
	rows := []row{
		{"PENDING", "PENDING", 0, 2, 7},
		{"CONFIRMED", "PARTIAL", 300, 0, 5},
		{"CONFIRMED", "PAID", 700, -3, 4},
		{"CHECKED_IN", "PAID", 700, -6, 0},
		{"CHECKED_OUT", "PAID", 700, -10, -3},
		{"CANCELLED", "REFUNDED", 0, 4, 9},
	}

	n := 0
	for _, h := range hostels {
		for i, r := range rows {
			n++
			student := fmt.Sprintf("u-student-%d", n)
			b.AddUser(hostelapi.User{ID: student, Name: fmt.Sprintf("Student %d", n), Email: fmt.Sprintf("student%d@hostelhub.local", n), Role: jwt.RoleStudent, EmailVerified: true, IsActive: true}, "password")

			total := decimal.NewFromInt(700)
			paid := decimal.NewFromInt(r.paid)
			room := fmt.Sprintf("%s-r%d", h.ID, i%4+1)
			b.AddBooking(hostelapi.Booking{
				ID:            fmt.Sprintf("b-%d", n),
				Status:        r.status,
				PaymentStatus: r.payment,
				TotalAmount:   total,
				AmountPaid:    paid,
				AmountDue:     total.Sub(paid),
				CheckInDate:   day(r.in),
				CheckOutDate:  day(r.out),
				Hostel:        &hostelapi.HostelRef{ID: h.ID, Name: h.Name},
				Room:          &hostelapi.RoomRef{ID: room, RoomNumber: room},
				Student:       &hostelapi.UserRef{ID: student, Name: fmt.Sprintf("Student %d", n)},
			})
		}
	}
}
