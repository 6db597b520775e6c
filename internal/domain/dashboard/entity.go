package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the back-office overview across every visible hostel.
type Summary struct {
	Hostels                 int             `json:"hostels"`
	TotalBookings           int             `json:"total_bookings"`
	BookingsByStatus        map[string]int  `json:"bookings_by_status"`
	BookingsByPaymentStatus map[string]int  `json:"bookings_by_payment_status"`
	RevenueCollected        decimal.Decimal `json:"revenue_collected"`
	RevenueOutstanding      decimal.Decimal `json:"revenue_outstanding"`
	TotalRooms              int             `json:"total_rooms"`
	OccupiedRooms           int             `json:"occupied_rooms"`
	OccupancyRate           float64         `json:"occupancy_rate"`
	ArrivalsToday           int             `json:"arrivals_today"`
	DeparturesToday         int             `json:"departures_today"`
	PendingConfirmations    int             `json:"pending_confirmations"`
	PerHostel               []HostelSummary `json:"per_hostel"`

	// Incomplete is set when some hostels could not be loaded, or when a
	// hostel had more bookings than one summary reads.
	Incomplete       bool     `json:"incomplete"`
	FailedHostels    []string `json:"failed_hostels"`
	TruncatedHostels []string `json:"truncated_hostels"`

	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}

// HostelSummary holds the totals of one hostel.
type HostelSummary struct {
	HostelID             string          `json:"hostel_id"`
	Name                 string          `json:"name"`
	TotalBookings        int             `json:"total_bookings"`
	BookingsByStatus     map[string]int  `json:"bookings_by_status"`
	RevenueCollected     decimal.Decimal `json:"revenue_collected"`
	RevenueOutstanding   decimal.Decimal `json:"revenue_outstanding"`
	TotalRooms           int             `json:"total_rooms"`
	OccupiedRooms        int             `json:"occupied_rooms"`
	OccupancyRate        float64         `json:"occupancy_rate"`
	ArrivalsToday        int             `json:"arrivals_today"`
	DeparturesToday      int             `json:"departures_today"`
	PendingConfirmations int             `json:"pending_confirmations"`

	paymentStatuses []string
}

func newSummary(today time.Time) *Summary {
	return &Summary{
		BookingsByStatus:        map[string]int{},
		BookingsByPaymentStatus: map[string]int{},
		RevenueCollected:        decimal.Zero,
		RevenueOutstanding:      decimal.Zero,
		PerHostel:               []HostelSummary{},
		FailedHostels:           []string{},
		TruncatedHostels:        []string{},
		Date:                    today.Format("2006-01-02"),
		GeneratedAt:             today.UTC(),
	}
}

func (s *Summary) add(hs HostelSummary) {
	s.Hostels++
	s.TotalBookings += hs.TotalBookings
	for status, n := range hs.BookingsByStatus {
		s.BookingsByStatus[status] += n
	}
	for _, ps := range hs.paymentStatuses {
		s.BookingsByPaymentStatus[ps]++
	}
	s.RevenueCollected = s.RevenueCollected.Add(hs.RevenueCollected)
	s.RevenueOutstanding = s.RevenueOutstanding.Add(hs.RevenueOutstanding)
	s.TotalRooms += hs.TotalRooms
	s.OccupiedRooms += hs.OccupiedRooms
	s.ArrivalsToday += hs.ArrivalsToday
	s.DeparturesToday += hs.DeparturesToday
	s.PendingConfirmations += hs.PendingConfirmations

	hs.paymentStatuses = nil
	s.PerHostel = append(s.PerHostel, hs)
}

func (s *Summary) finish() {
	s.OccupancyRate = rate(s.OccupiedRooms, s.TotalRooms)
	sortHostels(s.PerHostel)
}
