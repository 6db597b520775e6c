package dashboard

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/hostelhub/hostelhub-api/internal/domain/booking"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
)

const (
	pageSize = 100
	// maxPages bounds the bookings fetched per hostel.
	maxPages = 50
)

// Backend is what the dashboard reads from the hostel backend.
type Backend interface {
	ListHostels(ctx context.Context) ([]hostelapi.Hostel, error)
	ListHostelBookings(ctx context.Context, hostelID string, opts hostelapi.ListOptions) (*hostelapi.Page[hostelapi.Booking], error)
	ListHostelRooms(ctx context.Context, hostelID string) ([]hostelapi.Room, error)
}

// Config tunes aggregation.
type Config struct {
	CacheTTL    time.Duration
	Concurrency int
	Location    *time.Location
}

// Service aggregates back-office statistics across hostels
type Service struct {
	api   Backend
	cache Cache
	cfg   Config
	now   func() time.Time
}

// NewService creates dashboard service. cache may be nil.
func NewService(api Backend, cache Cache, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{api: api, cache: cache, cfg: cfg, now: time.Now}
}

func cacheKey(userID string) string {
	return "dashboard:summary:" + userID
}

// Summary returns the dashboard for userID, from cache unless refresh is set.
func (s *Service) Summary(ctx context.Context, userID string, refresh bool) (*Summary, error) {
	log := logger.FromContext(ctx)

	if s.cache != nil && !refresh {
		if raw, ok := s.cache.Get(ctx, cacheKey(userID)); ok {
			var cached Summary
			if err := json.Unmarshal(raw, &cached); err == nil {
				cached.Cached = true
				return &cached, nil
			}
			log.Warn().Str("user_id", userID).Msg("Discarding unreadable dashboard cache entry")
		}
	}

	summary, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	// Partial results are not cached so the next request retries failed hostels.
	if s.cache != nil && !summary.Incomplete {
		if raw, err := json.Marshal(summary); err == nil {
			s.cache.Set(ctx, cacheKey(userID), raw, s.cfg.CacheTTL)
		}
	}
	return summary, nil
}

type hostelResult struct {
	hostel   hostelapi.Hostel
	bookings []booking.Booking
	rooms    []hostelapi.Room
	// truncated is set when bookings stopped at maxPages.
	truncated bool
	err       error
}

func (s *Service) build(ctx context.Context) (*Summary, error) {
	hostels, err := s.api.ListHostels(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]hostelResult, len(hostels))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, h := range hostels {
		i, h := i, h
		g.Go(func() error {
			results[i] = s.loadHostel(ctx, h)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	today := s.now().In(s.cfg.Location)
	summary := newSummary(today)
	for _, res := range results {
		if res.err != nil {
			logger.FromContext(ctx).Warn().Err(res.err).Str("hostel_id", res.hostel.ID).Msg("Dashboard skipped hostel")
			summary.Incomplete = true
			summary.FailedHostels = append(summary.FailedHostels, res.hostel.ID)
			continue
		}
		if res.truncated {
			logger.FromContext(ctx).Warn().Str("hostel_id", res.hostel.ID).Int("bookings_read", len(res.bookings)).Msg("Dashboard stopped reading hostel bookings")
			summary.Incomplete = true
			summary.TruncatedHostels = append(summary.TruncatedHostels, res.hostel.ID)
		}
		summary.add(aggregate(res, today))
	}
	summary.finish()
	return summary, nil
}

func (s *Service) loadHostel(ctx context.Context, h hostelapi.Hostel) hostelResult {
	res := hostelResult{hostel: h}

	var wg sync.WaitGroup
	var roomsErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		res.rooms, roomsErr = s.api.ListHostelRooms(ctx, h.ID)
	}()

	res.bookings, res.truncated, res.err = s.allBookings(ctx, h.ID)
	wg.Wait()

	if res.err == nil {
		res.err = roomsErr
	}
	return res
}

// allBookings pages through a hostel's bookings. truncated reports that
// pages remained after maxPages.
func (s *Service) allBookings(ctx context.Context, hostelID string) ([]booking.Booking, bool, error) {
	var out []booking.Booking
	for page := 1; ; page++ {
		res, err := s.api.ListHostelBookings(ctx, hostelID, hostelapi.ListOptions{Page: page, Limit: pageSize})
		if err != nil {
			return nil, false, err
		}
		for i := range res.Data {
			out = append(out, booking.FromAPI(&res.Data[i]))
		}
		if page >= res.Pagination.TotalPages || len(res.Data) == 0 {
			return out, false, nil
		}
		if page == maxPages {
			return out, true, nil
		}
	}
}

func aggregate(res hostelResult, today time.Time) HostelSummary {
	hs := HostelSummary{
		HostelID:           res.hostel.ID,
		Name:               res.hostel.Name,
		BookingsByStatus:   map[string]int{},
		RevenueCollected:   decimal.Zero,
		RevenueOutstanding: decimal.Zero,
	}

	for _, b := range res.bookings {
		hs.TotalBookings++
		hs.BookingsByStatus[string(b.Status)]++
		hs.paymentStatuses = append(hs.paymentStatuses, string(b.PaymentStatus))
		hs.RevenueCollected = hs.RevenueCollected.Add(b.AmountPaid)

		switch b.Status {
		case booking.StatusCancelled, booking.StatusNoShow:
		default:
			hs.RevenueOutstanding = hs.RevenueOutstanding.Add(b.AmountDue)
		}

		switch b.Status {
		case booking.StatusPending:
			hs.PendingConfirmations++
		case booking.StatusConfirmed:
			if days, ok := booking.DaysSince(b.CheckInDate, today); ok && days == 0 {
				hs.ArrivalsToday++
			}
		case booking.StatusCheckedIn:
			if days, ok := booking.DaysSince(b.CheckOutDate, today); ok && days == 0 {
				hs.DeparturesToday++
			}
		}
	}

	for _, room := range res.rooms {
		hs.TotalRooms++
		if room.CurrentOccupancy > 0 || room.Status == "OCCUPIED" {
			hs.OccupiedRooms++
		}
	}
	hs.OccupancyRate = rate(hs.OccupiedRooms, hs.TotalRooms)
	return hs
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(int(float64(part)/float64(whole)*1000+0.5)) / 10
}

func sortHostels(hs []HostelSummary) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Name < hs[j].Name })
}
