package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/middleware"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi/hostelapitest"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
)

var today = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string][]byte{}
	}
	c.data[key] = value
	c.sets++
}

// inflight wraps a Backend and records the peak number of concurrent hostel loads.
type inflight struct {
	Backend
	cur, peak int32
}

func (b *inflight) ListHostelBookings(ctx context.Context, id string, opts hostelapi.ListOptions) (*hostelapi.Page[hostelapi.Booking], error) {
	n := atomic.AddInt32(&b.cur, 1)
	defer atomic.AddInt32(&b.cur, -1)
	for {
		p := atomic.LoadInt32(&b.peak)
		if n <= p || atomic.CompareAndSwapInt32(&b.peak, p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return b.Backend.ListHostelBookings(ctx, id, opts)
}

// largeHostel reports more booking pages than a summary reads.
type largeHostel struct {
	totalPages int
	pagesRead  int32
}

func (b *largeHostel) ListHostels(context.Context) ([]hostelapi.Hostel, error) {
	return []hostelapi.Hostel{{ID: "h-big", Name: "Big"}, {ID: "h-small", Name: "Small"}}, nil
}

func (b *largeHostel) ListHostelRooms(context.Context, string) ([]hostelapi.Room, error) {
	return nil, nil
}

func (b *largeHostel) ListHostelBookings(_ context.Context, hostelID string, opts hostelapi.ListOptions) (*hostelapi.Page[hostelapi.Booking], error) {
	if hostelID == "h-small" {
		data := []hostelapi.Booking{{ID: "s-1", Status: "PENDING", PaymentStatus: "PENDING"}}
		return &hostelapi.Page[hostelapi.Booking]{Data: data, Pagination: hostelapi.Pagination{Page: 1, Limit: opts.Limit, Total: 1, TotalPages: 1}}, nil
	}

	atomic.AddInt32(&b.pagesRead, 1)
	data := make([]hostelapi.Booking, opts.Limit)
	for i := range data {
		data[i] = hostelapi.Booking{Status: "CONFIRMED", PaymentStatus: "PAID", AmountPaid: decimal.NewFromInt(1)}
	}
	return &hostelapi.Page[hostelapi.Booking]{
		Data:       data,
		Pagination: hostelapi.Pagination{Page: opts.Page, Limit: opts.Limit, Total: b.totalPages * opts.Limit, TotalPages: b.totalPages},
	}, nil
}

func seed(t *testing.T) (*hostelapitest.Backend, *hostelapi.Client, *jwt.Service, context.Context) {
	t.Helper()

	jwtSvc := jwt.NewService("test-secret", time.Hour)
	backend := hostelapitest.New(jwtSvc)
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	backend.AddHostel(hostelapi.Hostel{ID: "h-1", Name: "Alpha"})
	backend.AddHostel(hostelapi.Hostel{ID: "h-2", Name: "Beta"})
	backend.AddHostel(hostelapi.Hostel{ID: "h-3", Name: "Gamma"})

	backend.AddRoom(hostelapi.Room{ID: "r-1", HostelID: "h-1", CurrentOccupancy: 1})
	backend.AddRoom(hostelapi.Room{ID: "r-2", HostelID: "h-1"})
	backend.AddRoom(hostelapi.Room{ID: "r-3", HostelID: "h-2", Status: "OCCUPIED"})

	ref := func(id string) *hostelapi.HostelRef { return &hostelapi.HostelRef{ID: id} }
	backend.AddBooking(hostelapi.Booking{
		ID: "b-1", Hostel: ref("h-1"), Status: "PENDING", PaymentStatus: "PENDING",
		TotalAmount: decimal.NewFromInt(500), AmountDue: decimal.NewFromInt(500),
	})
	backend.AddBooking(hostelapi.Booking{
		ID: "b-2", Hostel: ref("h-1"), Status: "CONFIRMED", PaymentStatus: "PARTIAL", CheckInDate: "2026-03-10",
		TotalAmount: decimal.NewFromInt(1000), AmountPaid: decimal.NewFromInt(400), AmountDue: decimal.NewFromInt(600),
	})
	backend.AddBooking(hostelapi.Booking{
		ID: "b-3", Hostel: ref("h-2"), Status: "CHECKED_IN", PaymentStatus: "PAID", CheckOutDate: "2026-03-10",
		TotalAmount: decimal.NewFromInt(800), AmountPaid: decimal.NewFromInt(800),
	})
	backend.AddBooking(hostelapi.Booking{
		ID: "b-4", Hostel: ref("h-2"), Status: "CANCELLED", PaymentStatus: "PENDING",
		TotalAmount: decimal.NewFromInt(300), AmountDue: decimal.NewFromInt(300),
	})

	token, err := jwtSvc.GenerateAccessToken("admin-1", jwt.RoleAdmin, "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	client := hostelapi.NewClient(server.URL, 2*time.Second, "test")
	return backend, client, jwtSvc, hostelapi.WithToken(context.Background(), token)
}

func TestSummaryTotals(t *testing.T) {
	_, client, _, ctx := seed(t)
	svc := NewService(client, nil, Config{Concurrency: 2})
	svc.now = func() time.Time { return today }

	s, err := svc.Summary(ctx, "admin-1", false)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if s.Hostels != 3 || s.TotalBookings != 4 || s.Incomplete {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.BookingsByStatus["PENDING"] != 1 || s.BookingsByPaymentStatus["PENDING"] != 2 {
		t.Fatalf("unexpected breakdown: %v %v", s.BookingsByStatus, s.BookingsByPaymentStatus)
	}
	if !s.RevenueCollected.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected 1200 collected, got %s", s.RevenueCollected)
	}
	// Cancelled bookings do not count as outstanding.
	if !s.RevenueOutstanding.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("expected 1100 outstanding, got %s", s.RevenueOutstanding)
	}
	if s.TotalRooms != 3 || s.OccupiedRooms != 2 || s.OccupancyRate != 66.7 {
		t.Fatalf("unexpected rooms: total=%d occupied=%d rate=%v", s.TotalRooms, s.OccupiedRooms, s.OccupancyRate)
	}
	if s.ArrivalsToday != 1 || s.DeparturesToday != 1 || s.PendingConfirmations != 1 {
		t.Fatalf("unexpected daily counts: %+v", s)
	}
	if len(s.PerHostel) != 3 || s.PerHostel[0].Name != "Alpha" {
		t.Fatalf("unexpected per hostel rows: %+v", s.PerHostel)
	}
}

func TestSummaryToleratesFailingHostel(t *testing.T) {
	backend, client, _, ctx := seed(t)
	backend.FailHostel("h-2")
	cache := &memCache{}

	svc := NewService(client, cache, Config{Concurrency: 2, CacheTTL: time.Minute})
	svc.now = func() time.Time { return today }

	s, err := svc.Summary(ctx, "admin-1", false)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !s.Incomplete || len(s.FailedHostels) != 1 || s.FailedHostels[0] != "h-2" {
		t.Fatalf("expected h-2 to be reported as failed, got %+v", s.FailedHostels)
	}
	if s.Hostels != 2 || s.TotalBookings != 2 {
		t.Fatalf("expected remaining hostels to be counted, got %+v", s)
	}
	if cache.sets != 0 {
		t.Fatal("incomplete summaries must not be cached")
	}
}

func TestSummaryBoundedConcurrency(t *testing.T) {
	_, client, _, ctx := seed(t)
	api := &inflight{Backend: client}

	svc := NewService(api, nil, Config{Concurrency: 1})
	if _, err := svc.Summary(ctx, "admin-1", false); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if api.peak != 1 {
		t.Fatalf("expected at most 1 concurrent hostel load, got %d", api.peak)
	}
}

func TestSummaryCache(t *testing.T) {
	backend, client, _, ctx := seed(t)
	cache := &memCache{}
	svc := NewService(client, cache, Config{CacheTTL: time.Minute})

	first, err := svc.Summary(ctx, "admin-1", false)
	if err != nil || first.Cached {
		t.Fatalf("first summary: cached=%v err=%v", first != nil && first.Cached, err)
	}
	hostelCalls := backend.Calls("GET", "/hostels/fetch")

	second, err := svc.Summary(ctx, "admin-1", false)
	if err != nil || !second.Cached {
		t.Fatalf("expected cached summary, err=%v", err)
	}
	if !second.RevenueCollected.Equal(first.RevenueCollected) {
		t.Fatalf("cached totals differ: %s vs %s", second.RevenueCollected, first.RevenueCollected)
	}
	if backend.Calls("GET", "/hostels/fetch") != hostelCalls {
		t.Fatal("cached summary must not hit the backend")
	}

	third, err := svc.Summary(ctx, "admin-1", true)
	if err != nil || third.Cached {
		t.Fatalf("refresh must bypass the cache, err=%v", err)
	}
}

func TestSummaryHandler(t *testing.T) {
	_, client, jwtSvc, _ := seed(t)
	h := NewHandler(NewService(client, nil, Config{}))

	r := chi.NewRouter()
	r.Mount("/dashboard", Routes(h, middleware.Auth(jwtSvc)))

	for _, tc := range []struct {
		role string
		want int
	}{
		{jwt.RoleAdmin, http.StatusOK},
		{jwt.RoleStudent, http.StatusForbidden},
	} {
		token, _ := jwtSvc.GenerateAccessToken("u-1", tc.role, "")
		req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d: %s", tc.role, tc.want, w.Code, w.Body.String())
		}
		if tc.want == http.StatusOK {
			var body struct {
				Data Summary `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Data.Hostels != 3 {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		}
	}
}

func TestSummaryMarksTruncatedHostel(t *testing.T) {
	api := &largeHostel{totalPages: maxPages + 10}
	cache := &memCache{}
	svc := NewService(api, cache, Config{CacheTTL: time.Minute})
	svc.now = func() time.Time { return today }

	s, err := svc.Summary(context.Background(), "admin-1", false)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !s.Incomplete || len(s.TruncatedHostels) != 1 || s.TruncatedHostels[0] != "h-big" {
		t.Fatalf("expected h-big to be reported as truncated, got incomplete=%v truncated=%v", s.Incomplete, s.TruncatedHostels)
	}
	if len(s.FailedHostels) != 0 {
		t.Fatalf("expected no failed hostels, got %v", s.FailedHostels)
	}
	if int(api.pagesRead) != maxPages {
		t.Fatalf("expected %d pages read, got %d", maxPages, api.pagesRead)
	}
	if want := maxPages*pageSize + 1; s.TotalBookings != want || s.Hostels != 2 {
		t.Fatalf("expected %d bookings over 2 hostels, got %d over %d", want, s.TotalBookings, s.Hostels)
	}
	if cache.sets != 0 {
		t.Fatal("truncated summaries must not be cached")
	}
}

func TestSummaryWithinPageLimitIsComplete(t *testing.T) {
	api := &largeHostel{totalPages: maxPages}
	svc := NewService(api, nil, Config{})

	s, err := svc.Summary(context.Background(), "admin-1", false)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Incomplete || len(s.TruncatedHostels) != 0 {
		t.Fatalf("expected complete summary, got truncated=%v", s.TruncatedHostels)
	}
}
