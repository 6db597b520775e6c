package hostelapi

import (
	"context"
	"net/http"
)

// Login exchanges credentials for backend tokens. No bearer token is required.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var res LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListHostels returns every hostel visible to the caller.
func (c *Client) ListHostels(ctx context.Context) ([]Hostel, error) {
	var hostels []Hostel
	if err := c.do(ctx, "list hostels", http.MethodGet, "/hostels/fetch", nil, nil, &hostels); err != nil {
		return nil, err
	}
	return hostels, nil
}

func (c *Client) GetHostel(ctx context.Context, id string) (*Hostel, error) {
	var h Hostel
	if err := c.do(ctx, "get hostel", http.MethodGet, "/hostels/"+escape(id), nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) ListHostelRooms(ctx context.Context, hostelID string) ([]Room, error) {
	var rooms []Room
	err := c.do(ctx, opName("list rooms of hostel %s", hostelID), http.MethodGet,
		"/rooms/hostel/"+escape(hostelID), nil, nil, &rooms)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) ListHostelReviews(ctx context.Context, hostelID string, opts ListOptions) (*Page[Review], error) {
	var page Page[Review]
	err := c.do(ctx, opName("list reviews of hostel %s", hostelID), http.MethodGet,
		"/reviews/hostel/"+escape(hostelID), opts.values(), nil, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateReview(ctx context.Context, req ReviewRequest) (*Review, error) {
	var r Review
	if err := c.do(ctx, "create review", http.MethodPost, "/reviews", nil, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) CreateFeedback(ctx context.Context, req FeedbackRequest) (*Feedback, error) {
	var f Feedback
	if err := c.do(ctx, "create feedback", http.MethodPost, "/feedback", nil, req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) ListFeedback(ctx context.Context, opts ListOptions) (*Page[Feedback], error) {
	var page Page[Feedback]
	if err := c.do(ctx, "list feedback", http.MethodGet, "/feedback", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*Page[User], error) {
	var page Page[User]
	if err := c.do(ctx, "list users", http.MethodGet, "/users", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
