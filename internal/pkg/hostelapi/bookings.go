package hostelapi

import (
	"context"
	"net/http"
)

// GetBooking fetches the current booking snapshot.
func (c *Client) GetBooking(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	if err := c.do(ctx, "get booking", http.MethodGet, "/bookings/"+escape(id), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListHostelBookings lists bookings of one hostel. Status filtering happens server-side.
func (c *Client) ListHostelBookings(ctx context.Context, hostelID string, opts ListOptions) (*Page[Booking], error) {
	var page Page[Booking]
	err := c.do(ctx, opName("list bookings of hostel %s", hostelID), http.MethodGet,
		"/bookings/hostel/"+escape(hostelID), opts.values(), nil, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListMyBookings lists the caller's own bookings.
func (c *Client) ListMyBookings(ctx context.Context, opts ListOptions) (*Page[Booking], error) {
	var page Page[Booking]
	if err := c.do(ctx, "list my bookings", http.MethodGet, "/bookings/my", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ConfirmBooking(ctx context.Context, id string, req ConfirmRequest) (*Booking, error) {
	return c.bookingAction(ctx, "confirm booking", id, "confirm", req)
}

func (c *Client) CancelBooking(ctx context.Context, id string, req CancelRequest) (*Booking, error) {
	return c.bookingAction(ctx, "cancel booking", id, "cancel", req)
}

func (c *Client) CheckIn(ctx context.Context, id string, req CheckInRequest) (*Booking, error) {
	return c.bookingAction(ctx, "check in", id, "check-in", req)
}

func (c *Client) CheckOut(ctx context.Context, id string, req CheckOutRequest) (*Booking, error) {
	return c.bookingAction(ctx, "check out", id, "check-out", req)
}

// RecordPayment posts a payment; the backend recomputes paid/due amounts and payment status.
func (c *Client) RecordPayment(ctx context.Context, id string, req PaymentRequest) (*PaymentResult, error) {
	var res PaymentResult
	if err := c.do(ctx, "record payment", http.MethodPost, "/bookings/"+escape(id)+"/payments", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) bookingAction(ctx context.Context, op, id, action string, body any) (*Booking, error) {
	var b Booking
	if err := c.do(ctx, op, http.MethodPost, "/bookings/"+escape(id)+"/"+action, nil, body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
