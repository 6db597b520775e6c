package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
)

type HostelResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Description string `json:"description,omitempty"`
	TotalRooms  int    `json:"total_rooms"`
	IsActive    bool   `json:"is_active"`
}

func HostelResponseFrom(h hostelapi.Hostel) HostelResponse {
	return HostelResponse{
		ID:          h.ID,
		Name:        h.Name,
		Address:     h.Address,
		City:        h.City,
		Description: h.Description,
		TotalRooms:  h.TotalRooms,
		IsActive:    h.IsActive,
	}
}

type RoomResponse struct {
	ID               string          `json:"id"`
	HostelID         string          `json:"hostel_id"`
	RoomNumber       string          `json:"room_number"`
	RoomType         string          `json:"room_type"`
	Capacity         int             `json:"capacity"`
	CurrentOccupancy int             `json:"current_occupancy"`
	Available        int             `json:"available"`
	PricePerNight    decimal.Decimal `json:"price_per_night"`
	Status           string          `json:"status"`
}

func RoomResponseFrom(r hostelapi.Room) RoomResponse {
	available := r.Capacity - r.CurrentOccupancy
	if available < 0 {
		available = 0
	}
	return RoomResponse{
		ID:               r.ID,
		HostelID:         r.HostelID,
		RoomNumber:       r.RoomNumber,
		RoomType:         r.RoomType,
		Capacity:         r.Capacity,
		CurrentOccupancy: r.CurrentOccupancy,
		Available:        available,
		PricePerNight:    r.PricePerNight,
		Status:           r.Status,
	}
}

type ReviewResponse struct {
	ID          string     `json:"id"`
	BookingID   string     `json:"booking_id"`
	Rating      int        `json:"rating"`
	Comment     string     `json:"comment,omitempty"`
	StudentName string     `json:"student_name,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func ReviewResponseFrom(r hostelapi.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		BookingID: r.BookingID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.Student != nil {
		resp.StudentName = r.Student.Name
	}
	return resp
}
