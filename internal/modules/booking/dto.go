package booking

import "time"

type TourSummary struct {
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	ImageCover string  `json:"image_cover,omitempty"`
	Duration   int     `json:"duration,omitempty"`
	Price      float64 `json:"price"`
	Summary    string  `json:"summary,omitempty"`
}

type BookingDetails struct {
	ID        int64        `json:"id"`
	TourID    string       `json:"tour_id"`
	Price     float64      `json:"price"`
	Paid      bool         `json:"paid"`
	CreatedAt time.Time    `json:"created_at"`
	Tour      *TourSummary `json:"tour,omitempty"`
}

type BillingUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BillingResponse struct {
	User           BillingUser      `json:"user"`
	RecentBookings []BookingDetails `json:"recent_bookings"`
}
