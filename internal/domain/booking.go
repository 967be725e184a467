package domain

import "time"

// Booking is unique per (TourID, UserID).
type Booking struct {
	ID        int64     `json:"id"`
	TourID    string    `json:"tour_id"`
	UserID    int64     `json:"user_id"`
	Price     float64   `json:"price"`
	Paid      bool      `json:"paid"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Tour *Tour `json:"tour,omitempty"`
}
