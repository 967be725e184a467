package booking

import (
	"context"

	"tourbooking/internal/domain"
)

const recentBookingsLimit = 5

// Service serves the read side of a user's bookings.
type Service struct {
	bookings bookingLister
	users    userReader
}

func NewService(bookings bookingLister, users userReader) *Service {
	return &Service{bookings: bookings, users: users}
}

func (s *Service) GetMyBookings(ctx context.Context, userID int64) ([]BookingDetails, error) {
	rows, err := s.bookings.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return toBookingDetails(rows), nil
}

// GetBilling returns the account together with its most recent bookings as
// transaction history.
func (s *Service) GetBilling(ctx context.Context, userID int64) (*BillingResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.bookings.ListByUser(ctx, userID, recentBookingsLimit)
	if err != nil {
		return nil, err
	}
	return &BillingResponse{
		User: BillingUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		RecentBookings: toBookingDetails(rows),
	}, nil
}

func toBookingDetails(rows []domain.Booking) []BookingDetails {
	out := make([]BookingDetails, 0, len(rows))
	for _, b := range rows {
		d := BookingDetails{
			ID:        b.ID,
			TourID:    b.TourID,
			Price:     b.Price,
			Paid:      b.Paid,
			CreatedAt: b.CreatedAt,
		}
		if b.Tour != nil {
			d.Tour = &TourSummary{
				Name:       b.Tour.Name,
				Slug:       b.Tour.Slug,
				ImageCover: b.Tour.ImageCover,
				Duration:   b.Tour.Duration,
				Price:      b.Tour.Price,
				Summary:    b.Tour.Summary,
			}
		}
		out = append(out, d)
	}
	return out
}
