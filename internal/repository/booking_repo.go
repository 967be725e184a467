package repository

import (
	"context"
	"time"

	"tourbooking/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// bookingModel carries the (tour_id, user_id) unique index that makes the
// storage layer the authority on booking de-duplication.
type bookingModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	TourID    string    `gorm:"column:tour_id;type:varchar(64);not null;uniqueIndex:idx_bookings_tour_user,priority:1"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_bookings_tour_user,priority:2;index"`
	Price     float64   `gorm:"column:price;not null"`
	Paid      bool      `gorm:"column:paid;default:true"`
	SessionID *string   `gorm:"column:session_id;type:varchar(255)"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var sessionID string
	if m.SessionID != nil {
		sessionID = *m.SessionID
	}

	return &domain.Booking{
		ID:        m.ID,
		TourID:    m.TourID,
		UserID:    m.UserID,
		Price:     m.Price,
		Paid:      m.Paid,
		SessionID: sessionID,
		CreatedAt: m.CreatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var sessionID *string
	if b.SessionID != "" {
		v := b.SessionID
		sessionID = &v
	}

	return bookingModel{
		ID:        b.ID,
		TourID:    b.TourID,
		UserID:    b.UserID,
		Price:     b.Price,
		Paid:      b.Paid,
		SessionID: sessionID,
		CreatedAt: b.CreatedAt,
	}
}

// Create inserts the booking. A second booking for the same tour and user
// fails with domain.ErrDuplicateBooking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return domain.ErrDuplicateBooking
		}
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) FindByTourAndUser(ctx context.Context, tourID string, userID int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).
		Where("tour_id = ? AND user_id = ?", tourID, userID).
		First(&m)
	if tx.Error != nil {
		return nil, notFound(tx.Error)
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) CountByTourAndUser(ctx context.Context, tourID string, userID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("tour_id = ? AND user_id = ?", tourID, userID).
		Count(&cnt).Error
	return cnt, err
}

// ListByUser returns the user's bookings newest first, each with its tour
// attached when the tour still exists. limit <= 0 means no limit.
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []bookingModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.Booking{}, nil
	}

	tourIDs := make([]string, 0, len(rows))
	for _, m := range rows {
		tourIDs = append(tourIDs, m.TourID)
	}
	var tours []tourModel
	if err := r.db.WithContext(ctx).Where("id IN ?", tourIDs).Find(&tours).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Tour, len(tours))
	for _, t := range tours {
		byID[t.ID] = toDomainTour(t)
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		b := toDomainBooking(m)
		b.Tour = byID[m.TourID]
		out = append(out, *b)
	}
	return out, nil
}
