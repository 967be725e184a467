package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tourbooking/internal/domain"
)

type TourRepository struct {
	db *gorm.DB
}

func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{db: db}
}

type tourModel struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Name       string    `gorm:"column:name;not null"`
	Slug       string    `gorm:"column:slug;uniqueIndex;not null"`
	Summary    string    `gorm:"column:summary;type:text"`
	ImageCover string    `gorm:"column:image_cover"`
	Duration   int       `gorm:"column:duration"`
	Price      float64   `gorm:"column:price"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (tourModel) TableName() string { return "tours" }

func toDomainTour(m tourModel) *domain.Tour {
	return &domain.Tour{
		ID:         m.ID,
		Name:       m.Name,
		Slug:       m.Slug,
		Summary:    m.Summary,
		ImageCover: m.ImageCover,
		Duration:   m.Duration,
		Price:      m.Price,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func (r *TourRepository) Create(ctx context.Context, t *domain.Tour) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m := tourModel{
		ID:         t.ID,
		Name:       t.Name,
		Slug:       t.Slug,
		Summary:    t.Summary,
		ImageCover: t.ImageCover,
		Duration:   t.Duration,
		Price:      t.Price,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*t = *toDomainTour(m)
	return nil
}

func (r *TourRepository) GetByID(ctx context.Context, id string) (*domain.Tour, error) {
	var m tourModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainTour(m), nil
}

func (r *TourRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	var m tourModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainTour(m), nil
}

func (r *TourRepository) List(ctx context.Context, limit, offset int) ([]domain.Tour, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	q := r.db.WithContext(ctx).Model(&tourModel{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []tourModel
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Tour, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainTour(m))
	}
	return out, total, nil
}
