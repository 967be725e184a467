package catalog

import (
	"context"
	"strings"

	"tourbooking/internal/domain"
)

type tourRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Tour, error)
	List(ctx context.Context, limit, offset int) ([]domain.Tour, int64, error)
}

type Service struct {
	tours tourRepository
}

func NewService(tours tourRepository) *Service {
	return &Service{tours: tours}
}

func (s *Service) ListTours(ctx context.Context, f TourFilters) ([]domain.Tour, int64, error) {
	return s.tours.List(ctx, f.Limit, f.Offset)
}

// GetTour returns domain.ErrNotFound for an unknown slug.
func (s *Service) GetTour(ctx context.Context, slug string) (*domain.Tour, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	return s.tours.GetBySlug(ctx, slug)
}
