package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
)

type TourRepository interface {
	Create(ctx context.Context, tour *domain.Tour) (*domain.Tour, error)
	Update(ctx context.Context, tour *domain.Tour) (*domain.Tour, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Tour, error)
	List(ctx context.Context, filter domain.TourListFilter) ([]domain.Tour, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) ([]domain.TourStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error)
}
