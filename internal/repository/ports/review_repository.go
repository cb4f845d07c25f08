package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	List(ctx context.Context, filter domain.ReviewListFilter) ([]domain.Review, error)
	Update(ctx context.Context, id uuid.UUID, text *string, rating *int) (*domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// RefreshTourRatings recomputes and stores the tour's rating aggregate.
	RefreshTourRatings(ctx context.Context, tourID uuid.UUID) (*domain.ReviewAggregate, error)
}
