package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
)

// UserRepository reads only active accounts. Methods named *Credentials return
// the projection carrying the password hash and reset digest.
type UserRepository interface {
	Create(ctx context.Context, user domain.NewUser) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	FindCredentialsByID(ctx context.Context, id uuid.UUID) (*domain.UserCredentials, error)
	FindCredentialsByEmail(ctx context.Context, email string) (*domain.UserCredentials, error)
	FindCredentialsByResetToken(ctx context.Context, digest string, now time.Time) (*domain.UserCredentials, error)
	SetPasswordResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error
	ClearPasswordResetToken(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error
	Update(ctx context.Context, id uuid.UUID, update domain.UserUpdate) (*domain.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
