package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/media"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/ports"
)

var ErrPasswordRoute = errors.New("this route is not for password updates. Please use /updateMyPassword")

const (
	defaultUserPageSize = 50
	maxUserPageSize     = 200
)

type UserServiceConfig struct {
	PhotoBucket string
	Processor   media.Processor
}

type UpdateMeInput struct {
	Name            *string
	Email           *string
	Password        *string
	PasswordConfirm *string
	Photo           *media.Upload
}

type AdminUserUpdate struct {
	Name     *string
	Email    *string
	Role     *string
	Password *string
}

type UserService struct {
	users     ports.UserRepository
	reviews   ports.ReviewRepository
	storage   ports.ObjectStorage
	bucket    string
	processor media.Processor
	now       func() time.Time
}

func NewUserService(users ports.UserRepository, reviews ports.ReviewRepository, storage ports.ObjectStorage, cfg UserServiceConfig) *UserService {
	return &UserService{
		users:     users,
		reviews:   reviews,
		storage:   storage,
		bucket:    strings.TrimSpace(cfg.PhotoBucket),
		processor: cfg.Processor,
		now:       time.Now,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateMe changes only name, email and photo of the caller's own account.
func (s *UserService) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateMeInput) (*domain.User, error) {
	if input.Password != nil || input.PasswordConfirm != nil {
		return nil, ErrPasswordRoute
	}
	update, err := profileUpdate(input.Name, input.Email)
	if err != nil {
		return nil, err
	}
	if input.Photo != nil {
		key := imageKey("users", "user-"+userID.String(), s.now(), "")
		url, err := storeImage(ctx, s.processor, s.storage, s.bucket, key, *input.Photo, media.UserPhoto)
		if err != nil {
			return nil, err
		}
		update.Photo = &url
	}
	return s.apply(ctx, userID, update)
}

func (s *UserService) DeleteMe(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	limit, offset = clampPage(limit, offset, defaultUserPageSize, maxUserPageSize)
	return s.users.List(ctx, limit, offset)
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input AdminUserUpdate) (*domain.User, error) {
	if input.Password != nil {
		return nil, ErrPasswordRoute
	}
	update, err := profileUpdate(input.Name, input.Email)
	if err != nil {
		return nil, err
	}
	if input.Role != nil {
		role, ok := domain.ParseRole(*input.Role)
		if !ok {
			return nil, fmt.Errorf("%w: role must be one of user, guide, lead-guide, admin", ErrValidation)
		}
		update.Role = &role
	}
	return s.apply(ctx, id, update)
}

// DeleteUser removes the account for good. Its reviews are deleted with it,
// so every tour it reviewed gets its rating aggregate recomputed.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	var tourIDs []uuid.UUID
	if s.reviews != nil {
		reviews, err := s.reviews.List(ctx, domain.ReviewListFilter{UserID: &id})
		if err != nil {
			return err
		}
		for _, r := range reviews {
			tourIDs = append(tourIDs, r.TourID)
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	for _, tourID := range tourIDs {
		if _, err := s.reviews.RefreshTourRatings(ctx, tourID); err != nil && !isNotFound(err) {
			return fmt.Errorf("refresh ratings for tour %s: %w", tourID, err)
		}
	}
	return nil
}

func (s *UserService) apply(ctx context.Context, id uuid.UUID, update domain.UserUpdate) (*domain.User, error) {
	if update.Name == nil && update.Email == nil && update.Photo == nil && update.Role == nil {
		return s.GetUser(ctx, id)
	}
	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}
	return user, nil
}

func profileUpdate(name, email *string) (domain.UserUpdate, error) {
	var (
		update   domain.UserUpdate
		problems []string
	)
	if name != nil {
		if trimmed := normalizeString(name); trimmed != nil {
			update.Name = trimmed
		} else {
			problems = append(problems, "name is required")
		}
	}
	if email != nil {
		normalized := normalizeEmail(*email)
		if validEmail(normalized) {
			update.Email = &normalized
		} else {
			problems = append(problems, "please provide a valid email")
		}
	}
	if len(problems) > 0 {
		return domain.UserUpdate{}, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return update, nil
}
