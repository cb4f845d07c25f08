package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/ports"
)

var (
	ErrReviewAlreadyExist = errors.New("you have already reviewed this tour")
	ErrReviewForbidden    = errors.New("you can only change your own reviews")
)

const maxReviewPageSize = 100

type ReviewInput struct {
	TourID uuid.UUID
	Review string
	Rating int
}

type ReviewUpdate struct {
	Review *string
	Rating *int
}

type ReviewService struct {
	reviews ports.ReviewRepository
	tours   ports.TourRepository
}

func NewReviewService(reviews ports.ReviewRepository, tours ports.TourRepository) *ReviewService {
	return &ReviewService{reviews: reviews, tours: tours}
}

func (s *ReviewService) ListReviews(ctx context.Context, tourID *uuid.UUID, limit, offset int) ([]domain.Review, error) {
	limit, offset = clampPage(limit, offset, maxReviewPageSize, maxReviewPageSize)
	return s.reviews.List(ctx, domain.ReviewListFilter{TourID: tourID, Limit: limit, Offset: offset})
}

func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, input ReviewInput) (*domain.Review, *domain.ReviewAggregate, error) {
	text := strings.TrimSpace(input.Review)
	var problems []string
	if input.TourID == uuid.Nil {
		problems = append(problems, "review must belong to a tour")
	}
	if text == "" {
		problems = append(problems, "review can not be empty")
	}
	if err := validateRating(input.Rating); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	if _, err := s.tours.FindByID(ctx, input.TourID); err != nil {
		if isNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	review, err := s.reviews.Create(ctx, &domain.Review{Review: text, Rating: input.Rating, TourID: input.TourID, UserID: userID})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, ErrReviewAlreadyExist
		}
		return nil, nil, err
	}
	aggregate, err := s.reviews.RefreshTourRatings(ctx, review.TourID)
	if err != nil {
		return nil, nil, err
	}
	return review, aggregate, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, id uuid.UUID, requester *domain.User, input ReviewUpdate) (*domain.Review, error) {
	existing, err := s.authorize(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	text := normalizeString(input.Review)
	if input.Review != nil && text == nil {
		return nil, fmt.Errorf("%w: review can not be empty", ErrValidation)
	}
	if input.Rating != nil {
		if err := validateRating(*input.Rating); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
	}

	review, err := s.reviews.Update(ctx, id, text, input.Rating)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.reviews.RefreshTourRatings(ctx, existing.TourID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, id uuid.UUID, requester *domain.User) error {
	existing, err := s.authorize(ctx, id, requester)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.reviews.RefreshTourRatings(ctx, existing.TourID); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// authorize loads the review and allows its author or an admin.
func (s *ReviewService) authorize(ctx context.Context, id uuid.UUID, requester *domain.User) (*domain.Review, error) {
	if requester == nil {
		return nil, ErrNotLoggedIn
	}
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != requester.ID && !requester.HasRole(domain.RoleAdmin) {
		return nil, ErrReviewForbidden
	}
	return review, nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	return nil
}
