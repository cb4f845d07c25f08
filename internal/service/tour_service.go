package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/media"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/ports"
)

const (
	defaultTourPageSize = 100
	maxTourPageSize     = 100
	topCheapLimit       = 5
)

type TourServiceConfig struct {
	CoverBucket string
	Processor   media.Processor
}

type TourService struct {
	tours     ports.TourRepository
	users     ports.UserRepository
	reviews   ports.ReviewRepository
	storage   ports.ObjectStorage
	bucket    string
	processor media.Processor
	now       func() time.Time
}

func NewTourService(tours ports.TourRepository, users ports.UserRepository, reviews ports.ReviewRepository, storage ports.ObjectStorage, cfg TourServiceConfig) *TourService {
	return &TourService{
		tours:     tours,
		users:     users,
		reviews:   reviews,
		storage:   storage,
		bucket:    strings.TrimSpace(cfg.CoverBucket),
		processor: cfg.Processor,
		now:       time.Now,
	}
}

// ListTours never returns secret tours.
func (s *TourService) ListTours(ctx context.Context, filter domain.TourListFilter) ([]domain.Tour, error) {
	if filter.Difficulty != nil && !filter.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: difficulty is either: easy, medium, difficult", ErrValidation)
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset, defaultTourPageSize, maxTourPageSize)
	if filter.Sort == "" {
		filter.Sort = domain.TourSortNewest
	}
	filter.IncludeSecret = false
	return s.tours.List(ctx, filter)
}

func (s *TourService) TopCheap(ctx context.Context) ([]domain.Tour, error) {
	return s.ListTours(ctx, domain.TourListFilter{Sort: domain.TourSortBestAndCheap, Limit: topCheapLimit})
}

func (s *TourService) GetTour(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	tour, err := s.tours.FindByID(ctx, id)
	return s.populate(ctx, tour, err)
}

func (s *TourService) GetTourBySlug(ctx context.Context, slugValue string) (*domain.Tour, error) {
	tour, err := s.tours.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slugValue)))
	return s.populate(ctx, tour, err)
}

func (s *TourService) populate(ctx context.Context, tour *domain.Tour, err error) (*domain.Tour, error) {
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if tour.SecretTour {
		return nil, ErrNotFound
	}
	guides, err := s.users.FindByIDs(ctx, tour.GuideIDs)
	if err != nil {
		return nil, err
	}
	tour.Guides = guides
	reviews, err := s.reviews.List(ctx, domain.ReviewListFilter{TourID: &tour.ID})
	if err != nil {
		return nil, err
	}
	tour.Reviews = reviews
	return tour, nil
}

func (s *TourService) Stats(ctx context.Context) ([]domain.TourStats, error) {
	return s.tours.Stats(ctx)
}

func (s *TourService) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error) {
	if year < 1970 || year > 9999 {
		return nil, fmt.Errorf("%w: year must be between 1970 and 9999", ErrValidation)
	}
	return s.tours.MonthlyPlan(ctx, year)
}

func (s *TourService) CreateTour(ctx context.Context, fields domain.TourFields, cover *media.Upload) (*domain.Tour, error) {
	tour := &domain.Tour{Images: []string{}, StartDates: []time.Time{}, Locations: []domain.Location{}}
	applyTourFields(tour, fields)
	tour.Slug = slug.Make(tour.Name)
	if err := s.validateWithCover(ctx, tour, cover); err != nil {
		return nil, err
	}
	if err := s.attachCover(ctx, tour, cover); err != nil {
		return nil, err
	}
	return s.tours.Create(ctx, tour)
}

func (s *TourService) UpdateTour(ctx context.Context, id uuid.UUID, fields domain.TourFields, cover *media.Upload) (*domain.Tour, error) {
	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	applyTourFields(tour, fields)
	if fields.Name != nil {
		tour.Slug = slug.Make(tour.Name)
	}
	if err := s.validateWithCover(ctx, tour, cover); err != nil {
		return nil, err
	}
	if err := s.attachCover(ctx, tour, cover); err != nil {
		return nil, err
	}
	updated, err := s.tours.Update(ctx, tour)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *TourService) DeleteTour(ctx context.Context, id uuid.UUID) error {
	if err := s.tours.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// attachCover runs after validation; a rejected tour uploads nothing.
func (s *TourService) attachCover(ctx context.Context, tour *domain.Tour, cover *media.Upload) error {
	if cover == nil {
		return nil
	}
	key := imageKey("tours", "tour-"+tour.Slug, s.now(), "cover")
	url, err := storeImage(ctx, s.processor, s.storage, s.bucket, key, *cover, media.TourCover)
	if err != nil {
		return err
	}
	tour.ImageCover = url
	return nil
}

func (s *TourService) validateWithCover(ctx context.Context, tour *domain.Tour, cover *media.Upload) error {
	if cover == nil {
		return s.validate(ctx, tour)
	}
	previous := tour.ImageCover
	tour.ImageCover = "upload"
	err := s.validate(ctx, tour)
	tour.ImageCover = previous
	return err
}

func (s *TourService) validate(ctx context.Context, tour *domain.Tour) error {
	var problems []string
	switch n := utf8.RuneCountInString(tour.Name); {
	case n == 0:
		problems = append(problems, "a tour must have a name")
	case n < 5 || n > 40:
		problems = append(problems, "a tour name must have between 5 and 40 characters")
	}
	if tour.Slug == "" && tour.Name != "" {
		problems = append(problems, "a tour name must contain letters or digits")
	}
	if tour.Duration <= 0 {
		problems = append(problems, "a tour must have a duration")
	}
	if tour.MaxGroupSize <= 0 {
		problems = append(problems, "a tour must have a group size")
	}
	if !tour.Difficulty.Valid() {
		problems = append(problems, "difficulty is either: easy, medium, difficult")
	}
	if tour.Price <= 0 {
		problems = append(problems, "a tour must have a price")
	}
	if tour.PriceDiscount != nil && *tour.PriceDiscount >= tour.Price {
		problems = append(problems, fmt.Sprintf("discount price (%g) should be below regular price", *tour.PriceDiscount))
	}
	if strings.TrimSpace(tour.Summary) == "" {
		problems = append(problems, "a tour must have a summary")
	}
	if strings.TrimSpace(tour.ImageCover) == "" {
		problems = append(problems, "a tour must have a cover image")
	}
	for i, loc := range tour.Locations {
		if len(loc.Coordinates) != 2 {
			problems = append(problems, fmt.Sprintf("location %d needs [lng, lat] coordinates", i+1))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	if len(tour.GuideIDs) > 0 {
		guides, err := s.users.FindByIDs(ctx, tour.GuideIDs)
		if err != nil {
			return err
		}
		if len(guides) != len(tour.GuideIDs) {
			return fmt.Errorf("%w: every guide must be an existing user", ErrValidation)
		}
		for _, g := range guides {
			if !g.HasRole(domain.RoleGuide, domain.RoleLeadGuide) {
				return fmt.Errorf("%w: %s is not a guide", ErrValidation, g.Name)
			}
		}
	}
	return nil
}

func applyTourFields(tour *domain.Tour, f domain.TourFields) {
	if f.Name != nil {
		tour.Name = strings.TrimSpace(*f.Name)
	}
	if f.Duration != nil {
		tour.Duration = *f.Duration
	}
	if f.MaxGroupSize != nil {
		tour.MaxGroupSize = *f.MaxGroupSize
	}
	if f.Difficulty != nil {
		tour.Difficulty = domain.Difficulty(strings.ToLower(string(*f.Difficulty)))
	}
	if f.Price != nil {
		tour.Price = *f.Price
	}
	if f.PriceDiscount != nil {
		tour.PriceDiscount = f.PriceDiscount
	}
	if f.Summary != nil {
		tour.Summary = strings.TrimSpace(*f.Summary)
	}
	if f.Description != nil {
		tour.Description = normalizeString(f.Description)
	}
	if f.ImageCover != nil {
		tour.ImageCover = strings.TrimSpace(*f.ImageCover)
	}
	if f.Images != nil {
		tour.Images = append([]string{}, (*f.Images)...)
	}
	if f.StartDates != nil {
		tour.StartDates = append([]time.Time{}, (*f.StartDates)...)
	}
	if f.SecretTour != nil {
		tour.SecretTour = *f.SecretTour
	}
	if f.StartLocation != nil {
		loc := *f.StartLocation
		if loc.Type == "" {
			loc.Type = "Point"
		}
		tour.StartLocation = &loc
	}
	if f.Locations != nil {
		locations := make([]domain.Location, 0, len(*f.Locations))
		for _, loc := range *f.Locations {
			if loc.Type == "" {
				loc.Type = "Point"
			}
			locations = append(locations, loc)
		}
		tour.Locations = locations
	}
	if f.Guides != nil {
		tour.GuideIDs = append([]uuid.UUID{}, (*f.Guides)...)
	}
	tour.DurationWeeks = float64(tour.Duration) / 7
}
