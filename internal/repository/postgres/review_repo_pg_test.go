package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
)

var reviewRowColumns = []string{"id", "review", "rating", "tour_id", "user_id", "created_at", "updated_at", "reviewer_name", "reviewer_photo"}

func TestReviewRepoCreatePopulatesReviewer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepo(db)

	id, tourID, userID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(`(?s)WITH inserted AS \(\s+INSERT INTO reviews .*JOIN users u ON u.id = r.user_id`).
		WithArgs("Amazing!", 5, tourID, userID).
		WillReturnRows(sqlmock.NewRows(reviewRowColumns).
			AddRow(id.String(), "Amazing!", 5, tourID.String(), userID.String(), now, now, "Ada", "user-1.jpg"))

	review, err := repo.Create(context.Background(), &domain.Review{Review: "Amazing!", Rating: 5, TourID: tourID, UserID: userID})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if review.ID != id || review.Author().Name != "Ada" || review.Author().Photo != "user-1.jpg" {
		t.Fatalf("unexpected review %+v", review)
	}
}

func TestReviewRepoListByTour(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepo(db)
	tourID := uuid.New()

	mock.ExpectQuery(`(?s)FROM reviews r JOIN users u ON u.id = r.user_id WHERE r.tour_id = \$1 ORDER BY r.created_at DESC, r.id$`).
		WithArgs(tourID).
		WillReturnRows(sqlmock.NewRows(reviewRowColumns))

	reviews, err := repo.List(context.Background(), domain.ReviewListFilter{TourID: &tourID})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if reviews == nil || len(reviews) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", reviews)
	}
}

func TestReviewRepoRefreshTourRatings(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepo(db)
	tourID := uuid.New()

	mock.ExpectQuery(`(?s)WITH agg AS .*UPDATE tours t\s+SET ratings_quantity = agg.quantity`).
		WithArgs(tourID, domain.DefaultRatingsAverage).
		WillReturnRows(sqlmock.NewRows([]string{"tour_id", "ratings_quantity", "ratings_average"}).
			AddRow(tourID.String(), 0, 4.5))

	aggregate, err := repo.RefreshTourRatings(context.Background(), tourID)
	if err != nil {
		t.Fatalf("RefreshTourRatings error: %v", err)
	}
	if aggregate.RatingsQuantity != 0 || aggregate.RatingsAverage != domain.DefaultRatingsAverage {
		t.Fatalf("unexpected aggregate %+v", aggregate)
	}
}
