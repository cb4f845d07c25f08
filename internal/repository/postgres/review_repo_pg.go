package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
)

const reviewProjection = `
        SELECT r.id, r.review, r.rating, r.tour_id, r.user_id, r.created_at, r.updated_at,
               u.name AS reviewer_name, u.photo AS reviewer_photo`

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	const query = `
        WITH inserted AS (
            INSERT INTO reviews (review, rating, tour_id, user_id)
            VALUES ($1, $2, $3, $4)
            RETURNING *
        )` + reviewProjection + `
        FROM inserted r
        JOIN users u ON u.id = r.user_id`

	var created domain.Review
	if err := r.db.QueryRowxContext(ctx, query, review.Review, review.Rating, review.TourID, review.UserID).StructScan(&created); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &created, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	const query = reviewProjection + `
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        WHERE r.id = $1`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewListFilter) ([]domain.Review, error) {
	var (
		where []string
		args  []any
	)
	if filter.TourID != nil {
		args = append(args, *filter.TourID)
		where = append(where, fmt.Sprintf("r.tour_id = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("r.user_id = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(reviewProjection)
	b.WriteString(" FROM reviews r JOIN users u ON u.id = r.user_id")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY r.created_at DESC, r.id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	reviews := []domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, b.String(), args...); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepository) Update(ctx context.Context, id uuid.UUID, text *string, rating *int) (*domain.Review, error) {
	const query = `
        WITH updated AS (
            UPDATE reviews
            SET review = COALESCE($2, review),
                rating = COALESCE($3, rating),
                updated_at = NOW()
            WHERE id = $1
            RETURNING *
        )` + reviewProjection + `
        FROM updated r
        JOIN users u ON u.id = r.user_id`

	var review domain.Review
	if err := r.db.QueryRowxContext(ctx, query, id, text, rating).StructScan(&review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RefreshTourRatings stores the review count and one-decimal average on the
// tour. A tour without reviews goes back to 0 and the default average.
func (r *ReviewRepository) RefreshTourRatings(ctx context.Context, tourID uuid.UUID) (*domain.ReviewAggregate, error) {
	const query = `
        WITH agg AS (
            SELECT COUNT(*)::int AS quantity,
                   ROUND(AVG(rating)::numeric, 1)::float8 AS average
            FROM reviews
            WHERE tour_id = $1
        )
        UPDATE tours t
        SET ratings_quantity = agg.quantity,
            ratings_average = COALESCE(agg.average, $2)
        FROM agg
        WHERE t.id = $1
        RETURNING t.id AS tour_id, t.ratings_quantity, t.ratings_average`

	var aggregate domain.ReviewAggregate
	if err := r.db.QueryRowxContext(ctx, query, tourID, domain.DefaultRatingsAverage).StructScan(&aggregate); err != nil {
		return nil, err
	}
	return &aggregate, nil
}
