package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
)

const tourColumns = `id, name, slug, duration, max_group_size, difficulty, ratings_average, ratings_quantity,
        price, price_discount, summary, description, image_cover, images, start_dates, secret_tour,
        start_location, locations, guides, created_at`

type tourRow struct {
	ID              uuid.UUID                `db:"id"`
	Name            string                   `db:"name"`
	Slug            string                   `db:"slug"`
	Duration        int                      `db:"duration"`
	MaxGroupSize    int                      `db:"max_group_size"`
	Difficulty      string                   `db:"difficulty"`
	RatingsAverage  float64                  `db:"ratings_average"`
	RatingsQuantity int                      `db:"ratings_quantity"`
	Price           float64                  `db:"price"`
	PriceDiscount   *float64                 `db:"price_discount"`
	Summary         string                   `db:"summary"`
	Description     *string                  `db:"description"`
	ImageCover      string                   `db:"image_cover"`
	Images          pq.StringArray           `db:"images"`
	StartDates      jsonb[[]time.Time]       `db:"start_dates"`
	SecretTour      bool                     `db:"secret_tour"`
	StartLocation   jsonb[*domain.Location]  `db:"start_location"`
	Locations       jsonb[[]domain.Location] `db:"locations"`
	Guides          pq.StringArray           `db:"guides"`
	CreatedAt       time.Time                `db:"created_at"`
}

func (row tourRow) toDomain() (*domain.Tour, error) {
	guides, err := parseUUIDArray(row.Guides)
	if err != nil {
		return nil, fmt.Errorf("tour %s guides: %w", row.ID, err)
	}
	tour := &domain.Tour{
		ID:              row.ID,
		Name:            row.Name,
		Slug:            row.Slug,
		Duration:        row.Duration,
		DurationWeeks:   float64(row.Duration) / 7,
		MaxGroupSize:    row.MaxGroupSize,
		Difficulty:      domain.Difficulty(row.Difficulty),
		RatingsAverage:  row.RatingsAverage,
		RatingsQuantity: row.RatingsQuantity,
		Price:           row.Price,
		PriceDiscount:   row.PriceDiscount,
		Summary:         row.Summary,
		Description:     row.Description,
		ImageCover:      row.ImageCover,
		Images:          []string(row.Images),
		StartDates:      row.StartDates.V,
		SecretTour:      row.SecretTour,
		StartLocation:   row.StartLocation.V,
		Locations:       row.Locations.V,
		GuideIDs:        guides,
		CreatedAt:       row.CreatedAt,
	}
	if tour.Images == nil {
		tour.Images = []string{}
	}
	if tour.StartDates == nil {
		tour.StartDates = []time.Time{}
	}
	if tour.Locations == nil {
		tour.Locations = []domain.Location{}
	}
	return tour, nil
}

func tourArgs(t *domain.Tour) []any {
	images := pq.StringArray(t.Images)
	if images == nil {
		images = pq.StringArray{}
	}
	startDates := t.StartDates
	if startDates == nil {
		startDates = []time.Time{}
	}
	locations := t.Locations
	if locations == nil {
		locations = []domain.Location{}
	}
	var startLocation any
	if t.StartLocation != nil {
		startLocation = jsonb[*domain.Location]{V: t.StartLocation}
	}
	return []any{
		t.Name, t.Slug, t.Duration, t.MaxGroupSize, string(t.Difficulty), t.Price, t.PriceDiscount,
		t.Summary, t.Description, t.ImageCover, images, jsonb[[]time.Time]{V: startDates}, t.SecretTour,
		startLocation, jsonb[[]domain.Location]{V: locations}, uuidArray(t.GuideIDs),
	}
}

type TourRepository struct {
	db *sqlx.DB
}

func NewTourRepo(db *sqlx.DB) *TourRepository {
	return &TourRepository{db: db}
}

func (r *TourRepository) Create(ctx context.Context, tour *domain.Tour) (*domain.Tour, error) {
	const query = `
        INSERT INTO tours (name, slug, duration, max_group_size, difficulty, price, price_discount,
            summary, description, image_cover, images, start_dates, secret_tour,
            start_location, locations, guides)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::text[], $12::jsonb, $13, $14::jsonb, $15::jsonb, $16::uuid[])
        RETURNING ` + tourColumns

	var row tourRow
	if err := r.db.QueryRowxContext(ctx, query, tourArgs(tour)...).StructScan(&row); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}
	return row.toDomain()
}

func (r *TourRepository) Update(ctx context.Context, tour *domain.Tour) (*domain.Tour, error) {
	const query = `
        UPDATE tours
        SET name = $2, slug = $3, duration = $4, max_group_size = $5, difficulty = $6, price = $7,
            price_discount = $8, summary = $9, description = $10, image_cover = $11, images = $12::text[],
            start_dates = $13::jsonb, secret_tour = $14, start_location = $15::jsonb,
            locations = $16::jsonb, guides = $17::uuid[]
        WHERE id = $1
        RETURNING ` + tourColumns

	args := append([]any{tour.ID}, tourArgs(tour)...)
	var row tourRow
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *TourRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	const query = `SELECT ` + tourColumns + ` FROM tours WHERE id = $1`
	var row tourRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (r *TourRepository) FindBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	const query = `SELECT ` + tourColumns + ` FROM tours WHERE slug = $1`
	var row tourRow
	if err := r.db.GetContext(ctx, &row, query, slug); err != nil {
		return nil, err
	}
	return row.toDomain()
}

var tourOrderBy = map[domain.TourSort]string{
	domain.TourSortNewest:       "created_at DESC, id",
	domain.TourSortPriceAsc:     "price ASC, id",
	domain.TourSortPriceDesc:    "price DESC, id",
	domain.TourSortRatingAsc:    "ratings_average ASC, id",
	domain.TourSortRatingDesc:   "ratings_average DESC, id",
	domain.TourSortDurationAsc:  "duration ASC, id",
	domain.TourSortNameAsc:      "name ASC, id",
	domain.TourSortBestAndCheap: "ratings_average DESC, price ASC, id",
}

func buildTourListQuery(filter domain.TourListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if !filter.IncludeSecret {
		where = append(where, "secret_tour = FALSE")
	}
	if filter.Difficulty != nil {
		add("difficulty = $%d", string(*filter.Difficulty))
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.MinDuration != nil {
		add("duration >= $%d", *filter.MinDuration)
	}
	if filter.MaxDuration != nil {
		add("duration <= $%d", *filter.MaxDuration)
	}
	if filter.MinRating != nil {
		add("ratings_average >= $%d", *filter.MinRating)
	}

	order, ok := tourOrderBy[filter.Sort]
	if !ok {
		order = tourOrderBy[domain.TourSortNewest]
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(tourColumns)
	b.WriteString(" FROM tours")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(order)
	args = append(args, filter.Limit, filter.Offset)
	fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return b.String(), args
}

func (r *TourRepository) List(ctx context.Context, filter domain.TourListFilter) ([]domain.Tour, error) {
	query, args := buildTourListQuery(filter)
	var rows []tourRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}
	tours := make([]domain.Tour, 0, len(rows))
	for _, row := range rows {
		tour, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		tours = append(tours, *tour)
	}
	return tours, nil
}

func (r *TourRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = $1`, id)
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

// Stats groups well-rated public tours by difficulty, cheapest group first.
func (r *TourRepository) Stats(ctx context.Context) ([]domain.TourStats, error) {
	const query = `
        SELECT difficulty,
               COUNT(*) AS num_tours,
               COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
               AVG(ratings_average) AS avg_rating,
               AVG(price) AS avg_price,
               MIN(price) AS min_price,
               MAX(price) AS max_price
        FROM tours
        WHERE ratings_average >= 4.5 AND secret_tour = FALSE
        GROUP BY difficulty
        ORDER BY avg_price ASC`

	stats := []domain.TourStats{}
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("tour stats: %w", err)
	}
	return stats, nil
}

type monthlyPlanRow struct {
	Month         int            `db:"month"`
	NumTourStarts int            `db:"num_tour_starts"`
	Tours         pq.StringArray `db:"tours"`
}

func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error) {
	const query = `
        SELECT EXTRACT(MONTH FROM s.start_date)::int AS month,
               COUNT(*)::int AS num_tour_starts,
               array_agg(t.name ORDER BY t.name) AS tours
        FROM tours t
        CROSS JOIN LATERAL (
            SELECT value::timestamptz AS start_date
            FROM jsonb_array_elements_text(t.start_dates)
        ) s
        WHERE s.start_date >= $1 AND s.start_date < $2 AND t.secret_tour = FALSE
        GROUP BY month
        ORDER BY num_tour_starts DESC, month ASC
        LIMIT 12`

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	var rows []monthlyPlanRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("monthly plan: %w", err)
	}
	plan := make([]domain.MonthlyPlan, 0, len(rows))
	for _, row := range rows {
		plan = append(plan, domain.MonthlyPlan{Month: row.Month, NumTourStarts: row.NumTourStarts, Tours: []string(row.Tours)})
	}
	return plan, nil
}
