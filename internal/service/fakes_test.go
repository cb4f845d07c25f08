package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/ports"
)

var errDuplicate = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

// memUserRepo keeps credentials in memory and records the writes it receives.
type memUserRepo struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*domain.UserCredentials
	inactive map[uuid.UUID]bool

	createCalls   int
	created       []domain.NewUser
	setTokenCalls int
	clearCalls    int
	updates       []domain.UserUpdate
	deleted       []uuid.UUID
	listInputs    [][2]int
	createErr     error
	// onDelete mimics ON DELETE CASCADE in other tables.
	onDelete      func(id uuid.UUID)
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[uuid.UUID]*domain.UserCredentials{}, inactive: map[uuid.UUID]bool{}}
}

// add inserts a user directly, bypassing Create.
func (r *memUserRepo) add(creds domain.UserCredentials) *domain.UserCredentials {
	r.mu.Lock()
	defer r.mu.Unlock()
	if creds.ID == uuid.Nil {
		creds.ID = uuid.New()
	}
	if creds.Role == "" {
		creds.Role = domain.RoleUser
	}
	c := creds
	r.byID[c.ID] = &c
	return &c
}

func (r *memUserRepo) active(id uuid.UUID) (*domain.UserCredentials, bool) {
	c, ok := r.byID[id]
	if !ok || r.inactive[id] {
		return nil, false
	}
	return c, true
}

func (r *memUserRepo) Create(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	r.created = append(r.created, user)
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, c := range r.byID {
		if c.Email == user.Email {
			return nil, errDuplicate
		}
	}
	now := time.Now()
	c := &domain.UserCredentials{
		User: domain.User{
			ID: uuid.New(), Name: user.Name, Email: user.Email, Role: user.Role,
			Photo: domain.DefaultUserPhoto, CreatedAt: now, UpdatedAt: now,
		},
		PasswordHash: user.PasswordHash,
	}
	r.byID[c.ID] = c
	u := c.User
	return &u, nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.active(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	u := c.User
	return &u, nil
}

func (r *memUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.active(id); ok {
			out = append(out, c.User)
		}
	}
	return out, nil
}

func (r *memUserRepo) FindCredentialsByID(ctx context.Context, id uuid.UUID) (*domain.UserCredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.active(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (r *memUserRepo) FindCredentialsByEmail(ctx context.Context, email string) (*domain.UserCredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.Email == email && !r.inactive[id] {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memUserRepo) FindCredentialsByResetToken(ctx context.Context, digest string, now time.Time) (*domain.UserCredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if r.inactive[id] || c.PasswordResetToken == nil || c.PasswordResetExpires == nil {
			continue
		}
		if *c.PasswordResetToken == digest && c.PasswordResetExpires.After(now) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memUserRepo) SetPasswordResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setTokenCalls++
	c, ok := r.active(id)
	if !ok {
		return sql.ErrNoRows
	}
	c.PasswordResetToken = &digest
	c.PasswordResetExpires = &expiresAt
	return nil
}

func (r *memUserRepo) ClearPasswordResetToken(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearCalls++
	c, ok := r.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.PasswordResetToken = nil
	c.PasswordResetExpires = nil
	return nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.active(id)
	if !ok {
		return sql.ErrNoRows
	}
	c.PasswordHash = passwordHash
	c.PasswordChangedAt = &changedAt
	c.PasswordResetToken = nil
	c.PasswordResetExpires = nil
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, id uuid.UUID, update domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
	c, ok := r.active(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	if update.Email != nil {
		for otherID, other := range r.byID {
			if otherID != id && other.Email == *update.Email {
				return nil, errDuplicate
			}
		}
		c.Email = *update.Email
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Photo != nil {
		c.Photo = *update.Photo
	}
	if update.Role != nil {
		c.Role = *update.Role
	}
	u := c.User
	return &u, nil
}

func (r *memUserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active(id); !ok {
		return sql.ErrNoRows
	}
	r.inactive[id] = true
	return nil
}

func (r *memUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listInputs = append(r.listInputs, [2]int{limit, offset})
	var out []domain.User
	for id, c := range r.byID {
		if !r.inactive[id] {
			out = append(out, c.User)
		}
	}
	return out, nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	if r.onDelete != nil {
		r.onDelete(id)
	}
	return nil
}

type fakeMailer struct {
	resetErr   error
	welcomeErr error

	resetCalls   int
	resetEmail   string
	resetURL     string
	welcomeCalls int
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	m.resetCalls++
	m.resetEmail = email
	m.resetURL = resetURL
	return m.resetErr
}

func (m *fakeMailer) SendWelcome(ctx context.Context, email, name, accountURL string) error {
	m.welcomeCalls++
	return m.welcomeErr
}

type fakeStorage struct {
	err  error
	puts []ports.Object
	data [][]byte
}

func (s *fakeStorage) Put(ctx context.Context, obj ports.Object) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	s.puts = append(s.puts, obj)
	s.data = append(s.data, body)
	return "https://cdn.test/" + obj.Bucket + "/" + obj.Key, nil
}

type memTourRepo struct {
	tours map[uuid.UUID]*domain.Tour

	lastFilter domain.TourListFilter
	created    []*domain.Tour
	updated    []*domain.Tour
	listErr    error
}

func newMemTourRepo() *memTourRepo {
	return &memTourRepo{tours: map[uuid.UUID]*domain.Tour{}}
}

func (r *memTourRepo) add(t domain.Tour) *domain.Tour {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.tours[t.ID] = &t
	return &t
}

func (r *memTourRepo) Create(ctx context.Context, tour *domain.Tour) (*domain.Tour, error) {
	for _, existing := range r.tours {
		if existing.Name == tour.Name || existing.Slug == tour.Slug {
			return nil, errDuplicate
		}
	}
	t := *tour
	t.ID = uuid.New()
	t.RatingsAverage = domain.DefaultRatingsAverage
	r.tours[t.ID] = &t
	r.created = append(r.created, &t)
	out := t
	return &out, nil
}

func (r *memTourRepo) Update(ctx context.Context, tour *domain.Tour) (*domain.Tour, error) {
	if _, ok := r.tours[tour.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	t := *tour
	r.tours[t.ID] = &t
	r.updated = append(r.updated, &t)
	out := t
	return &out, nil
}

func (r *memTourRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tour, error) {
	t, ok := r.tours[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *t
	return &out, nil
}

func (r *memTourRepo) FindBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	for _, t := range r.tours {
		if t.Slug == slug {
			out := *t
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memTourRepo) List(ctx context.Context, filter domain.TourListFilter) ([]domain.Tour, error) {
	r.lastFilter = filter
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Tour
	for _, t := range r.tours {
		if t.SecretTour && !filter.IncludeSecret {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTourRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.tours[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.tours, id)
	return nil
}

func (r *memTourRepo) Stats(ctx context.Context) ([]domain.TourStats, error) {
	return []domain.TourStats{{Difficulty: domain.DifficultyEasy, NumTours: len(r.tours)}}, nil
}

func (r *memTourRepo) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlan, error) {
	return []domain.MonthlyPlan{{Month: 1, NumTourStarts: 1, Tours: []string{"The Forest Hiker"}}}, nil
}

type memReviewRepo struct {
	reviews map[uuid.UUID]*domain.Review

	refreshed  []uuid.UUID
	lastFilter domain.ReviewListFilter
	refreshErr error
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: map[uuid.UUID]*domain.Review{}}
}

func (r *memReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	for _, existing := range r.reviews {
		if existing.TourID == review.TourID && existing.UserID == review.UserID {
			return nil, errDuplicate
		}
	}
	rv := *review
	rv.ID = uuid.New()
	rv.CreatedAt = time.Now()
	r.reviews[rv.ID] = &rv
	out := rv
	return &out, nil
}

func (r *memReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *rv
	return &out, nil
}

func (r *memReviewRepo) List(ctx context.Context, filter domain.ReviewListFilter) ([]domain.Review, error) {
	r.lastFilter = filter
	var out []domain.Review
	for _, rv := range r.reviews {
		if filter.TourID != nil && rv.TourID != *filter.TourID {
			continue
		}
		if filter.UserID != nil && rv.UserID != *filter.UserID {
			continue
		}
		out = append(out, *rv)
	}
	return out, nil
}

func (r *memReviewRepo) Update(ctx context.Context, id uuid.UUID, text *string, rating *int) (*domain.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if text != nil {
		rv.Review = *text
	}
	if rating != nil {
		rv.Rating = *rating
	}
	out := *rv
	return &out, nil
}

func (r *memReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.reviews[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.reviews, id)
	return nil
}

func (r *memReviewRepo) deleteByUser(userID uuid.UUID) {
	for id, rv := range r.reviews {
		if rv.UserID == userID {
			delete(r.reviews, id)
		}
	}
}

func (r *memReviewRepo) RefreshTourRatings(ctx context.Context, tourID uuid.UUID) (*domain.ReviewAggregate, error) {
	r.refreshed = append(r.refreshed, tourID)
	if r.refreshErr != nil {
		return nil, r.refreshErr
	}
	agg := &domain.ReviewAggregate{TourID: tourID, RatingsAverage: domain.DefaultRatingsAverage}
	var sum int
	for _, rv := range r.reviews {
		if rv.TourID == tourID {
			agg.RatingsQuantity++
			sum += rv.Rating
		}
	}
	if agg.RatingsQuantity > 0 {
		agg.RatingsAverage = float64(sum) / float64(agg.RatingsQuantity)
	}
	return agg, nil
}

var errBoom = errors.New("boom")
