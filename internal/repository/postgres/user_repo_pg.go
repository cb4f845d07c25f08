package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
)

const (
	userColumns       = `id, name, email, photo, role, password_changed_at, created_at, updated_at`
	credentialColumns = userColumns + `, password_hash, password_reset_token, password_reset_expires`
)

// UserRepository never returns deactivated accounts.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	const query = `
        INSERT INTO users (name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + userColumns

	role := user.Role
	if role == "" {
		role = domain.RoleUser
	}
	var created domain.User
	if err := r.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.PasswordHash, string(role)).StructScan(&created); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND active = TRUE`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = ANY($1::uuid[]) AND active = TRUE
        ORDER BY array_position($1::uuid[], id)`

	users := make([]domain.User, 0, len(ids))
	if err := r.db.SelectContext(ctx, &users, query, uuidArray(ids)); err != nil {
		return nil, fmt.Errorf("find users by id: %w", err)
	}
	return users, nil
}

func (r *UserRepository) FindCredentialsByID(ctx context.Context, id uuid.UUID) (*domain.UserCredentials, error) {
	const query = `SELECT ` + credentialColumns + ` FROM users WHERE id = $1 AND active = TRUE`
	var creds domain.UserCredentials
	if err := r.db.GetContext(ctx, &creds, query, id); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (r *UserRepository) FindCredentialsByEmail(ctx context.Context, email string) (*domain.UserCredentials, error) {
	const query = `SELECT ` + credentialColumns + ` FROM users WHERE email = $1 AND active = TRUE`
	var creds domain.UserCredentials
	if err := r.db.GetContext(ctx, &creds, query, email); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (r *UserRepository) FindCredentialsByResetToken(ctx context.Context, digest string, now time.Time) (*domain.UserCredentials, error) {
	const query = `
        SELECT ` + credentialColumns + `
        FROM users
        WHERE password_reset_token = $1
          AND password_reset_expires > $2
          AND active = TRUE`

	var creds domain.UserCredentials
	if err := r.db.GetContext(ctx, &creds, query, digest, now); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (r *UserRepository) SetPasswordResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	const query = `
        UPDATE users
        SET password_reset_token = $2,
            password_reset_expires = $3
        WHERE id = $1 AND active = TRUE`
	return r.execOne(ctx, query, id, digest, expiresAt)
}

func (r *UserRepository) ClearPasswordResetToken(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE users
        SET password_reset_token = NULL,
            password_reset_expires = NULL
        WHERE id = $1`
	return r.execOne(ctx, query, id)
}

// UpdatePassword also invalidates any pending reset token.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	const query = `
        UPDATE users
        SET password_hash = $2,
            password_changed_at = $3,
            password_reset_token = NULL,
            password_reset_expires = NULL,
            updated_at = NOW()
        WHERE id = $1 AND active = TRUE`
	return r.execOne(ctx, query, id, passwordHash, changedAt)
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, update domain.UserUpdate) (*domain.User, error) {
	const query = `
        UPDATE users
        SET name = COALESCE($2, name),
            email = COALESCE($3, email),
            photo = COALESCE($4, photo),
            role = COALESCE($5, role),
            updated_at = NOW()
        WHERE id = $1 AND active = TRUE
        RETURNING ` + userColumns

	var role *string
	if update.Role != nil {
		value := string(*update.Role)
		role = &value
	}
	var user domain.User
	if err := r.db.QueryRowxContext(ctx, query, id, update.Name, update.Email, update.Photo, role).StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE users SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active = TRUE`
	return r.execOne(ctx, query, id)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE active = TRUE
        ORDER BY created_at DESC, id
        LIMIT $1 OFFSET $2`

	users := make([]domain.User, 0, limit)
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

// execOne runs a statement that must touch exactly one row.
func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func uuidArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDArray(values pq.StringArray) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
