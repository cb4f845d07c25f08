package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

const DefaultUserPhoto = "default.jpg"

func ParseRole(raw string) (Role, bool) {
	switch role := Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

// User is the public projection of a user account. It never carries credential material.
type User struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Email             string     `db:"email" json:"email"`
	Photo             string     `db:"photo" json:"photo"`
	Role              Role       `db:"role" json:"role"`
	PasswordChangedAt *time.Time `db:"password_changed_at" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// ChangedPasswordAfter reports whether the password changed after a token issued at
// issuedAt. Comparison is done in whole seconds, matching JWT iat precision.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

func (u *User) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// UserCredentials is the internal projection used by the credential paths.
type UserCredentials struct {
	User
	PasswordHash         string     `db:"password_hash" json:"-"`
	PasswordResetToken   *string    `db:"password_reset_token" json:"-"`
	PasswordResetExpires *time.Time `db:"password_reset_expires" json:"-"`
}

// NewUser carries a validated signup with its already-hashed password.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

type UserUpdate struct {
	Name  *string
	Email *string
	Photo *string
	Role  *Role
}
