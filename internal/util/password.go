package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength  = 8
	DefaultBcryptCost  = 12
	maxBcryptInputSize = 72
)

var ErrPasswordTooShort = errors.New("password must be at least 8 characters long")

// dummyHash is compared against when no account matches so both paths cost one bcrypt run.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tourbook-dummy-password"), bcrypt.MinCost)

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxBcryptInputSize {
		return errors.New("password must be at most 72 bytes long")
	}
	return nil
}

func HashPassword(password string, cost int) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(password, hash string) bool {
	if len(password) == 0 || len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck spends a comparison without a real account.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
