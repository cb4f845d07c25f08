package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

var (
	ErrMissingCredentials = errors.New("please provide email and password")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailAlreadyUsed   = errors.New("email already in use")
	ErrIncorrectPassword  = errors.New("your current password is wrong")
	ErrUserNotFound       = errors.New("there is no user with that email address")
	ErrEmailDelivery      = errors.New("there was an error sending the email")
	ErrResetTokenInvalid  = errors.New("token is invalid or has expired")
	ErrNotLoggedIn        = errors.New("you are not logged in")
	ErrUserGone           = errors.New("the user belonging to this token no longer exists")
	ErrStaleToken         = errors.New("user recently changed password")
)

const resetPathPrefix = "/api/v1/users/resetPassword/"

type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, name, resetURL string) error
	SendWelcome(ctx context.Context, email, name, accountURL string) error
}

type AuthConfig struct {
	BcryptCost    int
	ResetTTL      time.Duration
	PublicBaseURL string
	Logger        *zap.Logger
}

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

type AuthService struct {
	users    ports.UserRepository
	tokens   *util.TokenService
	mailer   PasswordResetSender
	cost     int
	resetTTL time.Duration
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, tokens *util.TokenService, mailer PasswordResetSender, cfg AuthConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost <= 0 {
		cost = util.DefaultBcryptCost
	}
	ttl := cfg.ResetTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		cost:     cost,
		resetTTL: ttl,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AuthService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	var problems []string
	if name == "" {
		problems = append(problems, "name is required")
	}
	if !validEmail(email) {
		problems = append(problems, "please provide a valid email")
	}
	problems = append(problems, passwordProblems(input.Password, input.PasswordConfirm)...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	hash, err := util.HashPassword(input.Password, s.cost)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, domain.NewUser{Name: name, Email: email, PasswordHash: hash, Role: domain.RoleUser})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.Name, s.baseURL+"/me"); err != nil {
			s.logger.Warn("welcome email failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	creds, err := s.users.FindCredentialsByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			util.BurnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, creds.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	user := creds.User
	return s.issue(&user)
}

// Authenticate resolves a presented token to its current, active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotLoggedIn
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserGone
		}
		return nil, err
	}
	if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
		return nil, ErrStaleToken
	}
	return user, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, current, password, confirm string) (*AuthResult, error) {
	if current == "" {
		return nil, fmt.Errorf("%w: please provide your current password", ErrValidation)
	}
	creds, err := s.users.FindCredentialsByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserGone
		}
		return nil, err
	}
	if !util.VerifyPassword(current, creds.PasswordHash) {
		return nil, ErrIncorrectPassword
	}
	if problems := passwordProblems(password, confirm); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	user := creds.User
	if err := s.changePassword(ctx, &user, password); err != nil {
		return nil, err
	}
	return s.issue(&user)
}

// ForgotPassword mails a single-use reset link. Only the digest is stored.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrUserNotFound
	}
	creds, err := s.users.FindCredentialsByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	raw, digest, err := util.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordResetToken(ctx, creds.ID, digest, s.now().Add(s.resetTTL)); err != nil {
		return err
	}

	// The configured public URL wins; the request's host is only a fallback.
	base := s.baseURL
	if base == "" {
		base = strings.TrimRight(resetURLBase, "/")
	}
	resetURL := base + resetPathPrefix + raw

	sendErr := errors.New("mailer not configured")
	if s.mailer != nil {
		sendErr = s.mailer.SendPasswordReset(ctx, creds.Email, creds.Name, resetURL)
	}
	if sendErr != nil {
		if err := s.users.ClearPasswordResetToken(ctx, creds.ID); err != nil {
			s.logger.Error("clear reset token after mail failure", zap.String("user_id", creds.ID.String()), zap.Error(err))
		}
		return fmt.Errorf("%w: %v", ErrEmailDelivery, sendErr)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password, confirm string) (*AuthResult, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrResetTokenInvalid
	}
	creds, err := s.users.FindCredentialsByResetToken(ctx, util.HashResetToken(rawToken), s.now())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrResetTokenInvalid
		}
		return nil, err
	}
	if problems := passwordProblems(password, confirm); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	user := creds.User
	if err := s.changePassword(ctx, &user, password); err != nil {
		return nil, err
	}
	return s.issue(&user)
}

// changePassword backdates passwordChangedAt by one second so the token
// issued right after the change is not considered stale.
func (s *AuthService) changePassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := util.HashPassword(password, s.cost)
	if err != nil {
		return err
	}
	changedAt := s.now().Add(-time.Second)
	if err := s.users.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		if isNotFound(err) {
			return ErrUserGone
		}
		return err
	}
	user.PasswordChangedAt = &changedAt
	return nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func passwordProblems(password, confirm string) []string {
	var problems []string
	if err := util.ValidatePassword(password); err != nil {
		problems = append(problems, err.Error())
	}
	if password != confirm {
		problems = append(problems, "passwords are not the same")
	}
	return problems
}
