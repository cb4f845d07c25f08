package http

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

type userStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.UserCredentials
}

func newUserStore() *userStore {
	return &userStore{users: map[uuid.UUID]*domain.UserCredentials{}}
}

func (s *userStore) Create(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	c := &domain.UserCredentials{
		User:         domain.User{ID: uuid.New(), Name: user.Name, Email: user.Email, Role: user.Role, Photo: domain.DefaultUserPhoto, CreatedAt: now, UpdatedAt: now},
		PasswordHash: user.PasswordHash,
	}
	s.users[c.ID] = c
	out := c.User
	return &out, nil
}

func (s *userStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	c, err := s.FindCredentialsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c.User, nil
}

func (s *userStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	return nil, nil
}

func (s *userStore) FindCredentialsByID(ctx context.Context, id uuid.UUID) (*domain.UserCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *c
	return &out, nil
}

func (s *userStore) FindCredentialsByEmail(ctx context.Context, email string) (*domain.UserCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.users {
		if c.Email == email {
			out := *c
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userStore) FindCredentialsByResetToken(ctx context.Context, digest string, now time.Time) (*domain.UserCredentials, error) {
	return nil, sql.ErrNoRows
}

func (s *userStore) SetPasswordResetToken(ctx context.Context, id uuid.UUID, digest string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.PasswordResetToken = &digest
	c.PasswordResetExpires = &expiresAt
	return nil
}

func (s *userStore) ClearPasswordResetToken(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *userStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	return nil
}

func (s *userStore) Update(ctx context.Context, id uuid.UUID, update domain.UserUpdate) (*domain.User, error) {
	return nil, sql.ErrNoRows
}

func (s *userStore) Deactivate(ctx context.Context, id uuid.UUID) error { return nil }

func (s *userStore) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return nil, nil
}

func (s *userStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type recordingMailer struct {
	resetURL string
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	m.resetURL = resetURL
	return nil
}

func (m *recordingMailer) SendWelcome(ctx context.Context, email, name, accountURL string) error {
	return nil
}

type authServer struct {
	handler http.Handler
	users   *userStore
	mailer  *recordingMailer
}

func newAuthServer(production bool, publicBaseURL string) *authServer {
	users := newUserStore()
	mailer := &recordingMailer{}
	tokens := util.NewTokenService(util.TokenConfig{Secret: "handler-secret", ExpiresIn: 24 * time.Hour})
	svc := service.NewAuthService(users, tokens, mailer, service.AuthConfig{
		BcryptCost:    bcrypt.MinCost,
		PublicBaseURL: publicBaseURL,
	})
	e := newTestEcho()
	RegisterAuth(e, svc, AuthHandlerConfig{CookieTTL: 24 * time.Hour, Production: production})
	return &authServer{handler: e, users: users, mailer: mailer}
}

func (s *authServer) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func tokenCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in %v", tokenCookie, rec.Header().Values("Set-Cookie"))
	return nil
}

const signupBody = `{"name":"Ada Lovelace","email":"ada@example.com","password":"pass1234","passwordConfirm":"pass1234"}`

func TestSignupCookieAndEnvelope(t *testing.T) {
	for _, production := range []bool{false, true} {
		srv := newAuthServer(production, "")
		rec := srv.do(http.MethodPost, "/api/v1/users/signup", signupBody)
		if rec.Code != http.StatusCreated {
			t.Fatalf("production=%v: expected 201, got %d: %s", production, rec.Code, rec.Body.String())
		}

		cookie := tokenCookieFrom(t, rec)
		if !cookie.HttpOnly {
			t.Fatalf("production=%v: expected HttpOnly cookie", production)
		}
		if cookie.Secure != production {
			t.Fatalf("production=%v: expected Secure=%v, got %v", production, production, cookie.Secure)
		}
		if cookie.Path != "/" || cookie.SameSite != http.SameSiteLaxMode {
			t.Fatalf("unexpected cookie scope %+v", cookie)
		}
		if until := time.Until(cookie.Expires); until < 23*time.Hour || until > 25*time.Hour {
			t.Fatalf("expected cookie to live about 24h, got %s", until)
		}

		raw := rec.Body.String()
		if strings.Contains(strings.ToLower(raw), "password") || strings.Contains(raw, "$2a$") {
			t.Fatalf("credential material leaked: %s", raw)
		}
		body := decodeBody(t, rec)
		if body["status"] != "success" || body["token"] != cookie.Value {
			t.Fatalf("unexpected envelope %v", body)
		}
		data, _ := body["data"].(map[string]interface{})
		user, _ := data["user"].(map[string]interface{})
		if user["email"] != "ada@example.com" || user["role"] != "user" {
			t.Fatalf("unexpected user %v", data)
		}
	}
}

func TestLoginSetsCookie(t *testing.T) {
	srv := newAuthServer(false, "")
	if rec := srv.do(http.MethodPost, "/api/v1/users/signup", signupBody); rec.Code != http.StatusCreated {
		t.Fatalf("signup: %d", rec.Code)
	}

	rec := srv.do(http.MethodPost, "/api/v1/users/login", `{"email":"ada@example.com","password":"pass1234"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cookie := tokenCookieFrom(t, rec); cookie.Value == "" || cookie.Value == loggedOutToken {
		t.Fatalf("expected a real token, got %q", cookie.Value)
	}

	rec = srv.do(http.MethodPost, "/api/v1/users/login", `{"email":"ada@example.com","password":"wrong-pass"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}
}

func TestLogoutOverwritesCookie(t *testing.T) {
	for _, production := range []bool{false, true} {
		srv := newAuthServer(production, "")
		rec := srv.do(http.MethodGet, "/api/v1/users/logout", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		cookie := tokenCookieFrom(t, rec)
		if cookie.Value != loggedOutToken || !cookie.HttpOnly || cookie.Secure != production {
			t.Fatalf("unexpected logout cookie %+v", cookie)
		}
		if until := time.Until(cookie.Expires); until <= 0 || until > 11*time.Second {
			t.Fatalf("expected a 10s placeholder, got %s", until)
		}
		if body := decodeBody(t, rec); body["status"] != "success" {
			t.Fatalf("unexpected body %v", body)
		}
	}
}

func TestForgotPasswordIgnoresRequestHost(t *testing.T) {
	srv := newAuthServer(true, "https://tourbook.example")
	if rec := srv.do(http.MethodPost, "/api/v1/users/signup", signupBody); rec.Code != http.StatusCreated {
		t.Fatalf("signup: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/forgotPassword", strings.NewReader(`{"email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Host = "attacker.evil"
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(srv.mailer.resetURL, "https://tourbook.example/api/v1/users/resetPassword/") {
		t.Fatalf("reset link must use the configured base, got %q", srv.mailer.resetURL)
	}
}

func TestForgotPasswordWithoutConfiguredBase(t *testing.T) {
	srv := newAuthServer(false, "")
	if rec := srv.do(http.MethodPost, "/api/v1/users/signup", signupBody); rec.Code != http.StatusCreated {
		t.Fatalf("signup: %d", rec.Code)
	}

	rec := srv.do(http.MethodPost, "/api/v1/users/forgotPassword", `{"email":"ada@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(srv.mailer.resetURL, "http://example.com/api/v1/users/resetPassword/") {
		t.Fatalf("expected request host fallback, got %q", srv.mailer.resetURL)
	}
}
