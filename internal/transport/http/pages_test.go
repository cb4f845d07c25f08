package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
)

func newPagesEcho(t *testing.T) http.Handler {
	t.Helper()
	auth := &fakeAuthenticator{
		users: map[string]*domain.User{
			"member-token": {ID: uuid.New(), Name: "Sophie Hart", Role: domain.RoleUser},
		},
	}
	e := newTestEcho()
	if err := RegisterPages(e, auth, nil, nil); err != nil {
		t.Fatalf("RegisterPages: %v", err)
	}
	return e
}

func TestLoginPageShowsIdentityFromCookie(t *testing.T) {
	h := newPagesEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "member-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Log into your account") || !strings.Contains(body, "Sophie Hart") {
		t.Fatalf("unexpected page %s", body)
	}
}

func TestLoginPageAnonymousOnBadCookie(t *testing.T) {
	h := newPagesEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `href="/login"`) {
		t.Fatalf("expected anonymous header, got %s", rec.Body.String())
	}
}

func TestAccountPageRequiresLogin(t *testing.T) {
	h := newPagesEcho(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected rendered error page, got content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "You are not logged in") {
		t.Fatalf("unexpected page %s", rec.Body.String())
	}
}

func TestAPINotFoundStaysJSON(t *testing.T) {
	h := newPagesEcho(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Can't find /api/v1/nope on this server!" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestStaticAssetsServed(t *testing.T) {
	h := newPagesEcho(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("expected stylesheet, got %d", rec.Code)
	}
}
