package http

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
)

const (
	contextUserKey = "auth.user"
	pageRequestKey = "page.request"
	tokenCookie    = "jwt"
	loggedOutToken = "loggedout"
)

// Authenticator resolves a bearer token to the active user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// RequireAuth accepts a bearer token, falling back to the jwt cookie.
func RequireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				token = cookieToken(c)
			}
			if token == "" {
				return service.ErrNotLoggedIn
			}
			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

// OptionalAuth reads only the cookie and leaves the request anonymous on any failure.
func OptionalAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := cookieToken(c); token != "" {
				if user, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					c.Set(contextUserKey, user)
				}
			}
			return next(c)
		}
	}
}

func RestrictTo(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return service.ErrNotLoggedIn
			}
			if !user.HasRole(roles...) {
				return service.ErrForbidden
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok && user != nil
}

func bearerToken(c echo.Context) string {
	header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return usableToken(parts[1])
}

func cookieToken(c echo.Context) string {
	cookie, err := c.Cookie(tokenCookie)
	if err != nil {
		return ""
	}
	return usableToken(cookie.Value)
}

func usableToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == loggedOutToken {
		return ""
	}
	return token
}

// markPage routes errors of the wrapped handlers to the error template.
func markPage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(pageRequestKey, true)
		return next(c)
	}
}

func isPageRequest(c echo.Context) bool {
	page, _ := c.Get(pageRequestKey).(bool)
	return page
}
