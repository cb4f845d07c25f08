package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

type AuthHandler struct {
	auth       *service.AuthService
	cookieTTL  time.Duration
	production bool
}

type AuthHandlerConfig struct {
	CookieTTL  time.Duration
	Production bool
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, cfg AuthHandlerConfig) {
	handler := &AuthHandler{auth: auth, cookieTTL: cfg.CookieTTL, production: cfg.Production}
	if handler.cookieTTL <= 0 {
		handler.cookieTTL = 90 * 24 * time.Hour
	}

	users := e.Group("/api/v1/users")
	users.POST("/signup", handler.signup)
	users.POST("/login", handler.login)
	users.GET("/logout", handler.logout)
	users.POST("/forgotPassword", handler.forgotPassword)
	users.PATCH("/resetPassword/:token", handler.resetPassword)
	users.PATCH("/updateMyPassword", handler.updatePassword, RequireAuth(auth))
}

// signup handles POST /api/v1/users/signup
func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	result, err := h.auth.Signup(c.Request().Context(), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusCreated, result)
}

// login handles POST /api/v1/users/login
func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, result)
}

// logout overwrites the cookie. Bearer tokens stay valid until they expire.
func (h *AuthHandler) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Value:    loggedOutToken,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, util.Envelope{"status": util.StatusSuccess})
}

// forgotPassword handles POST /api/v1/users/forgotPassword
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	base := c.Scheme() + "://" + c.Request().Host
	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email, base); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Envelope{"status": util.StatusSuccess, "message": "Token sent to email!"})
}

// resetPassword handles PATCH /api/v1/users/resetPassword/:token
func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	result, err := h.auth.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, result)
}

// updatePassword handles PATCH /api/v1/users/updateMyPassword
func (h *AuthHandler) updatePassword(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return service.ErrNotLoggedIn
	}
	var req UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	result, err := h.auth.UpdatePassword(c.Request().Context(), user.ID, req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, result)
}

func (h *AuthHandler) sendToken(c echo.Context, status int, result *service.AuthResult) error {
	setTokenCookie(c, result.Token, h.cookieTTL, h.production)
	return c.JSON(status, util.WithToken(result.Token, "user", result.User))
}

func setTokenCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
