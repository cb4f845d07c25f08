package http

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/TourBook_APP_BackEnd/internal/media"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

const (
	msgNotLoggedIn = "You are not logged in! Please log in to get access."
	msgForbidden   = "You do not have permission to perform this action"
	msgUnknown     = "Something went wrong!"
)

// paramError reports a path or query value that failed to parse.
type paramError struct {
	field string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("Invalid %s: %s", e.field, e.value)
}

func invalidParam(field, value string) error {
	return &paramError{field: field, value: value}
}

// apiError is a resolved error ready to be rendered.
type apiError struct {
	Status  int
	Message string
	// Operational errors are expected and safe to show as-is.
	Operational bool
}

var sentinelErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrMissingCredentials, http.StatusBadRequest, "Please provide email and password!"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Incorrect email or password"},
	{service.ErrEmailAlreadyUsed, http.StatusBadRequest, "Duplicate field value: email. Please use another value!"},
	{service.ErrIncorrectPassword, http.StatusUnauthorized, "Your current password is wrong."},
	{service.ErrUserNotFound, http.StatusNotFound, "There is no user with that email address."},
	{service.ErrEmailDelivery, http.StatusInternalServerError, "There was an error sending the email. Try again later!"},
	{service.ErrResetTokenInvalid, http.StatusBadRequest, "Token is invalid or has expired"},
	{service.ErrNotLoggedIn, http.StatusUnauthorized, msgNotLoggedIn},
	{service.ErrUserGone, http.StatusUnauthorized, "The user belonging to this token no longer exists."},
	{service.ErrStaleToken, http.StatusUnauthorized, "User recently changed password! Please log in again."},
	{service.ErrPasswordRoute, http.StatusBadRequest, "This route is not for password updates. Please use /updateMyPassword."},
	{service.ErrReviewAlreadyExist, http.StatusConflict, "You have already reviewed this tour"},
	{service.ErrReviewForbidden, http.StatusForbidden, msgForbidden},
	{service.ErrForbidden, http.StatusForbidden, msgForbidden},
	{service.ErrNotFound, http.StatusNotFound, "No document found with that ID"},
	{sql.ErrNoRows, http.StatusNotFound, "No document found with that ID"},
	{util.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token. Please log in again!"},
	{util.ErrTokenExpired, http.StatusUnauthorized, "Your token has expired! Please log in again."},
	{media.ErrNotAnImage, http.StatusBadRequest, "Not an image! Please upload only images."},
	{media.ErrImageTooLarge, http.StatusRequestEntityTooLarge, "Image is too large. The limit is 5MB."},
}

func resolveError(err error, path string) apiError {
	var pErr *paramError
	if errors.As(err, &pErr) {
		return apiError{Status: http.StatusBadRequest, Message: pErr.Error(), Operational: true}
	}

	if errors.Is(err, service.ErrValidation) {
		detail := strings.TrimPrefix(err.Error(), service.ErrValidation.Error())
		detail = strings.TrimSpace(strings.TrimPrefix(detail, ":"))
		msg := "Invalid input data."
		if detail != "" {
			msg += " " + capitalize(detail) + "."
		}
		return apiError{Status: http.StatusBadRequest, Message: msg, Operational: true}
	}

	for _, s := range sentinelErrors {
		if errors.Is(err, s.err) {
			return apiError{Status: s.status, Message: s.message, Operational: true}
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apiError{Status: http.StatusBadRequest, Message: fmt.Sprintf("Duplicate field value: %s. Please use another value!", duplicateValue(pgErr)), Operational: true}
		case "22P02":
			return apiError{Status: http.StatusBadRequest, Message: "Invalid input data. A value is malformed.", Operational: true}
		case "23502":
			msg := "Invalid input data. A required field is missing."
			if pgErr.ColumnName != "" {
				msg = fmt.Sprintf("Invalid input data. %s is required.", capitalize(pgErr.ColumnName))
			}
			return apiError{Status: http.StatusBadRequest, Message: msg, Operational: true}
		case "23514":
			return apiError{Status: http.StatusBadRequest, Message: "Invalid input data. A value is out of range.", Operational: true}
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprint(he.Message)
		switch {
		case he.Code == http.StatusNotFound && he.Message == http.StatusText(http.StatusNotFound):
			msg = fmt.Sprintf("Can't find %s on this server!", path)
		case he.Code == http.StatusRequestEntityTooLarge:
			msg = "Request body is too large."
		}
		return apiError{Status: he.Code, Message: msg, Operational: he.Code < http.StatusInternalServerError}
	}

	return apiError{Status: http.StatusInternalServerError, Message: msgUnknown}
}

// duplicateValue pulls the conflicting value out of a unique violation detail
// such as `Key (name)=(The Forest Hiker) already exists.`.
func duplicateValue(pgErr *pgconn.PgError) string {
	detail := pgErr.Detail
	if start := strings.Index(detail, "=("); start >= 0 {
		rest := detail[start+2:]
		if end := strings.LastIndex(rest, ")"); end >= 0 {
			return rest[:end]
		}
	}
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return "value"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func envelopeFor(resolved apiError) util.Envelope {
	if resolved.Status < http.StatusInternalServerError {
		return util.Fail(resolved.Message)
	}
	return util.Error(resolved.Message)
}

// NewErrorHandler renders every error returned by handlers and middleware.
// Page routes get the error template, everything else JSON.
func NewErrorHandler(logger *zap.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		resolved := resolveError(err, c.Request().URL.Path)
		if !resolved.Operational {
			logger.Error("request failed",
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
		}

		var writeErr error
		switch {
		case isPageRequest(c):
			msg := resolved.Message
			if !resolved.Operational {
				msg = "Please try again later."
			}
			writeErr = c.Render(resolved.Status, "error", pageData{Title: "Something went wrong!", Message: msg, User: pageUser(c)})
		case c.Request().Method == http.MethodHead:
			writeErr = c.NoContent(resolved.Status)
		default:
			body := envelopeFor(resolved)
			if !production && !resolved.Operational {
				body["error"] = err.Error()
			}
			writeErr = c.JSON(resolved.Status, body)
		}
		if writeErr != nil {
			logger.Error("write error response", zap.Error(writeErr))
		}
	}
}

func badBody(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
}
