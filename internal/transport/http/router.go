package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const contentSecurityPolicy = "default-src 'self'; img-src 'self' data: https:; " +
	"script-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self'; frame-ancestors 'none'"

type RouterConfig struct {
	AllowOrigins []string
	Production   bool
	BodyLimit    string
	// RateLimitStore is shared between instances. Nil falls back to an
	// in-memory store sized by RateLimitMax and RateLimitWindow.
	RateLimitStore  middleware.RateLimiterStore
	RateLimitMax    int
	RateLimitWindow time.Duration
	Logger          *zap.Logger
}

func NewRouter(cfg RouterConfig) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewErrorHandler(logger, cfg.Production)

	allowCredentials := true
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	e.Use(middleware.RequestID())
	registerLogging(e, logger)

	e.Use(middleware.Recover())
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            hstsMaxAge(cfg.Production),
		ReferrerPolicy:        "same-origin",
		ContentSecurityPolicy: contentSecurityPolicy,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderOrigin,
			echo.HeaderXRequestedWith,
		},
		AllowCredentials: allowCredentials,
	}))

	bodyLimit := cfg.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "10KB"
	}
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Skipper: isMultipart,
		Limit:   bodyLimit,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Skipper: func(c echo.Context) bool { return !isMultipart(c) },
		Limit:   "6M",
	}))

	e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(cfg)))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	return e
}

func rateLimiterConfig(cfg RouterConfig) middleware.RateLimiterConfig {
	store := cfg.RateLimitStore
	if store == nil {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Hour
		}
		max := cfg.RateLimitMax
		if max <= 0 {
			max = 100
		}
		store = middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(max) / window.Seconds()),
			Burst:     max,
			ExpiresIn: window,
		})
	}
	return middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/api")
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests from this IP, please try again in an hour!")
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client").SetInternal(err)
		},
	}
}

func hstsMaxAge(production bool) int {
	if production {
		return 31536000
	}
	return 0
}
