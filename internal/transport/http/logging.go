package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
	maxLoggedObject    = 4 * maxLoggedBody
	redacted           = "redacted"
	resetPathMarker    = "/resetPassword/"
)

func registerLogging(e *echo.Echo, logger *zap.Logger) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			userID := "anonymous"
			if user, ok := CurrentUser(c); ok {
				userID = user.ID.String()
			}
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("user_id", userID),
				zap.String("method", v.Method),
				zap.String("uri", maskResetToken(v.URI)),
				zap.Int("status", v.Status),
				zap.Int64("latency_ms", v.Latency.Milliseconds()),
				zap.String("remote_ip", v.RemoteIP),
			}
			if body := c.Get(requestBodyLogKey); body != nil {
				fields = append(fields, zap.Any("request_body", body))
			}
			if body := c.Get(responseBodyLogKey); body != nil {
				fields = append(fields, zap.Any("response_body", body))
			}
			if v.Error != nil {
				fields = append(fields, zap.String("error", v.Error.Error()))
			}

			switch {
			case v.Status >= 500:
				logger.Error("request", fields...)
			case v.Status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		},
	}))

	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/static") || strings.HasPrefix(c.Path(), "/swagger")
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
				c.Set(requestBodyLogKey, summary)
			}
			if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
				c.Set(responseBodyLogKey, summary)
			}
		},
	}))
}

// maskResetToken hides the raw token of /resetPassword/<token> URIs.
func maskResetToken(uri string) string {
	idx := strings.Index(uri, resetPathMarker)
	if idx < 0 {
		return uri
	}
	rest := uri[idx+len(resetPathMarker):]
	suffix := ""
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		suffix = rest[cut:]
	}
	return uri[:idx+len(resetPathMarker)] + redacted + suffix
}

func sanitizeBody(body []byte, contentType string) interface{} {
	if len(body) == 0 {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case strings.HasPrefix(lowered, echo.MIMEMultipartForm):
		return sanitizeMultipart(body, contentType)
	case strings.HasPrefix(lowered, echo.MIMETextHTML):
		return nil
	case strings.HasPrefix(lowered, echo.MIMEApplicationForm):
		if values, err := url.ParseQuery(string(body)); err == nil && len(values) > 0 {
			fields := make(map[string]interface{}, len(values))
			for key, vals := range values {
				fields[key] = sanitizeString(strings.Join(vals, ","), strings.ToLower(key))
			}
			return limitSize(fields)
		}
	}

	var data interface{}
	if json.Unmarshal(body, &data) == nil {
		return limitSize(sanitizeJSON(data, ""))
	}
	if containsBinary(body) {
		return "binary"
	}
	text := string(body)
	if strings.Contains(strings.ToLower(text), "password") || strings.Contains(strings.ToLower(text), "token") {
		return redacted
	}
	return clampString(text)
}

// sensitiveKey matches password fields and issued tokens.
func sensitiveKey(key string) bool {
	return strings.Contains(key, "password") || key == "token"
}

func sanitizeJSON(value interface{}, keyHint string) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, val := range v {
			lower := strings.ToLower(key)
			if sensitiveKey(lower) {
				result[key] = redacted
				continue
			}
			result[key] = sanitizeJSON(val, lower)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = sanitizeJSON(item, keyHint)
		}
		return result
	case string:
		return sanitizeString(v, keyHint)
	default:
		return v
	}
}

func sanitizeString(value, keyHint string) string {
	if sensitiveKey(keyHint) {
		return redacted
	}
	if containsBinary([]byte(value)) {
		return "binary"
	}
	return clampString(value)
}

func sanitizeMultipart(body []byte, contentType string) interface{} {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		return "binary"
	}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := make(map[string]interface{})
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "binary"
		}
		name := part.FormName()
		switch {
		case name == "":
		case part.FileName() != "":
			fields[name] = "file:" + part.FileName()
		default:
			data, err := io.ReadAll(io.LimitReader(part, maxLoggedBody+1))
			if err != nil {
				fields[name] = "binary"
			} else {
				fields[name] = sanitizeString(string(data), strings.ToLower(name))
			}
		}
		_ = part.Close()
	}
	if len(fields) == 0 {
		return "binary"
	}
	return limitSize(fields)
}

// limitSize replaces oversized values with their top-level keys.
func limitSize(value interface{}) interface{} {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedObject {
		return value
	}
	out := map[string]interface{}{"_truncated": true, "_bytes": len(buf)}
	if m, ok := value.(map[string]interface{}); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		out["_keys"] = keys
	}
	return out
}

func containsBinary(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
