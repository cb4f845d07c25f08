package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TourBook_APP_BackEnd/internal/media"
)

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), echo.MIMEMultipartForm)
}

// formUpload opens the named file of a multipart request. It returns nil when
// the field is absent.
func formUpload(c echo.Context, field string) (*media.Upload, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if header.Size > media.MaxUploadBytes {
		return nil, nil, media.ErrImageTooLarge
	}
	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, nil, media.ErrNotAnImage
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &media.Upload{
		Reader:      file,
		Size:        header.Size,
		FileName:    header.Filename,
		ContentType: contentType,
	}, file, nil
}

func formString(c echo.Context, field string) *string {
	v := c.FormValue(field)
	if _, ok := c.Request().Form[field]; !ok {
		return nil
	}
	return &v
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(name, raw)
	}
	return v, nil
}

// pageWindow converts page/limit query parameters into limit/offset.
func pageWindow(c echo.Context, defaultLimit int) (int, int, error) {
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit, nil
}
