package http

import (
	"net/http"
	"os"
	"sync"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

// RegisterSwagger serves the YAML spec at specPath as JSON plus the Swagger UI.
// The spec is converted once, on first request.
func RegisterSwagger(e *echo.Echo, specPath string, logger *zap.Logger) {
	var (
		once    sync.Once
		spec    []byte
		loadErr error
	)
	e.GET("/swagger/doc.json", func(c echo.Context) error {
		once.Do(func() {
			var data []byte
			data, loadErr = os.ReadFile(specPath)
			if loadErr == nil {
				spec, loadErr = yaml.YAMLToJSON(data)
			}
		})
		if loadErr != nil {
			logger.Error("load swagger spec", zap.String("path", specPath), zap.Error(loadErr))
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, spec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
