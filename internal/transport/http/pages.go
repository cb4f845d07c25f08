package http

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type pageData struct {
	Title   string
	User    *domain.User
	Tours   []domain.Tour
	Tour    *domain.Tour
	Message string
}

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &templateRenderer{templates: t}, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type PageHandler struct {
	tours *service.TourService
	users *service.UserService
}

// RegisterPages installs the template renderer and the server-rendered views.
func RegisterPages(e *echo.Echo, auth Authenticator, tours *service.TourService, users *service.UserService) error {
	renderer, err := newTemplateRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	e.StaticFS("/static", assets)

	handler := &PageHandler{tours: tours, users: users}
	optional := OptionalAuth(auth)
	protect := RequireAuth(auth)
	e.GET("/", handler.overview, markPage, optional)
	e.GET("/tour/:slug", handler.tour, markPage, optional)
	e.GET("/login", handler.login, markPage, optional)
	e.GET("/me", handler.account, markPage, protect)
	e.POST("/submit-user-data", handler.submitUserData, markPage, protect)
	return nil
}

func (h *PageHandler) overview(c echo.Context) error {
	tours, err := h.tours.ListTours(c.Request().Context(), domain.TourListFilter{})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "overview", pageData{Title: "All Tours", User: pageUser(c), Tours: tours})
}

func (h *PageHandler) tour(c echo.Context) error {
	tour, err := h.tours.GetTourBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Render(http.StatusNotFound, "error", pageData{Title: "Something went wrong!", User: pageUser(c), Message: "There is no tour with that name."})
		}
		return err
	}
	return c.Render(http.StatusOK, "tour", pageData{Title: tour.Name + " Tour", User: pageUser(c), Tour: tour})
}

func (h *PageHandler) login(c echo.Context) error {
	return c.Render(http.StatusOK, "login", pageData{Title: "Log into your account", User: pageUser(c)})
}

func (h *PageHandler) account(c echo.Context) error {
	return c.Render(http.StatusOK, "account", pageData{Title: "Your account", User: pageUser(c)})
}

func (h *PageHandler) submitUserData(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return service.ErrNotLoggedIn
	}
	name, email := c.FormValue("name"), c.FormValue("email")
	updated, err := h.users.UpdateMe(c.Request().Context(), user.ID, service.UpdateMeInput{Name: &name, Email: &email})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "account", pageData{Title: "Your account", User: updated, Message: "Your settings were updated."})
}

func pageUser(c echo.Context) *domain.User {
	user, _ := CurrentUser(c)
	return user
}
