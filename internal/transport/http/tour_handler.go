package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/media"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

const defaultTourPage = 100

var tourSorts = map[string]domain.TourSort{
	string(domain.TourSortNewest):       domain.TourSortNewest,
	string(domain.TourSortPriceAsc):     domain.TourSortPriceAsc,
	string(domain.TourSortPriceDesc):    domain.TourSortPriceDesc,
	string(domain.TourSortRatingAsc):    domain.TourSortRatingAsc,
	string(domain.TourSortRatingDesc):   domain.TourSortRatingDesc,
	string(domain.TourSortDurationAsc):  domain.TourSortDurationAsc,
	string(domain.TourSortNameAsc):      domain.TourSortNameAsc,
	string(domain.TourSortBestAndCheap): domain.TourSortBestAndCheap,
}

type TourHandler struct {
	tours *service.TourService
}

func RegisterTours(e *echo.Echo, auth Authenticator, tours *service.TourService) {
	handler := &TourHandler{tours: tours}
	protect := RequireAuth(auth)
	staff := RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)

	g := e.Group("/api/v1/tours")
	g.GET("", handler.listTours)
	g.GET("/top-5-cheap", handler.topCheap)
	g.GET("/tour-stats", handler.stats)
	g.GET("/monthly-plan/:year", handler.monthlyPlan, protect, RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide, domain.RoleGuide))
	g.GET("/:id", handler.getTour)
	g.POST("", handler.createTour, protect, staff)
	g.PATCH("/:id", handler.updateTour, protect, staff)
	g.DELETE("/:id", handler.deleteTour, protect, staff)
}

// listTours handles GET /api/v1/tours
func (h *TourHandler) listTours(c echo.Context) error {
	filter, err := parseTourListFilter(c)
	if err != nil {
		return err
	}
	tours, err := h.tours.ListTours(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return h.renderList(c, tours)
}

// topCheap handles GET /api/v1/tours/top-5-cheap
func (h *TourHandler) topCheap(c echo.Context) error {
	tours, err := h.tours.TopCheap(c.Request().Context())
	if err != nil {
		return err
	}
	return h.renderList(c, tours)
}

func (h *TourHandler) renderList(c echo.Context, tours []domain.Tour) error {
	if tours == nil {
		tours = []domain.Tour{}
	}
	return c.JSON(http.StatusOK, util.List("tours", tours, len(tours)))
}

// stats handles GET /api/v1/tours/tour-stats
func (h *TourHandler) stats(c echo.Context) error {
	stats, err := h.tours.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("stats", stats))
}

// monthlyPlan handles GET /api/v1/tours/monthly-plan/:year
func (h *TourHandler) monthlyPlan(c echo.Context) error {
	raw := c.Param("year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		return invalidParam("year", raw)
	}
	plan, err := h.tours.MonthlyPlan(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("plan", plan))
}

// getTour handles GET /api/v1/tours/:id
func (h *TourHandler) getTour(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tour, err := h.tours.GetTour(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("tour", tour))
}

// createTour handles POST /api/v1/tours as JSON or multipart with an imageCover file.
func (h *TourHandler) createTour(c echo.Context) error {
	fields, cover, done, err := bindTourFields(c)
	if err != nil {
		return err
	}
	defer done()
	tour, err := h.tours.CreateTour(c.Request().Context(), fields, cover)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, util.Data("tour", tour))
}

// updateTour handles PATCH /api/v1/tours/:id
func (h *TourHandler) updateTour(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	fields, cover, done, err := bindTourFields(c)
	if err != nil {
		return err
	}
	defer done()
	tour, err := h.tours.UpdateTour(c.Request().Context(), id, fields, cover)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("tour", tour))
}

// deleteTour handles DELETE /api/v1/tours/:id
func (h *TourHandler) deleteTour(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tours.DeleteTour(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseTourListFilter(c echo.Context) (domain.TourListFilter, error) {
	var filter domain.TourListFilter
	var err error

	if raw := strings.TrimSpace(c.QueryParam("difficulty")); raw != "" {
		d := domain.Difficulty(strings.ToLower(raw))
		filter.Difficulty = &d
	}
	if filter.MinPrice, err = queryFloat(c, "price[gte]"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryFloat(c, "price[lte]"); err != nil {
		return filter, err
	}
	if filter.MinRating, err = queryFloat(c, "ratingsAverage[gte]"); err != nil {
		return filter, err
	}
	for _, bound := range []struct {
		name string
		dst  **int
	}{
		{"duration[gte]", &filter.MinDuration},
		{"duration[lte]", &filter.MaxDuration},
	} {
		raw := strings.TrimSpace(c.QueryParam(bound.name))
		if raw == "" {
			continue
		}
		v, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return filter, invalidParam(bound.name, raw)
		}
		*bound.dst = &v
	}

	if raw := strings.TrimSpace(c.QueryParam("sort")); raw != "" {
		sort, ok := tourSorts[raw]
		if !ok {
			return filter, invalidParam("sort", raw)
		}
		filter.Sort = sort
	}

	filter.Limit, filter.Offset, err = pageWindow(c, defaultTourPage)
	return filter, err
}

func queryFloat(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalidParam(name, raw)
	}
	return &v, nil
}

// bindTourFields reads a tour from JSON, or from multipart form values plus
// an optional imageCover file. done releases the upload.
func bindTourFields(c echo.Context) (domain.TourFields, *media.Upload, func(), error) {
	var fields domain.TourFields
	noop := func() {}

	if !isMultipart(c) {
		if err := c.Bind(&fields); err != nil {
			return fields, nil, noop, badBody(err)
		}
		return fields, nil, noop, nil
	}

	// Structured fields travel as a JSON document in the "tour" part.
	if raw := c.FormValue("tour"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return fields, nil, noop, invalidParam("tour", "malformed JSON")
		}
	}
	if v := formString(c, "name"); v != nil {
		fields.Name = v
	}
	if v := formString(c, "summary"); v != nil {
		fields.Summary = v
	}
	if v := formString(c, "description"); v != nil {
		fields.Description = v
	}
	if v := formString(c, "difficulty"); v != nil {
		d := domain.Difficulty(*v)
		fields.Difficulty = &d
	}
	for _, f := range []struct {
		name string
		dst  **int
	}{{"duration", &fields.Duration}, {"max_group_size", &fields.MaxGroupSize}} {
		if v := formString(c, f.name); v != nil {
			n, err := strconv.Atoi(strings.TrimSpace(*v))
			if err != nil {
				return fields, nil, noop, invalidParam(f.name, *v)
			}
			*f.dst = &n
		}
	}
	for _, f := range []struct {
		name string
		dst  **float64
	}{{"price", &fields.Price}, {"price_discount", &fields.PriceDiscount}} {
		if v := formString(c, f.name); v != nil {
			n, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
			if err != nil {
				return fields, nil, noop, invalidParam(f.name, *v)
			}
			*f.dst = &n
		}
	}

	cover, closer, err := formUpload(c, "imageCover")
	if err != nil {
		return fields, nil, noop, err
	}
	if closer == nil {
		return fields, cover, noop, nil
	}
	return fields, cover, func() { _ = closer.Close() }, nil
}
