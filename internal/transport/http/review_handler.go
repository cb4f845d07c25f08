package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

const defaultReviewPage = 100

type ReviewHandler struct {
	reviews *service.ReviewService
}

func RegisterReviews(e *echo.Echo, auth Authenticator, reviews *service.ReviewService) {
	handler := &ReviewHandler{reviews: reviews}
	protect := RequireAuth(auth)
	onlyUsers := RestrictTo(domain.RoleUser)
	authors := RestrictTo(domain.RoleUser, domain.RoleAdmin)

	nested := e.Group("/api/v1/tours/:tourId/reviews", protect)
	nested.GET("", handler.listReviews)
	nested.POST("", handler.createReview, onlyUsers)

	g := e.Group("/api/v1/reviews", protect)
	g.GET("", handler.listReviews)
	g.POST("", handler.createReview, onlyUsers)
	g.GET("/:id", handler.getReview)
	g.PATCH("/:id", handler.updateReview, authors)
	g.DELETE("/:id", handler.deleteReview, authors)
}

// listReviews handles GET /api/v1/reviews and /api/v1/tours/:tourId/reviews
func (h *ReviewHandler) listReviews(c echo.Context) error {
	var tourID *uuid.UUID
	if c.Param("tourId") != "" {
		id, err := pathID(c, "tourId")
		if err != nil {
			return err
		}
		tourID = &id
	}
	limit, offset, err := pageWindow(c, defaultReviewPage)
	if err != nil {
		return err
	}
	reviews, err := h.reviews.ListReviews(c.Request().Context(), tourID, limit, offset)
	if err != nil {
		return err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return c.JSON(http.StatusOK, util.List("reviews", reviews, len(reviews)))
}

// createReview takes the tour from the path when nested, else from the body.
func (h *ReviewHandler) createReview(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return service.ErrNotLoggedIn
	}
	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	rawTour := c.Param("tourId")
	field := "tourId"
	if rawTour == "" {
		rawTour, field = strings.TrimSpace(req.Tour), "tour"
	}
	tourID, err := uuid.Parse(rawTour)
	if err != nil {
		return invalidParam(field, rawTour)
	}

	review, aggregate, err := h.reviews.CreateReview(c.Request().Context(), user.ID, service.ReviewInput{
		TourID: tourID,
		Review: req.Review,
		Rating: req.Rating,
	})
	if err != nil {
		return err
	}
	review.ReviewerName, review.ReviewerPhoto = user.Name, user.Photo
	env := util.Data("review", review)
	env["aggregate"] = aggregate
	return c.JSON(http.StatusCreated, env)
}

// getReview handles GET /api/v1/reviews/:id
func (h *ReviewHandler) getReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	review, err := h.reviews.GetReview(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("review", review))
}

// updateReview handles PATCH /api/v1/reviews/:id
func (h *ReviewHandler) updateReview(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return service.ErrNotLoggedIn
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateReviewRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	review, err := h.reviews.UpdateReview(c.Request().Context(), id, user, service.ReviewUpdate{Review: req.Review, Rating: req.Rating})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("review", review))
}

// deleteReview handles DELETE /api/v1/reviews/:id
func (h *ReviewHandler) deleteReview(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return service.ErrNotLoggedIn
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.reviews.DeleteReview(c.Request().Context(), id, user); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
