package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TourBook_APP_BackEnd/internal/domain"
	"github.com/njprem/TourBook_APP_BackEnd/internal/service"
	"github.com/njprem/TourBook_APP_BackEnd/internal/util"
)

const defaultUserPage = 50

type UserHandler struct {
	users *service.UserService
}

func RegisterUsers(e *echo.Echo, auth Authenticator, users *service.UserService) {
	handler := &UserHandler{users: users}

	protect := RequireAuth(auth)
	adminOnly := RestrictTo(domain.RoleAdmin)

	g := e.Group("/api/v1/users")
	g.GET("/me", handler.getMe, protect)
	g.PATCH("/updateMe", handler.updateMe, protect)
	g.DELETE("/deleteMe", handler.deleteMe, protect)

	g.GET("", handler.listUsers, protect, adminOnly)
	g.GET("/:id", handler.getUser, protect, adminOnly)
	g.PATCH("/:id", handler.updateUser, protect, adminOnly)
	g.DELETE("/:id", handler.deleteUser, protect, adminOnly)
}

// getMe handles GET /api/v1/users/me
func (h *UserHandler) getMe(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return service.ErrNotLoggedIn
	}
	fresh, err := h.users.GetUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("user", fresh))
}

// updateMe handles PATCH /api/v1/users/updateMe as JSON or multipart with a photo.
func (h *UserHandler) updateMe(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return service.ErrNotLoggedIn
	}

	var input service.UpdateMeInput
	if isMultipart(c) {
		input.Name = formString(c, "name")
		input.Email = formString(c, "email")
		input.Password = formString(c, "password")
		input.PasswordConfirm = formString(c, "passwordConfirm")
		photo, closer, err := formUpload(c, "photo")
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}
		input.Photo = photo
	} else {
		var req UpdateMeRequest
		if err := c.Bind(&req); err != nil {
			return badBody(err)
		}
		input.Name, input.Email = req.Name, req.Email
		input.Password, input.PasswordConfirm = req.Password, req.PasswordConfirm
	}

	updated, err := h.users.UpdateMe(c.Request().Context(), user.ID, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("user", updated))
}

// deleteMe handles DELETE /api/v1/users/deleteMe
func (h *UserHandler) deleteMe(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return service.ErrNotLoggedIn
	}
	if err := h.users.DeleteMe(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// listUsers handles GET /api/v1/users
func (h *UserHandler) listUsers(c echo.Context) error {
	limit, offset, err := pageWindow(c, defaultUserPage)
	if err != nil {
		return err
	}
	users, err := h.users.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, util.List("users", users, len(users)))
}

// getUser handles GET /api/v1/users/:id
func (h *UserHandler) getUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("user", user))
}

// updateUser handles PATCH /api/v1/users/:id
func (h *UserHandler) updateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AdminUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	user, err := h.users.UpdateUser(c.Request().Context(), id, service.AdminUserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, util.Data("user", user))
}

// deleteUser handles DELETE /api/v1/users/:id
func (h *UserHandler) deleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidParam(name, raw)
	}
	return id, nil
}
