package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/deal-pipeline/internal/repository"
	"github.com/iliyamo/deal-pipeline/internal/service"
)

// UserHandler bundles dependencies for the admin-only user management
// endpoints and the read-only roles listing.
type UserHandler struct {
	Users *service.UserService
	Roles *repository.RoleRepo
}

func NewUserHandler(users *service.UserService, roles *repository.RoleRepo) *UserHandler {
	return &UserHandler{Users: users, Roles: roles}
}

type userUpdateReq struct {
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
type roleUpdateReq struct {
	Role string `json:"role"`
}

type rolePart struct {
	ID          uint8  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       int    `json:"level"`
}

func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// List returns all users with ?offset and ?limit pagination.
func (h *UserHandler) List(c echo.Context) error {
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx, offset, limit)
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Update edits a user's display name or active flag. Deactivating the last
// active admin is rejected with 400.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, id, service.UserUpdate{FullName: req.FullName, IsActive: req.IsActive})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// UpdateRole assigns a role from the closed enumeration. Demoting the last
// active admin is rejected with 400.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req roleUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.UpdateRole(ctx, id, req.Role)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Delete removes a user. Deleting the last active admin is rejected with
// 400.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRoles returns the assignable roles as reference data for clients.
func (h *UserHandler) ListRoles(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	roles, err := h.Roles.ListActive(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]rolePart, 0, len(roles))
	for _, r := range roles {
		out = append(out, rolePart{ID: r.ID, Name: r.Name, Description: r.Description, Level: r.Level})
	}
	return c.JSON(http.StatusOK, out)
}
