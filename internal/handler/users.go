package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-management/internal/middleware"
	"github.com/iliyamo/user-management/internal/model"
	"github.com/iliyamo/user-management/internal/repository"
	"github.com/iliyamo/user-management/internal/service"
)

// UsersHandler exposes the user CRUD surface.
type UsersHandler struct {
	Users *service.Users
}

func NewUsersHandler(u *service.Users) *UsersHandler { return &UsersHandler{Users: u} }

type createUserReq struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      model.Role `json:"role"`
	IsActive  *bool      `json:"is_active"`
}

// updateUserReq uses pointers so that absent fields are never written.
type updateUserReq struct {
	Email     *string     `json:"email"`
	Password  *string     `json:"password"`
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	Role      *model.Role `json:"role"`
	IsActive  *bool       `json:"is_active"`
}

// Create: admin creates an account with an explicit role; no tokens issued.
func (h *UsersHandler) Create(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, actor.UserID, service.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Active:    req.IsActive,
	})
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(http.StatusCreated, u.Public())
}

// List: paginated users with optional search/role/active filters. An
// `email` parameter short-circuits to an exact lookup of one account.
func (h *UsersHandler) List(c echo.Context) error {
	if email := c.QueryParam("email"); email != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		defer cancel()
		u, err := h.Users.GetByEmail(ctx, email)
		if err != nil {
			return userError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"data": []model.PublicUser{u.Public()},
			"meta": model.NewPageMeta(1, 1, 1),
		})
	}

	q := model.UserQuery{
		Search: c.QueryParam("search"),
		Role:   model.Role(c.QueryParam("role")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}
	if v := c.QueryParam("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			q.IsActive = &b
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, meta, err := h.Users.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out, "meta": meta})
}

// Me: the caller's own profile.
func (h *UsersHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Get(ctx, id.UserID)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(http.StatusOK, u.Public())
}

// Get: one user by id.
func (h *UsersHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(http.StatusOK, u.Public())
}

// Update: patch a user. Admins may patch anyone; others only their own
// profile, never role or active flag.
func (h *UsersHandler) Update(c echo.Context) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Password != nil && len(*req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Update(ctx, actor.UserID, actor.Role, id, model.UserPatch{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(http.StatusOK, u.Public())
}

// Delete: remove a user permanently. Self-deletion is forbidden.
func (h *UsersHandler) Delete(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, actor.UserID, id); err != nil {
		return userError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted successfully"})
}

// ----- shared helpers -----

func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func paramUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// userError maps service/repository failures onto HTTP statuses.
func userError(c echo.Context, err error) error {
	switch {
	case service.IsForbidden(err):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
	case errors.Is(err, service.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
