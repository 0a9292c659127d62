package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-management/internal/middleware"
	"github.com/iliyamo/user-management/internal/model"
	"github.com/iliyamo/user-management/internal/service"
)

// AuditLister is the audit-trail query contract, satisfied by
// repository.AuditRepo.
type AuditLister interface {
	List(ctx context.Context, q model.AuditQuery) ([]model.AuditEntry, int, error)
}

// AdminHandler exposes the admin-only surface: dashboard statistics,
// activation toggles, and the audit-log query endpoint.
type AdminHandler struct {
	Users *service.Users
	Audit AuditLister
}

func NewAdminHandler(u *service.Users, a AuditLister) *AdminHandler {
	return &AdminHandler{Users: u, Audit: a}
}

// Dashboard: aggregate user counters. The route is wrapped with the
// Redis response cache, so repeated loads within the TTL skip the table
// scan.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Users.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats failed"})
	}
	return c.JSON(http.StatusOK, stats)
}

// Activate: turn a user's active flag on.
func (h *AdminHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

// Deactivate: turn a user's active flag off. Self-deactivation is
// forbidden; the user's stored refresh token stays in place but their
// next refresh fails on the inactive account.
func (h *AdminHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *AdminHandler) setActive(c echo.Context, active bool) error {
	actor, _ := middleware.CurrentUser(c)
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var msg string
	if active {
		msg, err = h.Users.Activate(ctx, actor.UserID, id)
	} else {
		msg, err = h.Users.Deactivate(ctx, actor.UserID, id)
	}
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// AuditLogs: paginated audit trail with optional actor/action/date filters.
// Dates are RFC 3339.
func (h *AdminHandler) AuditLogs(c echo.Context) error {
	q := model.AuditQuery{
		Action: model.AuditAction(c.QueryParam("action")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	if v := c.QueryParam("actor_id"); v != "" {
		id, err := paramUint(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid actor_id"})
		}
		q.ActorUserID = id
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
		}
		q.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
		}
		q.To = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, total, err := h.Audit.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": entries,
		"meta": model.NewPageMeta(total, q.Page, q.Limit),
	})
}
