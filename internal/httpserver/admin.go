package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/societyos/authhub/internal/service"
)

type AdminHTTP struct {
	Svc *service.AuthService
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) AssignRole(c echo.Context) error {
	var req struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.AssignRole(c.Request().Context(), req.UserID, req.Role); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated successfully"})
}

func (h *AdminHTTP) GrantPermission(c echo.Context) error {
	var req struct {
		UserID     uint   `json:"user_id"`
		Permission string `json:"permission"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.GrantPermission(c.Request().Context(), req.UserID, req.Permission); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "permission granted"})
}

func (h *AdminHTTP) RevokePermission(c echo.Context) error {
	var req struct {
		UserID     uint   `json:"user_id"`
		Permission string `json:"permission"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.RevokePermission(c.Request().Context(), req.UserID, req.Permission); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "permission revoked"})
}

func (h *AdminHTTP) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}

	docs, err := h.Svc.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": docs})
}
