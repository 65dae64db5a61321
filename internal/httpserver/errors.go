package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/societyos/authhub/internal/search"
	"github.com/societyos/authhub/internal/service"
)

// httpError maps the service failure taxonomy onto HTTP status codes. The
// response body carries the sentinel's wording only; storage and hashing
// detail stays in the logs.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid inputs")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrInvalidCredential):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, service.ErrEmailNotVerified):
		return echo.NewHTTPError(http.StatusUnauthorized, "please verify your email first")
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	case errors.Is(err, search.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
