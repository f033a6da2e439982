package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"devdir/internal/errors"
)

// ledgerRetryAfter is the Retry-After hint, in seconds, on LEDGER_UNAVAILABLE.
const ledgerRetryAfter = 1

// respondError maps a service error to its HTTP error. The cause is kept as
// the internal error so the request logger records it.
func respondError(c echo.Context, err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusServiceUnavailable {
		c.Response().Header().Set("Retry-After", strconv.Itoa(ledgerRetryAfter))
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func badRequest(message, code string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
