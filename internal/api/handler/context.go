package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxPhone extracts the donor phone injected by the Session middleware and
// fast-fails before any service call: presence proves the middleware ran.
func ctxPhone(c echo.Context) (string, error) {
	phone, _ := c.Get("phone").(string)
	if phone == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session identity")
	}
	return phone, nil
}
