package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// OwnerOnly lets the request through only when the path parameter param
// names the authenticated user. It must run after Auth.
func OwnerOnly(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(string)
			if userID == "" || userID != c.Param(param) {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}
