package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/salutdigital/portal/internal/platform/i18n"
)

// Locale selects the response language from ?lang= first, then
// Accept-Language, then fallback, and stores it on the request context.
func Locale(fallback i18n.Locale) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var loc i18n.Locale
			if q := c.QueryParam("lang"); q != "" {
				loc = i18n.Parse(q, fallback)
			} else {
				loc = i18n.Match(c.Request().Header.Get("Accept-Language"), fallback)
			}
			c.Response().Header().Set("Content-Language", string(loc))
			c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), loc)))
			return next(c)
		}
	}
}
