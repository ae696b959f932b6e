package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response headers for the server-rendered pages.
// Pages load nothing from other origins; inline styles are allowed for the
// layout stylesheet.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy",
				"default-src 'self'; style-src 'self' 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "same-origin")

			// Form results may contain patient demographics.
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
