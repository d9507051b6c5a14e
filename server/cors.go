package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// allowedOrigin picks the Access-Control-Allow-Origin value for a request
// origin. Without an origin header the first configured entry is used. A "*"
// entry allows any origin, a listed origin is echoed, and anything else gets
// the first configured origin.
func allowedOrigin(origin string, allowed []string) string {
	if len(allowed) == 0 {
		return "*"
	}
	if origin == "" {
		return allowed[0]
	}
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
	}
	for _, a := range allowed {
		if a == origin {
			return origin
		}
	}
	return allowed[0]
}

// cors sets the CORS headers on every response and answers preflight
// requests with 204.
func cors(allowed []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin(c.Request().Header.Get("Origin"), allowed))
			h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
			h.Set("Access-Control-Max-Age", "86400")
			h.Add("Vary", "Origin")

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
