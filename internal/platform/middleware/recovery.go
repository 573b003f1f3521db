package middleware

import (
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recovery converts handler panics into the service's JSON error envelope.
// The panic value and stack go to the log only; the client sees nothing
// beyond a generic message and the request id.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := make([]byte, 4096)
					n := runtime.Stack(stack, false)

					rid, _ := c.Get("request_id").(string)
					logger.Error().
						Str("request_id", rid).
						Str("path", c.Request().URL.Path).
						Interface("panic", r).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")

					if c.Response().Committed {
						return
					}
					body := map[string]any{
						"error":  "Internal server error",
						"status": "error",
					}
					if rid != "" {
						body["request_id"] = rid
					}
					err = c.JSON(http.StatusInternalServerError, body)
				}
			}()
			return next(c)
		}
	}
}
