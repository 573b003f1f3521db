package chat

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorHandler produces the service's JSON error envelope for unhandled
// errors. Server errors never expose internals; the request id lets
// operators correlate the response with logs.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "Internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		if code == http.StatusNotFound {
			msg = "Not found"
		}
		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", code).Str("path", c.Request().URL.Path).Msg("request failed")
			msg = "Internal server error"
		}

		body := map[string]any{
			"error":  msg,
			"status": "error",
		}
		if rid, ok := c.Get("request_id").(string); ok && rid != "" {
			body["request_id"] = rid
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}
