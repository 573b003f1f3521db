package metrics

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Middleware returns echo middleware that records every request in the
// collector. The response language is taken from the handler when it sets
// the "language" context key; otherwise the Accept-Language prefix is used.
func Middleware(collector *Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := collector.RecordRequestStart()

			err := next(c)

			language := requestLanguage(c)
			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
			}
			if status == http.StatusTooManyRequests {
				collector.RecordRateLimitHit()
			}
			collector.RecordRequestEnd(start, c.Request().URL.Path, status, language)
			return err
		}
	}
}

func requestLanguage(c echo.Context) string {
	if lang, ok := c.Get("language").(string); ok && lang != "" {
		return lang
	}
	accept := c.Request().Header.Get("Accept-Language")
	if len(accept) >= 2 {
		return accept[:2]
	}
	return ""
}
