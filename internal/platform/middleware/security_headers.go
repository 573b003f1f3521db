package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeadersConfig controls the headers set on every response.
type SecurityHeadersConfig struct {
	EnableHSTS   bool
	HSTSMaxAge   int // seconds
	FrameOptions string
	CSP          string

	// NoStorePrefixes lists path prefixes whose responses may carry
	// sensitive chat content and must never be cached.
	NoStorePrefixes []string
}

// DefaultSecurityHeadersConfig returns the default policy. The CSP allows
// same-origin assets plus inline styles because the server also hosts the
// chat widget's static page.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		EnableHSTS:   true,
		HSTSMaxAge:   31536000,
		FrameOptions: "DENY",
		CSP: strings.Join([]string{
			"default-src 'self'",
			"script-src 'self' 'unsafe-inline'",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data: https:",
			"connect-src 'self'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		}, "; "),
		NoStorePrefixes: []string{"/api/v1/chat", "/api/chat"},
	}
}

// SecurityHeaders returns middleware that sets security response headers on
// every request, following the OWASP secure headers recommendations.
func SecurityHeaders(cfg SecurityHeadersConfig) echo.MiddlewareFunc {
	hsts := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains; preload"
	permissions := "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()"

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			h.Set("X-Frame-Options", cfg.FrameOptions)

			// Legacy XSS filter for older browsers
			h.Set("X-XSS-Protection", "1; mode=block")

			if cfg.CSP != "" {
				h.Set("Content-Security-Policy", cfg.CSP)
			}

			if cfg.EnableHSTS {
				h.Set("Strict-Transport-Security", hsts)
			}

			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Disable browser features the chat UI does not need.
			h.Set("Permissions-Policy", permissions)

			// Chat responses can embed user-derived content; never cache.
			path := c.Request().URL.Path
			for _, prefix := range cfg.NoStorePrefixes {
				if strings.HasPrefix(path, prefix) {
					h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
					h.Set("Pragma", "no-cache")
					h.Set("Expires", "0")
					break
				}
			}

			return next(c)
		}
	}
}
