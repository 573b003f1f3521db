package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuditEntry records one access to a chat endpoint: who (hashed session),
// what, when, from where, and the outcome. Session ids are hashed before
// they enter the entry so no raw identifier reaches a sink.
type AuditEntry struct {
	SessionHash string
	Action      string // chat, feedback, read
	Path        string
	Method      string
	IPAddress   string
	UserAgent   string
	Timestamp   time.Time
	RequestID   string
	StatusCode  int
}

// AuditRecorder persists audit entries. The middleware falls back to
// structured logging when no recorder is supplied; tests provide mocks.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit returns middleware that records access to the chat API. Only paths
// under the API prefixes are audited; health, metrics, and static assets
// produce no entries.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !isAuditablePath(path) {
				return next(c)
			}

			// Run the handler first to capture the response status.
			err := next(c)

			entry := AuditEntry{
				Timestamp:   time.Now().UTC(),
				Path:        path,
				Method:      req.Method,
				IPAddress:   c.RealIP(),
				UserAgent:   req.UserAgent(),
				StatusCode:  c.Response().Status,
				SessionHash: hashSession(req.Header.Get("X-Session-ID")),
				Action:      auditAction(path, req.Method),
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "chat_audit").
				Str("request_id", entry.RequestID).
				Str("session_hash", entry.SessionHash).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("chat_access")

			return err
		}
	}
}

// isAuditablePath reports whether the path belongs to the chat API.
func isAuditablePath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/") || strings.HasPrefix(path, "/api/chat")
}

// auditAction classifies the request for the audit trail.
func auditAction(path, method string) string {
	switch {
	case strings.Contains(path, "/feedback"):
		return "feedback"
	case method == http.MethodPost:
		return "chat"
	default:
		return "read"
	}
}

// hashSession returns a short hex digest of the session id, or empty when
// no session header was sent.
func hashSession(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:8])
}
