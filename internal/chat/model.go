// Package chat implements the conversational pipeline: validated requests
// flow through the deterministic matcher first and fall back to retrieval
// augmented generation.
package chat

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation limits for chat requests.
const (
	MaxMessageLength   = 2000
	MaxSessionIDLength = 255
	MaxMetadataBytes   = 1024
	MaxCommentLength   = 1000
)

var (
	sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
)

// Request is an incoming chat message. Both "query" and "message" are
// accepted; query takes precedence when both are present.
type Request struct {
	Query     string         `json:"query"`
	Message   string         `json:"message"`
	SessionID string         `json:"session_id"`
	Language  string         `json:"language"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Text returns the effective message content.
func (r *Request) Text() string {
	if r.Query != "" {
		return r.Query
	}
	return r.Message
}

// Validate sanitizes the request in place and reports the first problem
// found. After a successful Validate the message text is HTML-free and
// escaped, the language is set, and the session id is well formed.
func (r *Request) Validate() error {
	r.Query = sanitizeMessage(r.Query)
	r.Message = sanitizeMessage(r.Message)

	text := r.Text()
	if text == "" {
		return fmt.Errorf("either 'query' or 'message' field must be provided")
	}
	// Character limits, not bytes: accented Spanish text must not hit the
	// cap early.
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return fmt.Errorf("message exceeds maximum length of %d characters", MaxMessageLength)
	}

	if r.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if len(r.SessionID) > MaxSessionIDLength {
		return fmt.Errorf("session_id exceeds maximum length of %d characters", MaxSessionIDLength)
	}
	if !sessionIDPattern.MatchString(r.SessionID) {
		return fmt.Errorf("session_id contains invalid characters")
	}

	switch r.Language {
	case "":
		r.Language = "en"
	case "en", "es":
	default:
		return fmt.Errorf("language must be 'en' or 'es'")
	}

	if r.Metadata != nil {
		raw, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("metadata is not serializable")
		}
		if len(raw) > MaxMetadataBytes {
			return fmt.Errorf("metadata exceeds maximum size of %d bytes", MaxMetadataBytes)
		}
	}

	return nil
}

// sanitizeMessage strips HTML, escapes entities, and removes control
// characters except newline and tab.
func sanitizeMessage(s string) string {
	if s == "" {
		return s
	}
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.EscapeString(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Response is the chat reply envelope.
type Response struct {
	Response     string  `json:"response"`
	SessionID    string  `json:"session_id"`
	Language     string  `json:"language"`
	Source       string  `json:"source,omitempty"`
	ResponseTime float64 `json:"response_time,omitempty"`
	Timestamp    string  `json:"timestamp"`
	Status       string  `json:"status"`
}

// FeedbackRequest is a user rating of a chat response.
type FeedbackRequest struct {
	ConversationID string  `json:"conversation_id"`
	SessionID      string  `json:"session_id"`
	Rating         float64 `json:"rating"`
	Comment        string  `json:"comment"`
}

// Validate sanitizes and checks the feedback payload.
func (f *FeedbackRequest) Validate() error {
	if f.ConversationID == "" && f.SessionID == "" {
		return fmt.Errorf("either conversation_id or session_id must be provided")
	}
	if f.SessionID != "" && !sessionIDPattern.MatchString(f.SessionID) {
		return fmt.Errorf("session_id contains invalid characters")
	}
	if f.Rating < 1 || f.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	f.Comment = sanitizeMessage(f.Comment)
	if utf8.RuneCountInString(f.Comment) > MaxCommentLength {
		return fmt.Errorf("comment exceeds maximum length of %d characters", MaxCommentLength)
	}
	return nil
}

// now returns the RFC 3339 UTC timestamp used in response envelopes.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
