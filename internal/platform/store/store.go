// Package store persists conversation history and feedback. Persistence is
// optional; without a database the service runs stateless and the nop store
// is used.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is one turn of a conversation. Content must already be scrubbed
// by the caller; the store never sees raw user text.
type Message struct {
	ID          uuid.UUID
	SessionHash string
	Role        string // user, assistant
	Content     string
	Language    string
	Source      string // deterministic, rag
	CreatedAt   time.Time
}

// Feedback is a user rating of a chat response.
type Feedback struct {
	ID          uuid.UUID
	SessionHash string
	Rating      float64
	Comment     string
	CreatedAt   time.Time
}

// ConversationStore persists messages and feedback.
type ConversationStore interface {
	SaveMessage(ctx context.Context, m *Message) error
	SaveFeedback(ctx context.Context, f *Feedback) error
	RecentMessages(ctx context.Context, sessionHash string, limit int) ([]Message, error)
	Healthy(ctx context.Context) bool
}

// Nop discards all writes. Used when no DATABASE_URL is configured.
type Nop struct{}

func (Nop) SaveMessage(ctx context.Context, m *Message) error   { return nil }
func (Nop) SaveFeedback(ctx context.Context, f *Feedback) error { return nil }
func (Nop) RecentMessages(ctx context.Context, sessionHash string, limit int) ([]Message, error) {
	return nil, nil
}
func (Nop) Healthy(ctx context.Context) bool { return true }
