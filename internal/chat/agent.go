package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kineticchat/webui/internal/chat/deterministic"
	"github.com/kineticchat/webui/internal/chat/rag"
	"github.com/kineticchat/webui/internal/platform/metrics"
	"github.com/kineticchat/webui/internal/platform/phi"
	"github.com/kineticchat/webui/internal/platform/store"
)

// Answer sources reported in the response envelope.
const (
	SourceDeterministic = "deterministic"
	SourceRAG           = "rag"
	SourceUnavailable   = "unavailable"
)

// Responder streams a retrieval-grounded answer. *rag.Orchestrator is the
// production implementation.
type Responder interface {
	Respond(ctx context.Context, query, language string, history []rag.Turn, emit func(chunk string) error) error
}

// Agent routes a message through the deterministic matcher and falls back
// to retrieval. All text leaving the agent toward logs or storage is
// scrubbed first.
type Agent struct {
	matcher   *deterministic.Matcher
	responder Responder // nil when retrieval is not configured
	scrubber  *phi.Scrubber
	history   store.ConversationStore
	memory    *conversationMemory
	collector *metrics.Collector
	log       zerolog.Logger
}

// NewAgent wires the chat pipeline. responder may be nil; the agent then
// serves deterministic answers only.
func NewAgent(matcher *deterministic.Matcher, responder Responder, scrubber *phi.Scrubber, history store.ConversationStore, collector *metrics.Collector, log zerolog.Logger) *Agent {
	return &Agent{
		matcher:   matcher,
		responder: responder,
		scrubber:  scrubber,
		history:   history,
		memory:    newConversationMemory(),
		collector: collector,
		log:       log,
	}
}

// Process answers the message, streaming chunks through emit, and returns
// the answer source.
func (a *Agent) Process(ctx context.Context, message, sessionID, language string, emit func(chunk string) error) (string, error) {
	sessionHash := hashSessionID(sessionID)

	a.log.Info().
		Str("session_hash", sessionHash).
		Str("language", language).
		Str("query", a.scrubber.ScrubText(message)).
		Msg("processing chat message")

	a.saveTurn(ctx, sessionHash, "user", message, language, "")

	if response, ok := a.matcher.Lookup(message, language); ok {
		if err := emit(response); err != nil {
			return SourceDeterministic, err
		}
		a.memory.Append(sessionHash, "user", message)
		a.memory.Append(sessionHash, "assistant", response)
		a.saveTurn(ctx, sessionHash, "assistant", response, language, SourceDeterministic)
		return SourceDeterministic, nil
	}

	if a.responder == nil {
		msg := rag.NotInitializedMessage(language)
		if err := emit(msg); err != nil {
			return SourceUnavailable, err
		}
		a.collector.RecordError("rag_unavailable")
		return SourceUnavailable, nil
	}

	recent := a.memory.Recent(sessionHash)

	var full strings.Builder
	err := a.responder.Respond(ctx, message, language, recent, func(chunk string) error {
		full.WriteString(chunk)
		return emit(chunk)
	})
	if err != nil {
		a.collector.RecordError("rag_generation")
		a.log.Error().Err(err).Str("session_hash", sessionHash).Msg("retrieval answer failed")
	}

	a.memory.Append(sessionHash, "user", message)
	a.memory.Append(sessionHash, "assistant", full.String())
	a.saveTurn(ctx, sessionHash, "assistant", full.String(), language, SourceRAG)
	return SourceRAG, nil
}

// saveTurn persists one scrubbed conversation turn. Storage failures are
// logged and swallowed; chat must not depend on the database.
func (a *Agent) saveTurn(ctx context.Context, sessionHash, role, content, language, source string) {
	if a.history == nil {
		return
	}
	msg := &store.Message{
		SessionHash: sessionHash,
		Role:        role,
		Content:     a.scrubber.ScrubText(content),
		Language:    language,
		Source:      source,
	}
	if err := a.history.SaveMessage(ctx, msg); err != nil {
		a.log.Warn().Err(err).Str("session_hash", sessionHash).Msg("failed to persist conversation turn")
	}
}

// hashSessionID returns a short stable digest of the session id so raw
// identifiers never reach logs or storage.
func hashSessionID(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:8])
}
