package chat

import (
	"sync"

	"github.com/kineticchat/webui/internal/chat/rag"
	"github.com/kineticchat/webui/internal/platform/cache"
)

const (
	memorySessions = 1000
	memoryTurns    = 10
)

// conversationMemory keeps recent turns per session in-process so follow-up
// questions carry context. Nothing here is persisted; sessions fall out of
// the bounded LRU under pressure and the limit caps prompt growth.
type conversationMemory struct {
	// mu serializes the get-append-put in Append; concurrent requests on
	// the same session must not drop each other's turns.
	mu       sync.Mutex
	sessions *cache.LRU[string, []rag.Turn]
}

func newConversationMemory() *conversationMemory {
	return &conversationMemory{
		sessions: cache.NewLRU[string, []rag.Turn](memorySessions),
	}
}

// Recent returns the stored turns for a session, oldest first.
func (m *conversationMemory) Recent(sessionHash string) []rag.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns, _ := m.sessions.Get(sessionHash)
	return turns
}

// Append records one turn, keeping only the newest memoryTurns.
func (m *conversationMemory) Append(sessionHash, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns, _ := m.sessions.Get(sessionHash)
	turns = append(turns, rag.Turn{Role: role, Content: content})
	if len(turns) > memoryTurns {
		turns = turns[len(turns)-memoryTurns:]
	}
	m.sessions.Put(sessionHash, turns)
}
