// Package session holds the chat conversation of every UI session. A user
// session owns at most one ChatSession, created lazily on its first visit to
// the chat view and dropped when the session expires.
package session

import (
	"sync"
	"time"

	"github.com/papercomputeco/geminiweb/pkg/gemini"
	"github.com/papercomputeco/geminiweb/pkg/llm"
	"github.com/papercomputeco/geminiweb/pkg/merkle"
)

// ChatSession is the chat conversation of one user session: the remote
// conversation handle and the local, append-only history of turns.
type ChatSession struct {
	id        string
	createdAt time.Time
	conv      *gemini.Conversation

	// mu serializes exchanges so the handle and the turns stay in sync.
	mu      sync.Mutex
	turns   []llm.Turn
	history merkle.Chain
}

func newChatSession(id string, conv *gemini.Conversation) *ChatSession {
	return &ChatSession{
		id:        id,
		createdAt: time.Now(),
		conv:      conv,
	}
}

// ID returns the identifier of the owning UI session.
func (s *ChatSession) ID() string {
	return s.id
}

// CreatedAt returns when the session was created.
func (s *ChatSession) CreatedAt() time.Time {
	return s.createdAt
}

// Handle returns the remote conversation handle.
func (s *ChatSession) Handle() *gemini.Conversation {
	return s.conv
}

// Turns returns a copy of the history in chronological order.
func (s *ChatSession) Turns() []llm.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]llm.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns in the history.
func (s *ChatSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// HeadHash identifies the whole ordered history; it changes with every
// appended turn and is empty for a new session.
func (s *ChatSession) HeadHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.HeadHash()
}

// appendExchange must be called with mu held.
func (s *ChatSession) appendExchange(userText string, assistant llm.Turn) error {
	if assistant.Role != llm.RoleAssistant {
		return &llm.InvalidStateError{Reason: "reply turn has role " + string(assistant.Role)}
	}

	user := llm.UserTurn(userText)
	s.turns = append(s.turns, user, assistant)
	s.history.Append(user)
	s.history.Append(assistant)
	return nil
}
