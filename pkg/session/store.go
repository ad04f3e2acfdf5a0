package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/papercomputeco/geminiweb/pkg/gemini"
	"github.com/papercomputeco/geminiweb/pkg/llm"
)

// Chatter is the part of the model client adapter the store needs.
type Chatter interface {
	StartChat(ctx context.Context) (*gemini.Conversation, error)
	SendMessage(ctx context.Context, conv *gemini.Conversation, text string) (llm.Turn, error)
}

// Config is the session store configuration.
type Config struct {
	// TTL is how long an idle session is kept.
	TTL time.Duration

	// CleanupInterval is how often expired sessions are purged.
	CleanupInterval time.Duration
}

const (
	DefaultTTL             = time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// Store keeps one ChatSession per UI session id in memory.
type Store struct {
	model  Chatter
	cache  *cache.Cache
	logger *zap.Logger

	// mu guards session creation and expiry refreshes so an id never gets
	// two sessions and a dropped session is not revived.
	mu sync.Mutex
}

// NewStore creates a new Store.
func NewStore(model Chatter, config Config, logger *zap.Logger) *Store {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}

	c := cache.New(config.TTL, config.CleanupInterval)
	c.OnEvicted(func(id string, _ any) {
		logger.Debug("chat session expired", zap.String("session", id))
	})

	return &Store{
		model:  model,
		cache:  c,
		logger: logger,
	}
}

// Get returns the session of id if it exists. Accessing a session keeps it
// alive for another TTL.
func (s *Store) Get(id string) (*ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touch(id)
}

// touch must be called with mu held.
func (s *Store) touch(id string) (*ChatSession, bool) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	sess := x.(*ChatSession)
	s.cache.SetDefault(id, sess)
	return sess, true
}

// GetOrCreate returns the session of id, starting a new remote conversation
// only when there is none. Repeated calls return the same *ChatSession. A
// failed StartChat stores nothing.
func (s *Store) GetOrCreate(ctx context.Context, id string) (*ChatSession, error) {
	if id == "" {
		return nil, &llm.InvalidStateError{Reason: "missing session id"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.touch(id); ok {
		return sess, nil
	}

	conv, err := s.model.StartChat(ctx)
	if err != nil {
		return nil, fmt.Errorf("start chat: %w", err)
	}

	sess := newChatSession(id, conv)
	s.cache.SetDefault(id, sess)
	s.logger.Info("initialized chat session",
		zap.String("session", id),
		zap.String("model", conv.Model()),
	)
	return sess, nil
}

// AppendExchange appends the user's text and then the assistant's reply to
// the history of sess.
func (s *Store) AppendExchange(sess *ChatSession, userText string, assistant llm.Turn) error {
	if sess == nil {
		return &llm.InvalidStateError{Reason: "no chat session"}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.appendExchange(userText, assistant)
}

// Send sends text in the conversation of sess and commits the exchange once
// the reply arrives. On failure the history is left untouched.
func (s *Store) Send(ctx context.Context, sess *ChatSession, text string) (llm.Turn, error) {
	if sess == nil || sess.conv == nil {
		return llm.Turn{}, &llm.InvalidStateError{Reason: "no chat session"}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	reply, err := s.model.SendMessage(ctx, sess.conv, text)
	if err != nil {
		return llm.Turn{}, err
	}

	if err := sess.appendExchange(text, reply); err != nil {
		return llm.Turn{}, err
	}

	s.logger.Debug("chat exchange stored",
		zap.String("session", sess.id),
		zap.Int("turns", len(sess.turns)),
		zap.String("head_hash", sess.history.HeadHash()),
	)
	return reply, nil
}

// Drop discards the session of id.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(id)
}

// Count returns the number of live sessions, including expired ones not yet
// purged.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
