package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/docchat/internal/config"
	"github.com/user/docchat/internal/domain"
	"github.com/user/docchat/internal/repository"
)

// ChatBackend is the slice of the chat client the session store needs.
type ChatBackend interface {
	Send(ctx context.Context, question, sessionID, model, userID string) (*domain.ChatAnswer, error)
	History(ctx context.Context, userID string) (map[string]domain.HistoryEntry, error)
	Rename(ctx context.Context, userID, sessionID, name string) error
	DeleteHistory(ctx context.Context, userID, sessionID string) error
}

// SessionStore owns every session and message for the lifetime of the
// process. It is the single writer of the "sessions" cache key: callers never
// touch the durable cache directly. Mutations are all-or-nothing — the cache
// snapshot is written before the in-memory state commits, so a failure leaves
// the previous state intact on both sides.
type SessionStore struct {
	cfg   *config.Config
	cache *repository.CacheRepository
	chat  ChatBackend
	log   *zap.Logger

	mu       sync.Mutex
	order    []string
	sessions map[string]*domain.Session
	current  string
	// mergeGen invalidates in-flight history merges superseded by a newer
	// one; completions re-check it before committing.
	mergeGen int
}

// NewSessionStore creates a session store, seeding it from the cached
// snapshot when one exists.
func NewSessionStore(cfg *config.Config, cache *repository.CacheRepository, chat ChatBackend, logger *zap.Logger) *SessionStore {
	s := &SessionStore{
		cfg:      cfg,
		cache:    cache,
		chat:     chat,
		log:      logger,
		sessions: make(map[string]*domain.Session),
	}

	cached, err := cache.LoadSessions()
	if err != nil {
		logger.Warn("ignoring unreadable session cache", zap.Error(err))
		return s
	}
	for i := range cached {
		sess := cached[i]
		s.order = append(s.order, sess.ID)
		s.sessions[sess.ID] = &sess
	}
	if len(s.order) > 0 {
		s.current = s.order[0]
	}
	return s
}

// Create allocates a new session with default settings and inserts it at the
// front of the collection. It never fails: a cache write error is logged and
// the in-memory session stands.
func (s *SessionStore) Create() string {
	model, temperature, prompt := s.cfg.DefaultSettings()
	session := &domain.Session{
		ID:        "session_" + uuid.NewString(),
		Title:     domain.DefaultSessionTitle,
		CreatedAt: time.Now(),
		Messages:  []domain.Message{},
		Settings: domain.Settings{
			Model:        model,
			Temperature:  temperature,
			SystemPrompt: prompt,
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append([]string{session.ID}, s.order...)
	s.sessions[session.ID] = session
	if err := s.persistLocked(); err != nil {
		s.log.Warn("failed to persist session snapshot", zap.Error(err))
	}
	return session.ID
}

// MergeHistory fetches the user's server-side history and replaces the local
// collection with the transformed result, newest first. The durable cache is
// overwritten only after a successful fetch and transform; any failure leaves
// memory and cache untouched.
func (s *SessionStore) MergeHistory(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id required", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	gen := s.mergeGen
	s.mu.Unlock()

	history, err := s.chat.History(ctx, userID)
	if err != nil {
		return err
	}

	merged := make([]*domain.Session, 0, len(history))
	for sessionID, entry := range history {
		merged = append(merged, s.transformEntry(sessionID, entry))
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mergeGen != gen {
		// A newer merge finished while this one was in flight.
		s.log.Debug("dropping stale history merge", zap.String("user_id", userID))
		return nil
	}
	s.mergeGen++

	order := make([]string, 0, len(merged))
	sessions := make(map[string]*domain.Session, len(merged))
	snapshot := make([]domain.Session, 0, len(merged))
	for _, sess := range merged {
		order = append(order, sess.ID)
		sessions[sess.ID] = sess
		snapshot = append(snapshot, *sess)
	}

	if err := s.cache.SaveSessions(snapshot); err != nil {
		return fmt.Errorf("persist merged history: %w", err)
	}

	s.order = order
	s.sessions = sessions
	if _, ok := s.sessions[s.current]; !ok {
		s.current = ""
		if len(s.order) > 0 {
			s.current = s.order[0]
		}
	}
	s.log.Info("merged chat history", zap.String("user_id", userID), zap.Int("sessions", len(order)))
	return nil
}

// transformEntry builds a session from one history entry: each query/response
// pair becomes a user message followed by an assistant message carrying the
// pair's document map, then the sequence is stably sorted by timestamp so
// pair adjacency survives ties.
func (s *SessionStore) transformEntry(sessionID string, entry domain.HistoryEntry) *domain.Session {
	messages := make([]domain.Message, 0, len(entry.Queries)*2)
	for _, q := range entry.Queries {
		messages = append(messages, domain.Message{
			ID:        "user_" + uuid.NewString(),
			Role:      domain.RoleUser,
			Content:   q.Query,
			Timestamp: q.Timestamp,
		})
		messages = append(messages, domain.Message{
			ID:        "assistant_" + uuid.NewString(),
			Role:      domain.RoleAssistant,
			Content:   q.Response,
			Timestamp: q.Timestamp,
			Documents: q.Documents,
		})
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	title := entry.Name
	if title == "" {
		title = "Chat from " + entry.Timestamp.Format("Jan 2, 2006")
	}
	model, temperature, prompt := s.cfg.DefaultSettings()
	if entry.Model != "" {
		model = entry.Model
	}

	return &domain.Session{
		ID:        sessionID,
		Title:     title,
		CreatedAt: entry.Timestamp,
		Messages:  messages,
		Settings: domain.Settings{
			Model:        model,
			Temperature:  temperature,
			SystemPrompt: prompt,
		},
	}
}

// Rename changes a session's title. A blank title is a no-op. Sessions with
// no messages are renamed locally only; anything with history requires a
// server write-through first, and on failure the local title is unchanged.
func (s *SessionStore) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("rename session %s: %w", id, domain.ErrNotFound)
	}
	local := len(session.Messages) == 0
	s.mu.Unlock()

	if !local {
		user, err := s.cache.LoadUser()
		if err != nil {
			return err
		}
		if err := s.chat.Rename(ctx, user.UserID, id, title); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok = s.sessions[id]
	if !ok {
		// Deleted while the server round-trip was in flight.
		return fmt.Errorf("rename session %s: %w", id, domain.ErrNotFound)
	}
	session.Title = title
	if err := s.persistLocked(); err != nil {
		s.log.Warn("failed to persist session snapshot", zap.Error(err))
	}
	return nil
}

// Delete removes a session. Gating mirrors Rename: empty sessions go locally,
// non-empty ones require the server round-trip first. When the current
// session is deleted, the first remaining session becomes current.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("delete session %s: %w", id, domain.ErrNotFound)
	}
	local := len(session.Messages) == 0
	s.mu.Unlock()

	if !local {
		user, err := s.cache.LoadUser()
		if err != nil {
			return err
		}
		if err := s.chat.DeleteHistory(ctx, user.UserID, id); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	if err := s.persistLocked(); err != nil {
		s.log.Warn("failed to persist session snapshot", zap.Error(err))
	}
	return nil
}

// PruneEmptyExcept removes every empty session except keepID.
func (s *SessionStore) PruneEmptyExcept(keepID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneEmptyExceptLocked(keepID)
}

func (s *SessionStore) pruneEmptyExceptLocked(keepID string) {
	changed := false
	for _, id := range append([]string(nil), s.order...) {
		if id == keepID {
			continue
		}
		if s.sessions[id].Empty() {
			s.removeLocked(id)
			changed = true
		}
	}
	if changed {
		if err := s.persistLocked(); err != nil {
			s.log.Warn("failed to persist session snapshot", zap.Error(err))
		}
	}
}

// SetCurrent switches the active session, pruning empty sessions first. The
// session being switched to is never pruned, even when it is itself empty.
func (s *SessionStore) SetCurrent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneEmptyExceptLocked(id)
	s.current = id
}

// Current returns the active session ID, or "" when none is set.
func (s *SessionStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Get returns a copy of a session.
func (s *SessionStore) Get(id string) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	return *session, true
}

// List returns copies of every session in collection order.
func (s *SessionStore) List() []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.sessions[id])
	}
	return out
}

// Append adds a message to a session, assigning an ID and timestamp when
// they are unset.
func (s *SessionStore) Append(id string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(id, msg)
}

func (s *SessionStore) appendLocked(id string, msg domain.Message) error {
	session, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("append to session %s: %w", id, domain.ErrNotFound)
	}
	if msg.ID == "" {
		msg.ID = msg.Role + "_" + uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	session.Messages = append(session.Messages, msg)
	if err := s.persistLocked(); err != nil {
		s.log.Warn("failed to persist session snapshot", zap.Error(err))
	}
	return nil
}

// SendMessage appends the user's message, asks the chat backend, and appends
// the assistant's reply (or an error-flagged turn on failure). The returned
// Streamer replays the answer at the configured cadence; callers own its
// lifetime and must stop it on teardown. Before committing the assistant
// turn the store re-checks that the session still exists, since the user may
// have navigated away while the request was in flight.
func (s *SessionStore) SendMessage(ctx context.Context, id, text string) (*Streamer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("send to session %s: %w", id, domain.ErrNotFound)
	}
	model := session.Settings.Model
	if err := s.appendLocked(id, domain.Message{Role: domain.RoleUser, Content: text}); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	user, err := s.cache.LoadUser()
	if err != nil {
		return nil, err
	}

	answer, err := s.chat.Send(ctx, text, id, model, user.UserID)
	if err != nil {
		s.mu.Lock()
		if _, ok := s.sessions[id]; ok {
			_ = s.appendLocked(id, domain.Message{
				Role:    domain.RoleAssistant,
				Content: "Sorry, there was an error processing your request. Please try again.",
				Error:   true,
			})
		}
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		// Session torn down mid-flight; drop the completion.
		return nil, fmt.Errorf("send to session %s: %w", id, domain.ErrNotFound)
	}
	if err := s.appendLocked(id, domain.Message{
		Role:      domain.RoleAssistant,
		Content:   answer.Answer,
		Documents: answer.Documents,
	}); err != nil {
		return nil, err
	}

	return NewStreamer(ctx, answer.Answer, s.cfg.TickInterval()), nil
}

// removeLocked drops a session from the collection and repairs the current
// pointer.
func (s *SessionStore) removeLocked(id string) {
	delete(s.sessions, id)
	for i, sid := range s.order {
		if sid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.current == id {
		s.current = ""
		if len(s.order) > 0 {
			s.current = s.order[0]
		}
	}
}

// persistLocked overwrites the durable snapshot with the current collection.
func (s *SessionStore) persistLocked() error {
	snapshot := make([]domain.Session, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, *s.sessions[id])
	}
	return s.cache.SaveSessions(snapshot)
}
