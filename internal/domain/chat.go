package domain

import (
	"strings"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultSessionTitle is the title given to a freshly created session.
const DefaultSessionTitle = "New Chat"

// Settings holds per-session chat settings.
type Settings struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	SystemPrompt string  `json:"system_prompt"`
}

// Message represents a chat message. Messages are append-only and never
// mutated once stored.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	// Documents maps document IDs to the highlight IDs an assistant turn was
	// grounded on, used to open the PDF viewer scoped to that turn.
	Documents map[string][]string `json:"documents,omitempty"`
	// Error marks a failed assistant turn.
	Error bool `json:"error,omitempty"`
}

// Session represents one chat conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
	Settings  Settings  `json:"settings"`
}

// Empty reports whether the session has no message with non-blank trimmed
// content. Empty sessions are subject to pruning on session switch.
func (s *Session) Empty() bool {
	for _, m := range s.Messages {
		if strings.TrimSpace(m.Content) != "" {
			return false
		}
	}
	return true
}

// ChatAnswer is the chat backend's response to a question.
type ChatAnswer struct {
	Answer    string              `json:"answer"`
	Documents map[string][]string `json:"documents,omitempty"`
	UserID    string              `json:"user_id"`
}

// HistoryQuery is one recorded query/response pair in the server history.
type HistoryQuery struct {
	Query     string              `json:"query"`
	Response  string              `json:"response"`
	Timestamp time.Time           `json:"timestamp"`
	Documents map[string][]string `json:"documents,omitempty"`
}

// HistoryEntry is one server-side session in the chat history payload.
type HistoryEntry struct {
	Queries   []HistoryQuery `json:"queries"`
	Name      string         `json:"name"`
	Model     string         `json:"model"`
	Timestamp time.Time      `json:"timestamp"`
}
