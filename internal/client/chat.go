package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/user/docchat/internal/domain"
)

// ChatClient talks to the chat backend.
type ChatClient struct {
	httpClient
	log *zap.Logger
}

// NewChatClient creates a chat backend client.
func NewChatClient(baseURL string, timeout time.Duration, logger *zap.Logger) *ChatClient {
	return &ChatClient{
		httpClient: httpClient{
			base: baseURL,
			http: &http.Client{Timeout: timeout},
		},
		log: logger,
	}
}

// SetToken sets the bearer token attached to every request.
func (c *ChatClient) SetToken(token string) { c.setToken(token) }

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
	UserID    string `json:"user_id"`
}

// Send posts a question and returns the backend's answer together with the
// document/highlight map it was grounded on.
func (c *ChatClient) Send(ctx context.Context, question, sessionID, model, userID string) (*domain.ChatAnswer, error) {
	req := chatRequest{Question: question, SessionID: sessionID, Model: model, UserID: userID}

	var answer domain.ChatAnswer
	if err := c.doJSON(ctx, http.MethodPost, "/chat", req, &answer); err != nil {
		return nil, fmt.Errorf("send chat: %w", err)
	}
	if answer.Answer == "" {
		return nil, fmt.Errorf("%w: chat response missing answer", domain.ErrMalformedPayload)
	}
	return &answer, nil
}

// History fetches every recorded session for a user, keyed by session ID.
func (c *ChatClient) History(ctx context.Context, userID string) (map[string]domain.HistoryEntry, error) {
	path := "/chat-history?user_id=" + url.QueryEscape(userID)

	var history map[string]domain.HistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, fmt.Errorf("fetch chat history: %w", err)
	}

	for id, entry := range history {
		if id == "" {
			return nil, fmt.Errorf("%w: history entry with empty session id", domain.ErrMalformedPayload)
		}
		for i, q := range entry.Queries {
			if q.Query == "" && q.Response == "" {
				return nil, fmt.Errorf("%w: session %s query %d has neither query nor response", domain.ErrMalformedPayload, id, i)
			}
		}
	}

	c.log.Debug("fetched chat history", zap.String("user_id", userID), zap.Int("sessions", len(history)))
	return history, nil
}

type renameRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

// Rename updates the server-side name of a session.
func (c *ChatClient) Rename(ctx context.Context, userID, sessionID, name string) error {
	req := renameRequest{UserID: userID, SessionID: sessionID, Name: name}
	if err := c.doJSON(ctx, http.MethodPatch, "/chat-name", req, nil); err != nil {
		return fmt.Errorf("rename chat: %w", err)
	}
	return nil
}

// DeleteHistory removes a session's server-side history.
func (c *ChatClient) DeleteHistory(ctx context.Context, userID, sessionID string) error {
	path := fmt.Sprintf("/delete-chat-history?user_id=%s&session_id=%s",
		url.QueryEscape(userID), url.QueryEscape(sessionID))
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete chat history: %w", err)
	}
	return nil
}
