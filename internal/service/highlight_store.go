package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/user/docchat/internal/domain"
)

// HighlightBackend is the slice of the document client the highlight store
// needs.
type HighlightBackend interface {
	Highlights(ctx context.Context, pdfID string, ids []string) ([]domain.Highlight, error)
}

// HighlightStore owns the highlights of a single document view. Highlights
// are created by a fetch or a selection and updated in place; deletion is
// not part of this surface.
type HighlightStore struct {
	docs HighlightBackend
	log  *zap.Logger

	mu         sync.RWMutex
	order      []string
	highlights map[string]*domain.Highlight
}

// NewHighlightStore creates a highlight store.
func NewHighlightStore(docs HighlightBackend, logger *zap.Logger) *HighlightStore {
	return &HighlightStore{
		docs:       docs,
		log:        logger,
		highlights: make(map[string]*domain.Highlight),
	}
}

// LoadForDocument fetches the given highlight IDs for a document and replaces
// the store's contents with the result. A fetch failure is recoverable: the
// store is reset, the returned collection is empty (never nil), and the error
// wraps ErrHighlightsUnavailable so callers can keep the document view open.
func (s *HighlightStore) LoadForDocument(ctx context.Context, documentID string, ids []string) ([]domain.Highlight, error) {
	fetched, err := s.docs.Highlights(ctx, documentID, ids)
	if err != nil {
		s.Reset()
		s.log.Warn("highlight fetch failed, continuing without highlights",
			zap.String("document_id", documentID), zap.Error(err))
		return []domain.Highlight{}, fmt.Errorf("%w: %v", domain.ErrHighlightsUnavailable, err)
	}

	s.mu.Lock()
	s.order = s.order[:0]
	s.highlights = make(map[string]*domain.Highlight, len(fetched))
	for i := range fetched {
		h := fetched[i]
		if _, dup := s.highlights[h.ID]; dup {
			continue
		}
		s.order = append(s.order, h.ID)
		s.highlights[h.ID] = &h
	}
	s.mu.Unlock()

	return s.All(), nil
}

// Add inserts a highlight created from a local selection.
func (s *HighlightStore) Add(h domain.Highlight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.highlights[h.ID]; exists {
		return
	}
	s.order = append(s.order, h.ID)
	s.highlights[h.ID] = &h
}

// Update merges partial position and content patches into an existing
// highlight. Unknown IDs are a no-op; unspecified fields are never removed,
// so empty patches leave the highlight unchanged.
func (s *HighlightStore) Update(id string, position domain.PositionPatch, content domain.ContentPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.highlights[id]
	if !ok {
		return
	}
	h.Position = position.Apply(h.Position)
	h.Content = content.Apply(h.Content)
}

// FindByID returns the highlight with the exact ID.
func (s *HighlightStore) FindByID(id string) (domain.Highlight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.highlights[id]
	if !ok {
		return domain.Highlight{}, false
	}
	return *h, true
}

// All returns copies of every highlight in load order.
func (s *HighlightStore) All() []domain.Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Highlight, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.highlights[id])
	}
	return out
}

// Reset drops every highlight.
func (s *HighlightStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.highlights = make(map[string]*domain.Highlight)
}
