package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/docchat/internal/domain"
)

type stubHighlights struct {
	fn func(ctx context.Context, pdfID string, ids []string) ([]domain.Highlight, error)
}

func (s *stubHighlights) Highlights(ctx context.Context, pdfID string, ids []string) ([]domain.Highlight, error) {
	return s.fn(ctx, pdfID, ids)
}

func sampleHighlight(id string, page int) domain.Highlight {
	return domain.Highlight{
		ID: id,
		Position: domain.Position{
			PageNumber:   page,
			BoundingRect: domain.Rect{X1: 1, Y1: 2, X2: 3, Y2: 4, Width: 100, Height: 50},
			Rects:        []domain.Rect{{X1: 1, Y1: 2, X2: 3, Y2: 4}},
		},
		Content: domain.Content{Text: "selected text"},
		Comment: domain.Comment{Text: "note", Emoji: "💡"},
	}
}

func TestLoadForDocumentReplacesStore(t *testing.T) {
	backend := &stubHighlights{
		fn: func(ctx context.Context, pdfID string, ids []string) ([]domain.Highlight, error) {
			assert.Equal(t, "doc1", pdfID)
			return []domain.Highlight{sampleHighlight("h1", 1), sampleHighlight("h2", 2)}, nil
		},
	}
	store := NewHighlightStore(backend, zap.NewNop())

	loaded, err := store.LoadForDocument(context.Background(), "doc1", []string{"h1", "h2"})
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	h, ok := store.FindByID("h2")
	require.True(t, ok)
	assert.Equal(t, 2, h.Position.PageNumber)
}

func TestLoadForDocumentFailureIsRecoverable(t *testing.T) {
	backend := &stubHighlights{
		fn: func(ctx context.Context, pdfID string, ids []string) ([]domain.Highlight, error) {
			return nil, errors.New("backend down")
		},
	}
	store := NewHighlightStore(backend, zap.NewNop())
	store.Add(sampleHighlight("stale", 1))

	loaded, err := store.LoadForDocument(context.Background(), "doc1", []string{"h1"})
	assert.ErrorIs(t, err, domain.ErrHighlightsUnavailable)
	require.NotNil(t, loaded, "callers must get an empty collection, never nil")
	assert.Empty(t, loaded)
	assert.Empty(t, store.All())
}

func TestUpdateEmptyPatchesLeaveHighlightUnchanged(t *testing.T) {
	store := NewHighlightStore(nil, zap.NewNop())
	original := sampleHighlight("h1", 3)
	store.Add(original)

	store.Update("h1", domain.PositionPatch{}, domain.ContentPatch{})

	after, ok := store.FindByID("h1")
	require.True(t, ok)
	assert.Equal(t, original, after)
}

func TestUpdateMergesPatches(t *testing.T) {
	store := NewHighlightStore(nil, zap.NewNop())
	store.Add(sampleHighlight("h1", 3))

	newRect := domain.Rect{X1: 9, Y1: 8, X2: 7, Y2: 6, Width: 200, Height: 80}
	image := "data:image/png;base64,CCCC"
	store.Update("h1",
		domain.PositionPatch{BoundingRect: &newRect},
		domain.ContentPatch{Image: &image},
	)

	h, ok := store.FindByID("h1")
	require.True(t, ok)
	assert.Equal(t, 3, h.Position.PageNumber, "unpatched position fields survive")
	assert.Equal(t, newRect, h.Position.BoundingRect)
	assert.Equal(t, image, h.Content.Image)
	assert.Equal(t, "selected text", h.Content.Text, "other content fields untouched")
	assert.True(t, h.IsArea(), "patching in an image makes it an area highlight")
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	store := NewHighlightStore(nil, zap.NewNop())
	store.Add(sampleHighlight("h1", 3))

	page := 99
	store.Update("missing", domain.PositionPatch{PageNumber: &page}, domain.ContentPatch{})

	assert.Len(t, store.All(), 1)
	h, _ := store.FindByID("h1")
	assert.Equal(t, 3, h.Position.PageNumber)
}
