package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/docchat/internal/domain"
)

func newDocTestClient(t *testing.T, handler http.Handler) (*DocumentClient, *int64) {
	t.Helper()
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return NewDocumentClient(server.URL, 5*time.Second, zap.NewNop()), &requests
}

func TestUploadRejectsUnsupportedTypeWithoutRequest(t *testing.T) {
	client, requests := newDocTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte("png bytes"), 0644))

	_, err := client.Upload(context.Background(), path, "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.EqualValues(t, 0, atomic.LoadInt64(requests), "validation failures never reach the network")
}

func TestUploadSendsMultipart(t *testing.T) {
	client, _ := newDocTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload-pdf", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "u1", r.FormValue("user_id"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)

		json.NewEncoder(w).Encode(map[string]any{
			"id":               "doc42",
			"filename":         "report.pdf",
			"upload_timestamp": "2024-05-01T10:00:00Z",
		})
	}))

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))

	doc, err := client.Upload(context.Background(), path, "u1")
	require.NoError(t, err)
	assert.Equal(t, "doc42", doc.ID)
	assert.Equal(t, "report.pdf", doc.Filename)
}

func TestHighlightsTransformsRecords(t *testing.T) {
	client, _ := newDocTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/document-highlights", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "doc1", req["pdf_id"])

		json.NewEncoder(w).Encode(map[string]any{
			"highlights": []map[string]any{
				{
					"highlight_id": "h1",
					"position": map[string]any{
						"pageNumber":   4,
						"boundingRect": map[string]float64{"x1": 1, "y1": 2, "x2": 3, "y2": 4, "width": 100, "height": 50},
						"rects":        []map[string]float64{{"x1": 1, "y1": 2, "x2": 3, "y2": 4}},
					},
					"content_text":  "quoted passage",
					"comment_text":  "important",
					"comment_emoji": "🔥",
				},
			},
		})
	}))

	highlights, err := client.Highlights(context.Background(), "doc1", []string{"h1"})
	require.NoError(t, err)
	require.Len(t, highlights, 1)

	h := highlights[0]
	assert.Equal(t, "h1", h.ID)
	assert.Equal(t, 4, h.Position.PageNumber)
	assert.Equal(t, "quoted passage", h.Content.Text)
	assert.Equal(t, "important", h.Comment.Text)
	assert.Equal(t, "🔥", h.Comment.Emoji)
	assert.False(t, h.IsArea())
}

func TestHighlightsMissingIDIsMalformed(t *testing.T) {
	client, _ := newDocTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"highlights": []map[string]any{{"content_text": "no id"}},
		})
	}))

	_, err := client.Highlights(context.Background(), "doc1", []string{"h1"})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestHighlightsChunksLargeIDSets(t *testing.T) {
	client, requests := newDocTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HighlightIDs []string `json:"highlight_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.LessOrEqual(t, len(req.HighlightIDs), highlightChunkSize)

		records := make([]map[string]any, 0, len(req.HighlightIDs))
		for _, id := range req.HighlightIDs {
			records = append(records, map[string]any{"highlight_id": id})
		}
		json.NewEncoder(w).Encode(map[string]any{"highlights": records})
	}))

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = "h" + string(rune('a'+i%26)) + string(rune('0'+i%10))
	}

	highlights, err := client.Highlights(context.Background(), "doc1", ids)
	require.NoError(t, err)
	assert.Len(t, highlights, 120)
	assert.EqualValues(t, 3, atomic.LoadInt64(requests))
}

func TestHighlightsEmptyIDsNoRequest(t *testing.T) {
	client, requests := newDocTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	highlights, err := client.Highlights(context.Background(), "doc1", nil)
	require.NoError(t, err)
	assert.Empty(t, highlights)
	assert.EqualValues(t, 0, atomic.LoadInt64(requests))
}

func TestListDocuments(t *testing.T) {
	client, _ := newDocTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pdfs/u1", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "d1", "filename": "a.pdf", "upload_timestamp": "2024-05-01T10:00:00Z"},
		})
	}))

	docs, err := client.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.pdf", docs[0].Filename)
}
