package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/docchat/internal/domain"
)

// highlightChunkSize caps how many highlight IDs a single request carries.
const highlightChunkSize = 50

// DocumentClient talks to the document backend.
type DocumentClient struct {
	httpClient
	log *zap.Logger
}

// NewDocumentClient creates a document backend client.
func NewDocumentClient(baseURL string, timeout time.Duration, logger *zap.Logger) *DocumentClient {
	return &DocumentClient{
		httpClient: httpClient{
			base: baseURL,
			http: &http.Client{Timeout: timeout},
		},
		log: logger,
	}
}

// SetToken sets the bearer token attached to every request.
func (c *DocumentClient) SetToken(token string) { c.setToken(token) }

// Upload sends a local file to the document backend. Unsupported file types
// are rejected before any request is made.
func (c *DocumentClient) Upload(ctx context.Context, path, userID string) (*domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, allowed := range domain.AllowedUploadExtensions {
		if ext == allowed {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidRequest, ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := writer.WriteField("user_id", userID); err != nil {
		return nil, fmt.Errorf("write user_id field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload-pdf", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: upload %s: status %d", domain.ErrBackend, filepath.Base(path), resp.StatusCode)
	}

	var doc domain.Document
	if err := decodeJSON(resp.Body, &doc); err != nil {
		return nil, err
	}
	c.log.Info("uploaded document", zap.String("filename", doc.Filename), zap.String("id", doc.ID))
	return &doc, nil
}

// List returns every document the user has uploaded.
func (c *DocumentClient) List(ctx context.Context, userID string) ([]domain.Document, error) {
	var docs []domain.Document
	if err := c.doJSON(ctx, http.MethodGet, "/pdfs/"+url.PathEscape(userID), nil, &docs); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

type deleteDocRequest struct {
	FileID string `json:"file_id"`
	UserID string `json:"user_id"`
}

// Delete removes a document from the backend.
func (c *DocumentClient) Delete(ctx context.Context, fileID, userID string) error {
	req := deleteDocRequest{FileID: fileID, UserID: userID}
	if err := c.doJSON(ctx, http.MethodPost, "/delete-doc", req, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

type highlightsRequest struct {
	PDFID        string   `json:"pdf_id"`
	HighlightIDs []string `json:"highlight_ids"`
}

type highlightRecord struct {
	HighlightID  string          `json:"highlight_id"`
	Position     domain.Position `json:"position"`
	ContentText  string          `json:"content_text"`
	ContentImage string          `json:"content_image,omitempty"`
	CommentText  string          `json:"comment_text"`
	CommentEmoji string          `json:"comment_emoji"`
}

type highlightsResponse struct {
	Highlights []highlightRecord `json:"highlights"`
}

// Highlights fetches highlights by ID for one document and transforms the
// server records into the canonical shape. Large ID sets are fetched in
// chunks concurrently; results come back in input order.
func (c *DocumentClient) Highlights(ctx context.Context, pdfID string, ids []string) ([]domain.Highlight, error) {
	if len(ids) == 0 {
		return []domain.Highlight{}, nil
	}

	var chunks [][]string
	for start := 0; start < len(ids); start += highlightChunkSize {
		end := start + highlightChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}

	results := make([][]domain.Highlight, len(chunks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			req := highlightsRequest{PDFID: pdfID, HighlightIDs: chunk}
			var resp highlightsResponse
			if err := c.doJSON(gctx, http.MethodPost, "/document-highlights", req, &resp); err != nil {
				return fmt.Errorf("fetch highlights: %w", err)
			}

			highlights := make([]domain.Highlight, 0, len(resp.Highlights))
			for _, record := range resp.Highlights {
				h, err := record.toDomain()
				if err != nil {
					return err
				}
				highlights = append(highlights, h)
			}

			mu.Lock()
			results[i] = highlights
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Highlight
	for _, part := range results {
		all = append(all, part...)
	}
	c.log.Debug("fetched highlights", zap.String("pdf_id", pdfID), zap.Int("count", len(all)))
	return all, nil
}

func (r highlightRecord) toDomain() (domain.Highlight, error) {
	if r.HighlightID == "" {
		return domain.Highlight{}, fmt.Errorf("%w: highlight record missing highlight_id", domain.ErrMalformedPayload)
	}
	return domain.Highlight{
		ID:       r.HighlightID,
		Position: r.Position,
		Content:  domain.Content{Text: r.ContentText, Image: r.ContentImage},
		Comment:  domain.Comment{Text: r.CommentText, Emoji: r.CommentEmoji},
	}, nil
}
