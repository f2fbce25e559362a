package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMalformedPayload indicates a backend payload that failed validation
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrBackend indicates a failed backend request
	ErrBackend = errors.New("backend request failed")
	// ErrHighlightsUnavailable indicates the highlight fetch failed; the
	// document view must still proceed with an empty highlight list
	ErrHighlightsUnavailable = errors.New("highlights unavailable")
	// ErrNoUser indicates no user is cached locally
	ErrNoUser = errors.New("no user logged in")
)
