package domain

import "time"

// Document represents an uploaded document as the document backend reports it.
type Document struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	UploadTimestamp time.Time `json:"upload_timestamp"`
}

// AllowedUploadExtensions are the file types the document backend accepts.
// Anything else is rejected locally before a request is made.
var AllowedUploadExtensions = []string{".pdf", ".doc", ".docx", ".txt"}
