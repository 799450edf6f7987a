package store

import (
	"context"
)

// Document is a searchable document row.
type Document struct {
	// ID is the unique document id.
	ID string
	// Content is the extracted document text.
	Content string
	// Category classifies the document.
	Category string
	// SourcePage is the page reference within the source file.
	SourcePage string
	// SourceFile is the original file name.
	SourceFile string
	// StorageURL points at the stored blob.
	StorageURL string
	// Company scopes the document to a tenant.
	Company string
	// Embedding is the content embedding vector.
	Embedding []float32
}

// SearchResult is a retrieval hit.
type SearchResult struct {
	// ID is the document id.
	ID string
	// Content is the document text.
	Content string
	// Category classifies the document.
	Category string
	// SourcePage is the page reference.
	SourcePage string
	// SourceFile is the original file name.
	SourceFile string
	// StorageURL points at the stored blob.
	StorageURL string
	// Company scopes the document to a tenant.
	Company string
	// Score is the similarity or match score.
	Score float32
}

// DocumentStore defines the search index operations.
type DocumentStore interface {
	// EnsureCollection creates the collection and its index if absent.
	EnsureCollection(ctx context.Context) error

	// Upsert inserts or overwrites documents by id.
	Upsert(ctx context.Context, docs []*Document) error

	// VectorSearch runs an ANN search, optionally narrowed by a boolean
	// filter expression.
	VectorSearch(ctx context.Context, embedding []float32, topK int, filter string) ([]*SearchResult, error)

	// KeywordSearch runs a scalar content match.
	KeywordSearch(ctx context.Context, term string, limit int) ([]*SearchResult, error)

	// Get returns a document by id, or nil if absent.
	Get(ctx context.Context, id string) (*SearchResult, error)

	// Delete removes documents by id.
	Delete(ctx context.Context, ids ...string) error

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int64, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
