package biz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/kart-io/logger"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/store"
	"github.com/JhonatanRC03/chat-rag/pkg/blob"
	"github.com/JhonatanRC03/chat-rag/pkg/docintel"
	"github.com/JhonatanRC03/chat-rag/pkg/llm"
	"github.com/JhonatanRC03/chat-rag/pkg/utils/text"
)

// previewLimit caps the extracted-text preview in the process result.
const previewLimit = 300

// ErrDocumentNotFound is returned when an operation targets a document id
// that is not in the index.
var ErrDocumentNotFound = errors.New("document not found")

// BlobStore abstracts the object storage used for raw document bytes.
type BlobStore interface {
	Upload(ctx context.Context, name string, r io.Reader, contentType string) (*blob.Object, error)
	Download(ctx context.Context, name string) (io.ReadCloser, *blob.Object, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*blob.Object, error)
}

// Analyzer abstracts the document analysis service.
type Analyzer interface {
	ExtractStructured(ctx context.Context, content []byte) (*docintel.StructuredData, error)
}

// AnalysisSummary summarizes what the analysis extracted from a document.
type AnalysisSummary struct {
	Pages          int    `json:"pages"`
	Tables         int    `json:"tables"`
	KeyValuePairs  int    `json:"key_value_pairs"`
	EstimatedWords int    `json:"estimated_words"`
	Preview        string `json:"preview"`
}

// ProcessResult is the outcome of a successful document ingest.
type ProcessResult struct {
	DocumentID string           `json:"document_id"`
	Blob       *blob.Object     `json:"blob"`
	Analysis   *AnalysisSummary `json:"analysis"`
}

// ProcessorConfig configures document ingest.
type ProcessorConfig struct {
	// Category is stamped on every ingested document.
	Category string
	// Company is the tenant tag stamped on every ingested document.
	Company string
}

// ProcessorService runs the document ingest pipeline:
// upload, analyze, embed, index.
type ProcessorService struct {
	blobs    BlobStore
	analyzer Analyzer
	embedder llm.EmbeddingProvider
	index    store.DocumentStore
	config   *ProcessorConfig
}

// NewProcessorService creates a document ingest service.
func NewProcessorService(
	blobs BlobStore,
	analyzer Analyzer,
	embedder llm.EmbeddingProvider,
	index store.DocumentStore,
	config *ProcessorConfig,
) *ProcessorService {
	if config == nil {
		config = &ProcessorConfig{Category: "document"}
	}
	return &ProcessorService{
		blobs:    blobs,
		analyzer: analyzer,
		embedder: embedder,
		index:    index,
		config:   config,
	}
}

// ProcessDocument stores the raw bytes, extracts structured content, embeds
// the extracted text and indexes the document. Any failure after the upload
// deletes the stored blob before returning.
func (s *ProcessorService) ProcessDocument(ctx context.Context, filename, contentType string, content []byte) (*ProcessResult, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("document %s is empty", filename)
	}

	obj, err := s.blobs.Upload(ctx, filename, bytes.NewReader(content), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	structured, err := s.analyzer.ExtractStructured(ctx, content)
	if err != nil {
		s.cleanupBlob(ctx, filename)
		return nil, fmt.Errorf("failed to analyze document: %w", err)
	}

	if err := s.index.EnsureCollection(ctx); err != nil {
		s.cleanupBlob(ctx, filename)
		return nil, fmt.Errorf("failed to prepare index: %w", err)
	}

	text := structured.TextContent
	embedInput := text
	if strings.TrimSpace(embedInput) == "" {
		// Scanned documents can come back without text. Index the file
		// name so the document stays findable.
		embedInput = filename
	}

	embedding, err := s.embedder.EmbedSingle(ctx, embedInput)
	if err != nil {
		s.cleanupBlob(ctx, filename)
		return nil, fmt.Errorf("failed to embed document: %w", err)
	}

	doc := &store.Document{
		ID:         uuid.NewString(),
		Content:    text,
		Category:   s.config.Category,
		SourcePage: "1",
		SourceFile: filename,
		StorageURL: obj.URL,
		Company:    s.config.Company,
		Embedding:  embedding,
	}

	if err := s.index.Upsert(ctx, []*store.Document{doc}); err != nil {
		s.cleanupBlob(ctx, filename)
		return nil, fmt.Errorf("failed to index document: %w", err)
	}

	logger.Infow("document processed",
		"document_id", doc.ID,
		"filename", filename,
		"size", len(content),
		"pages", structured.TotalPages,
	)

	return &ProcessResult{
		DocumentID: doc.ID,
		Blob:       obj,
		Analysis:   summarize(structured),
	}, nil
}

// GetDocument returns the indexed document with the given id, or nil.
func (s *ProcessorService) GetDocument(ctx context.Context, id string) (*store.SearchResult, error) {
	return s.index.Get(ctx, id)
}

// DeleteDocument removes the index row and, best effort, its stored blob.
func (s *ProcessorService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.index.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document %s: %w", id, ErrDocumentNotFound)
	}

	if err := s.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document from index: %w", err)
	}

	if doc.SourceFile != "" {
		if err := s.blobs.Delete(ctx, doc.SourceFile); err != nil {
			logger.Warnw("failed to delete document blob",
				"document_id", id,
				"filename", doc.SourceFile,
				"error", err.Error(),
			)
		}
	}
	return nil
}

// ListDocuments returns the stored blobs.
func (s *ProcessorService) ListDocuments(ctx context.Context) ([]*blob.Object, error) {
	return s.blobs.List(ctx)
}

func (s *ProcessorService) cleanupBlob(ctx context.Context, filename string) {
	if err := s.blobs.Delete(ctx, filename); err != nil {
		logger.Warnw("failed to clean up blob after ingest failure",
			"filename", filename,
			"error", err.Error(),
		)
	}
}

func summarize(structured *docintel.StructuredData) *AnalysisSummary {
	preview := structured.TextContent
	if len(preview) > previewLimit {
		preview = text.Truncate(preview, previewLimit) + "..."
	}
	return &AnalysisSummary{
		Pages:          structured.TotalPages,
		Tables:         structured.TablesCount,
		KeyValuePairs:  structured.KeyValueCount,
		EstimatedWords: len(strings.Fields(structured.TextContent)),
		Preview:        preview,
	}
}
