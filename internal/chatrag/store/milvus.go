package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JhonatanRC03/chat-rag/pkg/component/milvus"
)

// metaFields are the VARCHAR fields stored alongside the embedding.
var metaFields = []string{"content", "category", "sourcepage", "sourcefile", "storage_url", "company"}

// MilvusStore implements DocumentStore on Milvus.
type MilvusStore struct {
	client     *milvus.Client
	collection string
	dimension  int
}

// NewMilvusStore creates a Milvus-backed document store over the given
// collection. Dimension is the embedding vector dimension.
func NewMilvusStore(client *milvus.Client, collection string, dimension int) *MilvusStore {
	return &MilvusStore{
		client:     client,
		collection: collection,
		dimension:  dimension,
	}
}

// EnsureCollection creates the collection and its HNSW index if absent.
func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	schema := &milvus.CollectionSchema{
		Name:        s.collection,
		Description: "searchable documents for retrieval-augmented chat",
		Dimension:   s.dimension,
		PKMaxLen:    128,
		VarcharMeta: []milvus.VarcharField{
			{Name: "content", MaxLen: 65535},
			{Name: "category", MaxLen: 64},
			{Name: "sourcepage", MaxLen: 64},
			{Name: "sourcefile", MaxLen: 512},
			{Name: "storage_url", MaxLen: 1024},
			{Name: "company", MaxLen: 128},
		},
	}
	return s.client.EnsureCollection(ctx, schema)
}

// Upsert inserts or overwrites documents keyed by id.
func (s *MilvusStore) Upsert(ctx context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}

	data := &milvus.UpsertData{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Meta: map[string][]string{
			"content":     make([]string, len(docs)),
			"category":    make([]string, len(docs)),
			"sourcepage":  make([]string, len(docs)),
			"sourcefile":  make([]string, len(docs)),
			"storage_url": make([]string, len(docs)),
			"company":     make([]string, len(docs)),
		},
	}

	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document at position %d has no id", i)
		}
		if len(doc.Embedding) != s.dimension {
			return fmt.Errorf("document %s embedding dimension %d, want %d", doc.ID, len(doc.Embedding), s.dimension)
		}
		data.IDs[i] = doc.ID
		data.Embeddings[i] = doc.Embedding
		data.Meta["content"][i] = doc.Content
		data.Meta["category"][i] = doc.Category
		data.Meta["sourcepage"][i] = doc.SourcePage
		data.Meta["sourcefile"][i] = doc.SourceFile
		data.Meta["storage_url"][i] = doc.StorageURL
		data.Meta["company"][i] = doc.Company
	}

	if err := s.client.Upsert(ctx, s.collection, data); err != nil {
		return fmt.Errorf("failed to upsert documents: %w", err)
	}
	return nil
}

// VectorSearch runs an ANN search over the embeddings.
func (s *MilvusStore) VectorSearch(ctx context.Context, embedding []float32, topK int, filter string) ([]*SearchResult, error) {
	hits, err := s.client.Search(ctx, s.collection, embedding, topK, filter, metaFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	return toSearchResults(hits), nil
}

// KeywordSearch matches documents whose content contains the term.
func (s *MilvusStore) KeywordSearch(ctx context.Context, term string, limit int) ([]*SearchResult, error) {
	term = sanitizeTerm(term)
	if term == "" {
		return []*SearchResult{}, nil
	}

	expr := fmt.Sprintf("content like %q", "%"+term+"%")
	hits, err := s.client.Query(ctx, s.collection, expr, limit, metaFields)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	return toSearchResults(hits), nil
}

// Get returns the document with the given id, or nil when absent.
func (s *MilvusStore) Get(ctx context.Context, id string) (*SearchResult, error) {
	expr := fmt.Sprintf("id == %q", sanitizeTerm(id))
	hits, err := s.client.Query(ctx, s.collection, expr, 1, metaFields)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}
	return toSearchResults(hits)[0], nil
}

// Delete removes documents by id.
func (s *MilvusStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.client.DeleteByIDs(ctx, s.collection, ids); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (s *MilvusStore) Count(ctx context.Context) (int64, error) {
	return s.client.Count(ctx, s.collection)
}

// Close releases the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func toSearchResults(hits []milvus.SearchResult) []*SearchResult {
	results := make([]*SearchResult, len(hits))
	for i, h := range hits {
		results[i] = &SearchResult{
			ID:         h.ID,
			Content:    h.Fields["content"],
			Category:   h.Fields["category"],
			SourcePage: h.Fields["sourcepage"],
			SourceFile: h.Fields["sourcefile"],
			StorageURL: h.Fields["storage_url"],
			Company:    h.Fields["company"],
			Score:      h.Score,
		}
	}
	return results
}

// sanitizeTerm strips characters that would break a filter expression.
func sanitizeTerm(term string) string {
	term = strings.ReplaceAll(term, `"`, "")
	term = strings.ReplaceAll(term, `'`, "")
	term = strings.ReplaceAll(term, "%", "")
	return strings.TrimSpace(term)
}

var _ DocumentStore = (*MilvusStore)(nil)
