package biz

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/store"
	"github.com/JhonatanRC03/chat-rag/pkg/blob"
	"github.com/JhonatanRC03/chat-rag/pkg/docintel"
	"github.com/JhonatanRC03/chat-rag/pkg/llm"
)

type fakeBlobStore struct {
	uploads   map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploads: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(_ context.Context, name string, r io.Reader, _ string) (*blob.Object, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	data, _ := io.ReadAll(r)
	f.uploads[name] = data
	return &blob.Object{Name: name, URL: blob.BuildURL("fs", name), Size: int64(len(data))}, nil
}

func (f *fakeBlobStore) Download(_ context.Context, name string) (io.ReadCloser, *blob.Object, error) {
	data, ok := f.uploads[name]
	if !ok {
		return nil, nil, blob.ErrNotFound
	}
	obj := &blob.Object{Name: name, URL: blob.BuildURL("fs", name), Size: int64(len(data))}
	return io.NopCloser(strings.NewReader(string(data))), obj, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.uploads, name)
	return nil
}

func (f *fakeBlobStore) List(_ context.Context) ([]*blob.Object, error) {
	objs := make([]*blob.Object, 0, len(f.uploads))
	for name, data := range f.uploads {
		objs = append(objs, &blob.Object{Name: name, Size: int64(len(data))})
	}
	return objs, nil
}

type fakeAnalyzer struct {
	result *docintel.StructuredData
	err    error
}

func (f *fakeAnalyzer) ExtractStructured(context.Context, []byte) (*docintel.StructuredData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEmbedder struct {
	dim    int
	err    error
	inputs []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.EmbedSingle(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, text)
	return make([]float32, f.dim), nil
}

func (f *fakeEmbedder) Name() string { return "fake-embed" }

type fakeChat struct {
	answer   string
	chunks   []string
	err      error
	messages []llm.Message
	opts     *llm.GenOptions
}

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message, opts *llm.GenOptions) (string, error) {
	f.messages = messages
	f.opts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeChat) ChatStream(_ context.Context, messages []llm.Message, opts *llm.GenOptions, fn llm.StreamFunc) error {
	f.messages = messages
	f.opts = opts
	if f.err != nil {
		return f.err
	}
	for _, chunk := range f.chunks {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeChat) Name() string { return "fake-chat" }

type fakeDocumentStore struct {
	docs        map[string]*store.Document
	vectorHits  []*store.SearchResult
	keywordHits []*store.SearchResult
	vectorErr   error
	keywordErr  error
	upsertErr   error
	ensureErr   error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[string]*store.Document)}
}

func (f *fakeDocumentStore) EnsureCollection(context.Context) error { return f.ensureErr }

func (f *fakeDocumentStore) Upsert(_ context.Context, docs []*store.Document) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return nil
}

func (f *fakeDocumentStore) VectorSearch(context.Context, []float32, int, string) ([]*store.SearchResult, error) {
	return f.vectorHits, f.vectorErr
}

func (f *fakeDocumentStore) KeywordSearch(context.Context, string, int) ([]*store.SearchResult, error) {
	return f.keywordHits, f.keywordErr
}

func (f *fakeDocumentStore) Get(_ context.Context, id string) (*store.SearchResult, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	return &store.SearchResult{
		ID:         doc.ID,
		Content:    doc.Content,
		Category:   doc.Category,
		SourcePage: doc.SourcePage,
		SourceFile: doc.SourceFile,
		StorageURL: doc.StorageURL,
		Company:    doc.Company,
	}, nil
}

func (f *fakeDocumentStore) Delete(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(f.docs, id)
	}
	return nil
}

func (f *fakeDocumentStore) Count(context.Context) (int64, error) {
	return int64(len(f.docs)), nil
}

func (f *fakeDocumentStore) Close(context.Context) error { return nil }

var errBoom = errors.New("boom")
