package handler_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/biz"
	"github.com/JhonatanRC03/chat-rag/internal/chatrag/handler"
	"github.com/JhonatanRC03/chat-rag/internal/chatrag/router"
	"github.com/JhonatanRC03/chat-rag/internal/chatrag/store"
	"github.com/JhonatanRC03/chat-rag/pkg/blob"
	"github.com/JhonatanRC03/chat-rag/pkg/component/storage"
	"github.com/JhonatanRC03/chat-rag/pkg/llm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProcessor struct {
	result     *biz.ProcessResult
	processErr error
	doc        *store.SearchResult
	deleteErr  error
	objects    []*blob.Object

	gotFilename string
	gotContent  []byte
	deletedID   string
}

func (f *fakeProcessor) ProcessDocument(_ context.Context, filename, _ string, content []byte) (*biz.ProcessResult, error) {
	f.gotFilename = filename
	f.gotContent = content
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.result, nil
}

func (f *fakeProcessor) GetDocument(context.Context, string) (*store.SearchResult, error) {
	return f.doc, nil
}

func (f *fakeProcessor) DeleteDocument(_ context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

func (f *fakeProcessor) ListDocuments(context.Context) ([]*blob.Object, error) {
	return f.objects, nil
}

type fakeChatSvc struct {
	results   []*store.SearchResult
	chatRes   *biz.ChatResult
	chunks    []string
	streamErr error
	// midStream makes streamErr fire after the chunks are delivered.
	midStream bool
	stats     map[string]any

	gotMessage string
	gotHistory []llm.Message
}

func (f *fakeChatSvc) Retrieve(context.Context, string, int) ([]*store.SearchResult, error) {
	return f.results, nil
}

func (f *fakeChatSvc) Chat(_ context.Context, message string, history []llm.Message) (*biz.ChatResult, error) {
	f.gotMessage = message
	f.gotHistory = history
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return f.chatRes, nil
}

func (f *fakeChatSvc) ChatStream(_ context.Context, message string, history []llm.Message, onDelta llm.StreamFunc) ([]*store.SearchResult, error) {
	f.gotMessage = message
	f.gotHistory = history
	if f.streamErr != nil && !f.midStream {
		return nil, f.streamErr
	}
	for _, chunk := range f.chunks {
		if err := onDelta(chunk); err != nil {
			return nil, err
		}
	}
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return f.results, nil
}

func (f *fakeChatSvc) Stats(context.Context) (map[string]any, error) {
	return f.stats, nil
}

type fakeComponents struct {
	statuses map[string]storage.HealthStatus
}

func (f *fakeComponents) HealthCheckAll(context.Context) map[string]storage.HealthStatus {
	return f.statuses
}

func newTestRouter(processor *fakeProcessor, chat *fakeChatSvc) *gin.Engine {
	engine := gin.New()
	router.Register(engine, handler.New(processor, chat, nil))
	return engine
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadAndProcess(t *testing.T) {
	processor := &fakeProcessor{result: &biz.ProcessResult{DocumentID: "doc-1"}}
	engine := newTestRouter(processor, &fakeChatSvc{})

	body, contentType := multipartBody(t, "file", "obra.pdf", []byte("%PDF-1.7"))
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload-and-process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "doc-1")
	assert.Equal(t, "obra.pdf", processor.gotFilename)
	assert.Equal(t, []byte("%PDF-1.7"), processor.gotContent)
}

func TestUploadAndProcessMissingFile(t *testing.T) {
	engine := newTestRouter(&fakeProcessor{}, &fakeChatSvc{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload-and-process", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "File is required")
}

func TestUploadAndProcessRejectsNonPDF(t *testing.T) {
	engine := newTestRouter(&fakeProcessor{}, &fakeChatSvc{})

	body, contentType := multipartBody(t, "file", "datos.csv", []byte("a,b"))
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload-and-process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Only PDF files are supported")
}

func TestUploadAndProcessEmptyFile(t *testing.T) {
	engine := newTestRouter(&fakeProcessor{}, &fakeChatSvc{})

	body, contentType := multipartBody(t, "file", "obra.pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload-and-process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "empty")
}

func TestUploadAndProcessFailure(t *testing.T) {
	processor := &fakeProcessor{processErr: errors.New("analyze exploded")}
	engine := newTestRouter(processor, &fakeChatSvc{})

	body, contentType := multipartBody(t, "file", "obra.pdf", []byte("%PDF-1.7"))
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload-and-process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Document processing failed")
}

func TestGetDocument(t *testing.T) {
	processor := &fakeProcessor{doc: &store.SearchResult{ID: "doc-1", SourceFile: "obra.pdf"}}
	engine := newTestRouter(processor, &fakeChatSvc{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "obra.pdf")
}

func TestGetDocumentNotFound(t *testing.T) {
	engine := newTestRouter(&fakeProcessor{}, &fakeChatSvc{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteDocument(t *testing.T) {
	processor := &fakeProcessor{}
	engine := newTestRouter(processor, &fakeChatSvc{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "doc-1", processor.deletedID)
}

func TestDeleteDocumentNotFound(t *testing.T) {
	processor := &fakeProcessor{deleteErr: fmt.Errorf("document nope: %w", biz.ErrDocumentNotFound)}
	engine := newTestRouter(processor, &fakeChatSvc{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/documents/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Document not found")
}

func TestListDocuments(t *testing.T) {
	processor := &fakeProcessor{objects: []*blob.Object{{Name: "obra.pdf", Size: 10}}}
	engine := newTestRouter(processor, &fakeChatSvc{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/documents", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestSearchDocuments(t *testing.T) {
	chat := &fakeChatSvc{results: []*store.SearchResult{{ID: "a", Content: "presupuesto"}}}
	engine := newTestRouter(&fakeProcessor{}, chat)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/search", strings.NewReader(`{"query":"presupuesto"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "presupuesto")
}

func TestSearchDocumentsMissingQuery(t *testing.T) {
	engine := newTestRouter(&fakeProcessor{}, &fakeChatSvc{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/search", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatMessage(t *testing.T) {
	chat := &fakeChatSvc{chatRes: &biz.ChatResult{Answer: "respuesta"}}
	engine := newTestRouter(&fakeProcessor{}, chat)

	body := `{"message":"hola","history":[{"role":"user","content":"antes"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "respuesta")
	assert.Equal(t, "hola", chat.gotMessage)
	require.Len(t, chat.gotHistory, 1)
	assert.Equal(t, llm.RoleUser, chat.gotHistory[0].Role)
}

func TestChatMessageMissingMessage(t *testing.T) {
	engine := newTestRouter(&fakeProcessor{}, &fakeChatSvc{})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/message", strings.NewReader(`{"message":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatStream(t *testing.T) {
	chat := &fakeChatSvc{chunks: []string{"Hola", " mundo"}}
	engine := newTestRouter(&fakeProcessor{}, chat)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"message":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `data: {"chunk":"Hola","done":false}`)
	assert.Contains(t, body, `data: {"chunk":" mundo","done":false}`)
	assert.Contains(t, body, `data: {"done":true}`)
}

func TestChatStreamErrorBeforeFirstChunk(t *testing.T) {
	chat := &fakeChatSvc{streamErr: errors.New("provider down")}
	engine := newTestRouter(&fakeProcessor{}, chat)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"message":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Chat generation failed")
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestChatStreamMidStreamError(t *testing.T) {
	chat := &fakeChatSvc{chunks: []string{"Hola"}, streamErr: errors.New("cut"), midStream: true}
	engine := newTestRouter(&fakeProcessor{}, chat)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"message":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `data: {"chunk":"Hola","done":false}`)
	assert.Contains(t, body, `"error":"generation failed"`)
	assert.Contains(t, body, `"done":true`)
}

func TestChatHealth(t *testing.T) {
	chat := &fakeChatSvc{stats: map[string]any{"document_count": int64(3)}}
	engine := newTestRouter(&fakeProcessor{}, chat)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/chat/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealthzWithoutComponents(t *testing.T) {
	engine := newTestRouter(&fakeProcessor{}, &fakeChatSvc{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealthzReportsComponents(t *testing.T) {
	components := &fakeComponents{statuses: map[string]storage.HealthStatus{
		"mongodb": {Healthy: true},
		"redis":   {Healthy: true},
	}}
	engine := gin.New()
	router.Register(engine, handler.New(&fakeProcessor{}, &fakeChatSvc{}, components))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"mongodb"`)
	assert.Contains(t, w.Body.String(), `"redis"`)
}

func TestHealthzDegradedComponent(t *testing.T) {
	components := &fakeComponents{statuses: map[string]storage.HealthStatus{
		"mongodb": {Healthy: true},
		"redis":   {Healthy: false, Error: errors.New("connection refused")},
	}}
	engine := gin.New()
	router.Register(engine, handler.New(&fakeProcessor{}, &fakeChatSvc{}, components))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), "connection refused")
}
