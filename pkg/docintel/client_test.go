package docintel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docintelopts "github.com/JhonatanRC03/chat-rag/pkg/options/docintel"
)

func newTestClient(endpoint string) *Client {
	opts := docintelopts.NewOptions()
	opts.Endpoint = endpoint
	opts.APIKey = "test-key"
	opts.PollInterval = 10 * time.Millisecond
	opts.PollTimeout = 2 * time.Second
	return New(opts)
}

func TestAnalyzeSucceedsAfterPolling(t *testing.T) {
	var polls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))

		if r.Method == http.MethodPost {
			assert.Contains(t, r.URL.Path, "prebuilt-document")
			w.Header().Set("Operation-Location", "http://"+r.Host+"/operations/op-1")
			w.WriteHeader(http.StatusAccepted)
			return
		}

		// Report running on the first poll, succeeded afterwards.
		if atomic.AddInt32(&polls, 1) == 1 {
			_, _ = w.Write([]byte(`{"status":"running"}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"status": "succeeded",
			"analyzeResult": {
				"content": "Invoice total: 420 EUR",
				"pages": [{"pageNumber": 1, "width": 8.5, "height": 11, "unit": "inch"}],
				"keyValuePairs": [{"key": {"content": "Total"}, "value": {"content": "420 EUR"}, "confidence": 0.98}]
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Analyze(context.Background(), []byte("%PDF-1.4 fake"), "")
	require.NoError(t, err)

	assert.Equal(t, "Invoice total: 420 EUR", result.Content)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, 1, result.Pages[0].PageNumber)
	require.Len(t, result.KeyValuePairs, 1)
	assert.Equal(t, "Total", result.KeyValuePairs[0].KeyContent())
	assert.Equal(t, "420 EUR", result.KeyValuePairs[0].ValueContent())
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(2))
}

func TestAnalyzeFailedOperation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Operation-Location", "http://"+r.Host+"/operations/op-2")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"status":"failed","error":{"code":"InvalidContent","message":"corrupt pdf"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Analyze(context.Background(), []byte("not a pdf"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidContent")
}

func TestAnalyzeRejectedSubmission(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"InvalidRequest"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Analyze(context.Background(), []byte("data"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestAnalyzeEmptyContent(t *testing.T) {
	client := newTestClient("http://localhost:1")
	_, err := client.Analyze(context.Background(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestAnalyzeModelSelection(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			gotPath = r.URL.Path
			w.Header().Set("Operation-Location", "http://"+r.Host+"/operations/op-3")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"status":"succeeded","analyzeResult":{"content":"text"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.AnalyzeLayout(context.Background(), []byte("data"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(gotPath, ModelPrebuiltLayout), "path %q should target layout model", gotPath)
}

func TestStructured(t *testing.T) {
	longContent := strings.Repeat("x", 1500)
	result := &AnalyzeResult{
		Content: longContent,
		Pages:   []Page{{PageNumber: 1}, {PageNumber: 2}},
		Tables:  []Table{{RowCount: 2, ColumnCount: 3}},
		Styles:  []Style{{IsHandwritten: true, Confidence: 0.9}},
	}

	data := result.Structured()
	assert.Equal(t, longContent, data.TextContent)
	assert.Equal(t, 2, data.TotalPages)
	assert.Equal(t, 1, data.TablesCount)
	assert.True(t, data.HasTables)
	assert.True(t, data.HasHandwriting)
	assert.Len(t, data.MainText, mainTextLimit+3)
	assert.True(t, strings.HasSuffix(data.MainText, "..."))
}
