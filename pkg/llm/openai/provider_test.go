package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhonatanRC03/chat-rag/pkg/llm"
	"github.com/JhonatanRC03/chat-rag/pkg/utils/json"
)

func newTestProvider(baseURL string) *Provider {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	return NewProviderWithConfig(cfg)
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	_, err := NewProvider(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestEmbedPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		// Return data out of order; the client must place by index.
		_, _ = w.Write([]byte(`{
			"data": [
				{"embedding": [0.2], "index": 1},
				{"embedding": [0.1], "index": 0}
			]
		}`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	embeddings, err := p.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1}, embeddings[0])
	assert.Equal(t, []float32{0.2}, embeddings[1])
}

func TestEmbedTruncatesLongInput(t *testing.T) {
	var gotInput []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		gotInput = req.Input
		_, _ = w.Write([]byte(`{"data": [{"embedding": [0.5], "index": 0}]}`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	_, err := p.Embed(context.Background(), []string{strings.Repeat("a", maxEmbedInputChars+500)})
	require.NoError(t, err)
	require.Len(t, gotInput, 1)
	assert.Len(t, gotInput[0], maxEmbedInputChars)
}

func TestEmbedEmptyInput(t *testing.T) {
	p := newTestProvider("http://localhost:1")
	embeddings, err := p.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestChatAppliesGenOptions(t *testing.T) {
	var gotReq map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "hola"}}]}`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	answer, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hi"},
	}, &llm.GenOptions{Temperature: 0.3, TopP: 0.9, MaxTokens: 1000})
	require.NoError(t, err)
	assert.Equal(t, "hola", answer)

	assert.InDelta(t, 0.3, gotReq["temperature"], 0.001)
	assert.InDelta(t, 0.9, gotReq["top_p"], 0.001)
	assert.EqualValues(t, 1000, gotReq["max_tokens"])
	assert.Equal(t, false, gotReq["stream"])
}

func TestChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Stream bool `json:"stream"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`data: {"choices":[{"delta":{"content":"Hola"}}]}`,
			``,
			`data: {"choices":[{"delta":{"content":" mundo"}}]}`,
			`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
			`data: [DONE]`,
		}
		for _, c := range chunks {
			_, _ = w.Write([]byte(c + "\n"))
		}
	}))
	defer server.Close()

	p := newTestProvider(server.URL)

	var sb strings.Builder
	err := p.ChatStream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil, func(content string) error {
		sb.WriteString(content)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", sb.String())
}

func TestChatStreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	err := p.ChatStream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil, func(string) error {
		t.Fatal("callback should not run on error status")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestChatStreamCallbackAbort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"a"}}]}` + "\n"))
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"b"}}]}` + "\n"))
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	calls := 0
	err := p.ChatStream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil, func(string) error {
		calls++
		return io.ErrClosedPipe
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
