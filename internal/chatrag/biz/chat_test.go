package biz

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/store"
	"github.com/JhonatanRC03/chat-rag/pkg/llm"
)

func newTestChatConfig() *ChatConfig {
	return &ChatConfig{
		TopK:             5,
		ContextDocs:      3,
		MaxHistory:       6,
		ContextCharLimit: 1000,
		SystemPrompt:     "Eres un asistente.",
		Temperature:      0.3,
		TopP:             0.9,
		MaxTokens:        1000,
	}
}

func newTestChat(index *fakeDocumentStore, chat *fakeChat) *ChatService {
	return NewChatService(index, &fakeEmbedder{dim: 4}, chat, newTestChatConfig())
}

func TestRetrieveFusesVectorAndKeyword(t *testing.T) {
	index := newFakeDocumentStore()
	index.vectorHits = []*store.SearchResult{
		{ID: "a", Content: "alpha"},
		{ID: "b", Content: "beta"},
	}
	index.keywordHits = []*store.SearchResult{
		{ID: "b", Content: "beta"},
		{ID: "c", Content: "gamma"},
	}
	svc := newTestChat(index, &fakeChat{})

	results, err := svc.Retrieve(context.Background(), "beta", 5)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// b appears in both lists, so it must rank first.
	assert.Equal(t, "b", results[0].ID)
}

func TestRetrieveKeywordFailureDegrades(t *testing.T) {
	index := newFakeDocumentStore()
	index.vectorHits = []*store.SearchResult{{ID: "a", Content: "alpha"}}
	index.keywordErr = errBoom
	svc := newTestChat(index, &fakeChat{})

	results, err := svc.Retrieve(context.Background(), "alpha", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestRetrieveVectorFailure(t *testing.T) {
	index := newFakeDocumentStore()
	index.vectorErr = errBoom
	svc := newTestChat(index, &fakeChat{})

	_, err := svc.Retrieve(context.Background(), "alpha", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to search index")
}

func TestRetrieveLimitsResults(t *testing.T) {
	index := newFakeDocumentStore()
	index.vectorHits = []*store.SearchResult{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}
	svc := newTestChat(index, &fakeChat{})

	results, err := svc.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestChatAssemblesMessages(t *testing.T) {
	index := newFakeDocumentStore()
	index.vectorHits = []*store.SearchResult{
		{ID: "a", Content: "contenido del presupuesto", SourceFile: "obra.pdf", SourcePage: "1"},
	}
	chat := &fakeChat{answer: "respuesta"}
	svc := newTestChat(index, chat)

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "hola"},
		{Role: llm.RoleAssistant, Content: "hola, ¿en qué puedo ayudarte?"},
	}

	result, err := svc.Chat(context.Background(), "¿cuál es el presupuesto?", history)
	require.NoError(t, err)
	assert.Equal(t, "respuesta", result.Answer)
	require.Len(t, result.Sources, 1)

	msgs := chat.messages
	require.Len(t, msgs, 5)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, "Eres un asistente.", msgs[0].Content)
	assert.Equal(t, llm.RoleSystem, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "obra.pdf")
	assert.Contains(t, msgs[1].Content, "contenido del presupuesto")
	assert.Equal(t, "hola", msgs[2].Content)
	assert.Equal(t, llm.RoleUser, msgs[4].Role)
	assert.Equal(t, "¿cuál es el presupuesto?", msgs[4].Content)

	require.NotNil(t, chat.opts)
	assert.Equal(t, 0.3, chat.opts.Temperature)
	assert.Equal(t, 0.9, chat.opts.TopP)
	assert.Equal(t, 1000, chat.opts.MaxTokens)
}

func TestChatTrimsHistory(t *testing.T) {
	chat := &fakeChat{answer: "ok"}
	svc := newTestChat(newFakeDocumentStore(), chat)

	history := make([]llm.Message, 10)
	for i := range history {
		history[i] = llm.Message{Role: llm.RoleUser, Content: strings.Repeat("x", i+1)}
	}

	_, err := svc.Chat(context.Background(), "pregunta", history)
	require.NoError(t, err)

	// 2 system + 6 history + 1 user.
	require.Len(t, chat.messages, 9)
	assert.Equal(t, strings.Repeat("x", 5), chat.messages[2].Content)
}

func TestChatRetrievalFailureUsesPlaceholder(t *testing.T) {
	index := newFakeDocumentStore()
	index.vectorErr = errBoom
	chat := &fakeChat{answer: "sin contexto"}
	svc := newTestChat(index, chat)

	result, err := svc.Chat(context.Background(), "pregunta", nil)
	require.NoError(t, err)
	assert.Equal(t, "sin contexto", result.Answer)
	assert.Empty(t, result.Sources)
	assert.Contains(t, chat.messages[1].Content, noContextPlaceholder)
}

func TestChatStream(t *testing.T) {
	index := newFakeDocumentStore()
	index.vectorHits = []*store.SearchResult{{ID: "a", Content: "texto", SourceFile: "f.pdf"}}
	chat := &fakeChat{chunks: []string{"Hola", " mundo"}}
	svc := newTestChat(index, chat)

	var received []string
	sources, err := svc.ChatStream(context.Background(), "pregunta", nil, func(content string) error {
		received = append(received, content)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hola", " mundo"}, received)
	assert.Len(t, sources, 1)
}

func TestChatStreamError(t *testing.T) {
	chat := &fakeChat{err: errBoom}
	svc := newTestChat(newFakeDocumentStore(), chat)

	_, err := svc.ChatStream(context.Background(), "pregunta", nil, func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stream")
}

func TestBuildContextTruncatesPassages(t *testing.T) {
	svc := newTestChat(newFakeDocumentStore(), &fakeChat{})
	svc.config.ContextCharLimit = 10

	ctx := svc.buildContext([]*store.SearchResult{
		{ID: "a", Content: strings.Repeat("z", 50), SourceFile: "f.pdf", SourcePage: "2"},
	})
	assert.Contains(t, ctx, strings.Repeat("z", 10)+"...")
	assert.NotContains(t, ctx, strings.Repeat("z", 11))
	assert.Contains(t, ctx, "(página 2)")
}

func TestBuildContextTruncatesOnRuneBoundary(t *testing.T) {
	svc := newTestChat(newFakeDocumentStore(), &fakeChat{})
	svc.config.ContextCharLimit = 2

	// The two-byte "á" straddles the limit; the cut must back up to "p".
	ctx := svc.buildContext([]*store.SearchResult{
		{ID: "a", Content: "página de obra", SourceFile: "f.pdf", SourcePage: "1"},
	})
	assert.Contains(t, ctx, "\np...")
	assert.True(t, utf8.ValidString(ctx))
}

func TestStats(t *testing.T) {
	index := newFakeDocumentStore()
	index.docs["a"] = &store.Document{ID: "a"}
	svc := newTestChat(index, &fakeChat{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["document_count"])
	assert.Equal(t, "fake-embed", stats["embed_provider"])
	assert.Equal(t, "fake-chat", stats["chat_provider"])
}
