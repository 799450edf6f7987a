package handler

import (
	"context"
	"time"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/biz"
	"github.com/JhonatanRC03/chat-rag/internal/chatrag/store"
	"github.com/JhonatanRC03/chat-rag/pkg/blob"
	"github.com/JhonatanRC03/chat-rag/pkg/component/storage"
	"github.com/JhonatanRC03/chat-rag/pkg/llm"
)

const (
	// processTimeout bounds the ingest pipeline per upload.
	processTimeout = 120 * time.Second

	// queryTimeout bounds search and non-streaming chat requests.
	queryTimeout = 60 * time.Second

	// healthTimeout bounds the storage pings behind /healthz.
	healthTimeout = 5 * time.Second
)

// DocumentProcessor is the ingest service surface the handlers use.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, filename, contentType string, content []byte) (*biz.ProcessResult, error)
	GetDocument(ctx context.Context, id string) (*store.SearchResult, error)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]*blob.Object, error)
}

// ChatProvider is the chat service surface the handlers use.
type ChatProvider interface {
	Retrieve(ctx context.Context, query string, topK int) ([]*store.SearchResult, error)
	Chat(ctx context.Context, message string, history []llm.Message) (*biz.ChatResult, error)
	ChatStream(ctx context.Context, message string, history []llm.Message, onDelta llm.StreamFunc) ([]*store.SearchResult, error)
	Stats(ctx context.Context) (map[string]any, error)
}

// ComponentChecker reports the health of the storage backends.
type ComponentChecker interface {
	HealthCheckAll(ctx context.Context) map[string]storage.HealthStatus
}

// Handler bundles the HTTP handlers of the service.
type Handler struct {
	processor  DocumentProcessor
	chat       ChatProvider
	components ComponentChecker
}

// New creates the handler set. components may be nil, in which case /healthz
// reports liveness only.
func New(processor DocumentProcessor, chat ChatProvider, components ComponentChecker) *Handler {
	return &Handler{
		processor:  processor,
		chat:       chat,
		components: components,
	}
}

// chatMessage is a conversation turn in API requests.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toLLMMessages(history []chatMessage) []llm.Message {
	if len(history) == 0 {
		return nil
	}
	messages := make([]llm.Message, len(history))
	for i, m := range history {
		messages[i] = llm.Message{Role: llm.Role(m.Role), Content: m.Content}
	}
	return messages
}
