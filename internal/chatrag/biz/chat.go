package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kart-io/logger"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/store"
	"github.com/JhonatanRC03/chat-rag/pkg/llm"
	"github.com/JhonatanRC03/chat-rag/pkg/utils/text"
)

// rrfK dampens rank influence in reciprocal-rank fusion.
const rrfK = 60

// noContextPlaceholder is sent as grounding context when retrieval finds
// nothing useful.
const noContextPlaceholder = "No se encontraron documentos relevantes para esta consulta."

// ChatConfig configures retrieval-augmented chat.
type ChatConfig struct {
	// TopK is the number of documents retrieved per query.
	TopK int
	// ContextDocs is the number of retrieved documents placed in the
	// grounding context.
	ContextDocs int
	// MaxHistory is the number of history messages kept per request.
	MaxHistory int
	// ContextCharLimit truncates each passage in the grounding context.
	ContextCharLimit int
	// SystemPrompt is the assistant system prompt.
	SystemPrompt string
	// Temperature, TopP and MaxTokens are the generation parameters.
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// ChatResult is a complete chat answer with its sources.
type ChatResult struct {
	Answer  string                `json:"answer"`
	Sources []*store.SearchResult `json:"sources"`
}

// ChatService answers questions grounded on the document index.
type ChatService struct {
	index    store.DocumentStore
	embedder llm.EmbeddingProvider
	chat     llm.ChatProvider
	config   *ChatConfig
}

// NewChatService creates a retrieval-augmented chat service.
func NewChatService(
	index store.DocumentStore,
	embedder llm.EmbeddingProvider,
	chat llm.ChatProvider,
	config *ChatConfig,
) *ChatService {
	return &ChatService{
		index:    index,
		embedder: embedder,
		chat:     chat,
		config:   config,
	}
}

// Retrieve runs hybrid retrieval: vector similarity fused with keyword
// matches by reciprocal rank. A keyword search failure degrades to
// vector-only results.
func (s *ChatService) Retrieve(ctx context.Context, query string, topK int) ([]*store.SearchResult, error) {
	if topK <= 0 {
		topK = s.config.TopK
	}

	embedding, err := s.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	vectorHits, err := s.index.VectorSearch(ctx, embedding, topK, "")
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	keywordHits, err := s.index.KeywordSearch(ctx, query, topK)
	if err != nil {
		logger.Warnw("keyword search failed, using vector results only",
			"query", query,
			"error", err.Error(),
		)
		keywordHits = nil
	}

	return fuseResults(topK, vectorHits, keywordHits), nil
}

// Chat answers a message with retrieval-augmented generation, returning the
// whole answer and the sources it was grounded on.
func (s *ChatService) Chat(ctx context.Context, message string, history []llm.Message) (*ChatResult, error) {
	sources := s.retrieveForChat(ctx, message)
	messages := s.assembleMessages(message, history, sources)

	answer, err := s.chat.Chat(ctx, messages, s.genOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &ChatResult{Answer: answer, Sources: sources}, nil
}

// ChatStream answers a message with retrieval-augmented generation, invoking
// onDelta for each content chunk. It returns the sources used for grounding.
func (s *ChatService) ChatStream(ctx context.Context, message string, history []llm.Message, onDelta llm.StreamFunc) ([]*store.SearchResult, error) {
	sources := s.retrieveForChat(ctx, message)
	messages := s.assembleMessages(message, history, sources)

	if err := s.chat.ChatStream(ctx, messages, s.genOptions(), onDelta); err != nil {
		return sources, fmt.Errorf("failed to stream answer: %w", err)
	}
	return sources, nil
}

// Stats reports index and provider information for health checks.
func (s *ChatService) Stats(ctx context.Context) (map[string]any, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"document_count": count,
		"embed_provider": s.embedder.Name(),
		"chat_provider":  s.chat.Name(),
	}, nil
}

// retrieveForChat degrades to answering without context when retrieval
// fails: a broken index should not take chat down.
func (s *ChatService) retrieveForChat(ctx context.Context, message string) []*store.SearchResult {
	sources, err := s.Retrieve(ctx, message, s.config.ContextDocs)
	if err != nil {
		logger.Warnw("retrieval failed, answering without context",
			"message", message,
			"error", err.Error(),
		)
		return nil
	}
	return sources
}

func (s *ChatService) genOptions() *llm.GenOptions {
	return &llm.GenOptions{
		Temperature: s.config.Temperature,
		TopP:        s.config.TopP,
		MaxTokens:   s.config.MaxTokens,
	}
}

// assembleMessages builds the model conversation: system prompt, grounding
// context, trimmed history, then the user message.
func (s *ChatService) assembleMessages(message string, history []llm.Message, sources []*store.SearchResult) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: s.config.SystemPrompt})
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: "Contexto de los documentos:\n\n" + s.buildContext(sources),
	})

	if n := s.config.MaxHistory; n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	messages = append(messages, history...)

	return append(messages, llm.Message{Role: llm.RoleUser, Content: message})
}

// buildContext renders the retrieved passages as a numbered context block.
func (s *ChatService) buildContext(sources []*store.SearchResult) string {
	if len(sources) == 0 {
		return noContextPlaceholder
	}

	var b strings.Builder
	for i, src := range sources {
		content := src.Content
		if limit := s.config.ContextCharLimit; limit > 0 && len(content) > limit {
			content = text.Truncate(content, limit) + "..."
		}
		fmt.Fprintf(&b, "[%d] %s (página %s)\n%s\n\n", i+1, src.SourceFile, src.SourcePage, content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// fuseResults merges ranked result lists with reciprocal-rank fusion and
// returns the top limit documents.
func fuseResults(limit int, lists ...[]*store.SearchResult) []*store.SearchResult {
	type fused struct {
		doc   *store.SearchResult
		score float32
	}

	byID := make(map[string]*fused)
	order := make([]string, 0)

	for _, list := range lists {
		for rank, doc := range list {
			f, ok := byID[doc.ID]
			if !ok {
				f = &fused{doc: doc}
				byID[doc.ID] = f
				order = append(order, doc.ID)
			}
			f.score += 1.0 / float32(rrfK+rank+1)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byID[order[i]].score > byID[order[j]].score
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	results := make([]*store.SearchResult, len(order))
	for i, id := range order {
		f := byID[id]
		f.doc.Score = f.score
		results[i] = f.doc
	}
	return results
}
