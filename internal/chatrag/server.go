// Package chatrag assembles the chat-rag HTTP server from its components.
package chatrag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/kart-io/version"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag/biz"
	"github.com/JhonatanRC03/chat-rag/internal/chatrag/handler"
	"github.com/JhonatanRC03/chat-rag/internal/chatrag/router"
	"github.com/JhonatanRC03/chat-rag/internal/chatrag/store"
	"github.com/JhonatanRC03/chat-rag/internal/pkg/middleware"
	"github.com/JhonatanRC03/chat-rag/pkg/blob"
	"github.com/JhonatanRC03/chat-rag/pkg/component/milvus"
	"github.com/JhonatanRC03/chat-rag/pkg/component/mongodb"
	"github.com/JhonatanRC03/chat-rag/pkg/component/redis"
	"github.com/JhonatanRC03/chat-rag/pkg/component/storage"
	"github.com/JhonatanRC03/chat-rag/pkg/docintel"
	"github.com/JhonatanRC03/chat-rag/pkg/llm"
	_ "github.com/JhonatanRC03/chat-rag/pkg/llm/ollama"
	_ "github.com/JhonatanRC03/chat-rag/pkg/llm/openai"
	cacheopts "github.com/JhonatanRC03/chat-rag/pkg/options/cache"
	chatopts "github.com/JhonatanRC03/chat-rag/pkg/options/chat"
	docintelopts "github.com/JhonatanRC03/chat-rag/pkg/options/docintel"
	indexopts "github.com/JhonatanRC03/chat-rag/pkg/options/index"
	llmopts "github.com/JhonatanRC03/chat-rag/pkg/options/llm"
	logopts "github.com/JhonatanRC03/chat-rag/pkg/options/logger"
	milvusopts "github.com/JhonatanRC03/chat-rag/pkg/options/milvus"
	mongoopts "github.com/JhonatanRC03/chat-rag/pkg/options/mongodb"
	redisopts "github.com/JhonatanRC03/chat-rag/pkg/options/redis"
	httpopts "github.com/JhonatanRC03/chat-rag/pkg/options/server/http"
)

// Config holds the resolved configuration of the chat-rag server.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	MongoOptions     *mongoopts.Options
	RedisOptions     *redisopts.Options
	DocIntelOptions  *docintelopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatLLMOptions   *llmopts.ProviderOptions
	ChatOptions      *chatopts.Options
	IndexOptions     *indexopts.Options
	CacheOptions     *cacheopts.Options

	// BlobBucket is the GridFS bucket for uploaded documents.
	BlobBucket string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server is the assembled chat-rag HTTP server.
type Server struct {
	httpServer      *http.Server
	components      *storage.Manager
	docStore        store.DocumentStore
	shutdownTimeout time.Duration
}

// NewServer builds the server: logger, storage components, search index,
// LLM providers, services, handlers and routes.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	printBanner()

	components := storage.NewManager()

	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}
	docStore := store.NewMilvusStore(milvusClient, cfg.IndexOptions.Collection, cfg.IndexOptions.EmbeddingDim)

	mongoClient, err := mongodb.NewWithContext(ctx, cfg.MongoOptions)
	if err != nil {
		_ = docStore.Close(ctx)
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	components.MustRegister(mongoClient)

	blobs, err := blob.NewStore(mongoClient.Database(), cfg.BlobBucket)
	if err != nil {
		_ = docStore.Close(ctx)
		_ = components.CloseAll()
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	embedder, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		_ = docStore.Close(ctx)
		_ = components.CloseAll()
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}
	embedder = cfg.wrapEmbeddingCache(ctx, embedder, components)

	chatProvider, err := llm.NewChatProvider(cfg.ChatLLMOptions.Provider, cfg.ChatLLMOptions.ToConfigMap())
	if err != nil {
		_ = docStore.Close(ctx)
		_ = components.CloseAll()
		return nil, fmt.Errorf("failed to create chat provider: %w", err)
	}

	analyzer := docintel.New(cfg.DocIntelOptions)

	processor := biz.NewProcessorService(blobs, analyzer, embedder, docStore, &biz.ProcessorConfig{
		Category: cfg.IndexOptions.Category,
		Company:  cfg.IndexOptions.Company,
	})
	chatService := biz.NewChatService(docStore, embedder, chatProvider, &biz.ChatConfig{
		TopK:             cfg.ChatOptions.TopK,
		ContextDocs:      cfg.ChatOptions.ContextDocs,
		MaxHistory:       cfg.ChatOptions.MaxHistory,
		ContextCharLimit: cfg.ChatOptions.ContextCharLimit,
		SystemPrompt:     cfg.ChatOptions.SystemPrompt,
		Temperature:      cfg.ChatOptions.Temperature,
		TopP:             cfg.ChatOptions.TopP,
		MaxTokens:        cfg.ChatOptions.MaxTokens,
	})

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
	)
	router.Register(engine, handler.New(processor, chatService, components))

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPOptions.Addr,
			Handler:      engine,
			ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
			WriteTimeout: cfg.HTTPOptions.WriteTimeout,
			IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
		},
		components:      components,
		docStore:        docStore,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// wrapEmbeddingCache adds the Redis-backed embedding cache when enabled.
// A Redis connection failure downgrades to the uncached provider.
func (cfg *Config) wrapEmbeddingCache(ctx context.Context, embedder llm.EmbeddingProvider, components *storage.Manager) llm.EmbeddingProvider {
	if cfg.CacheOptions == nil || !cfg.CacheOptions.Enabled {
		return embedder
	}

	redisClient, err := redis.NewWithContext(ctx, cfg.RedisOptions)
	if err != nil {
		logger.Warnw("embedding cache disabled, redis unavailable", "error", err.Error())
		return embedder
	}
	components.MustRegister(redisClient)

	return llm.NewCachedEmbeddingProvider(embedder, redisClient.Client(), &llm.EmbeddingCacheConfig{
		Enabled:   true,
		TTL:       cfg.CacheOptions.TTL,
		KeyPrefix: cfg.CacheOptions.KeyPrefix,
	})
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func (s *Server) close() {
	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.docStore.Close(closeCtx); err != nil {
		logger.Warnw("failed to close document store", "error", err.Error())
	}
	if err := s.components.CloseAll(); err != nil {
		logger.Warnw("failed to close storage components", "error", err.Error())
	}
}

func printBanner() {
	info := version.Get()
	logger.Infow("starting chat-rag server",
		"version", info.GitVersion,
		"commit", info.GitCommit,
		"build_date", info.BuildDate,
		"go_version", info.GoVersion,
	)
}
