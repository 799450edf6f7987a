// Package options contains flags and options for initializing the chat-rag
// server.
package options

import (
	"fmt"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/JhonatanRC03/chat-rag/internal/chatrag"
	"github.com/JhonatanRC03/chat-rag/pkg/app/cliflag"
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

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// MongoOptions contains MongoDB configuration (blob storage).
	MongoOptions *mongoopts.Options `json:"mongodb" mapstructure:"mongodb"`

	// RedisOptions contains Redis configuration (embedding cache).
	RedisOptions *redisopts.Options `json:"redis" mapstructure:"redis"`

	// DocIntelOptions contains document analysis service configuration.
	DocIntelOptions *docintelopts.Options `json:"docintel" mapstructure:"docintel"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatLLMOptions contains chat provider configuration.
	ChatLLMOptions *llmopts.ProviderOptions `json:"chat-llm" mapstructure:"chat-llm"`

	// ChatOptions contains chat and retrieval configuration.
	ChatOptions *chatopts.Options `json:"chat" mapstructure:"chat"`

	// IndexOptions contains search index configuration.
	IndexOptions *indexopts.Options `json:"index" mapstructure:"index"`

	// CacheOptions contains embedding cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// BlobBucket is the GridFS bucket for uploaded documents.
	BlobBucket string `json:"blob-bucket" mapstructure:"blob-bucket"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	httpOpts := httpopts.NewOptions()
	httpOpts.Addr = ":8080"

	return &ServerOptions{
		HTTPOptions:      httpOpts,
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		MongoOptions:     mongoopts.NewOptions(),
		RedisOptions:     redisopts.NewOptions(),
		DocIntelOptions:  docintelopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatLLMOptions:   llmopts.NewChatOptions(),
		ChatOptions:      chatopts.NewOptions(),
		IndexOptions:     indexopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		BlobBucket:       "documents",
		ShutdownTimeout:  30 * time.Second,
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.MilvusOptions.AddFlags(fss.FlagSet("milvus"), "milvus.")
	o.MongoOptions.AddFlags(fss.FlagSet("mongodb"))
	o.RedisOptions.AddFlags(fss.FlagSet("redis"))
	o.DocIntelOptions.AddFlags(fss.FlagSet("docintel"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"), "embedding.")
	o.ChatLLMOptions.AddFlags(fss.FlagSet("chat-llm"), "chat-llm.")
	o.ChatOptions.AddFlags(fss.FlagSet("chat"))
	o.IndexOptions.AddFlags(fss.FlagSet("index"))
	o.CacheOptions.AddFlags(fss.FlagSet("cache"))

	fs := fss.FlagSet("misc")
	fs.StringVar(&o.BlobBucket, "blob-bucket", o.BlobBucket, "GridFS bucket for uploaded documents")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.MongoOptions.Complete(); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if err := o.DocIntelOptions.Complete(); err != nil {
		return fmt.Errorf("docintel: %w", err)
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatLLMOptions.Complete(); err != nil {
		return fmt.Errorf("chat-llm: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.MongoOptions.Validate()...)
	if err := o.RedisOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.DocIntelOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatLLMOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.IndexOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)

	if o.BlobBucket == "" {
		errs = append(errs, fmt.Errorf("blob-bucket is required"))
	}
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be positive"))
	}

	return utilerrors.NewAggregate(errs)
}

// Config builds a chatrag.Config based on ServerOptions.
func (o *ServerOptions) Config() (*chatrag.Config, error) {
	return &chatrag.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		MongoOptions:     o.MongoOptions,
		RedisOptions:     o.RedisOptions,
		DocIntelOptions:  o.DocIntelOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatLLMOptions:   o.ChatLLMOptions,
		ChatOptions:      o.ChatOptions,
		IndexOptions:     o.IndexOptions,
		CacheOptions:     o.CacheOptions,
		BlobBucket:       o.BlobBucket,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
