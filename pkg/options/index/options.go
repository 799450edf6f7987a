// Package index provides search index configuration options.
package index

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/JhonatanRC03/chat-rag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains search index configuration.
type Options struct {
	// Collection is the name of the Milvus collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// Company is the tenant tag stamped on every indexed document.
	Company string `json:"company" mapstructure:"company"`

	// Category is the default category for uploaded documents.
	Category string `json:"category" mapstructure:"category"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Collection:   "documents",
		EmbeddingDim: 1536,
		Category:     "document",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"index.collection", o.Collection, "Milvus collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"index.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.StringVar(&o.Company, options.Join(prefixes...)+"index.company", o.Company, "Tenant tag stamped on indexed documents.")
	fs.StringVar(&o.Category, options.Join(prefixes...)+"index.category", o.Category, "Default category for uploaded documents.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("index.collection is required"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("index.embedding-dim must be positive"))
	}
	return errs
}
