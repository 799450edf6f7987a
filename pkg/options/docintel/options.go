// Package docintel provides document analysis service configuration options.
package docintel

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/JhonatanRC03/chat-rag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains document analysis client configuration.
type Options struct {
	// Endpoint is the base URL of the document analysis service.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// APIKey authenticates requests to the service.
	APIKey string `json:"-" mapstructure:"api-key"`

	// Model is the prebuilt analysis model to use.
	Model string `json:"model" mapstructure:"model"`

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// PollInterval is the initial delay between result polls.
	PollInterval time.Duration `json:"poll-interval" mapstructure:"poll-interval"`

	// PollTimeout bounds the whole analyze-and-poll cycle.
	PollTimeout time.Duration `json:"poll-timeout" mapstructure:"poll-timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Model:        "prebuilt-document",
		Timeout:      30 * time.Second,
		PollInterval: 2 * time.Second,
		PollTimeout:  5 * time.Minute,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Endpoint, options.Join(prefixes...)+"docintel.endpoint", o.Endpoint, "Document analysis service endpoint.")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+"docintel.api-key", o.APIKey, "Document analysis API key (DEPRECATED: use DOCINTEL_API_KEY env var instead).")
	fs.StringVar(&o.Model, options.Join(prefixes...)+"docintel.model", o.Model, "Prebuilt analysis model (prebuilt-document, prebuilt-layout, prebuilt-read).")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"docintel.timeout", o.Timeout, "HTTP timeout for a single request.")
	fs.DurationVar(&o.PollInterval, options.Join(prefixes...)+"docintel.poll-interval", o.PollInterval, "Initial delay between result polls.")
	fs.DurationVar(&o.PollTimeout, options.Join(prefixes...)+"docintel.poll-timeout", o.PollTimeout, "Overall timeout for the analyze-and-poll cycle.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Endpoint == "" {
		errs = append(errs, fmt.Errorf("docintel.endpoint is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("docintel.model is required"))
	}
	if o.PollTimeout <= 0 {
		errs = append(errs, fmt.Errorf("docintel.poll-timeout must be positive"))
	}
	return errs
}

// Complete reads the API key from the environment when not set by flag or config.
func (o *Options) Complete() error {
	if o.APIKey == "" {
		o.APIKey = os.Getenv("DOCINTEL_API_KEY")
	}
	return nil
}
