// Package options contains flags and options for the chat-rag ETL tool.
package options

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/JhonatanRC03/chat-rag/internal/etl"
	"github.com/JhonatanRC03/chat-rag/pkg/app/cliflag"
	logopts "github.com/JhonatanRC03/chat-rag/pkg/options/logger"
	mongoopts "github.com/JhonatanRC03/chat-rag/pkg/options/mongodb"
)

// ETLOptions contains the configuration options for the ETL tool.
type ETLOptions struct {
	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MongoOptions contains MongoDB configuration.
	MongoOptions *mongoopts.Options `json:"mongodb" mapstructure:"mongodb"`

	// DataDir is the directory scanned for tabular files.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// Collection is the target MongoDB collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// BatchSize is the number of rows per upsert batch.
	BatchSize int `json:"batch-size" mapstructure:"batch-size"`

	// Workers is the size of the upsert worker pool.
	Workers int `json:"workers" mapstructure:"workers"`
}

// NewETLOptions creates an ETLOptions instance with default values.
func NewETLOptions() *ETLOptions {
	return &ETLOptions{
		LogOptions:   logopts.NewOptions(),
		MongoOptions: mongoopts.NewOptions(),
		DataDir:      "data",
		Collection:   "items",
		BatchSize:    100,
		Workers:      4,
	}
}

// Flags returns flags grouped by section.
func (o *ETLOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.MongoOptions.AddFlags(fss.FlagSet("mongodb"))

	fs := fss.FlagSet("etl")
	fs.StringVar(&o.DataDir, "data-dir", o.DataDir, "Directory scanned for CSV, JSON and XLSX files")
	fs.StringVar(&o.Collection, "collection", o.Collection, "Target MongoDB collection")
	fs.IntVar(&o.BatchSize, "batch-size", o.BatchSize, "Rows per upsert batch")
	fs.IntVar(&o.Workers, "workers", o.Workers, "Upsert worker pool size")

	return fss
}

// Complete completes all the required options.
func (o *ETLOptions) Complete() error {
	if err := o.MongoOptions.Complete(); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	return nil
}

// Validate checks whether the options are valid.
func (o *ETLOptions) Validate() error {
	errs := []error{}

	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.MongoOptions.Validate()...)

	if o.DataDir == "" {
		errs = append(errs, fmt.Errorf("data-dir is required"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("collection is required"))
	}
	if o.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch-size must be positive"))
	}
	if o.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive"))
	}

	return utilerrors.NewAggregate(errs)
}

// Config builds the loader config.
func (o *ETLOptions) Config() *etl.Config {
	return &etl.Config{
		DataDir:   o.DataDir,
		BatchSize: o.BatchSize,
		Workers:   o.Workers,
	}
}
