// Package app provides the chat-rag ETL application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JhonatanRC03/chat-rag/cmd/chat-rag-etl/app/options"
	"github.com/JhonatanRC03/chat-rag/internal/etl"
	"github.com/JhonatanRC03/chat-rag/pkg/app"
	"github.com/JhonatanRC03/chat-rag/pkg/component/mongodb"
)

const (
	// Name is the name of the application.
	Name = "chat-rag-etl"

	commandDesc = `chat-rag ETL tool

Bulk-loads tabular files (CSV, JSON, XLSX) from a data directory into a
MongoDB collection, upserting each row by a derived or provided identifier.`
)

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewETLOptions()
	return app.NewApp(
		app.WithName(Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.ETLOptions) app.RunFunc {
	return func() error {
		if err := opts.LogOptions.Init(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ctx := setupSignalContext()

		client, err := mongodb.NewWithContext(ctx, opts.MongoOptions)
		if err != nil {
			return fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		defer func() { _ = client.Close() }()

		store := etl.NewMongoItemStore(client, opts.Collection)
		loader := etl.NewLoader(store, opts.Config())

		summary, err := loader.Run(ctx)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d rows failed to load", summary.Failed, summary.TotalRows)
		}
		return nil
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
