package etl

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/JhonatanRC03/chat-rag/pkg/tabular"
)

// Item is a row prepared for upsert: normalized cells plus the derived id
// and load timestamp.
type Item map[string]any

// ItemStore is the upsert target.
type ItemStore interface {
	// UpsertBatch writes items keyed by their "id" field, returning how
	// many succeeded and failed. Row-level failures do not abort the batch.
	UpsertBatch(ctx context.Context, items []Item) (succeeded, failed int, err error)

	// Count returns the number of documents in the collection.
	Count(ctx context.Context) (int64, error)
}

// Config configures a load run.
type Config struct {
	// DataDir is the directory scanned for tabular files.
	DataDir string

	// BatchSize is the number of rows per upsert batch.
	BatchSize int

	// Workers is the size of the upsert worker pool.
	Workers int
}

// FileStats summarizes one loaded file.
type FileStats struct {
	File      string `json:"file"`
	Rows      int    `json:"rows"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// Summary is the aggregate result of a load run.
type Summary struct {
	Files       []FileStats   `json:"files"`
	TotalRows   int           `json:"total_rows"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	FinalCount  int64         `json:"final_count"`
	Elapsed     time.Duration `json:"elapsed"`
}

// SuccessRate returns the fraction of rows upserted, in percent.
func (s *Summary) SuccessRate() float64 {
	if s.TotalRows == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.TotalRows) * 100
}

// Loader runs the tabular-to-MongoDB load.
type Loader struct {
	store  ItemStore
	config *Config
}

// NewLoader creates a loader. Zero config values get defaults: batch size
// 100 and 4 workers.
func NewLoader(store ItemStore, config *Config) *Loader {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	return &Loader{store: store, config: config}
}

// Run discovers the tabular files in the data directory and loads each one.
// A file-level failure is recorded and does not abort the run.
func (l *Loader) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	files, err := tabular.Discover(l.config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan data directory: %w", err)
	}
	if len(files) == 0 {
		logger.Warnw("no tabular files found", "dir", l.config.DataDir)
	}

	pool, err := ants.NewPool(l.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	summary := &Summary{}
	for _, file := range files {
		stats := l.loadFile(ctx, pool, file)
		summary.Files = append(summary.Files, stats)
		summary.TotalRows += stats.Rows
		summary.Succeeded += stats.Succeeded
		summary.Failed += stats.Failed

		logger.Infow("file loaded",
			"file", stats.File,
			"rows", stats.Rows,
			"succeeded", stats.Succeeded,
			"failed", stats.Failed,
		)
	}

	count, err := l.store.Count(ctx)
	if err != nil {
		logger.Warnw("failed to count collection documents", "error", err.Error())
	} else {
		summary.FinalCount = count
	}
	summary.Elapsed = time.Since(start)

	logger.Infow("load finished",
		"files", len(summary.Files),
		"total_rows", summary.TotalRows,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"success_rate", fmt.Sprintf("%.1f%%", summary.SuccessRate()),
		"final_count", summary.FinalCount,
		"elapsed", summary.Elapsed.String(),
	)
	return summary, nil
}

func (l *Loader) loadFile(ctx context.Context, pool *ants.Pool, path string) FileStats {
	stats := FileStats{File: path}

	rows, err := tabular.ReadFile(path)
	if err != nil {
		stats.Error = err.Error()
		logger.Errorw("failed to read file", "file", path, "error", err.Error())
		return stats
	}
	stats.Rows = len(rows)
	if len(rows) == 0 {
		return stats
	}

	loadedAt := time.Now().UTC().Format(time.RFC3339)
	items := make([]Item, len(rows))
	for i, row := range rows {
		items[i] = prepareItem(row, i, loadedAt)
	}

	var succeeded, failed int64
	var wg sync.WaitGroup
	for start := 0; start < len(items); start += l.config.BatchSize {
		end := start + l.config.BatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			ok, bad, err := l.store.UpsertBatch(ctx, batch)
			if err != nil {
				logger.Errorw("batch upsert failed",
					"file", path,
					"batch_size", len(batch),
					"error", err.Error(),
				)
				atomic.AddInt64(&failed, int64(len(batch)))
				return
			}
			atomic.AddInt64(&succeeded, int64(ok))
			atomic.AddInt64(&failed, int64(bad))
		}
		if err := pool.Submit(task); err != nil {
			// Pool unavailable, run inline.
			task()
		}
	}
	wg.Wait()

	stats.Succeeded = int(succeeded)
	stats.Failed = int(failed)
	return stats
}

// prepareItem derives the upsert id and stamps the load timestamp.
func prepareItem(row tabular.Row, index int, loadedAt string) Item {
	item := make(Item, len(row)+2)
	for field, value := range row {
		item[field] = value
	}
	item["id"] = DeriveID(row, index)
	item["_loaded_at"] = loadedAt
	return item
}
