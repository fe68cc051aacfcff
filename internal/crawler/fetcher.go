package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"altibbi/internal/config"
	"altibbi/internal/logger"
	"altibbi/internal/models"
	"altibbi/internal/normalizer"
	"altibbi/internal/progress"
	"altibbi/internal/storage"
)

// ErrPageLimitReached stops a run after crawler.max_pages pages.
var ErrPageLimitReached = errors.New("page limit reached")

// State is the terminal state of one fetch run.
type State string

const (
	// StateSkipped means the combined file already existed.
	StateSkipped State = "skipped"
	// StateDone means an empty page was reached.
	StateDone State = "done"
	// StateAborted means the run stopped early; the checkpoint is kept.
	StateAborted State = "aborted"
)

// PageFetcher returns one page of hits for an index.
type PageFetcher interface {
	FetchPage(ctx context.Context, indexName string, page int) (*PageResult, error)
}

// FetchResult reports how a fetch run ended.
type FetchResult struct {
	Collection     string
	State          State
	Outcome        Outcome
	StartPage      int
	LastPage       int
	PagesFetched   int
	RecordsWritten int
	RecordsSkipped int
	Err            error
}

// Fetcher pages through one collection and writes a file per hit.
type Fetcher struct {
	cfg       *config.Config
	pages     PageFetcher
	processor *normalizer.Processor
	progress  *progress.Store
	sleep     Sleeper
	logger    *logger.Logger
}

// NewFetcher creates a fetcher reading pages from pages.
func NewFetcher(cfg *config.Config, pages PageFetcher, store *progress.Store, log *logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:       cfg,
		pages:     pages,
		processor: normalizer.NewProcessor(),
		progress:  store,
		sleep:     SleepContext,
		logger:    log,
	}
}

// WithSleeper replaces the sleeper used for the delay between pages.
func (f *Fetcher) WithSleeper(sleep Sleeper) *Fetcher {
	f.sleep = sleep

	return f
}

// Fetch runs the page loop for col, resuming from its checkpoint.
// Aborts are reported in the result; the returned error is reserved for
// conditions that must halt the whole run.
func (f *Fetcher) Fetch(ctx context.Context, col models.Collection) (*FetchResult, error) {
	log := f.logger.With("collection", col.Name)
	result := &FetchResult{Collection: col.Name, LastPage: -1}

	combined := f.cfg.CombinedPath(col)
	if _, err := os.Stat(combined); err == nil {
		log.Info("Combined file exists, skipping fetch", "path", combined)

		result.State = StateSkipped

		return result, nil
	}

	checkpoint := f.cfg.CheckpointPath(col)
	page := f.progress.Load(checkpoint)
	result.StartPage = page

	writer := storage.NewRecordWriter(f.cfg.RecordDir(col), f.cfg.Output.RecordExt)
	if err := writer.EnsureDir(); err != nil {
		return result, err
	}

	log.Info("Starting fetch", "index", col.IndexName, "page", page)

	for {
		if err := ctx.Err(); err != nil {
			return f.abort(log, result, err), nil
		}

		pr, err := f.pages.FetchPage(ctx, col.IndexName, page)
		if err != nil {
			return f.abort(log, result, fmt.Errorf("page %d: %w", page, err)), nil
		}

		if len(pr.Hits) == 0 {
			log.Info("No more data", "page", page)

			if err := f.progress.Clear(checkpoint); err != nil {
				log.Warn("Error removing progress", "path", checkpoint, "error", err)
			}

			result.State = StateDone
			result.Outcome = OutcomeSuccess

			return result, nil
		}

		written, skipped := f.writeHits(log, writer, page, pr.Hits)
		result.RecordsWritten += written
		result.RecordsSkipped += skipped
		result.PagesFetched++
		result.LastPage = page

		// A failed save only costs resumability.
		_ = f.progress.Save(checkpoint, page)

		log.Info("Page processed", "page", page, "written", written, "skipped", skipped)

		page++

		if f.cfg.Crawler.MaxPages > 0 && result.PagesFetched >= f.cfg.Crawler.MaxPages {
			return f.abort(log, result, fmt.Errorf("%w: %d", ErrPageLimitReached, f.cfg.Crawler.MaxPages)), nil
		}

		if err := f.sleep(ctx, f.cfg.Crawler.PageDelay); err != nil {
			return f.abort(log, result, err), nil
		}
	}
}

func (f *Fetcher) writeHits(log *logger.Logger, writer *storage.RecordWriter, page int, hits []json.RawMessage) (int, int) {
	written, skipped := 0, 0

	for i, raw := range hits {
		rec, err := f.processor.Process(raw)
		if err != nil {
			log.Warn("Skipping hit", "page", page, "index", i, "error", err)

			skipped++

			continue
		}

		if _, err := writer.Write(rec); err != nil {
			log.Warn("Error writing record", "page", page, "id", rec.ID, "error", err)

			skipped++

			continue
		}

		written++
	}

	return written, skipped
}

func (f *Fetcher) abort(log *logger.Logger, result *FetchResult, err error) *FetchResult {
	result.State = StateAborted
	result.Err = err
	result.Outcome = Classify(err)

	log.Warn("Fetch aborted",
		"error", err,
		"outcome", result.Outcome.String(),
		"pages", result.PagesFetched,
	)

	return result
}
