// Package pipeline runs fetch then combine for each configured collection.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"altibbi/internal/config"
	"altibbi/internal/crawler"
	"altibbi/internal/formatter"
	"altibbi/internal/logger"
	"altibbi/internal/models"
	"altibbi/internal/progress"
	"altibbi/internal/storage"
	"altibbi/pkg/utils"
)

// CollectionResult is the outcome of one collection's fetch and combine.
type CollectionResult struct {
	Collection string
	Fetch      *crawler.FetchResult
	Combine    *storage.CombineResult
	CombineErr error
}

// CollectionStatus describes the on-disk state of a collection.
type CollectionStatus struct {
	Collection     string
	CheckpointPage int
	HasCheckpoint  bool
	Records        int
	Combined       bool
}

// Driver wires the fetcher and combiner together.
type Driver struct {
	cfg      *config.Config
	fetcher  *crawler.Fetcher
	combiner *storage.Combiner
	progress *progress.Store
	logger   *logger.Logger
}

// NewDriver builds a driver using the search API from cfg.
func NewDriver(cfg *config.Config, log *logger.Logger) *Driver {
	headers := utils.NewHTTPHelper().BuildHeaders(cfg.API.Headers)
	scraper := crawler.NewScraper(cfg.Retry, cfg.API.Timeout, headers, log)
	client := crawler.NewClient(scraper, cfg.API.URL, cfg.API.HitsPerPage, log)

	return NewDriverWithFetcher(cfg, client, log)
}

// NewDriverWithFetcher builds a driver around an existing page source.
func NewDriverWithFetcher(cfg *config.Config, pages crawler.PageFetcher, log *logger.Logger) *Driver {
	store := progress.NewStore(log)

	return &Driver{
		cfg:      cfg,
		fetcher:  crawler.NewFetcher(cfg, pages, store, log),
		combiner: storage.NewCombiner(cfg.Output.RecordExt, log),
		progress: store,
		logger:   log,
	}
}

// Run fetches and then combines every collection in order. A collection
// that aborts never stops the next one. Fatal errors and cancellation stop
// the run and are returned.
func (d *Driver) Run(ctx context.Context, cols []models.Collection) ([]CollectionResult, error) {
	results := make([]CollectionResult, 0, len(cols))

	for _, col := range cols {
		fetch, err := d.fetcher.Fetch(ctx, col)
		if err != nil {
			return results, fmt.Errorf("collection %s: %w", col.Name, err)
		}

		res := CollectionResult{Collection: col.Name, Fetch: fetch}

		// A combined file gates the next fetch, so an interrupted run must not write one.
		if err := ctx.Err(); err != nil {
			results = append(results, res)

			d.logger.Warn("Run interrupted, skipping combine", "collection", col.Name)

			return results, fmt.Errorf("run interrupted: %w", err)
		}

		res.Combine, res.CombineErr = d.combine(col)
		results = append(results, res)
	}

	return results, nil
}

// CombineOnly re-runs the combine step for each collection.
func (d *Driver) CombineOnly(cols []models.Collection) []CollectionResult {
	results := make([]CollectionResult, 0, len(cols))

	for _, col := range cols {
		res := CollectionResult{Collection: col.Name}
		res.Combine, res.CombineErr = d.combine(col)
		results = append(results, res)
	}

	return results
}

func (d *Driver) combine(col models.Collection) (*storage.CombineResult, error) {
	result, err := d.combiner.Combine(d.cfg.RecordDir(col), d.cfg.CombinedPath(col))
	if err != nil {
		d.logger.Error("Combine failed", "collection", col.Name, "error", err)

		return nil, err
	}

	return result, nil
}

// Status inspects checkpoints, record files and combined files.
func (d *Driver) Status(cols []models.Collection) ([]CollectionStatus, error) {
	statuses := make([]CollectionStatus, 0, len(cols))

	for _, col := range cols {
		checkpoint := d.cfg.CheckpointPath(col)

		count, err := storage.NewRecordWriter(d.cfg.RecordDir(col), d.cfg.Output.RecordExt).Count()
		if err != nil {
			return nil, err
		}

		_, statErr := os.Stat(d.cfg.CombinedPath(col))

		statuses = append(statuses, CollectionStatus{
			Collection:     col.Name,
			CheckpointPage: d.progress.Load(checkpoint),
			HasCheckpoint:  d.progress.Exists(checkpoint),
			Records:        count,
			Combined:       statErr == nil,
		})
	}

	return statuses, nil
}

// SummaryTable renders run results as a markdown table.
func SummaryTable(results []CollectionResult) string {
	header := []string{"Collection", "State", "Start", "Pages", "Written", "Skipped", "Combined", "Error"}
	rows := make([][]string, 0, len(results))

	for _, res := range results {
		state, start, pages, written, skipped, errText := "-", "-", "-", "-", "-", ""

		if f := res.Fetch; f != nil {
			state = string(f.State)
			start = strconv.Itoa(f.StartPage)
			pages = strconv.Itoa(f.PagesFetched)
			written = strconv.Itoa(f.RecordsWritten)
			skipped = strconv.Itoa(f.RecordsSkipped)

			if f.Err != nil {
				errText = f.Err.Error()
			}
		}

		combined := "-"
		if res.Combine != nil {
			combined = strconv.Itoa(res.Combine.Combined)
		}

		if res.CombineErr != nil {
			errText = joinErr(errText, res.CombineErr.Error())
		}

		rows = append(rows, []string{res.Collection, state, start, pages, written, skipped, combined, errText})
	}

	return formatter.FormatTable(header, rows)
}

// StatusTable renders collection statuses as a markdown table.
func StatusTable(statuses []CollectionStatus) string {
	header := []string{"Collection", "Checkpoint", "Records", "Combined"}
	rows := make([][]string, 0, len(statuses))

	for _, st := range statuses {
		checkpoint := "-"
		if st.HasCheckpoint {
			checkpoint = strconv.Itoa(st.CheckpointPage)
		}

		rows = append(rows, []string{st.Collection, checkpoint, strconv.Itoa(st.Records), strconv.FormatBool(st.Combined)})
	}

	return formatter.FormatTable(header, rows)
}

func joinErr(a, b string) string {
	if a == "" {
		return b
	}

	return a + "; " + b
}
