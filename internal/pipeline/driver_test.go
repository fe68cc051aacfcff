package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"altibbi/internal/config"
	"altibbi/internal/crawler"
	"altibbi/internal/logger"
	"altibbi/internal/models"
	"altibbi/internal/storage"
)

type searchRequest struct {
	IndexName string `json:"indexName"`
	Params    struct {
		Page int `json:"page"`
	} `json:"params"`
}

// fakeSearchAPI serves hits per index and page. Indexes listed in failing
// always answer 500.
type fakeSearchAPI struct {
	mu      sync.Mutex
	hits    map[string]map[int][]string
	failing map[string]bool
	calls   map[string]int
}

func (f *fakeSearchAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	var reqs []searchRequest
	if err := json.Unmarshal(body, &reqs); err != nil || len(reqs) != 1 {
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	req := reqs[0]

	f.mu.Lock()
	f.calls[req.IndexName]++
	f.mu.Unlock()

	if f.failing[req.IndexName] {
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	ids := f.hits[req.IndexName][req.Params.Page]
	hits := make([]string, 0, len(ids))

	for _, id := range ids {
		hits = append(hits, fmt.Sprintf(`{"objectID":%q,"title":"Title %s","body":"<p>Body {x}%s</p>","url":"/%s"}`, id, id, id, id))
	}

	_, _ = fmt.Fprintf(w, `{"results":[{"hits":[%s]}]}`, strings.Join(hits, ","))
}

func (f *fakeSearchAPI) Calls(index string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[index]
}

func newHarness(t *testing.T, api *fakeSearchAPI) (*config.Config, *Driver) {
	t.Helper()

	if api.calls == nil {
		api.calls = map[string]int{}
	}

	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	root := t.TempDir()
	cfg := config.Defaults()
	cfg.API.URL = ts.URL
	cfg.Retry.Delay = 0
	cfg.Crawler.PageDelay = 0
	cfg.Output.DataDir = filepath.Join(root, "data")
	cfg.Output.CheckpointDir = root

	require.NoError(t, cfg.Validate())

	return cfg, NewDriver(cfg, logger.Discard())
}

func readCombined(t *testing.T, path string) []models.Record {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var recs []models.Record
	require.NoError(t, json.Unmarshal(data, &recs))

	return recs
}

func TestRun_EndToEnd(t *testing.T) {
	api := &fakeSearchAPI{hits: map[string]map[int][]string{
		"article-lists": {0: {"a1", "a2"}},
	}}
	cfg, driver := newHarness(t, api)

	results, err := driver.Run(context.Background(), cfg.Collections)
	require.NoError(t, err)
	require.Len(t, results, 3)

	articles := cfg.Collections[0]
	assert.Equal(t, crawler.StateDone, results[0].Fetch.State)
	assert.Equal(t, 2, results[0].Fetch.RecordsWritten)
	assert.FileExists(t, filepath.Join(cfg.RecordDir(articles), "a1.json"))
	assert.FileExists(t, filepath.Join(cfg.RecordDir(articles), "a2.json"))
	assert.NoFileExists(t, cfg.CheckpointPath(articles))

	recs := readCombined(t, cfg.CombinedPath(articles))
	require.Len(t, recs, 2)
	assert.Equal(t, models.Record{ID: "a1", Title: "Title a1", Body: "Body a1", SourceURL: "/a1"}, recs[0])

	// Empty collections still produce an empty combined array.
	for _, col := range cfg.Collections[1:] {
		assert.Empty(t, readCombined(t, cfg.CombinedPath(col)))
	}

	assert.Equal(t, 2, api.Calls("article-lists"))
	assert.Equal(t, 1, api.Calls("news_articles"))
	assert.Equal(t, 1, api.Calls("questions"))
}

func TestRun_AbortDoesNotBlockNextCollection(t *testing.T) {
	api := &fakeSearchAPI{
		hits: map[string]map[int][]string{
			"questions": {0: {"q1"}},
		},
		failing: map[string]bool{"news_articles": true},
	}
	cfg, driver := newHarness(t, api)

	results, err := driver.Run(context.Background(), cfg.Collections)
	require.NoError(t, err)
	require.Len(t, results, 3)

	news := results[1]
	assert.Equal(t, crawler.StateAborted, news.Fetch.State)
	assert.ErrorIs(t, news.Fetch.Err, crawler.ErrRetriesExhausted)
	assert.Equal(t, cfg.Retry.MaxAttempts, api.Calls("news_articles"))
	// The record directory exists, so the combine still runs.
	require.NoError(t, news.CombineErr)
	assert.Zero(t, news.Combine.Combined)

	assert.Equal(t, crawler.StateDone, results[2].Fetch.State)
	assert.Len(t, readCombined(t, cfg.CombinedPath(cfg.Collections[2])), 1)
}

func TestRun_SecondRunSkipsCombinedCollections(t *testing.T) {
	api := &fakeSearchAPI{hits: map[string]map[int][]string{
		"article-lists": {0: {"a1"}},
	}}
	cfg, driver := newHarness(t, api)

	_, err := driver.Run(context.Background(), cfg.Collections)
	require.NoError(t, err)

	before := api.Calls("article-lists")

	results, err := driver.Run(context.Background(), cfg.Collections)
	require.NoError(t, err)

	for _, res := range results {
		assert.Equal(t, crawler.StateSkipped, res.Fetch.State)
	}

	assert.Equal(t, before, api.Calls("article-lists"))
	assert.Len(t, readCombined(t, cfg.CombinedPath(cfg.Collections[0])), 1)
}

func TestRun_FatalErrorHaltsRun(t *testing.T) {
	api := &fakeSearchAPI{}
	cfg, driver := newHarness(t, api)

	require.NoError(t, os.WriteFile(cfg.Output.DataDir, []byte("file"), 0644))

	results, err := driver.Run(context.Background(), cfg.Collections)
	require.Error(t, err)
	assert.Empty(t, results)
	assert.Zero(t, api.Calls("article-lists"))
}

func TestRun_CancelledRunKeepsResumeState(t *testing.T) {
	api := &fakeSearchAPI{hits: map[string]map[int][]string{
		"article-lists": {0: {"a1"}},
		"questions":     {0: {"q1"}},
	}}
	cfg, driver := newHarness(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := driver.Run(ctx, cfg.Collections)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.Equal(t, crawler.StateAborted, results[0].Fetch.State)
	assert.Nil(t, results[0].Combine)

	for _, col := range cfg.Collections {
		assert.NoFileExists(t, cfg.CombinedPath(col))
	}

	// The next run fetches every collection instead of skipping it.
	results, err = driver.Run(context.Background(), cfg.Collections)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, res := range results {
		assert.Equal(t, crawler.StateDone, res.Fetch.State)
	}

	assert.Equal(t, 2, api.Calls("article-lists"))
	assert.Equal(t, 2, api.Calls("questions"))
	assert.Len(t, readCombined(t, cfg.CombinedPath(cfg.Collections[0])), 1)
}

func TestCombineOnlyAndStatus(t *testing.T) {
	api := &fakeSearchAPI{}
	cfg, driver := newHarness(t, api)

	questions := cfg.Collections[2]
	require.NoError(t, os.MkdirAll(cfg.RecordDir(questions), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.RecordDir(questions), "q1.json"), []byte(`{"objectID":"q1"}`), 0644))
	require.NoError(t, os.WriteFile(cfg.CheckpointPath(questions), []byte(`{"page": 4}`), 0644))

	results := driver.CombineOnly(cfg.Collections)
	require.Len(t, results, 3)
	assert.ErrorIs(t, results[0].CombineErr, storage.ErrInputDirMissing)
	assert.Equal(t, 1, results[2].Combine.Combined)

	statuses, err := driver.Status(cfg.Collections)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.Equal(t, CollectionStatus{Collection: "articles"}, statuses[0])
	assert.Equal(t, CollectionStatus{
		Collection:     "questions",
		CheckpointPage: 4,
		HasCheckpoint:  true,
		Records:        1,
		Combined:       true,
	}, statuses[2])

	table := StatusTable(statuses)
	assert.Contains(t, table, "| questions     | 4          | 1       | true     |")
	assert.Equal(t, 0, api.Calls("questions"))
}

func TestSummaryTable(t *testing.T) {
	results := []CollectionResult{
		{
			Collection: "articles",
			Fetch: &crawler.FetchResult{
				State:          crawler.StateAborted,
				StartPage:      2,
				PagesFetched:   1,
				RecordsWritten: 100,
				Err:            crawler.ErrRetriesExhausted,
			},
		},
	}

	table := SummaryTable(results)
	lines := strings.Split(strings.TrimSpace(table), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "| Collection |")
	assert.Contains(t, lines[2], "| articles   | aborted | 2     | 1     | 100     | 0       | -        | retries exhausted |")
}
