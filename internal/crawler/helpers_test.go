package crawler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"altibbi/internal/config"
	"altibbi/internal/logger"
	"altibbi/pkg/utils"
)

// recordingSleeper records requested delays without sleeping.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.delays = append(r.delays, d)

	return ctx.Err()
}

func (r *recordingSleeper) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]time.Duration(nil), r.delays...)
}

// capturedRequest is one request seen by a test server.
type capturedRequest struct {
	Method string
	Header http.Header
	Body   []byte
}

// testServer replies with handler and records every request.
type testServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []capturedRequest
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, call int, body []byte)) *testServer {
	t.Helper()

	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		ts.mu.Lock()
		ts.requests = append(ts.requests, capturedRequest{Method: r.Method, Header: r.Header.Clone(), Body: body})
		call := len(ts.requests)
		ts.mu.Unlock()

		handler(w, call, body)
	}))
	t.Cleanup(ts.Close)

	return ts
}

func (ts *testServer) Requests() []capturedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return append([]capturedRequest(nil), ts.requests...)
}

func newTestScraper(maxAttempts int, sleeper *recordingSleeper) *Scraper {
	policy := config.RetryPolicy{MaxAttempts: maxAttempts, Delay: 5 * time.Second}
	headers := utils.NewHTTPHelper().BuildHeaders(nil)

	return NewScraper(policy, 5*time.Second, headers, logger.Discard()).WithSleeper(sleeper.Sleep)
}
