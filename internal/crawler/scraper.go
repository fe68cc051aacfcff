package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"altibbi/internal/config"
	"altibbi/internal/logger"
)

var (
	// ErrUnexpectedStatusCode indicates an HTTP response with status >= 400.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrRetriesExhausted is returned after the last failed attempt.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Sleeper pauses for d. It returns early with ctx.Err() if ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Response is a successful HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
	Attempts   int
}

// Scraper performs HTTP requests with config-driven retry logic.
type Scraper struct {
	client      *resty.Client
	retryPolicy config.RetryPolicy
	sleep       Sleeper
	logger      *logger.Logger
}

// NewScraper creates a scraper sending headers on every request.
func NewScraper(retryPolicy config.RetryPolicy, timeout time.Duration, headers http.Header, log *logger.Logger) *Scraper {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetLogger(restyLogger{log: log})

	for key := range headers {
		client.SetHeader(key, headers.Get(key))
	}

	return &Scraper{
		client:      client,
		retryPolicy: retryPolicy,
		sleep:       SleepContext,
		logger:      log,
	}
}

// WithSleeper replaces the sleeper used between attempts.
func (s *Scraper) WithSleeper(sleep Sleeper) *Scraper {
	s.sleep = sleep

	return s
}

// PostWithRetries posts body to url until a response with status < 400
// arrives or the attempts run out. The delay between attempts is fixed.
func (s *Scraper) PostWithRetries(ctx context.Context, url string, body []byte) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		resp, err := s.post(ctx, url, body)
		if err == nil {
			resp.Attempts = attempt

			return resp, nil
		}

		lastErr = err

		if Classify(err) == OutcomeFatal {
			return nil, err
		}

		s.logger.Warn("Request failed",
			"attempt", attempt,
			"max_attempts", s.retryPolicy.MaxAttempts,
			"error", err,
		)

		if attempt < s.retryPolicy.MaxAttempts {
			if sleepErr := s.sleep(ctx, s.retryPolicy.Delay); sleepErr != nil {
				return nil, sleepErr
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, s.retryPolicy.MaxAttempts, lastErr)
}

func (s *Scraper) post(ctx context.Context, url string, body []byte) (*Response, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, fmt.Errorf("request failed: %w", err)
	}

	if res.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, res.StatusCode())
	}

	return &Response{
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}, nil
}

// restyLogger routes resty's internal messages into the structured logger.
type restyLogger struct {
	log *logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
