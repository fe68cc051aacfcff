// Package crawler fetches search index pages and turns them into record files.
package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"altibbi/internal/logger"
	"altibbi/pkg/utils"
)

// ErrMalformedResponse indicates a body without a results[0].hits array.
var ErrMalformedResponse = errors.New("malformed search response")

// Search request constants expected by the API.
const (
	highlightPreTag  = "__ais-highlight__"
	highlightPostTag = "__/ais-highlight__"
	maxBodyExcerpt   = 500
)

// PageResult holds the raw hits of one page, in response order.
type PageResult struct {
	Page int
	Hits []json.RawMessage
}

type searchParams struct {
	Facets           []string `json:"facets"`
	HighlightPostTag string   `json:"highlightPostTag"`
	HighlightPreTag  string   `json:"highlightPreTag"`
	HitsPerPage      int      `json:"hitsPerPage"`
	Page             int      `json:"page"`
	Query            string   `json:"query"`
	TagFilters       string   `json:"tagFilters"`
}

type searchRequest struct {
	IndexName string       `json:"indexName"`
	Params    searchParams `json:"params"`
}

type searchResponse struct {
	Results []struct {
		Hits json.RawMessage `json:"hits"`
	} `json:"results"`
}

// Client talks to the multi-index search endpoint.
type Client struct {
	scraper     *Scraper
	url         string
	hitsPerPage int
	logger      *logger.Logger
	strings     *utils.StringHelper
}

// NewClient creates a search client posting through scraper.
func NewClient(scraper *Scraper, url string, hitsPerPage int, log *logger.Logger) *Client {
	return &Client{
		scraper:     scraper,
		url:         url,
		hitsPerPage: hitsPerPage,
		logger:      log,
		strings:     utils.NewStringHelper(),
	}
}

// BuildRequestBody encodes the single-query batch for one page of an index.
func BuildRequestBody(indexName string, page, hitsPerPage int) ([]byte, error) {
	body, err := json.Marshal([]searchRequest{{
		IndexName: indexName,
		Params: searchParams{
			Facets:           []string{},
			HighlightPostTag: highlightPostTag,
			HighlightPreTag:  highlightPreTag,
			HitsPerPage:      hitsPerPage,
			Page:             page,
		},
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	return body, nil
}

// FetchPage requests one page of indexName and returns its hits.
func (c *Client) FetchPage(ctx context.Context, indexName string, page int) (*PageResult, error) {
	body, err := BuildRequestBody(indexName, page, c.hitsPerPage)
	if err != nil {
		return nil, err
	}

	resp, err := c.scraper.PostWithRetries(ctx, c.url, body)
	if err != nil {
		return nil, err
	}

	hits, err := decodeHits(resp.Body)
	if err != nil {
		c.logger.Error("Error parsing response",
			"index", indexName,
			"page", page,
			"error", err,
			"body", c.strings.TruncateString(string(resp.Body), maxBodyExcerpt),
		)

		return nil, err
	}

	return &PageResult{Page: page, Hits: hits}, nil
}

func decodeHits(body []byte) ([]json.RawMessage, error) {
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("%w: no results", ErrMalformedResponse)
	}

	raw := parsed.Results[0].Hits
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no hits", ErrMalformedResponse)
	}

	// A null hits array ends pagination like an empty one.
	var hits []json.RawMessage
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return hits, nil
}
