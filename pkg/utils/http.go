// Package utils provides common utility functions.
package utils

import (
	"net/http"
	"net/url"
)

// browserHeaders mimic a desktop Firefox session; the search API rejects bare clients.
// Accept-Encoding is left to the transport so compressed bodies are decoded.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Content-Type":              "application/json",
	"Origin":                    "null",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "cross-site",
	"Sec-GPC":                   "1",
	"Priority":                  "u=1",
	"Pragma":                    "no-cache",
	"Cache-Control":             "no-cache",
	"TE":                        "trailers",
}

// HTTPHelper provides HTTP utility functions.
type HTTPHelper struct{}

// NewHTTPHelper creates a new HTTP helper.
func NewHTTPHelper() *HTTPHelper {
	return &HTTPHelper{}
}

// IsValidURL reports whether raw is an absolute http(s) URL with a host.
func (h *HTTPHelper) IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BuildHeaders creates HTTP headers with browser defaults. Custom headers replace defaults.
func (h *HTTPHelper) BuildHeaders(customHeaders map[string]string) http.Header {
	headers := http.Header{}

	for key, value := range browserHeaders {
		headers.Set(key, value)
	}

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}
