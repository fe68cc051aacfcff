// Package models defines data structures for the harvester pipeline.
package models

// Hit is one element of results[0].hits in a search API response.
// ObjectID is a pointer so a missing key can be told apart from an empty one.
type Hit struct {
	ObjectID *string `json:"objectID"`
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	URL      string  `json:"url"`
}

// Record is a normalized hit as persisted on disk.
// The JSON keys match the files produced by earlier harvests.
type Record struct {
	ID        string `json:"objectID"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	SourceURL string `json:"url"`
}
