// Package storage writes per-record files and merges them into combined arrays.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"altibbi/internal/models"
	"altibbi/pkg/utils"
)

// ErrEmptyFilename is returned when a record id sanitizes to nothing.
var ErrEmptyFilename = errors.New("record id sanitizes to an empty filename")

const recordIndent = "    "

// RecordWriter stores one file per record, keyed by sanitized id.
type RecordWriter struct {
	dir     string
	ext     string
	strings *utils.StringHelper
}

// NewRecordWriter creates a writer for dir using the given file extension.
func NewRecordWriter(dir, ext string) *RecordWriter {
	return &RecordWriter{
		dir:     dir,
		ext:     ext,
		strings: utils.NewStringHelper(),
	}
}

// EnsureDir creates the record directory if needed.
func (w *RecordWriter) EnsureDir() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create record directory %s: %w", w.dir, err)
	}

	return nil
}

// Path returns the file path for a record id.
func (w *RecordWriter) Path(id string) (string, error) {
	name := w.strings.SanitizeFilename(id)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyFilename, id)
	}

	return filepath.Join(w.dir, name+w.ext), nil
}

// Write stores rec, replacing any earlier file for the same id.
func (w *RecordWriter) Write(rec models.Record) (string, error) {
	path, err := w.Path(rec.ID)
	if err != nil {
		return "", err
	}

	data, err := encodeJSON(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}

	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write record %s: %w", rec.ID, err)
	}

	return path, nil
}

// Count returns the number of record files in the directory.
// A missing directory counts as zero.
func (w *RecordWriter) Count() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to list %s: %w", w.dir, err)
	}

	count := 0

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), w.ext) {
			count++
		}
	}

	return count, nil
}

// encodeJSON writes v with four-space indentation and without HTML escaping,
// keeping non-ASCII text readable.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", recordIndent)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
