package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"altibbi/internal/logger"
	"altibbi/internal/models"
	"altibbi/pkg/utils"
)

var (
	// ErrInputDirMissing is returned when the record directory does not exist.
	ErrInputDirMissing = errors.New("input directory does not exist")
	// ErrRecordWithoutID marks a record file that decodes but carries no objectID.
	ErrRecordWithoutID = errors.New("record has no objectID")
)

// SkippedFile is a record file that could not be read or decoded.
type SkippedFile struct {
	Path string
	Err  error
}

// CombineResult summarizes one combine run.
type CombineResult struct {
	OutputFile string
	Combined   int
	Skipped    []SkippedFile
}

// Combiner merges per-record files into one JSON array.
type Combiner struct {
	ext    string
	logger *logger.Logger
}

// NewCombiner creates a combiner reading files with extension ext.
func NewCombiner(ext string, log *logger.Logger) *Combiner {
	return &Combiner{ext: ext, logger: log}
}

// Combine reads every record file directly inside inputDir and writes them
// as one array to outputFile, replacing it. Files are read in name order.
// Unreadable files are logged and skipped.
func (c *Combiner) Combine(inputDir, outputFile string) (*CombineResult, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputDirMissing, inputDir)
		}

		return nil, fmt.Errorf("failed to list %s: %w", inputDir, err)
	}

	result := &CombineResult{OutputFile: outputFile}
	records := make([]models.Record, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), c.ext) {
			continue
		}

		path := filepath.Join(inputDir, entry.Name())

		rec, readErr := readRecord(path)
		if readErr != nil {
			c.logger.Warn("Error reading record file", "path", path, "error", readErr)
			result.Skipped = append(result.Skipped, SkippedFile{Path: path, Err: readErr})

			continue
		}

		records = append(records, rec)
	}

	data, err := encodeJSON(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode combined records: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := utils.WriteFileAtomic(outputFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write combined file %s: %w", outputFile, err)
	}

	result.Combined = len(records)

	c.logger.Info("Combined records",
		"output", outputFile,
		"records", result.Combined,
		"skipped", len(result.Skipped),
	)

	return result, nil
}

func readRecord(path string) (models.Record, error) {
	var rec models.Record

	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, err
	}

	if rec.ID == "" {
		return rec, ErrRecordWithoutID
	}

	return rec, nil
}
