// Package normalizer turns raw search hits into plain-text records.
package normalizer

import (
	"encoding/json"
	"fmt"

	"altibbi/internal/models"
)

// Processor handles hit validation and transformation.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor() *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
	}
}

// Process turns one raw hit into a Record.
func (p *Processor) Process(raw json.RawMessage) (models.Record, error) {
	hit, err := p.validator.Validate(raw)
	if err != nil {
		return models.Record{}, fmt.Errorf("validation failed: %w", err)
	}

	return p.transformer.Transform(hit), nil
}
