package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"

	"altibbi/internal/models"
)

// Validation errors.
var (
	ErrInvalidHit      = errors.New("hit is not a valid JSON object")
	ErrMissingObjectID = errors.New("hit is missing objectID")
	ErrEmptyObjectID   = errors.New("hit has an empty objectID")
)

// Validator decodes and checks a single raw hit.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate decodes raw into a Hit and checks that it carries an objectID.
func (v *Validator) Validate(raw json.RawMessage) (*models.Hit, error) {
	var hit models.Hit
	if err := json.Unmarshal(raw, &hit); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHit, err)
	}

	if hit.ObjectID == nil {
		return nil, ErrMissingObjectID
	}

	if *hit.ObjectID == "" {
		return nil, ErrEmptyObjectID
	}

	return &hit, nil
}
