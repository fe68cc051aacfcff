package normalizer

import (
	"altibbi/internal/models"
)

// Transformer turns validated hits into records.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform normalizes the body of a validated hit. Absent title and url are already "".
func (t *Transformer) Transform(hit *models.Hit) models.Record {
	return models.Record{
		ID:        *hit.ObjectID,
		Title:     hit.Title,
		Body:      NormalizeBody(hit.Body),
		SourceURL: hit.URL,
	}
}
