package model

import (
	"time"

	"github.com/google/uuid"
)

// Utterance is a processed user input as stored in the utterance log
type Utterance struct {
	ID         int64      `json:"id"`
	RID        uuid.UUID  `json:"rid"`
	Text       string     `json:"text"`
	Intent     string     `json:"intent"`
	Confidence float64    `json:"confidence"`
	Entities   EntityMap  `json:"entities"`
	Validation Validation `json:"validation"`
	Source     Source     `json:"source"`
	Embedding  []float32  `json:"embedding,omitempty"`
	Metadata   Metadata   `json:"metadata,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	// Cosine similarity, set by similarity searches only
	Similarity float64 `json:"similarity,omitempty"`
}

// NewUtterance creates an Utterance from the text and its NLU result.
// Reserved post-processing keys are kept so the log shows what was validated.
func NewUtterance(text string, result *NLUResult, metadata Metadata) *Utterance {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &Utterance{
		Text:       text,
		Intent:     result.Intent,
		Confidence: result.Confidence,
		Entities:   result.Entities.Clone(),
		Validation: result.Validation,
		Source:     result.Raw.Source,
		Metadata:   metadata,
	}
}
