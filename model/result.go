package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/siherrmann/hybridnlu/helper"
)

// Source tells which stages produced the final entities.
type Source string

const (
	SourceNER      Source = "ner"
	SourceNERRegex Source = "ner+regex"
	SourceTemplate Source = "template"
)

// Validation is the final validation block of an NLU result.
type Validation struct {
	Valid       bool     `json:"valid"`
	Missing     []string `json:"missing"`
	Errors      []string `json:"errors"`
	Required    []string `json:"required"`
	HasOptional bool     `json:"has_optional"`
}

// RawResult carries the diagnostics of a pipeline run.
type RawResult struct {
	Source            Source      `json:"source"`
	EntityConfidences Confidences `json:"entity_confidences"`
	Spans             []Entity    `json:"spans,omitempty"`
}

// NLUResult is the structured output for one utterance.
type NLUResult struct {
	Intent     string     `json:"intent"`
	Confidence float64    `json:"confidence"`
	Entities   EntityMap  `json:"entities"`
	Validation Validation `json:"validation"`
	Raw        RawResult  `json:"raw"`
}

// Value implements the driver.Valuer interface for database storage
func (v Validation) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements the sql.Scanner interface for database retrieval
func (v *Validation) Scan(value interface{}) error {
	if value == nil {
		*v = Validation{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, v)
}
