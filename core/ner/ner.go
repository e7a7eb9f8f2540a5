package ner

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/hybridnlu/core/extract"
	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
)

// TokenSpan is one aggregated span of a token classification model.
// Start and End are byte offsets into the input text.
type TokenSpan struct {
	Label string
	Score float64
	Start int
	End   int
}

// TokenClassifyFunc runs a token classification model with simple aggregation.
type TokenClassifyFunc func(text string) ([]TokenSpan, error)

// ModelExtractor extracts entities with a NER model and falls back to
// the fixed regex patterns when the model is missing or fails.
type ModelExtractor struct {
	classify TokenClassifyFunc
	fallback *extract.RegexExtractor
	close    func() error
	log      *slog.Logger
}

// NewModelExtractor wraps classify with the regex fallback. classify may be nil.
func NewModelExtractor(classify TokenClassifyFunc, logger *slog.Logger) *ModelExtractor {
	if logger == nil {
		logger = helper.DiscardLogger()
	}
	return &ModelExtractor{
		classify: classify,
		fallback: extract.NewRegexExtractor(),
		log:      logger,
	}
}

// NewHugotExtractor loads the NER model from modelDir with hugot.
func NewHugotExtractor(modelDir string, logger *slog.Logger) (*ModelExtractor, error) {
	if !helper.ModelAvailable(modelDir) {
		return nil, helper.NewError("load ner model", fmt.Errorf("model directory %q not found", modelDir))
	}

	labels, err := helper.LoadLabelMap(modelDir)
	if err != nil {
		return nil, helper.NewError("load ner labels", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelDir,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	classify := func(text string) ([]TokenSpan, error) {
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}
		if len(result.Entities) == 0 {
			return nil, nil
		}

		spans := make([]TokenSpan, 0, len(result.Entities[0]))
		for _, entity := range result.Entities[0] {
			spans = append(spans, TokenSpan{
				Label: resolveLabel(entity.Entity, labels),
				Score: float64(entity.Score),
				Start: int(entity.Start),
				End:   int(entity.End),
			})
		}
		return spans, nil
	}

	e := NewModelExtractor(classify, logger)
	e.close = session.Destroy
	return e, nil
}

// Extract returns the entities and their confidences. Without a usable model
// it returns the regex fallback map with no confidences.
func (e *ModelExtractor) Extract(text string) (model.EntityMap, model.Confidences) {
	if e.classify == nil {
		return e.fallback.ExtractEntityMap(text), model.Confidences{}
	}

	spans, err := e.classify(text)
	if err != nil {
		e.log.Warn("NER model failed, using regex fallback", slog.Any("error", err))
		return e.fallback.ExtractEntityMap(text), model.Confidences{}
	}

	return ParseSpans(spans, text)
}

// HasModel reports whether a model backs the extractor.
func (e *ModelExtractor) HasModel() bool {
	return e.classify != nil
}

// Close releases the hugot session if there is one.
func (e *ModelExtractor) Close() error {
	if e.close == nil {
		return nil
	}
	err := e.close()
	e.close = nil
	return err
}

// MergeSpans collapses spans of the same entity type into one span from the
// smallest start to the largest end with the mean score. Two separate entities
// of one type therefore come back as a single span covering both.
// Labels that are no entity type are dropped. The result is ordered by start.
func MergeSpans(spans []TokenSpan) []TokenSpan {
	merged := map[string]*TokenSpan{}
	counts := map[string]int{}
	var order []string

	for _, span := range spans {
		entityType := normalizeEntityType(span.Label)
		if !model.IsEntityType(entityType) {
			continue
		}

		current, ok := merged[entityType]
		if !ok {
			merged[entityType] = &TokenSpan{Label: entityType, Score: span.Score, Start: span.Start, End: span.End}
			counts[entityType] = 1
			order = append(order, entityType)
			continue
		}

		current.Start = min(current.Start, span.Start)
		current.End = max(current.End, span.End)
		current.Score += span.Score
		counts[entityType]++
	}

	out := make([]TokenSpan, 0, len(order))
	for _, entityType := range order {
		span := *merged[entityType]
		span.Score /= float64(counts[entityType])
		out = append(out, span)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// ParseSpans turns model spans into an entity map. Values are sliced from the
// original text so subword artifacts never reach the result.
func ParseSpans(spans []TokenSpan, text string) (model.EntityMap, model.Confidences) {
	entities := model.EntityMap{}
	confidences := model.Confidences{}

	for _, candidate := range ParseCandidates(spans, text) {
		entities[string(candidate.Type)] = candidate.Text
		confidences[string(candidate.Type)] = candidate.Confidence
	}

	return entities, confidences
}

// ParseCandidates returns one ml candidate per entity type after MergeSpans,
// with offsets clipped to text and narrowed to the trimmed value.
func ParseCandidates(spans []TokenSpan, text string) []model.Entity {
	var candidates []model.Entity

	for _, span := range MergeSpans(spans) {
		start := max(span.Start, 0)
		end := min(span.End, len(text))
		if start >= end {
			continue
		}

		raw := text[start:end]
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		start += strings.Index(raw, value)
		candidates = append(candidates, model.Entity{
			Text:       value,
			Start:      start,
			End:        start + len(value),
			Type:       model.EntityType(span.Label),
			Confidence: span.Score,
			Strategy:   model.StrategyML,
		})
	}

	return candidates
}

// normalizeEntityType removes B- and I- prefixes and lowercases the label.
func normalizeEntityType(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		label = label[2:]
	}
	return strings.ToLower(label)
}

// resolveLabel maps generic LABEL_<n> outputs through the label map.
func resolveLabel(label string, labels map[int]string) string {
	if len(labels) == 0 {
		return label
	}
	var idx int
	if _, err := fmt.Sscanf(label, "LABEL_%d", &idx); err == nil {
		if mapped, ok := labels[idx]; ok {
			return mapped
		}
	}
	return label
}
