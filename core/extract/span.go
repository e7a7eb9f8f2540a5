package extract

import (
	"log/slog"
	"sort"

	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
)

// SpanExtractor aggregates candidates from several strategies and resolves overlaps.
type SpanExtractor struct {
	extractors []Extractor
	log        *slog.Logger
}

// NewSpanExtractor creates a SpanExtractor over the given strategies.
// Candidates of earlier extractors win confidence ties.
func NewSpanExtractor(logger *slog.Logger, extractors ...Extractor) *SpanExtractor {
	if logger == nil {
		logger = helper.DiscardLogger()
	}
	return &SpanExtractor{
		extractors: extractors,
		log:        logger,
	}
}

// NewDefaultSpanExtractor combines the library, regex and heuristic extractors.
func NewDefaultSpanExtractor(logger *slog.Logger, opts ...LibraryOption) *SpanExtractor {
	if logger != nil {
		opts = append([]LibraryOption{WithLogger(logger)}, opts...)
	}
	return NewSpanExtractor(
		logger,
		NewLibraryExtractor(opts...),
		NewRegexExtractor(),
		NewHeuristicExtractor(),
	)
}

// Candidates returns every candidate of every strategy in extraction order.
func (s *SpanExtractor) Candidates(text string) []model.Entity {
	var candidates []model.Entity
	for _, e := range s.extractors {
		candidates = append(candidates, e.Extract(text)...)
	}
	return candidates
}

// Resolve keeps the non-overlapping candidates, preferring higher confidence,
// and returns them ordered by start position.
func Resolve(candidates []model.Entity) []model.Entity {
	sorted := make([]model.Entity, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	accepted := []model.Entity{}
	for _, candidate := range sorted {
		overlaps := false
		for _, a := range accepted {
			if a.Overlaps(candidate.Start, candidate.End) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, candidate)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

// Extract returns one value per entity type, the accepted spans and the winning confidences.
// The winner of a type is its highest-confidence accepted span.
func (s *SpanExtractor) Extract(text string) (model.EntityMap, []model.Entity, model.Confidences) {
	candidates := s.Candidates(text)
	spans := Resolve(candidates)

	entities := model.EntityMap{}
	confidences := model.Confidences{}
	for _, span := range spans {
		key := string(span.Type)
		if current, ok := confidences[key]; ok && current >= span.Confidence {
			continue
		}
		entities[key] = span.Text
		confidences[key] = span.Confidence
	}

	s.log.Debug(
		"Span extraction finished",
		slog.Int("candidates", len(candidates)),
		slog.Int("accepted", len(spans)),
		slog.Any("entities", entities),
	)

	return entities, spans, confidences
}
