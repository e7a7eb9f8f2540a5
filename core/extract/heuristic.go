package extract

import (
	"regexp"
	"strings"

	"github.com/siherrmann/hybridnlu/model"
)

const (
	possessiveNameConfidence = 0.65
	fullNameConfidence       = 0.60
	cityStateZipConfidence   = 0.75
	streetConfidence         = 0.70
)

var usStates = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI", "ID", "IL",
	"IN", "IA", "KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT",
	"NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI",
	"SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

var (
	// The possessive suffix is matched and excluded through the group span.
	possessiveNamePattern = regexp.MustCompile(`\b([A-Z][a-z]+)'s\b`)
	fullNamePattern       = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\b`)
	cityStateZipPattern   = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*),\s*(` + strings.Join(usStates, "|") + `)\s+(\d{5}(?:-\d{4})?)\b`)
	StreetPattern         = regexp.MustCompile(`(?i)\b\d+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln)\b`)
)

// HeuristicExtractor finds names by capitalization and addresses by shape.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates a HeuristicExtractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

func (h *HeuristicExtractor) Strategy() model.Strategy {
	return model.StrategyHeuristic
}

func (h *HeuristicExtractor) Extract(text string) []model.Entity {
	entities := h.extractNames(text)
	return append(entities, h.extractAddresses(text)...)
}

func (h *HeuristicExtractor) extractNames(text string) []model.Entity {
	var entities []model.Entity

	for _, loc := range possessiveNamePattern.FindAllStringSubmatchIndex(text, -1) {
		name := text[loc[2]:loc[3]]
		if IsStopWord(name) {
			continue
		}
		entities = append(entities, newEntity(name, loc[2], loc[3], model.EntityName, possessiveNameConfidence, model.StrategyHeuristic))
	}

	for _, loc := range fullNamePattern.FindAllStringSubmatchIndex(text, -1) {
		name := text[loc[2]:loc[3]]
		if allStopWords(strings.Fields(name)) {
			continue
		}
		entities = append(entities, newEntity(name, loc[2], loc[3], model.EntityName, fullNameConfidence, model.StrategyHeuristic))
	}

	return entities
}

func (h *HeuristicExtractor) extractAddresses(text string) []model.Entity {
	var entities []model.Entity

	for _, loc := range cityStateZipPattern.FindAllStringIndex(text, -1) {
		entities = append(entities, newEntity(text[loc[0]:loc[1]], loc[0], loc[1], model.EntityAddress, cityStateZipConfidence, model.StrategyHeuristic))
	}

	for _, loc := range StreetPattern.FindAllStringIndex(text, -1) {
		entities = append(entities, newEntity(text[loc[0]:loc[1]], loc[0], loc[1], model.EntityAddress, streetConfidence, model.StrategyHeuristic))
	}

	return entities
}

func allStopWords(words []string) bool {
	for _, w := range words {
		if !IsStopWord(w) {
			return false
		}
	}
	return true
}
