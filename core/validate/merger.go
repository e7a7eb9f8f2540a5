package validate

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
)

// Merger combines regex/heuristic and NER entities by confidence and source preference.
type Merger struct {
	thresholds     model.Thresholds
	regexPreferred map[string]bool
	nerPreferred   map[string]bool
	log            *slog.Logger
}

// NewMerger creates a Merger from the thresholds and preference lists of config.
func NewMerger(config model.NLUConfig, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = helper.DiscardLogger()
	}

	m := &Merger{
		thresholds:     config.Thresholds,
		regexPreferred: map[string]bool{},
		nerPreferred:   map[string]bool{},
		log:            logger,
	}
	for _, field := range config.RegexPreferred {
		m.regexPreferred[field] = true
	}
	for _, field := range config.NERPreferred {
		m.nerPreferred[field] = true
	}
	return m
}

// Merge returns at most one value for every key with a value in either source.
// Scores missing from the confidence maps get the configured defaults.
// Scored NER values below the entity confidence threshold are ignored.
// With verbose set every decision is logged at info level.
func (m *Merger) Merge(regex model.EntityMap, ner model.EntityMap, regexConfidences model.Confidences, nerConfidences model.Confidences, verbose bool) model.EntityMap {
	level := slog.LevelDebug
	if verbose {
		level = slog.LevelInfo
	}
	logDecision := func(msg string, args ...any) {
		m.log.Log(context.Background(), level, msg, args...)
	}

	keys := map[string]struct{}{}
	for k := range regex {
		keys[k] = struct{}{}
	}
	for k := range ner {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	merged := model.EntityMap{}
	for _, key := range sorted {
		regexValue, nerValue := regex[key], ner[key]
		if c, ok := nerConfidences[key]; ok && nerValue != "" && c < m.thresholds.EntityConfidence {
			logDecision("Drop NER value", slog.String("key", key), slog.Float64("confidence", c), slog.String("value", nerValue))
			nerValue = ""
		}

		switch {
		case regexValue != "" && nerValue == "":
			merged[key] = regexValue
			logDecision("Merge using regex", slog.String("key", key), slog.String("reason", "only source"), slog.String("value", regexValue))
			continue
		case nerValue != "" && regexValue == "":
			merged[key] = nerValue
			logDecision("Merge using NER", slog.String("key", key), slog.String("reason", "only source"), slog.String("value", nerValue))
			continue
		case regexValue == "" && nerValue == "":
			continue
		}

		regexConf := confidence(regexConfidences, key, regexValue, m.thresholds.DefaultRegexConfidence, m.thresholds.DefaultRegexNoMatch)
		nerConf := confidence(nerConfidences, key, nerValue, m.thresholds.DefaultNERConfidence, m.thresholds.DefaultNERNoMatch)

		useRegex, reason := m.preferRegex(key, regexConf, nerConf)
		if useRegex {
			merged[key] = regexValue
			logDecision("Merge using regex", slog.String("key", key), slog.String("reason", reason), slog.String("value", regexValue))
		} else {
			merged[key] = nerValue
			logDecision("Merge using NER", slog.String("key", key), slog.String("reason", reason), slog.String("value", nerValue))
		}
	}

	logDecision("Merge finished", slog.Any("merged", merged))

	return merged
}

func (m *Merger) preferRegex(key string, regexConf float64, nerConf float64) (bool, string) {
	if math.Abs(regexConf-nerConf) > m.thresholds.ConfidenceOverride {
		if regexConf > nerConf {
			return true, fmt.Sprintf("higher confidence %.2f > %.2f", regexConf, nerConf)
		}
		return false, fmt.Sprintf("higher confidence %.2f > %.2f", nerConf, regexConf)
	}

	switch {
	case m.regexPreferred[key]:
		return true, fmt.Sprintf("preferred for structured data, conf=%.2f", regexConf)
	case m.nerPreferred[key]:
		return false, fmt.Sprintf("preferred for unstructured data, conf=%.2f", nerConf)
	case regexConf >= nerConf:
		return true, fmt.Sprintf("conf=%.2f >= %.2f", regexConf, nerConf)
	default:
		return false, fmt.Sprintf("conf=%.2f > %.2f", nerConf, regexConf)
	}
}

// confidence returns the score of key, or the default for a scored or an empty value.
func confidence(confidences model.Confidences, key string, value string, present float64, absent float64) float64 {
	if c, ok := confidences[key]; ok {
		return c
	}
	if value == "" {
		return absent
	}
	return present
}
