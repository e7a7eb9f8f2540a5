package model

import (
	"os"

	"github.com/siherrmann/hybridnlu/helper"
	"gopkg.in/yaml.v3"
)

// Thresholds groups the confidence parameters of the pipeline.
type Thresholds struct {
	// Intent confidence below this value allows the template fallback
	IntentConfidence float64 `json:"intent_confidence" yaml:"intent_confidence"`
	// Scored NER values below this value are dropped by the merger
	EntityConfidence float64 `json:"entity_confidence" yaml:"entity_confidence"`
	// Confidence delta above which the merger ignores source preference
	ConfidenceOverride float64 `json:"confidence_override" yaml:"confidence_override"`
	// Results below this value should be confirmed by the user
	LowConfidence float64 `json:"low_confidence" yaml:"low_confidence"`
	// Template results below this value keep the original intent
	EntityMerge float64 `json:"entity_merge" yaml:"entity_merge"`

	// Defaults for values without a confidence score
	DefaultRegexConfidence float64 `json:"default_regex_confidence" yaml:"default_regex_confidence"`
	DefaultRegexNoMatch    float64 `json:"default_regex_no_match" yaml:"default_regex_no_match"`
	DefaultNERConfidence   float64 `json:"default_ner_confidence" yaml:"default_ner_confidence"`
	DefaultNERNoMatch      float64 `json:"default_ner_no_match" yaml:"default_ner_no_match"`

	// Keyword classifier
	KeywordConfidenceMin    float64 `json:"keyword_confidence_min" yaml:"keyword_confidence_min"`
	KeywordConfidenceMax    float64 `json:"keyword_confidence_max" yaml:"keyword_confidence_max"`
	DefaultIntentConfidence float64 `json:"default_intent_confidence" yaml:"default_intent_confidence"`

	// Template parser
	TemplateBase  float64 `json:"template_base" yaml:"template_base"`
	TemplateMatch float64 `json:"template_match" yaml:"template_match"`
}

// DefaultThresholds returns the calibrated default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		IntentConfidence:        0.6,
		EntityConfidence:        0.5,
		ConfidenceOverride:      0.3,
		LowConfidence:           0.55,
		EntityMerge:             0.5,
		DefaultRegexConfidence:  1.0,
		DefaultRegexNoMatch:     0.0,
		DefaultNERConfidence:    0.5,
		DefaultNERNoMatch:       0.0,
		KeywordConfidenceMin:    0.5,
		KeywordConfidenceMax:    0.7,
		DefaultIntentConfidence: 0.3,
		TemplateBase:            0.65,
		TemplateMatch:           0.7,
	}
}

// NLUConfig holds the read-only tables injected into the pipeline components.
type NLUConfig struct {
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`

	DefaultIntent    string              `json:"default_intent" yaml:"default_intent"`
	KeywordMap       map[string][]string `json:"keyword_map" yaml:"keyword_map"`
	GreetingKeywords []string            `json:"greeting_keywords" yaml:"greeting_keywords"`

	Requirements     map[string]IntentRequirement `json:"requirements" yaml:"requirements"`
	RequiredEntities map[string][]string          `json:"required_entities" yaml:"required_entities"`
	OptionalEntities map[string][]string          `json:"optional_entities" yaml:"optional_entities"`

	// Fields whose regex/library value wins when confidences are close
	RegexPreferred []string `json:"regex_preferred" yaml:"regex_preferred"`
	// Fields whose NER value wins when confidences are close
	NERPreferred []string `json:"ner_preferred" yaml:"ner_preferred"`

	DefaultRegion  string `json:"default_region" yaml:"default_region"`
	Parallel       bool   `json:"parallel" yaml:"parallel"`
	IntentModelDir string `json:"intent_model_dir,omitempty" yaml:"intent_model_dir,omitempty"`
	NERModelDir    string `json:"ner_model_dir,omitempty" yaml:"ner_model_dir,omitempty"`
}

// DefaultNLUConfig returns the built-in configuration.
func DefaultNLUConfig() NLUConfig {
	return NLUConfig{
		Thresholds:       DefaultThresholds(),
		DefaultIntent:    "help",
		KeywordMap:       DefaultKeywordMap(),
		GreetingKeywords: DefaultGreetingKeywords(),
		Requirements:     DefaultIntentRequirements(),
		RequiredEntities: DefaultRequiredEntities(),
		OptionalEntities: DefaultOptionalEntities(),
		RegexPreferred:   []string{"phone", "email", "birthday", "tag", "id"},
		NERPreferred:     []string{"name", "address", "note_text"},
		DefaultRegion:    "US",
		Parallel:         true,
	}
}

// LoadNLUConfig reads a YAML file over the default configuration.
// Map entries in the file replace or add single intents; other tables are replaced as a whole.
func LoadNLUConfig(path string) (NLUConfig, error) {
	config := DefaultNLUConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, helper.NewError("read nlu config", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, helper.NewError("decode nlu config", err)
	}

	return config, nil
}
