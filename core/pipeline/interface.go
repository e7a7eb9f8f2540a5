package pipeline

import "github.com/siherrmann/hybridnlu/model"

// IntentPredictFunc classifies an utterance into an intent label and a confidence.
type IntentPredictFunc func(text string) (string, float64)

// NERExtractFunc extracts entities and their confidences with a sequence labeling model.
// Values may be empty; the confidence map may be empty when the model is unavailable.
type NERExtractFunc func(text string) (model.EntityMap, model.Confidences)

// SpanExtractFunc runs the library, regex and heuristic extractors and resolves their overlaps.
type SpanExtractFunc func(text string) (model.EntityMap, []model.Entity, model.Confidences)

// TemplateParseFunc guesses intent and entities when everything else stays uncertain.
type TemplateParseFunc func(text string, intentHint string, entitiesHint model.EntityMap) *model.NLUResult

// PostProcessFunc normalizes entities and returns the validation errors.
type PostProcessFunc func(entities model.EntityMap) (model.EntityMap, []string)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// Stage is a state of the orchestrator.
type Stage string

const (
	StageStart            Stage = "start"
	StageIntentNER        Stage = "intent_ner"
	StageValidate         Stage = "validate"
	StageRegexFallback    Stage = "regex_fallback"
	StageRevalidate       Stage = "revalidate"
	StageTemplateFallback Stage = "template_fallback"
	StagePostProcess      Stage = "post_process"
	StageDone             Stage = "done"
)
