package intent

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
)

// Classifier maps an utterance to an intent label and a confidence in [0,1].
type Classifier interface {
	Predict(text string) (string, float64)
}

// ClassifyFunc runs a sequence classification model and returns the arg-max label and its probability.
type ClassifyFunc func(text string) (string, float64, error)

// ModelClassifier classifies with a fine-tuned sequence classification model
// and falls back to keyword scoring when the model is missing or fails.
type ModelClassifier struct {
	classify ClassifyFunc
	fallback *KeywordClassifier
	close    func() error
	log      *slog.Logger
}

// NewModelClassifier wraps classify with a keyword fallback. classify may be nil.
func NewModelClassifier(classify ClassifyFunc, config model.NLUConfig, logger *slog.Logger) *ModelClassifier {
	if logger == nil {
		logger = helper.DiscardLogger()
	}
	return &ModelClassifier{
		classify: classify,
		fallback: NewKeywordClassifier(config),
		log:      logger,
	}
}

// NewHugotClassifier loads the intent model from modelDir with hugot.
// The directory must contain the ONNX weights and tokenizer; label_map.json is optional
// and replaces generic LABEL_<n> labels.
func NewHugotClassifier(modelDir string, config model.NLUConfig, logger *slog.Logger) (*ModelClassifier, error) {
	if !helper.ModelAvailable(modelDir) {
		return nil, helper.NewError("load intent model", fmt.Errorf("model directory %q not found", modelDir))
	}

	labels, err := helper.LoadLabelMap(modelDir)
	if err != nil {
		return nil, helper.NewError("load intent labels", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	pipelineConfig := hugot.TextClassificationConfig{
		ModelPath: modelDir,
		Name:      "intent-pipeline",
		Options: []hugot.TextClassificationOption{
			pipelines.WithSoftmax(),
		},
	}
	intentPipeline, err := hugot.NewPipeline(session, pipelineConfig)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create intent pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create intent pipeline: %w", err)
	}

	classify := func(text string) (string, float64, error) {
		result, err := intentPipeline.RunPipeline([]string{text})
		if err != nil {
			return "", 0, fmt.Errorf("failed to run intent classification: %w", err)
		}
		if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
			return "", 0, fmt.Errorf("no classification output")
		}

		best := result.ClassificationOutputs[0][0]
		for _, out := range result.ClassificationOutputs[0][1:] {
			if out.Score > best.Score {
				best = out
			}
		}

		return resolveLabel(best.Label, labels), float64(best.Score), nil
	}

	c := NewModelClassifier(classify, config, logger)
	c.close = session.Destroy
	return c, nil
}

// Predict returns the model prediction, or the keyword fallback if the model is unavailable.
// It never fails: empty text and model errors degrade to the fallback.
func (c *ModelClassifier) Predict(text string) (string, float64) {
	if c.classify == nil || strings.TrimSpace(text) == "" {
		return c.fallback.Predict(text)
	}

	label, confidence, err := c.classify(text)
	if err != nil || label == "" {
		c.log.Warn("Intent model failed, using keyword fallback", slog.Any("error", err))
		return c.fallback.Predict(text)
	}

	return label, clamp(confidence, 0, 1)
}

// HasModel reports whether a model backs the classifier.
func (c *ModelClassifier) HasModel() bool {
	return c.classify != nil
}

// Close releases the hugot session if there is one.
func (c *ModelClassifier) Close() error {
	if c.close == nil {
		return nil
	}
	err := c.close()
	c.close = nil
	return err
}

// resolveLabel maps LABEL_<n> outputs through the label map.
func resolveLabel(label string, labels map[int]string) string {
	if len(labels) == 0 {
		return label
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(label, "LABEL_")); err == nil {
		if mapped, ok := labels[idx]; ok {
			return mapped
		}
	}
	return label
}
