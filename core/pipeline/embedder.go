package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/hybridnlu/helper"
)

// DefaultEmbeddingModel produces 384-dimensional sentence embeddings.
const DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"

// DefaultEmbedder is NewEmbedder with DefaultEmbeddingModel.
func DefaultEmbedder() (EmbedFunc, error) {
	return NewEmbedder(DefaultEmbeddingModel)
}

// NewEmbedder downloads the sentence transformer modelName if needed and returns
// an embedder producing normalized embeddings for the utterance log.
func NewEmbedder(modelName string) (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(modelName, "")
	if err != nil {
		return nil, helper.NewError("prepare embedding model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "utterance-embedder",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	}
	embedPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create embedding pipeline: %w", err)
	}

	return func(text string) ([]float32, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, errors.New("empty text")
		}

		result, err := embedPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, errors.New("no embedding generated")
		}

		return result.Embeddings[0], nil
	}, nil
}
