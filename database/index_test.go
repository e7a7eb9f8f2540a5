package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeIndexType(t *testing.T) {
	database := initDB(t)
	handler, err := NewUtterancesDBHandler(database, testEmbeddingDim, true)
	require.NoError(t, err)

	ctx := context.Background()

	tests := []struct {
		name      string
		indexType string
		params    IndexParams
	}{
		{"HNSW with default params", "hnsw", IndexParams{}},
		{"HNSW with custom params", "hnsw", IndexParams{M: 32, EfConstruction: 128}},
		{"IVFFlat with default params", "ivfflat", IndexParams{}},
		{"IVFFlat with custom params", "ivfflat", IndexParams{Lists: 10}},
		{"Back to HNSW", "hnsw", IndexParams{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, handler.ChangeIndexType(ctx, tt.indexType, tt.params))
		})
	}

	t.Run("Unsupported index type", func(t *testing.T) {
		err := handler.ChangeIndexType(ctx, "invalid", IndexParams{})
		assert.ErrorContains(t, err, "unsupported index type")
	})
}
