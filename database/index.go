package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siherrmann/hybridnlu/helper"
)

// IndexParams tunes the vector index. Zero values select the pgvector defaults.
type IndexParams struct {
	// HNSW
	M              int
	EfConstruction int
	// IVFFlat
	Lists int
}

// ChangeIndexType rebuilds the utterance embedding index as "hnsw" or "ivfflat".
func (h *UtterancesDBHandler) ChangeIndexType(ctx context.Context, indexType string, params IndexParams) error {
	var createIndexSQL string
	switch indexType {
	case "hnsw":
		m, efConstruction := 16, 64
		if params.M > 0 {
			m = params.M
		}
		if params.EfConstruction > 0 {
			efConstruction = params.EfConstruction
		}
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_utterances_embedding ON utterances USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)
	case "ivfflat":
		lists := 100
		if params.Lists > 0 {
			lists = params.Lists
		}
		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_utterances_embedding ON utterances USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)
	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_utterances_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = tx.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit", err)
	}

	h.db.Logger.Info("Changed vector index", slog.String("type", indexType))

	return nil
}
