package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
	"github.com/siherrmann/hybridnlu/sql"
)

// UtterancesDBHandlerFunctions defines the interface for utterance log operations.
type UtterancesDBHandlerFunctions interface {
	InsertUtterance(utterance *model.Utterance) error
	SelectUtterance(rid uuid.UUID) (*model.Utterance, error)
	SelectUtterancesByIntent(intent string, limit int) ([]*model.Utterance, error)
	SelectRecentUtterances(limit int) ([]*model.Utterance, error)
	SelectUtterancesBySimilarity(embedding []float32, limit int, threshold float64) ([]*model.Utterance, error)
	DeleteUtterance(rid uuid.UUID) error
}

// UtterancesDBHandler stores processed utterances and their NLU results.
type UtterancesDBHandler struct {
	db *helper.Database
}

// NewUtterancesDBHandler creates a new utterances database handler.
// It loads the utterance SQL functions and creates the table with an embedding
// column of embeddingDim dimensions. If force is true, the SQL functions are reloaded.
func NewUtterancesDBHandler(db *helper.Database, embeddingDim int, force bool) (*UtterancesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	utterancesDbHandler := &UtterancesDBHandler{
		db: db,
	}

	err := sql.LoadUtterancesSql(utterancesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load utterances sql", err)
	}

	err = utterancesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized UtterancesDBHandler")

	return utterancesDbHandler, nil
}

// CreateTable creates the 'utterances' table and its indexes if they do not exist.
func (h *UtterancesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_utterances($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing utterances table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table utterances")

	return nil
}

// InsertUtterance inserts an utterance and fills its ID, RID and CreatedAt.
func (h *UtterancesDBHandler) InsertUtterance(utterance *model.Utterance) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_utterance($1, $2, $3, $4, $5, $6, $7, $8)`,
		utterance.Text,
		utterance.Intent,
		utterance.Confidence,
		utterance.Entities,
		utterance.Validation,
		string(utterance.Source),
		embeddingParam(utterance.Embedding),
		utterance.Metadata,
	)

	err := scanUtterance(row, utterance)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectUtterance retrieves an utterance by RID.
func (h *UtterancesDBHandler) SelectUtterance(rid uuid.UUID) (*model.Utterance, error) {
	utterance := &model.Utterance{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_utterance($1)`,
		rid,
	)

	err := scanUtterance(row, utterance)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return utterance, nil
}

// SelectUtterancesByIntent retrieves the newest utterances classified as intent.
func (h *UtterancesDBHandler) SelectUtterancesByIntent(intent string, limit int) ([]*model.Utterance, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_utterances_by_intent($1, $2)`,
		intent,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var utterances []*model.Utterance
	for rows.Next() {
		utterance := &model.Utterance{}
		if err := scanUtterance(rows, utterance); err != nil {
			return nil, helper.NewError("scan", err)
		}
		utterances = append(utterances, utterance)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return utterances, nil
}

// SelectRecentUtterances retrieves the newest utterances.
func (h *UtterancesDBHandler) SelectRecentUtterances(limit int) ([]*model.Utterance, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_recent_utterances($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var utterances []*model.Utterance
	for rows.Next() {
		utterance := &model.Utterance{}
		if err := scanUtterance(rows, utterance); err != nil {
			return nil, helper.NewError("scan", err)
		}
		utterances = append(utterances, utterance)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return utterances, nil
}

// SelectUtterancesBySimilarity performs a cosine similarity search over the
// utterance embeddings. Utterances without embedding are never returned.
func (h *UtterancesDBHandler) SelectUtterancesBySimilarity(embedding []float32, limit int, threshold float64) ([]*model.Utterance, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_utterances_by_similarity($1, $2, $3)`,
		embeddingVector,
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var utterances []*model.Utterance
	for rows.Next() {
		utterance := &model.Utterance{}
		var source string
		err := rows.Scan(
			&utterance.ID,
			&utterance.RID,
			&utterance.Text,
			&utterance.Intent,
			&utterance.Confidence,
			&utterance.Entities,
			&utterance.Validation,
			&source,
			pq.Array(&utterance.Embedding),
			&utterance.Metadata,
			&utterance.CreatedAt,
			&utterance.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		utterance.Source = model.Source(source)
		utterances = append(utterances, utterance)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return utterances, nil
}

// DeleteUtterance deletes an utterance by RID.
func (h *UtterancesDBHandler) DeleteUtterance(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_utterance($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUtterance(row scanner, utterance *model.Utterance) error {
	var source string
	err := row.Scan(
		&utterance.ID,
		&utterance.RID,
		&utterance.Text,
		&utterance.Intent,
		&utterance.Confidence,
		&utterance.Entities,
		&utterance.Validation,
		&source,
		pq.Array(&utterance.Embedding),
		&utterance.Metadata,
		&utterance.CreatedAt,
	)
	if err != nil {
		return err
	}
	utterance.Source = model.Source(source)
	return nil
}

// embeddingParam stores a missing embedding as NULL.
func embeddingParam(embedding []float32) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}
