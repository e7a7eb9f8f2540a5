package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/hybridnlu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEmbeddingDim = 4

func newTestUtterance(text, intent string, embedding []float32) *model.Utterance {
	return &model.Utterance{
		Text:       text,
		Intent:     intent,
		Confidence: 0.9,
		Entities:   model.EntityMap{"name": "John", model.KeyNameValid: "true"},
		Validation: model.Validation{Valid: true, Missing: []string{}, Errors: []string{}, Required: []string{"name"}},
		Source:     model.SourceNERRegex,
		Embedding:  embedding,
		Metadata:   model.Metadata{"session": "test"},
	}
}

func TestUtterancesNewUtterancesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewUtterancesDBHandler", func(t *testing.T) {
		handler, err := NewUtterancesDBHandler(database, testEmbeddingDim, true)
		assert.NoError(t, err, "Expected NewUtterancesDBHandler to not return an error")
		require.NotNil(t, handler)
		require.NotNil(t, handler.db.Instance)
	})

	t.Run("Invalid call NewUtterancesDBHandler with nil database", func(t *testing.T) {
		_, err := NewUtterancesDBHandler(nil, testEmbeddingDim, false)
		assert.ErrorContains(t, err, "database connection is nil")
	})

	t.Run("Invalid call NewUtterancesDBHandler with zero dimension", func(t *testing.T) {
		_, err := NewUtterancesDBHandler(database, 0, false)
		assert.ErrorContains(t, err, "embedding dimension must be positive")
	})
}

func TestUtterancesInsertAndSelect(t *testing.T) {
	database := initDB(t)
	handler, err := NewUtterancesDBHandler(database, testEmbeddingDim, true)
	require.NoError(t, err)

	t.Run("Insert utterance without embedding", func(t *testing.T) {
		u := newTestUtterance("show phone of John", "show_phone", nil)
		err := handler.InsertUtterance(u)
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.NotEqual(t, uuid.Nil, u.RID)
		assert.Nil(t, u.Embedding)
		assert.WithinDuration(t, time.Now(), u.CreatedAt, 5*time.Second)
	})

	t.Run("Select utterance by RID round trips the JSONB columns", func(t *testing.T) {
		u := newTestUtterance("add contact John 555-123-4567", "add_contact", []float32{1, 0, 0, 0})
		require.NoError(t, handler.InsertUtterance(u))

		got, err := handler.SelectUtterance(u.RID)
		require.NoError(t, err)
		assert.Equal(t, u.Text, got.Text)
		assert.Equal(t, "add_contact", got.Intent)
		assert.Equal(t, 0.9, got.Confidence)
		assert.Equal(t, model.SourceNERRegex, got.Source)
		assert.Equal(t, "John", got.Entities["name"])
		assert.True(t, got.Validation.Valid)
		assert.Equal(t, []string{"name"}, got.Validation.Required)
		assert.Equal(t, "test", got.Metadata["session"])
		assert.Equal(t, []float32{1, 0, 0, 0}, got.Embedding)
	})

	t.Run("Select unknown RID is an error", func(t *testing.T) {
		_, err := handler.SelectUtterance(uuid.New())
		assert.Error(t, err)
	})
}

func TestUtterancesSelectLists(t *testing.T) {
	database := initDB(t)
	handler, err := NewUtterancesDBHandler(database, testEmbeddingDim, true)
	require.NoError(t, err)

	intent := "list_birthdays_" + uuid.NewString()[:8]
	for _, text := range []string{"birthdays this week", "birthdays in 30 days", "who has a birthday"} {
		require.NoError(t, handler.InsertUtterance(newTestUtterance(text, intent, nil)))
	}

	t.Run("Select by intent returns newest first", func(t *testing.T) {
		got, err := handler.SelectUtterancesByIntent(intent, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "who has a birthday", got[0].Text)
	})

	t.Run("Select by intent honors the limit", func(t *testing.T) {
		got, err := handler.SelectUtterancesByIntent(intent, 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Select recent returns the newest insert first", func(t *testing.T) {
		got, err := handler.SelectRecentUtterances(1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "who has a birthday", got[0].Text)
	})
}

func TestUtterancesSelectBySimilarity(t *testing.T) {
	database := initDB(t)
	handler, err := NewUtterancesDBHandler(database, testEmbeddingDim, true)
	require.NoError(t, err)

	near := newTestUtterance("add note buy milk", "add_note", []float32{0, 1, 0, 0})
	far := newTestUtterance("delete contact John", "delete_contact", []float32{0, 0, 0, 1})
	require.NoError(t, handler.InsertUtterance(near))
	require.NoError(t, handler.InsertUtterance(far))

	t.Run("Similar utterance is found above the threshold", func(t *testing.T) {
		got, err := handler.SelectUtterancesBySimilarity([]float32{0, 0.9, 0.1, 0}, 10, 0.8)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.Equal(t, near.RID, got[0].RID)
		assert.Greater(t, got[0].Similarity, 0.8)
		for _, u := range got {
			assert.NotEqual(t, far.RID, u.RID)
		}
	})
}

func TestUtterancesDelete(t *testing.T) {
	database := initDB(t)
	handler, err := NewUtterancesDBHandler(database, testEmbeddingDim, true)
	require.NoError(t, err)

	u := newTestUtterance("remove note 3", "remove_note", nil)
	require.NoError(t, handler.InsertUtterance(u))

	t.Run("Deleted utterance can no longer be selected", func(t *testing.T) {
		require.NoError(t, handler.DeleteUtterance(u.RID))
		_, err := handler.SelectUtterance(u.RID)
		assert.Error(t, err)
	})

	t.Run("Deleting an unknown RID is not an error", func(t *testing.T) {
		assert.NoError(t, handler.DeleteUtterance(uuid.New()))
	})
}
