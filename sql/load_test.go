package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgvector extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		assert.NoError(t, Init(db.Instance))
		assert.NoError(t, Init(db.Instance))
	})
}

func TestLoadUtterancesSql(t *testing.T) {
	db := initDB(t)

	t.Run("Load utterances SQL functions", func(t *testing.T) {
		err := LoadUtterancesSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range UtterancesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load utterances SQL is idempotent without force", func(t *testing.T) {
		assert.NoError(t, LoadUtterancesSql(db.Instance, false))
	})

	t.Run("Load utterances SQL with force reloads", func(t *testing.T) {
		assert.NoError(t, LoadUtterancesSql(db.Instance, true))
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)
	require.NoError(t, LoadUtterancesSql(db.Instance, false))

	tests := []struct {
		name      string
		functions []string
		expected  bool
	}{
		{"Missing function", []string{"nonexistent_function"}, false},
		{"All functions exist", UtterancesFunctions, true},
		{"Some functions missing", []string{"init_utterances", "nonexistent_function"}, false},
		{"Empty list", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := checkFunctions(db.Instance, tt.functions)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestEmbeddedSQL(t *testing.T) {
	assert.Contains(t, initSQL, "CREATE EXTENSION")
	for _, funcName := range UtterancesFunctions {
		assert.Contains(t, utterancesSQL, funcName)
	}
}

func TestInitUtterances(t *testing.T) {
	db := initUtteranceSchema(t)

	t.Run("Embedding column has the requested dimension", func(t *testing.T) {
		var dim int
		err := db.Instance.QueryRow(
			`SELECT atttypmod FROM pg_attribute WHERE attrelid = 'utterances'::regclass AND attname = 'embedding';`,
		).Scan(&dim)
		require.NoError(t, err)
		assert.Equal(t, testEmbeddingDim, dim)
	})

	t.Run("Intent, time and embedding indexes exist", func(t *testing.T) {
		for _, index := range []string{"idx_utterances_intent", "idx_utterances_created_at", "idx_utterances_embedding"} {
			var exists bool
			err := db.Instance.QueryRow(
				`SELECT EXISTS(SELECT 1 FROM pg_indexes WHERE tablename = 'utterances' AND indexname = $1);`, index,
			).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Index %s should exist", index)
		}
	})

	t.Run("Init utterances is idempotent", func(t *testing.T) {
		_, err := db.Instance.Exec(`SELECT init_utterances($1);`, testEmbeddingDim)
		assert.NoError(t, err)
	})

	t.Run("Inserted utterance round trips through select", func(t *testing.T) {
		var rid string
		err := db.Instance.QueryRow(
			`SELECT rid FROM insert_utterance($1, $2, $3, '{}'::jsonb, '{}'::jsonb, $4, NULL, '{}'::jsonb);`,
			"add note buy milk", "add_note", 0.9, "ner+regex",
		).Scan(&rid)
		require.NoError(t, err)

		var content, intent string
		err = db.Instance.QueryRow(`SELECT content, intent FROM select_utterance($1);`, rid).Scan(&content, &intent)
		require.NoError(t, err)
		assert.Equal(t, "add note buy milk", content)
		assert.Equal(t, "add_note", intent)
	})
}
