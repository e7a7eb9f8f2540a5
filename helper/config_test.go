package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNLUConfigurationFromEnv(t *testing.T) {
	t.Run("Defaults without environment", func(t *testing.T) {
		t.Setenv("HYBRIDNLU_INTENT_MODEL_DIR", "")
		t.Setenv("HYBRIDNLU_NER_MODEL_DIR", "")
		t.Setenv("HYBRIDNLU_DEFAULT_REGION", "")
		t.Setenv("HYBRIDNLU_PARALLEL", "")

		config, err := NewNLUConfigurationFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "./models/intent_classifier", config.IntentModelDir)
		assert.Equal(t, "./models/ner_model", config.NERModelDir)
		assert.Equal(t, "US", config.DefaultRegion)
		assert.True(t, config.Parallel)
	})

	t.Run("Values from environment", func(t *testing.T) {
		t.Setenv("HYBRIDNLU_INTENT_MODEL_DIR", "/opt/intent")
		t.Setenv("HYBRIDNLU_NER_MODEL_DIR", "/opt/ner")
		t.Setenv("HYBRIDNLU_DEFAULT_REGION", "DE")
		t.Setenv("HYBRIDNLU_PARALLEL", "false")
		t.Setenv("HYBRIDNLU_CONFIG_FILE", "nlu.yaml")

		config, err := NewNLUConfigurationFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "/opt/intent", config.IntentModelDir)
		assert.Equal(t, "/opt/ner", config.NERModelDir)
		assert.Equal(t, "DE", config.DefaultRegion)
		assert.Equal(t, "nlu.yaml", config.ConfigFile)
		assert.False(t, config.Parallel)
	})

	t.Run("Invalid parallel flag", func(t *testing.T) {
		t.Setenv("HYBRIDNLU_PARALLEL", "sometimes")

		_, err := NewNLUConfigurationFromEnv()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "HYBRIDNLU_PARALLEL")
	})
}

func TestNewDatabaseConfiguration(t *testing.T) {
	t.Run("Configuration from test envs", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "55432")

		config, err := NewDatabaseConfiguration()
		require.NoError(t, err)
		assert.Equal(t, "55432", config.Port)
		assert.Contains(t, config.ConnectionString(), "port=55432")
		assert.Contains(t, config.ConnectionString(), "sslmode=disable")
	})

	t.Run("Missing host returns error", func(t *testing.T) {
		SetTestDatabaseConfigEnvs(t, "55432")
		t.Setenv("HYBRIDNLU_DB_HOST", "")

		_, err := NewDatabaseConfiguration()
		assert.Error(t, err)
	})
}
