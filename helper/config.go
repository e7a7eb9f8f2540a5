package helper

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// NLUConfiguration holds the runtime settings read from the environment.
type NLUConfiguration struct {
	IntentModelDir string
	NERModelDir    string
	ConfigFile     string
	DefaultRegion  string
	Parallel       bool
}

// NewNLUConfigurationFromEnv reads the HYBRIDNLU_* environment variables.
// A .env file in the working directory is loaded first if present.
// Unset values fall back to ./models/intent_classifier, ./models/ner_model, region US and parallel on.
func NewNLUConfigurationFromEnv() (*NLUConfiguration, error) {
	_ = godotenv.Load()

	config := &NLUConfiguration{
		IntentModelDir: envOrDefault("HYBRIDNLU_INTENT_MODEL_DIR", "./models/intent_classifier"),
		NERModelDir:    envOrDefault("HYBRIDNLU_NER_MODEL_DIR", "./models/ner_model"),
		ConfigFile:     os.Getenv("HYBRIDNLU_CONFIG_FILE"),
		DefaultRegion:  envOrDefault("HYBRIDNLU_DEFAULT_REGION", "US"),
		Parallel:       true,
	}

	if v := os.Getenv("HYBRIDNLU_PARALLEL"); v != "" {
		parallel, err := strconv.ParseBool(v)
		if err != nil {
			return nil, NewError("parse HYBRIDNLU_PARALLEL", err)
		}
		config.Parallel = parallel
	}

	return config, nil
}

func envOrDefault(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
