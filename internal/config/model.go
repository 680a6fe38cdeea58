package config

import (
	"os"
	"sync"
)

// ModelConfig points at the pre-trained artifacts loaded once at startup.
type ModelConfig struct {
	ClassifierPath   string
	LabelsPath       string
	EmbeddingsPath   string
	EmbeddingsFormat string
	EmbeddingsURL    string
}

var (
	modelConfig *ModelConfig
	modelOnce   sync.Once
)

func LoadModelConfig() *ModelConfig {
	modelOnce.Do(func() {
		modelConfig = loadModelConfig()
	})
	return modelConfig
}

func loadModelConfig() *ModelConfig {
	return &ModelConfig{
		ClassifierPath:   getenv("MODEL_PATH", "artifacts/logistic_regression_model.json"),
		LabelsPath:       getenv("LABELS_PATH", "artifacts/category_names.json"),
		EmbeddingsPath:   getenv("EMBEDDINGS_PATH", "artifacts/GoogleNews-vectors-negative300.bin.gz"),
		EmbeddingsFormat: getenv("EMBEDDINGS_FORMAT", "auto"),
		EmbeddingsURL:    os.Getenv("EMBEDDINGS_URL"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
