package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCloudIndicators(t *testing.T) {
	t.Helper()
	for _, name := range []string{"AWS_EXECUTION_ENV", "AWS_LAMBDA_FUNCTION_NAME", "ECS_CONTAINER_METADATA_URI"} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearCloudIndicators(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())

	assert.Equal(t, "rfpforge-storage", cfg.Storage.Bucket)
	assert.Equal(t, "rfpforge-sessions", cfg.Storage.Table)
	assert.Equal(t, "localhost:9000", cfg.Storage.MinioEndpoint)

	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Empty(t, cfg.LLM.APIKey)

	assert.Equal(t, 300, cfg.Coordinator.RequestTimeoutSeconds)
	assert.Equal(t, 1000, cfg.Coordinator.SourcePreviewChars)
	assert.Equal(t, 500, cfg.Coordinator.SectionPreviewChars)

	assert.Equal(t, 4000, cfg.Delivery.MaxChunkSize)
	assert.Equal(t, 10, cfg.Delivery.MaxChunkCount)
	assert.Equal(t, 3, cfg.Delivery.MaxRetries)
	assert.Equal(t, 100000, cfg.Delivery.PayloadCeiling)
}

func TestLoadFromFile(t *testing.T) {
	clearCloudIndicators(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
llm:
  model: llama3
delivery:
  max_chunk_size: 2000
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 2000, cfg.Delivery.MaxChunkSize)

	// Unset keys keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10, cfg.Delivery.MaxChunkCount)
}

func TestDetectEnvironmentCloudIndicators(t *testing.T) {
	tests := []string{"AWS_EXECUTION_ENV", "AWS_LAMBDA_FUNCTION_NAME", "ECS_CONTAINER_METADATA_URI"}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			clearCloudIndicators(t)
			t.Setenv(name, "set")
			assert.Equal(t, EnvCloud, DetectEnvironment())
		})
	}
}

func TestDetectEnvironmentDefaultsToLocal(t *testing.T) {
	clearCloudIndicators(t)
	assert.Equal(t, EnvLocal, DetectEnvironment())
}
