package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/medmesh/tracing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "DATABASE_URL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, 0.2, cfg.Model.Temperature)
	assert.False(t, cfg.Repair.Lenient)
	assert.Equal(t, 10, cfg.Engine.MaxConcurrentInvocations)
	assert.Equal(t, 2, cfg.Engine.MaxModelCalls)
	assert.Zero(t, cfg.Engine.GenerationTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(25_000_000), cfg.Server.MaxImagePixels)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "medmesh", cfg.Tracing.ServiceName)
	assert.Equal(t, "analyses", cfg.Database.Table)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "medmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  provider: Anthropic
  id: claude-3-5-sonnet-latest
repair:
  lenient: true
engine:
  generation_timeout: 45s
log:
  level: debug
  format: text
`), 0o600))

	t.Setenv("MEDMESH_ENGINE_MAX_CONCURRENT_INVOCATIONS", "3")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("DATABASE_URL", "postgres://localhost/medmesh")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Model.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", cfg.Model.ID)
	assert.True(t, cfg.Repair.Lenient)
	assert.Equal(t, 45*time.Second, cfg.Engine.GenerationTimeout)
	assert.Equal(t, 3, cfg.Engine.MaxConcurrentInvocations)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "sk-ant", cfg.APIKey())
	assert.Equal(t, "postgres://localhost/medmesh", cfg.Database.URL)
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEDMESH_OPENAI_API_KEY", "prefixed")
	t.Setenv("OPENAI_API_KEY", "plain")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.APIKey())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEDMESH_MODEL_PROVIDER", "llama")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported provider "llama"`)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &Config{
		Model:   ModelConfig{Provider: "", Temperature: 3},
		Engine:  EngineConfig{MaxConcurrentInvocations: -1, GenerationTimeout: -time.Second},
		Log:     LogConfig{Level: "loud", Format: "xml"},
		Tracing: tracing.Config{SampleRate: 2},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"model.provider",
		"model.temperature",
		"engine.max_concurrent_invocations",
		"engine.generation_timeout",
		"server.max_upload_bytes",
		"server.max_image_pixels",
		"log.level",
		"log.format",
		"tracing.sample_rate",
	} {
		assert.Contains(t, err.Error(), want)
	}
	assert.Empty(t, cfg.APIKey())
}
