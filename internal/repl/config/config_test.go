package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/atinylittleshell/shcopilot/internal/ai/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "you> ", cfg.Copilot.Prompt)
	assert.Equal(t, "info", cfg.Copilot.LogLevel)
	assert.False(t, cfg.Copilot.Streamed)
	assert.NotNil(t, cfg.Model)
	assert.Empty(t, cfg.Model)
	assert.Nil(t, cfg.Context.MaxHistory)
}

func TestConfig_ModelDecoder(t *testing.T) {
	loader := NewLoader("", zaptest.NewLogger(t))

	t.Run("returns no-op decoder for missing section", func(t *testing.T) {
		cfg := DefaultConfig()
		target := struct{ Deployment string }{Deployment: "default"}
		require.NoError(t, cfg.ModelDecoder("openai")(&target))
		assert.Equal(t, "default", target.Deployment)
	})

	t.Run("decodes model section", func(t *testing.T) {
		cfg, err := loader.LoadFromString(`
model:
  openai:
    deployment: gpt-4o-mini
    deployment_kwargs:
      max_tokens: 42
`)
		require.NoError(t, err)

		target := models.DefaultOpenAIConfig()
		require.NoError(t, cfg.ModelDecoder("openai")(&target))
		assert.Equal(t, "gpt-4o-mini", target.Deployment)
		assert.Equal(t, 42, target.DeploymentKwargs.MaxTokens)
		assert.InDelta(t, 0.7, target.DeploymentKwargs.Temperature, 1e-6)
	})

	t.Run("sections are per model", func(t *testing.T) {
		cfg, err := loader.LoadFromString("model:\n  openai:\n    deployment: x\n")
		require.NoError(t, err)

		target := struct {
			Deployment string `yaml:"deployment"`
		}{}
		require.NoError(t, cfg.ModelDecoder("fake")(&target))
		assert.Empty(t, target.Deployment)
	})
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Copilot.LogLevel = tt.level
			assert.Equal(t, tt.want, cfg.Level())
		})
	}
}

func TestConfig_String(t *testing.T) {
	loader := NewLoader("", zaptest.NewLogger(t))
	cfg, err := loader.LoadFromString(`
model:
  openai:
    deployment: gpt-4o-mini
context:
  max_history: 4
copilot:
  streamed: true
`)
	require.NoError(t, err)

	out := cfg.String()
	assert.Contains(t, out, "deployment: gpt-4o-mini")
	assert.Contains(t, out, "max_history: 4")
	assert.Contains(t, out, "streamed: true")

	roundTrip, err := loader.LoadFromString(out)
	require.NoError(t, err)
	require.NotNil(t, roundTrip.Context.MaxHistory)
	assert.Equal(t, 4, *roundTrip.Context.MaxHistory)
	assert.True(t, roundTrip.Copilot.Streamed)
}
