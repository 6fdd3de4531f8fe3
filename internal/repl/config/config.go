// Package config provides configuration management for shcopilot.
// It handles creating, loading and editing the YAML configuration file and
// maps its sections onto the model, context and session settings.
package config

import (
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/atinylittleshell/shcopilot/internal/ai"
	"github.com/atinylittleshell/shcopilot/internal/ai/models"
)

// Config holds the parsed configuration file.
type Config struct {
	// Model maps a model name (e.g., "openai") to that model's parameters.
	// Sections are kept as raw YAML and decoded by the model constructor.
	Model map[string]*yaml.Node `yaml:"model,omitempty"`

	// Context configures the conversation history.
	Context ai.ContextConfig `yaml:"context,omitempty"`

	// Copilot configures the REPL session.
	Copilot CopilotConfig `yaml:"copilot,omitempty"`
}

// CopilotConfig is the `copilot` section of the configuration file.
type CopilotConfig struct {
	// Streamed prints responses incrementally as the backend produces them
	Streamed bool `yaml:"streamed"`

	// Prompt is shown before every input line
	Prompt string `yaml:"prompt,omitempty"`

	// Markdown renders blocking responses as terminal markdown
	Markdown bool `yaml:"markdown,omitempty"`

	// Color is "auto" (default), "always" or "never"
	Color string `yaml:"color,omitempty"`

	// LogLevel controls logging verbosity ("debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Model: make(map[string]*yaml.Node),
		Copilot: CopilotConfig{
			Prompt:   "you> ",
			LogLevel: "info",
		},
	}
}

// ModelDecoder returns the DecodeFunc for the named model's section. Models
// without a section are constructed from their defaults.
func (c *Config) ModelDecoder(name string) models.DecodeFunc {
	node, ok := c.Model[name]
	if !ok || node == nil {
		return models.NoConfig
	}
	return node.Decode
}

// Level parses Copilot.LogLevel, falling back to info.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(strings.TrimSpace(c.Copilot.LogLevel))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// String renders the configuration back to YAML.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
