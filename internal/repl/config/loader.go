package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/shell"
)

const defaultEditor = "vim"

// Loader handles creating, loading and editing the configuration file.
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a new configuration loader for the file at path.
func NewLoader(path string, logger *zap.Logger) *Loader {
	return &Loader{
		path:   path,
		logger: logger,
	}
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Init creates an empty configuration file if none exists.
func (l *Loader) Init() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(l.path, []byte("---\n"), 0600); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	l.logger.Info("created config file", zap.String("path", l.path))
	return nil
}

// Load reads the configuration file, creating it first if needed.
func (l *Loader) Load() (*Config, error) {
	if err := l.Init(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := l.LoadFromString(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return cfg, nil
}

// LoadFromString parses a YAML configuration document. Missing sections
// keep their defaults and unknown keys are ignored.
func (l *Loader) LoadFromString(source string) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(source), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Model == nil {
		cfg.Model = make(map[string]*yaml.Node)
	}

	l.logger.Debug("loaded config",
		zap.Int("models", len(cfg.Model)),
		zap.Bool("streamed", cfg.Copilot.Streamed),
	)
	return cfg, nil
}

// Editor returns the argv used to edit the configuration file, from $EDITOR.
func (l *Loader) Editor() ([]string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	fields, err := shell.Fields(editor, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to parse $EDITOR %q: %w", editor, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("$EDITOR %q is empty", editor)
	}
	return append(fields, l.path), nil
}

// Edit opens the configuration file in the user's editor and reloads it
// once the editor exits.
func (l *Loader) Edit(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) (*Config, error) {
	if err := l.Init(); err != nil {
		return nil, err
	}

	argv, err := l.Editor()
	if err != nil {
		return nil, err
	}

	l.logger.Debug("starting editor", zap.Strings("argv", argv))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("editor exited with error: %w", err)
	}

	return l.Load()
}

// LoadEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
