// Package repl provides the interactive copilot loop for shcopilot.
// It reads lines, dispatches built-in commands and forwards everything else
// to the active model as a conversation turn.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/shcopilot/internal/ai"
	"github.com/atinylittleshell/shcopilot/internal/ai/models"
	"github.com/atinylittleshell/shcopilot/internal/history"
	"github.com/atinylittleshell/shcopilot/internal/repl/config"
	"github.com/atinylittleshell/shcopilot/internal/repl/render"
)

// Farewell is printed when the REPL terminates.
const Farewell = "Bye bye =)"

const defaultWordWrap = 80

// Options configures a REPL.
type Options struct {
	// Registry resolves ModelName. Defaults to models.DefaultRegistry().
	Registry *models.Registry

	// ModelName is the registry key of the model to bind
	ModelName string

	// Loader reads and edits the configuration file
	Loader *config.Loader

	// History records typed lines. Optional.
	History *history.HistoryManager

	// Reader supplies input lines. Defaults to a ScannerReader on Stdin.
	Reader LineReader

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LogLevel is updated from copilot.log_level whenever the config is
	// loaded. Optional.
	LogLevel *zap.AtomicLevel

	Logger       *zap.Logger
	BuildVersion string
}

// session is everything derived from the configuration file. It is replaced
// as a whole when the configuration is edited.
type session struct {
	config   *config.Config
	model    models.Model
	context  *ai.Context
	renderer *render.Renderer
}

func (s *session) streamed() bool {
	return s.config.Copilot.Streamed
}

// REPL is the copilot read-eval-print loop.
type REPL struct {
	registry     *models.Registry
	modelName    string
	loader       *config.Loader
	history      *history.HistoryManager
	reader       LineReader
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	logLevel     *zap.AtomicLevel
	logger       *zap.Logger
	buildVersion string

	session *session
}

// New loads the configuration and binds the named model.
func New(opts Options) (*REPL, error) {
	if opts.Loader == nil {
		return nil, errors.New("a config loader is required")
	}

	r := &REPL{
		registry:     opts.Registry,
		modelName:    opts.ModelName,
		loader:       opts.Loader,
		history:      opts.History,
		reader:       opts.Reader,
		stdin:        opts.Stdin,
		stdout:       opts.Stdout,
		stderr:       opts.Stderr,
		logLevel:     opts.LogLevel,
		logger:       opts.Logger,
		buildVersion: opts.BuildVersion,
	}
	if r.registry == nil {
		r.registry = models.DefaultRegistry()
	}
	if r.modelName == "" {
		r.modelName = models.FakeName
	}
	if r.stdin == nil {
		r.stdin = os.Stdin
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.reader == nil {
		r.reader = NewScannerReader(r.stdin, r.stdout)
	}

	cfg, err := r.loader.Load()
	if err != nil {
		return nil, err
	}
	s, err := r.newSession(cfg)
	if err != nil {
		return nil, err
	}
	r.session = s

	return r, nil
}

// newSession constructs fresh bindings from cfg without touching the
// current ones.
func (r *REPL) newSession(cfg *config.Config) (*session, error) {
	conversation, err := ai.NewContextFromConfig(cfg.Context)
	if err != nil {
		return nil, &models.ConfigurationError{Model: r.modelName, Err: err}
	}

	model, err := r.registry.New(r.modelName, cfg.ModelDecoder(r.modelName), r.logger)
	if err != nil {
		return nil, err
	}

	renderOpts := []render.Option{render.WithColor(cfg.Copilot.Color)}
	if cfg.Copilot.Markdown {
		renderOpts = append(renderOpts, render.WithMarkdown("auto", terminalWidth(r.stdout)))
	}
	renderer, err := render.New(r.stdout, renderOpts...)
	if err != nil {
		return nil, err
	}

	if r.logLevel != nil {
		r.logLevel.SetLevel(cfg.Level())
	}

	return &session{
		config:   cfg,
		model:    model,
		context:  conversation,
		renderer: renderer,
	}, nil
}

// Config returns the active configuration.
func (r *REPL) Config() *config.Config {
	return r.session.config
}

// Model returns the bound model.
func (r *REPL) Model() models.Model {
	return r.session.model
}

// Context returns the active conversation.
func (r *REPL) Context() *ai.Context {
	return r.session.context
}

// Run prints the welcome screen and processes input until exit or end of
// input.
func (r *REPL) Run(ctx context.Context) error {
	r.showWelcomeScreen()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := r.reader.ReadLine(r.session.config.Copilot.Prompt)
		if errors.Is(err, io.EOF) {
			// end the prompt line first
			r.session.renderer.Println()
			r.farewell()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if err := r.processCommand(ctx, line); err != nil {
			if errors.Is(err, ErrExit) {
				r.farewell()
				return nil
			}
			return err
		}
	}
}

// processCommand dispatches one input line. Only ErrExit and unrecoverable
// errors are returned; failed turns are rendered.
func (r *REPL) processCommand(ctx context.Context, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	r.recordHistory(trimmed)

	if handled, err := r.handleBuiltinCommand(ctx, trimmed); handled {
		return err
	}

	r.handleTurn(ctx, line)
	return nil
}

func (r *REPL) recordHistory(line string) {
	if r.history == nil {
		return
	}
	if _, err := r.history.Record(line, r.modelName); err != nil {
		r.logger.Warn("failed to record history", zap.Error(err))
	}
}

// handleTurn sends line to the model and renders the answer. A failed turn
// is rendered as an error and leaves no AI message in the conversation.
func (r *REPL) handleTurn(ctx context.Context, line string) {
	s := r.session
	s.context.Add(ai.NewMessage(ai.Human, line))

	start := time.Now()
	var response ai.Message
	var err error
	if s.streamed() {
		response, err = r.streamTurn(ctx, s)
	} else {
		response, err = s.model.ChatCompletion(ctx, s.context)
		if err == nil {
			s.renderer.Message(response)
		}
	}

	if err != nil {
		r.logger.Warn("turn failed", zap.String("model", s.model.Name()), zap.Error(err))
		s.renderer.Error(err)
		return
	}

	r.logger.Debug("turn completed",
		zap.String("model", s.model.Name()),
		zap.Bool("streamed", s.streamed()),
		zap.Duration("duration", time.Since(start)),
		zap.Int("context_size", s.context.Len()+1),
	)
	s.context.Add(response)
}

// streamTurn prints deltas as they arrive and returns the joined response.
func (r *REPL) streamTurn(ctx context.Context, s *session) (ai.Message, error) {
	stream, err := s.model.ChatCompletionStream(ctx, s.context)
	if err != nil {
		return ai.Message{}, err
	}

	s.renderer.StreamHeader(ai.AI)
	response, err := models.Collect(&renderedStream{Stream: stream, renderer: s.renderer})
	s.renderer.StreamEnd()
	return response, err
}

// renderedStream prints every chunk as it is received.
type renderedStream struct {
	models.Stream
	renderer *render.Renderer
}

func (s *renderedStream) Recv() (ai.ChunkedMessage, error) {
	chunk, err := s.Stream.Recv()
	if err == nil {
		s.renderer.StreamChunk(chunk)
	}
	return chunk, err
}

func (r *REPL) farewell() {
	r.session.renderer.Println(Farewell)
}

// terminalWidth returns the width of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWordWrap
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWordWrap
	}
	return width
}
