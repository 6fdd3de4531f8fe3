package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/atinylittleshell/shcopilot/internal/repl/render"
)

// ErrExit is returned when the user requests to exit the REPL.
var ErrExit = errors.New("exit requested")

const (
	configUsage         = "Usage: config [edit|show|help]"
	historyUsage        = "Usage: history [n|clear]"
	defaultHistoryLimit = 20
)

// builtinHelp lists the built-in commands in the order they are shown.
var builtinHelp = [][2]string{
	{"config [edit|show|help]", "edit the configuration in $EDITOR, or print it"},
	{"clear", "forget the current conversation"},
	{"history [n]", "list the last n lines you typed (default 20)"},
	{"history clear", "forget every line you typed"},
	{"help, ?", "show this list"},
	{"exit", "leave the copilot"},
}

// isBuiltinCommand reports whether fields form a built-in invocation. Lines
// that merely start with a command word, like "clear up disk space", are
// questions for the model.
func isBuiltinCommand(fields []string) bool {
	switch fields[0] {
	case "exit", "clear", "help", "?":
		return len(fields) == 1
	case "config":
		return len(fields) <= 2
	case "history":
		if len(fields) == 1 {
			return true
		}
		if len(fields) > 2 {
			return false
		}
		if fields[1] == "clear" {
			return true
		}
		_, err := strconv.Atoi(fields[1])
		return err == nil
	default:
		return false
	}
}

// handleBuiltinCommand handles built-in REPL commands. Returns true if the
// command was handled, and ErrExit if the REPL should exit.
func (r *REPL) handleBuiltinCommand(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if !isBuiltinCommand(fields) {
		return false, nil
	}
	command, args := fields[0], fields[1:]

	switch command {
	case "exit":
		// Signal exit by returning ErrExit
		return true, ErrExit

	case "config":
		r.handleConfigCommand(ctx, args)
		return true, nil

	case "clear":
		r.session.context.Clear()
		r.session.renderer.System("Conversation cleared")
		return true, nil

	case "help", "?":
		r.handleHelpCommand()
		return true, nil

	case "history":
		r.handleHistoryCommand(args)
		return true, nil

	default:
		return false, nil
	}
}

// handleConfigCommand implements `config [edit|show|help]`.
func (r *REPL) handleConfigCommand(ctx context.Context, args []string) {
	action := "edit"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "edit":
		if err := r.editConfig(ctx); err != nil {
			r.logger.Warn("failed to apply edited config", zap.Error(err))
			r.session.renderer.Error(err)
		}
	case "show":
		r.session.renderer.Println(strings.TrimRight(r.session.config.String(), "\n"))
	default:
		r.session.renderer.Println(configUsage)
	}
}

// editConfig opens the config file in $EDITOR and rebinds the session. The
// current session stays active if the new configuration cannot be applied.
func (r *REPL) editConfig(ctx context.Context) error {
	cfg, err := r.loader.Edit(ctx, r.stdin, r.stdout, r.stderr)
	if err != nil {
		return err
	}

	s, err := r.newSession(cfg)
	if err != nil {
		return err
	}
	r.session = s

	r.logger.Info("reloaded config", zap.String("model", s.model.Name()), zap.Bool("streamed", s.streamed()))
	s.renderer.System(fmt.Sprintf("Configuration reloaded from %s", r.loader.Path()))
	return nil
}

func (r *REPL) handleHelpCommand() {
	styles := r.session.renderer.Styles()
	r.session.renderer.Println("Commands:")
	for _, entry := range builtinHelp {
		r.session.renderer.Println(fmt.Sprintf("  %-24s %s", entry[0], styles.Dim.Render(entry[1])))
	}
	r.session.renderer.Println("Anything else is sent to the model.")
}

func (r *REPL) handleHistoryCommand(args []string) {
	if r.history == nil {
		r.session.renderer.System("Input history is disabled")
		return
	}

	if len(args) > 0 && args[0] == "clear" {
		if err := r.history.ResetHistory(); err != nil {
			r.session.renderer.Error(fmt.Errorf("failed to clear history: %w", err))
			return
		}
		r.session.renderer.System("Input history cleared")
		return
	}

	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			r.session.renderer.Println(historyUsage)
			return
		}
		limit = n
	}

	entries, err := r.history.Recent(limit)
	if err != nil {
		r.session.renderer.Error(fmt.Errorf("failed to read history: %w", err))
		return
	}

	dim := r.session.renderer.Styles().Dim
	for _, entry := range entries {
		r.session.renderer.Println(fmt.Sprintf("%5d  %s  %s", entry.ID, entry.Line, dim.Render(humanize.Time(entry.CreatedAt))))
	}
}

// showWelcomeScreen displays the welcome screen with session info.
func (r *REPL) showWelcomeScreen() {
	info := render.WelcomeInfo{
		Model:    r.session.model.Name(),
		Streamed: r.session.streamed(),
		Version:  r.buildVersion,
	}
	r.session.renderer.Welcome(info, time.Now())
}
