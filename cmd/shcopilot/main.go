package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/shcopilot/internal/ai/models"
	"github.com/atinylittleshell/shcopilot/internal/core"
	"github.com/atinylittleshell/shcopilot/internal/history"
	"github.com/atinylittleshell/shcopilot/internal/repl"
	"github.com/atinylittleshell/shcopilot/internal/repl/config"
)

var BUILD_VERSION = "dev"

// historyPreload is the number of past input lines offered by up-arrow.
const historyPreload = 500

const helpText = `shcopilot - an AI copilot for your shell

USAGE:
  shcopilot [options]

Type a question or paste a command's output at the prompt. Built-in
commands: config [edit|show|help], clear, history [n], help, exit.

Configuration is read from ~/.config/shcopilot.yaml and API keys may be
kept in ~/.config/shcopilot.env.

OPTIONS:
`

type cliOptions struct {
	model      string
	configPath string
	version    bool
	help       bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "shcopilot: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet(registry *models.Registry) (*pflag.FlagSet, *cliOptions) {
	opts := &cliOptions{}
	flagSet := pflag.NewFlagSet("shcopilot", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.model, "model", "m", models.FakeName,
		fmt.Sprintf("AI model to use (%s)", strings.Join(registry.Names(), ", ")))
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to the configuration file (default ~/.config/shcopilot.yaml)")
	flagSet.BoolVarP(&opts.version, "version", "v", false, "display build version")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "display help information")
	return flagSet, opts
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, helpText)
	fmt.Fprint(w, flagSet.FlagUsages())
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	registry := models.DefaultRegistry()

	flagSet, opts := newFlagSet(registry)
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return nil
		}
		return err
	}

	if opts.version {
		fmt.Fprintln(stdout, BUILD_VERSION)
		return nil
	}

	if opts.help {
		printHelp(stdout, flagSet)
		return nil
	}

	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if !registry.Has(opts.model) {
		err := &models.UnknownModelError{Name: opts.model}
		if suggestions := registry.Suggest(opts.model); len(suggestions) > 0 {
			return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(suggestions, ", "))
		}
		return err
	}

	logger, logLevel, err := initializeLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new shcopilot session --------", zap.Strings("args", args))

	if err := config.LoadEnv(core.EnvFile()); err != nil {
		logger.Warn("failed to load env file", zap.Error(err))
	}

	historyManager, err := history.NewHistoryManager(core.HistoryFile())
	if err != nil {
		return fmt.Errorf("failed to initialize history manager: %w", err)
	}
	defer historyManager.Close()

	reader, closeReader := initializeReader(stdin, stdout, historyManager, logger)
	defer closeReader()

	configPath := opts.configPath
	if configPath == "" {
		configPath = core.ConfigFile()
	}

	replOptions := repl.Options{
		Registry:     registry,
		ModelName:    opts.model,
		Loader:       config.NewLoader(configPath, logger.Named("config")),
		History:      historyManager,
		Reader:       reader,
		Stdin:        stdin,
		Stdout:       stdout,
		Stderr:       stderr,
		Logger:       logger,
		BuildVersion: BUILD_VERSION,
	}
	// dev builds keep logging at debug regardless of copilot.log_level
	if BUILD_VERSION != "dev" {
		replOptions.LogLevel = &logLevel
	}

	r, err := repl.New(replOptions)
	if err != nil {
		return err
	}

	err = r.Run(ctx)
	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
	}
	return err
}

func initializeLogger() (*zap.Logger, zap.AtomicLevel, error) {
	logLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	// Logs only go to file so they never interleave with the conversation.
	// Use `tail -f ~/.shcopilot/shcopilot.log` to monitor logs in real-time.

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}

	return logger, logLevel, nil
}

// initializeReader uses liner when stdin is a terminal and a plain scanner
// otherwise, so piped input works.
func initializeReader(stdin io.Reader, stdout io.Writer, historyManager *history.HistoryManager, logger *zap.Logger) (repl.LineReader, func()) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return repl.NewScannerReader(stdin, stdout), func() {}
	}

	lines, err := historyManager.Lines(historyPreload)
	if err != nil {
		logger.Warn("failed to load input history", zap.Error(err))
	}

	reader := repl.NewLinerReader(lines)
	return reader, func() {
		if err := reader.Close(); err != nil {
			logger.Warn("failed to restore terminal", zap.Error(err))
		}
	}
}
