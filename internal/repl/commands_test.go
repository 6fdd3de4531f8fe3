package repl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinylittleshell/shcopilot/internal/ai"
	"github.com/atinylittleshell/shcopilot/internal/history"
)

func TestHandleBuiltinCommand_Exit(t *testing.T) {
	r, _ := newTestREPL(t, testOptions{})

	handled, err := r.handleBuiltinCommand(context.Background(), "exit")
	assert.True(t, handled)
	assert.ErrorIs(t, err, ErrExit)
}

func TestHandleBuiltinCommand_NotBuiltin(t *testing.T) {
	r, _ := newTestREPL(t, testOptions{})

	for _, line := range []string{
		"how do I exit vim?",
		"ls -la",
		"configure nginx",
		"exit status 127 from make",
		"clear up disk space on /var please",
		"help me write a for loop",
		"history | grep ssh shows nothing, why?",
		"history nope",
		"config nginx for https",
	} {
		handled, err := r.handleBuiltinCommand(context.Background(), line)
		assert.False(t, handled, line)
		assert.NoError(t, err)
	}
}

func TestConfigCommand_Show(t *testing.T) {
	r, out := newTestREPL(t, testOptions{config: "context:\n  max_history: 4\ncopilot:\n  streamed: true\n"},
		"config show", "exit")

	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "max_history: 4")
	assert.Contains(t, out.String(), "streamed: true")
}

func TestConfigCommand_Usage(t *testing.T) {
	for _, line := range []string{"config help", "config bogus"} {
		t.Run(line, func(t *testing.T) {
			r, out := newTestREPL(t, testOptions{}, line, "exit")

			require.NoError(t, r.Run(context.Background()))

			assert.Contains(t, out.String(), configUsage+"\n")
		})
	}
}

func TestConfigCommand_EditSwapsSession(t *testing.T) {
	t.Setenv("EDITOR", `sh -c 'printf "copilot:\n  streamed: true\ncontext:\n  max_history: 3\n" > "$1"' editor`)
	r, out := newTestREPL(t, testOptions{}, "hello", "config", "exit")

	require.NoError(t, r.Run(context.Background()))

	assert.True(t, r.Config().Copilot.Streamed)
	assert.Equal(t, 3, r.Context().MaxHistory())
	assert.Equal(t, 1, r.Context().Len(), "edited config starts a fresh conversation")
	assert.Contains(t, out.String(), "Configuration reloaded from ")
}

func TestConfigCommand_EditFailureKeepsSession(t *testing.T) {
	t.Setenv("EDITOR", "false")
	r, out := newTestREPL(t, testOptions{}, "hello", "config edit", "exit")
	before := r.session

	require.NoError(t, r.Run(context.Background()))

	assert.Same(t, before, r.session)
	assert.Equal(t, 3, r.Context().Len())
	assert.Contains(t, out.String(), "✗ error > editor exited with error")
}

func TestConfigCommand_EditInvalidConfigKeepsSession(t *testing.T) {
	t.Setenv("EDITOR", `sh -c 'printf "context:\n  max_history: -5\n" > "$1"' editor`)
	r, out := newTestREPL(t, testOptions{}, "config", "exit")
	before := r.session

	require.NoError(t, r.Run(context.Background()))

	assert.Same(t, before, r.session)
	assert.Contains(t, out.String(), "max_history must be positive")
}

func TestClearCommand(t *testing.T) {
	r, out := newTestREPL(t, testOptions{}, "hello", "clear", "exit")

	require.NoError(t, r.Run(context.Background()))

	assert.Empty(t, r.Context().Get())
	assert.Contains(t, out.String(), "→ Conversation cleared")
}

func TestClearCommand_NextTurnStartsFresh(t *testing.T) {
	r, _ := newTestREPL(t, testOptions{}, "clear", "hello", "exit")

	require.NoError(t, r.Run(context.Background()))

	require.Len(t, r.Context().Get(), 2)
	assert.Equal(t, ai.Human, r.Context().Get()[0].Author)
}

func TestHelpCommand(t *testing.T) {
	for _, line := range []string{"help", "?"} {
		t.Run(line, func(t *testing.T) {
			r, out := newTestREPL(t, testOptions{}, line, "exit")
			before := r.Context().Get()

			require.NoError(t, r.Run(context.Background()))

			assert.Contains(t, out.String(), "Commands:")
			assert.Contains(t, out.String(), "config [edit|show|help]")
			assert.Equal(t, before, r.Context().Get())
		})
	}
}

func TestHistoryCommand(t *testing.T) {
	historyManager, err := history.NewHistoryManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer historyManager.Close()

	r, out := newTestREPL(t, testOptions{history: historyManager},
		"first question", "second question", "history 2", "history 0", "exit")

	require.NoError(t, r.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "    2  second question  ")
	assert.Contains(t, output, "    3  history 2  ")
	assert.NotContains(t, output, "first question")
	assert.Contains(t, output, historyUsage)

	lines, err := historyManager.Lines(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"first question", "second question", "history 2", "history 0", "exit"}, lines)
}

func TestHistoryCommand_Clear(t *testing.T) {
	historyManager, err := history.NewHistoryManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer historyManager.Close()

	r, out := newTestREPL(t, testOptions{history: historyManager}, "first question", "history clear")

	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "→ Input history cleared")
	lines, err := historyManager.Lines(10)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, 3, r.Context().Len(), "clearing input history keeps the conversation")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	r, out := newTestREPL(t, testOptions{}, "history", "exit")

	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "Input history is disabled")
}
