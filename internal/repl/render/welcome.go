package render

import (
	"fmt"
	"strings"
	"time"
)

// WelcomeInfo contains information to display in the welcome screen.
type WelcomeInfo struct {
	// Model is the registry name of the active model
	Model string
	// Streamed reports whether responses are streamed
	Streamed bool
	// Version is the shcopilot version string
	Version string
}

// Intro is the first line printed by the REPL.
const Intro = "Welcome to the Shell Copilot. Type help or ? to list commands."

// tips is the list of tips to display in the welcome screen.
// A "tip of the day" is selected based on the current date.
var tips = []string{
	"type config to edit the configuration in $EDITOR",
	"type config show to print the active configuration",
	"type clear to start a fresh conversation",
	"type history to list what you typed in previous sessions",
	"set copilot.streamed: true to see answers as they are written",
	"set context.max_history to keep more of the conversation",
	"paste the output of a failing command to get help with it",
	"put API keys in ~/.config/shcopilot.env instead of the YAML file",
	"press Ctrl+D on an empty line to exit",
}

// getTipOfTheDay returns a tip based on the current date.
// The same tip is shown for the entire day, changing at midnight.
func getTipOfTheDay(now time.Time) string {
	if len(tips) == 0 {
		return ""
	}
	return tips[now.YearDay()%len(tips)]
}

// Welcome renders the welcome screen.
func (r *Renderer) Welcome(info WelcomeInfo, now time.Time) {
	labelStyle := r.styles.SystemMessage

	var output strings.Builder
	output.WriteString(r.styles.Title.Render(Intro) + "\n")

	if info.Version == "dev" {
		output.WriteString(labelStyle.Render("version: ") + r.styles.Dim.Render("development") + "\n")
	} else if info.Version != "" {
		output.WriteString(labelStyle.Render("version: ") + r.styles.Value.Render(info.Version) + "\n")
	}

	mode := "blocking"
	if info.Streamed {
		mode = "streamed"
	}
	output.WriteString(labelStyle.Render("model:   ") + r.styles.Value.Render(info.Model) + " " + r.styles.Dim.Render("("+mode+")") + "\n")

	if tip := getTipOfTheDay(now); tip != "" {
		output.WriteString(r.styles.Dim.Render("tip: "+tip) + "\n")
	}

	fmt.Fprint(r.writer, output.String())
}
