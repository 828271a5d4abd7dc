// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the SagaCore game engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/sagacore/engine"
	"github.com/nathoo/sagacore/storage"
)

// DefaultSave is the save name used when /save or /load has no argument.
const DefaultSave = "quicksave"

// CLI handles terminal interaction with the player.
type CLI struct {
	Session
	In        io.Reader
	Out       io.Writer
	Width     int    // wrap output at this many columns; 0 disables wrapping
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine and save store.
func New(eng *engine.Engine, store storage.Store, log *slog.Logger) *CLI {
	return &CLI{
		Session: Session{Engine: eng, Store: store, Now: time.Now, Log: log},
		In:      os.Stdin,
		Out:     os.Stdout,
		Width:   80,
	}
}

// Run starts the game loop. It shows the intro and starting room, then
// loops: prompt, input, dispatch, output. It returns when input ends, on
// /quit, or when a game command ends the session.
func (c *CLI) Run(ctx context.Context) {
	c.printLines(c.Engine.Intro())

	scanner := bufio.NewScanner(c.In)
	for {
		if ctx.Err() != nil {
			return
		}
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printLines(result.Output)
		if c.Trace {
			c.printReply(c.TraceLines(result))
		}
		if result.Quit {
			return
		}
	}
}

// handleMeta runs a meta-command and reports whether the session ends.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	r := c.Meta(ctx, input)
	c.printReply(r.Lines)
	return r.Quit
}

func (c *CLI) printReply(lines []Line) {
	for _, l := range lines {
		if l.System {
			c.printSystem(l.Text)
		} else {
			c.printLine(l.Text)
		}
	}
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	if c.Width > 0 {
		text = wordwrap.String(text, c.Width)
	}
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
