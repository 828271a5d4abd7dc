package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/sagacore/cli"
	"github.com/nathoo/sagacore/engine"
	"github.com/nathoo/sagacore/storage"
)

// historySize bounds the Up/Down recall list.
const historySize = 100

// rawLine is an unstyled output line. Lines are kept raw so a resize can
// re-wrap and re-style them.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // echoed player input
	isSystem bool // status message from a meta-command or trace
}

// Model is the Bubble Tea model for the SagaCore TUI. Bubble Tea copies
// the model on every update, so mutable state shared with the engine sits
// behind pointers.
type Model struct {
	engine  *engine.Engine
	session *cli.Session
	ctx     context.Context

	viewport viewport.Model
	input    textinput.Model
	history  *History
	rawLines []rawLine

	width    int
	height   int
	ready    bool
	quitting bool
	lastCmd  string
}

// outputMsg carries a turn's worth of lines into the Update loop.
type outputMsg struct {
	input string // echoed player input, empty for the intro
	lines []cli.Line
}

// New creates a TUI model over eng. store may be nil, which disables the
// save commands.
func New(ctx context.Context, eng *engine.Engine, store storage.Store, log *slog.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	h := NewHistory(historySize)
	h.Seed(eng.World.CommandLog)

	return Model{
		engine:  eng,
		session: &cli.Session{Engine: eng, Store: store, Now: time.Now, Log: log},
		ctx:     ctx,
		input:   ti,
		history: h,
	}
}

// Run starts the Bubble Tea program and blocks until the player quits or
// ctx is cancelled.
func Run(ctx context.Context, eng *engine.Engine, store storage.Store, log *slog.Logger) error {
	p := tea.NewProgram(New(ctx, eng, store, log), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init shows the intro.
func (m Model) Init() tea.Cmd {
	intro := m.engine.Intro()
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return outputMsg{lines: narrative(intro)}
	})
}

// narrative wraps engine output as non-system lines.
func narrative(text []string) []cli.Line {
	lines := make([]cli.Line, len(text))
	for i, t := range text {
		lines[i] = cli.Line{Text: t}
	}
	return lines
}

// Update handles key presses, resizes and engine output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			next, ok := m.history.Next()
			if !ok {
				next = ""
				m.history.ResetCursor()
			}
			m.input.SetValue(next)
			m.input.CursorEnd()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	vpHeight := max(height-2, 1) // status bar and input line
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.refreshViewport()
}

// handleEnter submits the input line to the meta-commands or the engine.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)

	if lower := strings.ToLower(input); lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			return m.appendOutput(outputMsg{input: input, lines: []cli.Line{{Text: "Nothing to repeat."}}}), nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		r := m.session.Meta(m.ctx, input)
		if r.Loaded {
			m.history.Seed(m.engine.World.CommandLog)
		}
		m = m.appendOutput(outputMsg{input: input, lines: r.Lines})
		if r.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	result := m.engine.Step(input)
	lines := narrative(result.Output)
	if m.session.Trace {
		lines = append(lines, m.session.TraceLines(result)...)
	}
	m = m.appendOutput(outputMsg{input: input, lines: lines})
	if result.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// appendOutput adds a turn to the narrative, followed by a blank separator.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, l := range msg.lines {
		rl := rawLine{text: l.Text, isSystem: l.System}
		if !l.System {
			rl.kind = classifyLine(l.Text)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles every line at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordwrap.String(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders the viewport, the status bar and the input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap leaves Up and Down to the input history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
