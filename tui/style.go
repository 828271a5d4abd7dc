package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Each color has a light and a dark terminal variant.
var (
	colorText   = lipgloss.AdaptiveColor{Light: "235", Dark: "255"}
	colorDim    = lipgloss.AdaptiveColor{Light: "245", Dark: "243"}
	colorFaint  = lipgloss.AdaptiveColor{Light: "250", Dark: "240"}
	colorPrompt = lipgloss.AdaptiveColor{Light: "28", Dark: "34"}
	colorSpeech = lipgloss.AdaptiveColor{Light: "130", Dark: "228"}
	colorQuest  = lipgloss.AdaptiveColor{Light: "166", Dark: "214"}
	colorError  = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorBar    = lipgloss.AdaptiveColor{Light: "252", Dark: "236"}
)

var (
	styleStatusBar   = lipgloss.NewStyle().Background(colorBar).Foreground(colorText).Bold(true)
	styleInputPrompt = lipgloss.NewStyle().Foreground(colorPrompt)
	stylePlayerInput = lipgloss.NewStyle().Foreground(colorPrompt)
	styleRoomDesc    = lipgloss.NewStyle().Foreground(colorText)
	styleYouSee      = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	styleExits       = lipgloss.NewStyle().Foreground(colorDim)
	styleDialogue    = lipgloss.NewStyle().Foreground(colorSpeech)
	styleQuest       = lipgloss.NewStyle().Foreground(colorQuest).Bold(true)
	styleSystem      = lipgloss.NewStyle().Foreground(colorDim)
	styleError       = lipgloss.NewStyle().Foreground(colorError)
	styleTrace       = lipgloss.NewStyle().Foreground(colorFaint).Italic(true)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindRoomDesc lineKind = iota
	kindYouSee
	kindExits
	kindDialogue
	kindQuest
	kindSystem
	kindError
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[Quest "), strings.HasPrefix(line, "Quest complete:"):
		return kindQuest
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "Exits:"):
		return kindExits
	case strings.HasPrefix(line, "You don't see"),
		strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "You don't have"),
		strings.HasPrefix(line, "There is no such"):
		return kindError
	case containsQuotedSpeech(line):
		return kindDialogue
	default:
		return kindRoomDesc
	}
}

// containsQuotedSpeech checks if a line contains speech in double quotes.
func containsQuotedSpeech(line string) bool {
	inQuote := false
	quoteLen := 0
	for _, r := range line {
		if r == '"' {
			if inQuote && quoteLen > 5 {
				return true
			}
			inQuote = !inQuote
			quoteLen = 0
		} else if inQuote {
			quoteLen++
		}
	}
	return false
}

// styledYouSee renders "You see: item1, item2." with item names bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	if !strings.HasPrefix(line, prefix) {
		return styleRoomDesc.Render(line)
	}
	return styleRoomDesc.Render(prefix) + styleYouSee.Render(line[len(prefix):])
}

// styledSystemMsg renders a system message in brackets, dimmer for trace.
func styledSystemMsg(text string) string {
	if strings.HasPrefix(text, "trace:") {
		return styleTrace.Render("[" + text + "]")
	}
	return styleSystem.Render("[" + text + "]")
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleExits.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindQuest:
		return styleQuest.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleRoomDesc.Render(line)
	}
}
