package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

var titleCaser = cases.Title(language.English)

// roomDisplayName returns a room's title, or one derived from its id when
// the title is empty: "great_hall" -> "Great Hall".
func roomDisplayName(w *types.World, id string) string {
	name := strings.ReplaceAll(id, "_", " ")
	if room, ok := w.Rooms[id]; ok && room.Title != "" {
		name = room.Title
	}
	return titleCaser.String(name)
}

// renderStatusBar produces a full-width inverted status line showing
// current room, exits, health, gold, inventory, and turn count.
func (m Model) renderStatusBar() string {
	w := m.engine.World
	p := w.Player

	exits := "none"
	if room, ok := w.Rooms[p.Room]; ok {
		if dirs := state.SortedExits(room); len(dirs) > 0 {
			exits = strings.Join(dirs, ",")
		}
	}

	left := fmt.Sprintf(" %s | Exits: %s | HP %d/%d | Gold %d", roomDisplayName(w, p.Room), exits, p.Health, p.Hardiness, p.Gold)
	right := fmt.Sprintf("T:%d ", w.Turn)

	// Show inventory items if they fit, otherwise just count.
	if invCount := len(p.Inventory); invCount > 0 {
		names := make([]string, 0, invCount)
		for _, id := range p.Inventory {
			name := id
			if it, ok := w.Items[id]; ok && it.Name != "" {
				name = it.Name
			}
			names = append(names, name)
		}
		candidate := fmt.Sprintf("Inv: %s | T:%d ", strings.Join(names, ", "), w.Turn)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | T:%d ", invCount, w.Turn)
		}
	}
	if w.GameOver {
		right = "GAME OVER | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
