// Package tui provides a Bubble Tea terminal UI for the SagaCore game engine.
package tui

// History is the input recall list behind the Up and Down keys. The
// newest entry is last. pos equals len(entries) while the player is not
// browsing.
type History struct {
	entries []string
	max     int
	pos     int
}

// NewHistory creates a history that keeps at most max entries.
func NewHistory(max int) *History {
	return &History{entries: make([]string, 0, max), max: max}
}

// Push records a submitted line unless it repeats the newest entry.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != cmd {
		h.entries = append(h.entries, cmd)
		if over := len(h.entries) - h.max; over > 0 {
			h.entries = append(h.entries[:0], h.entries[over:]...)
		}
	}
	h.pos = len(h.entries)
}

// Seed replaces the entries with the tail of a world's command log, so a
// restored game recalls the commands that led to it.
func (h *History) Seed(log []string) {
	h.entries = h.entries[:0]
	for _, cmd := range log {
		h.Push(cmd)
	}
	h.pos = len(h.entries)
}

// Prev steps to the next older entry and stays on the oldest one.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next steps to the next newer entry. Stepping past the newest returns
// false so the caller can clear the input.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", false
	}
	return h.entries[h.pos], true
}

// ResetCursor ends browsing.
func (h *History) ResetCursor() {
	h.pos = len(h.entries)
}
