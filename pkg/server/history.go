package server

// History is a bounded FIFO of rendered channel lines. It is not
// synchronized; a Channel guards its History with the channel mutex.
type History struct {
	lines []string
	limit int
}

// NewHistory creates a History keeping at most limit lines. A limit of
// zero keeps nothing.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{lines: make([]string, 0, limit), limit: limit}
}

// Append adds line at the tail, evicting the oldest line when full.
func (h *History) Append(line string) {
	if h.limit == 0 {
		return
	}
	if len(h.lines) == h.limit {
		copy(h.lines, h.lines[1:])
		h.lines = h.lines[:h.limit-1]
	}
	h.lines = append(h.lines, line)
}

// Lines returns a copy of the buffered lines, oldest first.
func (h *History) Lines() []string {
	out := make([]string, len(h.lines))
	copy(out, h.lines)
	return out
}

// Len returns the number of buffered lines.
func (h *History) Len() int {
	return len(h.lines)
}

// Limit returns the capacity.
func (h *History) Limit() int {
	return h.limit
}
