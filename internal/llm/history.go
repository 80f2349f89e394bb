package llm

import "strings"

// DefaultHistoryLines is how much advisor history is fed back into prompts.
const DefaultHistoryLines = 30

// HistoryBuffer keeps the most recent advisor lines.
type HistoryBuffer struct {
	max   int
	lines []string
}

// NewHistoryBuffer creates a buffer holding at most limit lines.
func NewHistoryBuffer(limit int) *HistoryBuffer {
	if limit <= 0 {
		limit = DefaultHistoryLines
	}
	return &HistoryBuffer{max: limit}
}

// Add appends each line of text, dropping the oldest beyond the limit.
func (h *HistoryBuffer) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	h.lines = append(h.lines, strings.Split(text, "\n")...)
	if over := len(h.lines) - h.max; over > 0 {
		h.lines = append([]string(nil), h.lines[over:]...)
	}
}

// Recent returns the buffered lines joined by newlines.
func (h *HistoryBuffer) Recent() string {
	return strings.Join(h.lines, "\n")
}

// Len returns the number of buffered lines.
func (h *HistoryBuffer) Len() int { return len(h.lines) }
