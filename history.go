package rline

import (
	"strings"
	"unicode/utf8"
)

// History is the C4 History Store: an ordered, bounded list of past
// input lines with a recall cursor and incremental/non-incremental
// search. Grounded almost directly on the teacher's history.go —
// entry/entryIndex/save/searchEntry/updateSearch/maybeInitSearch keep
// their shapes — generalized to a monotonic global index (spec.md §3's
// HistoryEntry.index) and with the file-backed Load/Close dropped per
// the history-persistence Non-goal (see DESIGN.md); EncodeHistoryLine/
// DecodeHistoryLine in vis.go remain available to a caller that wants
// to persist entries itself.
type History struct {
	pending string
	entries []string
	head    int
	maxSize int

	// baseIndex is the monotonic index of entries[head+1], i.e. the
	// index the oldest retained entry would have had before any
	// eviction. index() reports baseIndex+len(entries).
	baseIndex int

	index int // recall cursor: -1 means "not currently recalling"

	searchDir        int // 0 = inactive, +1 = forward, -1 = reverse
	searchMatched    bool
	searchKey        string
	searchMatchedKey string
}

// NewHistory creates a History retaining at most maxSize entries. A
// maxSize of 0 disables history (Add becomes a no-op); -1 means
// unbounded.
func NewHistory(maxSize int) *History {
	return &History{maxSize: maxSize, index: -1}
}

// Len returns the number of retained entries.
func (h *History) Len() int { return len(h.entries) }

// Index returns the index the next-added entry would take.
func (h *History) Index() int { return h.baseIndex + len(h.entries) }

// Add appends a new entry, eliding it if identical to the previous
// entry, and resets the recall cursor.
func (h *History) Add(s string) {
	if h.maxSize == 0 {
		return
	}
	if h.entry(0) == s {
		h.index = -1
		return
	}
	if h.maxSize == -1 || len(h.entries) < h.maxSize {
		h.entries = append(h.entries, "")
	} else {
		h.baseIndex++
	}
	h.head = (h.head + 1) % len(h.entries)
	h.entries[h.head] = s
	h.index = -1
}

// Entries returns the retained entries in insertion order.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	for i := range out {
		out[i] = h.entry(len(h.entries) - 1 - i)
	}
	return out
}

// editSource is the minimal surface History needs from the active
// edit session: current buffer text/cursor, and a way to replace them.
// Implemented by the Editor during readLine (kept as an interface so
// History has no dependency on screen rendering, per spec.md §4.4's
// "no terminal I/O" contract).
type editSource interface {
	currentText() []rune
	cursorOffset() int
	replaceText(text []rune, cursor int)
	setStatusSuffix(suffix []rune)
}

// Next saves the current entry, recalls the next (more recent) entry,
// or continues an active forward search.
func (h *History) Next(e editSource) bool {
	if h.searchDir != 0 {
		return h.ForwardSearch(e)
	}
	if h.index == -1 {
		return false
	}
	h.save(e.currentText())
	h.index--
	e.replaceText([]rune(h.entry(h.index)), -1)
	return true
}

// Previous saves the current entry, recalls the previous (older)
// entry, or continues an active reverse search.
func (h *History) Previous(e editSource) bool {
	if h.searchDir != 0 {
		return h.ReverseSearch(e)
	}
	if h.index+1 >= len(h.entries) {
		return false
	}
	h.save(e.currentText())
	h.index++
	e.replaceText([]rune(h.entry(h.index)), -1)
	return true
}

// MoveToFirst recalls the oldest retained entry (beginning-of-history).
func (h *History) MoveToFirst(e editSource) bool {
	if len(h.entries) == 0 {
		return false
	}
	h.save(e.currentText())
	h.index = len(h.entries) - 1
	e.replaceText([]rune(h.entry(h.index)), -1)
	return true
}

// MoveToLast recalls the pending (not-yet-submitted) line
// (end-of-history).
func (h *History) MoveToLast(e editSource) bool {
	h.save(e.currentText())
	h.index = -1
	e.replaceText([]rune(h.entry(-1)), -1)
	return true
}

// AbortSearch resets to the last key that matched if the current
// search key does not match, otherwise cancels the search entirely.
func (h *History) AbortSearch(e editSource) bool {
	if h.searchDir == 0 {
		return false
	}
	if !h.searchMatched {
		h.searchKey = h.searchMatchedKey
		h.updateSearch(e, false)
		return true
	}
	return h.CancelSearch(e)
}

// CancelSearch ends an active incremental search, restoring normal
// line editing.
func (h *History) CancelSearch(e editSource) bool {
	if h.searchDir == 0 {
		return false
	}
	e.setStatusSuffix(nil)
	h.searchDir = 0
	h.searchMatched = false
	h.searchKey = ""
	h.searchMatchedKey = ""
	return true
}

// ForwardSearch starts (if inactive) or continues an incremental
// forward search.
func (h *History) ForwardSearch(e editSource) bool {
	h.maybeInitSearch(e)
	h.searchDir = +1
	h.updateSearch(e, true)
	return true
}

// ReverseSearch starts (if inactive) or continues an incremental
// reverse search.
func (h *History) ReverseSearch(e editSource) bool {
	h.maybeInitSearch(e)
	h.searchDir = -1
	h.updateSearch(e, true)
	return true
}

// AppendSearchKey appends a printable character to the active search
// key.
func (h *History) AppendSearchKey(e editSource, r rune) bool {
	if h.searchDir == 0 {
		return false
	}
	h.searchKey += string(r)
	h.updateSearch(e, false)
	return true
}

// TruncateSearchKey removes the last character of the active search
// key (search-mode backspace).
func (h *History) TruncateSearchKey(e editSource) bool {
	if h.searchDir == 0 {
		return false
	}
	if len(h.searchKey) > 0 {
		_, size := utf8.DecodeLastRuneInString(h.searchKey)
		h.searchKey = h.searchKey[:len(h.searchKey)-size]
		h.updateSearch(e, false)
	}
	return true
}

// Searching reports whether an incremental search is active, and in
// which direction (+1 forward, -1 reverse, 0 inactive).
func (h *History) Searching() int { return h.searchDir }

// SearchKey returns the in-progress incremental search key.
func (h *History) SearchKey() string { return h.searchKey }

func (h *History) entry(n int) string {
	if n == -1 {
		return h.pending
	}
	i := h.entryIndex(n)
	if i == -1 {
		return ""
	}
	return h.entries[i]
}

func (h *History) entryIndex(n int) int {
	if n >= len(h.entries) {
		return -1
	}
	index := h.head - n
	if index < 0 {
		index += len(h.entries)
	}
	return index
}

func (h *History) save(cur []rune) {
	if h.index == -1 {
		h.pending = string(cur)
		return
	}
	index := h.entryIndex(h.index)
	if index == -1 {
		return
	}
	h.entries[index] = string(cur)
}

func (h *History) searchEntry(e editSource, i int, advance bool) bool {
	var pos int
	entry := h.entry(i)

	switch h.searchDir {
	case +1:
		var n int
		if i == h.index {
			n = e.cursorOffset()
			if advance {
				n++
			}
			if n > len(entry) {
				n = len(entry)
			}
		}
		pos = strings.Index(entry[n:], h.searchKey)
		if pos != -1 {
			pos += n
		}

	case -1:
		n := len(entry)
		if i == h.index {
			n = e.cursorOffset() + len(h.searchKey)
			if advance {
				n--
			}
			if n < 0 {
				n = 0
			}
			if n > len(entry) {
				n = len(entry)
			}
		}
		pos = strings.LastIndex(entry[:n], h.searchKey)
	}

	if pos == -1 {
		return false
	}

	h.save(e.currentText())
	h.index = i
	e.replaceText([]rune(entry), utf8.RuneCountInString(entry[:pos]))
	return true
}

func (h *History) updateSearch(e editSource, advance bool) {
	h.searchMatched = false
	if len(h.searchKey) > 0 {
		switch h.searchDir {
		case +1:
			for i := h.index; i >= -1; i-- {
				if h.searchEntry(e, i, advance) {
					h.searchMatched = true
					h.searchMatchedKey = h.searchKey
					break
				}
			}
		case -1:
			for i := h.index; i < len(h.entries); i++ {
				if h.searchEntry(e, i, advance) {
					h.searchMatched = true
					h.searchMatchedKey = h.searchKey
					break
				}
			}
		}
	}

	dir := "fwd"
	if h.searchDir < 0 {
		dir = "bck"
	}
	matched := "?"
	if len(h.searchKey) == 0 || h.searchMatched {
		matched = ":"
	}
	label := dir + "-i-search"
	if h.searchDir < 0 {
		label = "bck-i-search"
	} else {
		label = "i-search"
	}
	e.setStatusSuffix([]rune("\n(" + label + matched + "`" + h.searchKey + "')"))
}

func (h *History) maybeInitSearch(e editSource) {
	if h.searchDir != 0 {
		return
	}
	if len(h.entries) == 0 {
		h.index = -1
	}
	h.save(e.currentText())
	h.searchMatchedKey = ""
}

// substringSearch implements history-search-backward/forward
// (non-incremental, prefix-anchored to the text before the cursor):
// searches entries older (backward) or newer (forward) than the
// current recall position for one whose prefix matches the text
// before the cursor, and recalls it while preserving cursor position.
func (h *History) substringSearch(e editSource, backward bool) bool {
	text := e.currentText()
	cursor := e.cursorOffset()
	prefix := string(text[:cursor])

	start := h.index
	if backward {
		for i := start + 1; i < len(h.entries); i++ {
			if strings.HasPrefix(h.entry(i), prefix) {
				h.save(text)
				h.index = i
				e.replaceText([]rune(h.entry(i)), cursor)
				return true
			}
		}
		return false
	}
	for i := start - 1; i >= -1; i-- {
		if strings.HasPrefix(h.entry(i), prefix) {
			h.save(text)
			h.index = i
			e.replaceText([]rune(h.entry(i)), cursor)
			return true
		}
	}
	return false
}
