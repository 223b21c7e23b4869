package rline

import (
	"fmt"
	"strconv"
	"strings"
)

// EventNotFoundError is raised by expandEvents when a `!`-designator
// names a history entry that does not exist (spec.md §7's
// EventNotFound, spec.md §4.6.6).
type EventNotFoundError struct {
	Designator string
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("%s: event not found", e.Designator)
}

// historySource is the minimal read-only surface expandEvents needs
// from History: global index plus entries addressed by that index
// (spec.md §4.4's get(globalIndex)/entriesFrom contract), kept separate
// from editSource since event expansion never mutates the recall
// cursor.
type historySource interface {
	Len() int
	Index() int
	entryAt(globalIndex int) (string, bool)
}

func (h *History) entryAt(globalIndex int) (string, bool) {
	n := h.Index() - 1 - globalIndex
	if n < 0 || n >= len(h.entries) {
		return "", false
	}
	return h.entry(n), true
}

// expandEvents runs the C7 Event Expander over a just-committed line,
// applying GNU history expansion rules left-to-right before the line is
// added to history (spec.md §4.6.6). Returns the expanded line and
// whether it differs from the input (callers print the expansion only
// when it changed).
func expandEvents(h historySource, line string) (string, bool, error) {
	if !strings.ContainsAny(line, "!^") {
		return line, false, nil
	}

	var out strings.Builder

	if strings.HasPrefix(line, `\^`) {
		rest, restChanged, err := expandEvents(h, line[2:])
		if err != nil {
			return "", false, err
		}
		_ = restChanged
		s := "^" + rest
		return s, s != line, nil
	}
	if strings.HasPrefix(line, "^") {
		expanded, ok, err := expandQuickSubst(h, line)
		if err != nil {
			return "", false, err
		}
		if ok {
			return expanded, true, nil
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) && runes[i+1] == '!' {
			out.WriteRune('!')
			i++
			continue
		}
		if r != '!' {
			out.WriteRune(r)
			continue
		}

		rest := string(runes[i+1:])
		expansion, consumed, ok, err := expandBang(h, out.String(), rest)
		if err != nil {
			return "", false, err
		}
		if !ok {
			out.WriteRune('!')
			continue
		}
		out.WriteString(expansion)
		i += consumed
	}

	result := out.String()
	return result, result != line, nil
}

// expandBang expands the designator immediately following a `!` found
// at runes[i]. soFar is the text already emitted, used for `!#`
// (spec.md §9 Open Question (a): the prefix-so-far is what the source
// appends, not the whole line under construction). Returns the
// replacement text, how many runes of rest were consumed, and ok=false
// if rest does not form a recognized designator (a lone `!`, left
// untouched).
func expandBang(h historySource, soFar, rest string) (expansion string, consumed int, ok bool, err error) {
	r := []rune(rest)
	if len(r) == 0 {
		return "", 0, false, nil
	}

	switch {
	case r[0] == '!':
		e, found := lastEntry(h)
		if !found {
			return "", 0, true, &EventNotFoundError{Designator: "!!"}
		}
		return e, 1, true, nil

	case r[0] == '#':
		return soFar, 1, true, nil

	case r[0] == ' ' || r[0] == '\t':
		return "!", 0, true, nil

	case r[0] == '$':
		e, found := lastEntry(h)
		if !found {
			return "", 0, true, &EventNotFoundError{Designator: "!$"}
		}
		fields := strings.Fields(e)
		if len(fields) == 0 {
			return "", 1, true, nil
		}
		return fields[len(fields)-1], 1, true, nil

	case r[0] == '?':
		end := strings.IndexRune(string(r[1:]), '?')
		if end == -1 {
			return "", 0, false, nil
		}
		needle := string(r[1 : 1+end])
		e, found := findContaining(h, needle)
		if !found {
			return "", 0, true, &EventNotFoundError{Designator: "!?" + needle + "?"}
		}
		return e, 1 + end + 1, true, nil

	case r[0] == '-' || isDigit(r[0]):
		n := 1
		for n < len(r) && isDigit(r[n]) {
			n++
		}
		numStr := string(r[:n])
		idx, perr := strconv.Atoi(numStr)
		if perr != nil {
			return "", 0, false, nil
		}
		var global int
		if strings.HasPrefix(numStr, "-") {
			global = h.Index() + idx // idx already negative
		} else {
			global = idx
		}
		e, found := h.entryAt(global)
		if !found {
			return "", 0, true, &EventNotFoundError{Designator: "!" + numStr}
		}
		return e, n, true, nil

	default:
		n := 0
		for n < len(r) && !isWordBreak(r[n]) {
			n++
		}
		if n == 0 {
			return "", 0, false, nil
		}
		prefix := string(r[:n])
		e, found := findPrefixed(h, prefix)
		if !found {
			return "", 0, true, &EventNotFoundError{Designator: "!" + prefix}
		}
		return e, n, true, nil
	}
}

// expandQuickSubst implements `^a^b^`: replace the first occurrence of
// a in the previous entry with b. Only recognized at the start of the
// line, per spec.md §4.6.6.
func expandQuickSubst(h historySource, line string) (string, bool, error) {
	body := line[1:]
	sep := strings.IndexByte(body, '^')
	if sep == -1 {
		return "", false, nil
	}
	from := body[:sep]
	rest := body[sep+1:]
	end := strings.IndexByte(rest, '^')
	to := rest
	if end != -1 {
		to = rest[:end]
	}

	e, found := lastEntry(h)
	if !found {
		return "", false, &EventNotFoundError{Designator: "^" + from + "^" + to + "^"}
	}
	pos := strings.Index(e, from)
	if pos == -1 {
		return "", false, &EventNotFoundError{Designator: "^" + from + "^" + to + "^"}
	}
	return e[:pos] + to + e[pos+len(from):], true, nil
}

func lastEntry(h historySource) (string, bool) {
	if h.Len() == 0 {
		return "", false
	}
	return h.entryAt(h.Index() - 1)
}

func findContaining(h historySource, needle string) (string, bool) {
	for i := h.Index() - 1; i >= h.Index()-h.Len(); i-- {
		e, ok := h.entryAt(i)
		if ok && strings.Contains(e, needle) {
			return e, true
		}
	}
	return "", false
}

func findPrefixed(h historySource, prefix string) (string, bool) {
	for i := h.Index() - 1; i >= h.Index()-h.Len(); i-- {
		e, ok := h.entryAt(i)
		if ok && strings.HasPrefix(e, prefix) {
			return e, true
		}
	}
	return "", false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isWordBreak(r rune) bool {
	switch r {
	case ' ', '\t', '\n', ';', '|', '&', '!', '^', '\'', '"':
		return true
	}
	return false
}
