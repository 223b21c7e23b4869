package rline

import (
	"sort"
	"strconv"
	"strings"
)

// Completer proposes candidates for the word spanning [wordStart,wordEnd)
// in text (rune offsets). Treated as an external collaborator with a
// narrow interface per spec.md §1/§9 -- the plugin itself (fuzzy
// matching, filesystem globbing, SQL keyword tables) lives outside the
// core. Grounded on the teacher's cmd/demo completer signature, the one
// place in the teacher's own tree that shows the shape a completer
// takes even though completion.go itself is an unimplemented stub.
type Completer func(text []rune, wordStart, wordEnd int) []string

// Clipboard is the narrow external collaborator consulted by the
// paste-from-clipboard widget (spec.md §9's "optional external
// collaborator with a narrow interface"). A nil Clipboard makes the
// paste widget degrade gracefully (a bell, buffer unchanged; spec.md §7).
type Clipboard interface {
	GetText() (string, error)
}

// wordBounds returns the [start,end) rune span of the "word" touching
// the cursor, used as the default completion scope when a caller has
// not already computed one.
func wordBounds(b *buffer) (int, int) {
	start, end := b.cursor, b.cursor
	for start > 0 && isWordRune(b.text[start-1]) {
		start--
	}
	for end < len(b.text) && isWordRune(b.text[end]) {
		end++
	}
	return start, end
}

func commonPrefix(words []string) string {
	if len(words) == 0 {
		return ""
	}
	prefix := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// opComplete implements TAB / complete: attempt completion of the word
// at the cursor, inserting an unambiguous common prefix, or falling
// through to the possible-completions listing when the candidates share
// no prefix longer than the word already typed (spec.md §4.8, §6's
// query-items threshold).
func opComplete(e *Editor, _ []rune) {
	if e.completer == nil {
		e.screen.Bell()
		return
	}
	start, end := wordBounds(&e.buf)
	candidates := e.completer(e.buf.text, start, end)
	if len(candidates) == 0 {
		e.screen.Bell()
		return
	}
	if len(candidates) == 1 {
		e.replaceWord(start, end, candidates[0])
		return
	}
	word := string(e.buf.text[start:end])
	prefix := commonPrefix(candidates)
	if len(prefix) > len(word) {
		e.replaceWord(start, end, prefix)
		return
	}
	e.listCompletions(candidates)
}

// opPossibleCompletions implements M-? / possible-completions: always
// lists every candidate without attempting to complete.
func opPossibleCompletions(e *Editor, _ []rune) {
	if e.completer == nil {
		e.screen.Bell()
		return
	}
	start, end := wordBounds(&e.buf)
	candidates := e.completer(e.buf.text, start, end)
	if len(candidates) == 0 {
		e.screen.Bell()
		return
	}
	e.listCompletions(candidates)
}

// opInsertCompletions implements M-* / insert-completions: replaces
// the word at the cursor with every candidate, space-separated.
func opInsertCompletions(e *Editor, _ []rune) {
	if e.completer == nil {
		e.screen.Bell()
		return
	}
	start, end := wordBounds(&e.buf)
	candidates := e.completer(e.buf.text, start, end)
	if len(candidates) == 0 {
		e.screen.Bell()
		return
	}
	e.replaceWord(start, end, strings.Join(candidates, " "))
}

func (e *Editor) replaceWord(start, end int, text string) {
	e.buf.cursor = start
	e.buf.deleteRange(start, end)
	e.buf.insert([]rune(text))
	e.screen.render(&e.buf)
}

// listCompletions renders the candidate set below the edit line,
// querying the user first when the count reaches completion-query-
// items (spec.md §6): "Display all N possibilities (y/n)?", accepting
// only the first letter of yes/no. Declining clears the listing; an
// unrecognized answer beeps per the EndOfFile-adjacent UnboundKey
// taxonomy (spec.md §7).
func (e *Editor) listCompletions(candidates []string) {
	threshold := 100
	if v, ok := e.config.GetVariable("completion-query-items"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			threshold = n
		}
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	if threshold > 0 && len(sorted) >= threshold {
		e.screen.SetSuffix(&e.buf, []rune("\n"+displayCandidatesPrompt(len(sorted))))
		answer, err := e.term.readCodePoint()
		e.screen.SetSuffix(&e.buf, nil)
		if err != nil {
			return
		}
		if !isYesAnswer(answer) {
			if answer != 'n' && answer != 'N' {
				e.screen.Bell()
			}
			return
		}
	}

	e.screen.SetSuffix(&e.buf, []rune("\n"+strings.Join(sorted, "  ")))
}

// displayCandidatesPrompt renders the (name-looked-up, substitution-
// formatted) DISPLAY_CANDIDATES resource message (spec.md §9's
// resource-bundle design note). English is the only bundled locale;
// a real localization layer would look this name up by locale instead.
func displayCandidatesPrompt(n int) string {
	return "Display all " + strconv.Itoa(n) + " possibilities (y/n)?"
}

func isYesAnswer(r rune) bool {
	return r == 'y' || r == 'Y'
}

// opPasteFromClipboard pastes the external clipboard's text at the
// cursor. Swallows any failure (no clipboard, or a GetText error) with a
// bell, leaving the buffer unchanged, per spec.md §7's
// "Paste/clipboard failure" taxonomy entry.
func opPasteFromClipboard(e *Editor, _ []rune) {
	if e.clipboard == nil {
		e.screen.Bell()
		return
	}
	text, err := e.clipboard.GetText()
	if err != nil {
		e.screen.Bell()
		return
	}
	e.buf.insert([]rune(text))
	e.screen.render(&e.buf)
}
