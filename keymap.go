package rline

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// bindingKind tags what a KeyMap node resolves to: spec.md's "tagged union
// of {operation tag, macro string, user closure, sub-keymap}".
type bindingKind int

const (
	bindNone bindingKind = iota
	bindOperation
	bindMacro
	bindWidget
	bindSubMap
)

// Widget is a user-supplied closure bound directly to a key sequence,
// bypassing the Operation table (C9). It receives the active editor.
type Widget func(rl *Editor)

// binding is the value reached by looking up a code-point sequence in a
// KeyMap: exactly one of Operation, Macro, Fn is meaningful, selected by
// Kind; bindSubMap means the sequence is a strict prefix of bound
// sequences and lookup should continue with more input.
type binding struct {
	Kind  bindingKind
	Op    Operation
	Macro []rune
	Fn    Widget
	sub   *KeyMap
}

// KeyMap is a prefix tree from code-point sequences to bindings. Each
// level may also carry an "another-key" default reached when a prefix
// extension fails to match any child (spec.md §4.2).
type KeyMap struct {
	name     string
	children map[rune]*KeyMap
	value    binding
	hasValue bool
	other    *binding
}

// NewKeyMap creates an empty, named KeyMap (e.g. "emacs", "vi-insert",
// "vi-move").
func NewKeyMap(name string) *KeyMap {
	return &KeyMap{name: name, children: make(map[rune]*KeyMap)}
}

// Name returns the key-map's name, exposed to callers per spec.md §6
// ("key-map name accessor").
func (k *KeyMap) Name() string { return k.name }

func (k *KeyMap) child(r rune, create bool) *KeyMap {
	if c, ok := k.children[r]; ok {
		return c
	}
	if !create {
		return nil
	}
	c := &KeyMap{name: k.name, children: make(map[rune]*KeyMap)}
	k.children[r] = c
	return c
}

// bind installs a binding for the code-point sequence seq, creating
// intermediate sub-map nodes as needed.
func (k *KeyMap) bind(seq []rune, b binding) {
	node := k
	for _, r := range seq {
		node = node.child(r, true)
	}
	node.value = b
	node.hasValue = true
}

// BindOperation binds seq to an Operation tag.
func (k *KeyMap) BindOperation(seq []rune, op Operation) {
	k.bind(seq, binding{Kind: bindOperation, Op: op})
}

// BindMacro binds seq to a macro string: activating it re-injects the
// macro's code points as if typed.
func (k *KeyMap) BindMacro(seq []rune, macro []rune) {
	k.bind(seq, binding{Kind: bindMacro, Macro: macro})
}

// BindWidget binds seq directly to a user-supplied closure (the
// "triggered-action registration" of spec.md §6).
func (k *KeyMap) BindWidget(seq []rune, fn Widget) {
	k.bind(seq, binding{Kind: bindWidget, Fn: fn})
}

// SetOtherKey installs the default binding reached when a lookup under
// this node fails to extend further (spec.md §4.2 otherKey()).
func (k *KeyMap) SetOtherKey(b binding) {
	k.other = &b
}

// getBound looks up seq and returns its binding, or ok=false if
// unbound. It does not perform the backoff/prefix-walk that readBinding
// does; that policy lives in the dispatch loop (C6) per spec.md §4.2.
func (k *KeyMap) getBound(seq []rune) (binding, bool) {
	node := k
	for _, r := range seq {
		node = node.child(r, false)
		if node == nil {
			return binding{}, false
		}
	}
	if node.hasValue {
		return node.value, true
	}
	return binding{}, false
}

// hasChildren reports whether further input could extend seq into a
// longer bound sequence.
func (k *KeyMap) hasChildren(seq []rune) bool {
	node := k
	for _, r := range seq {
		node = node.child(r, false)
		if node == nil {
			return false
		}
	}
	return len(node.children) > 0
}

// otherKeyAt returns the "another-key" default installed at the sub-map
// reached by seq, if any.
func (k *KeyMap) otherKeyAt(seq []rune) (binding, bool) {
	node := k
	for _, r := range seq {
		node = node.child(r, false)
		if node == nil {
			return binding{}, false
		}
	}
	if node.other != nil {
		return *node.other, true
	}
	return binding{}, false
}

// --- Named key sequence parsing -------------------------------------------
//
// parseKeySequence translates the "Control-x", "Meta-x", and named-key
// syntax used by inputrc-style bind lines (spec.md §6) into a sequence of
// code points a KeyMap can be bound against. This mirrors the teacher's
// bind.go parseBinding, generalized from single runes with rune-encoded
// modifier bits to genuine multi-code-point ESC-prefixed sequences (ESC is
// how a real terminal spells Meta and how vi-insert spells its mode
// switch), since a nested KeyMap — unlike the teacher's flat
// map[rune]command — needs Meta-x represented as the two code points
// ESC, 'x' rather than a single tagged rune.
func parseKeySequence(spec string) ([]rune, error) {
	const (
		controlPrefix = "Control-"
		metaPrefix    = "Meta-"
	)

	var out []rune
	s := spec
	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, controlPrefix):
			s = s[len(controlPrefix):]
			r, rest, err := takeOneKey(s)
			if err != nil {
				return nil, err
			}
			out = append(out, ctrlOf(r))
			s = rest
		case strings.HasPrefix(s, metaPrefix):
			s = s[len(metaPrefix):]
			out = append(out, keyEscape)
		case s[0] == ' ' && len(out) > 0:
			// A space separates the keys of a multi-key spec.
			s = s[1:]
		default:
			r, rest, err := takeOneKey(s)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
			s = rest
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty key sequence: %q", spec)
	}
	return out, nil
}

func takeOneKey(s string) (rune, string, error) {
	if named, ok := namedKeys[strings.ToLower(s)]; ok {
		return named, "", nil
	}
	r, l := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && l <= 1 {
		return 0, "", fmt.Errorf("invalid key: %q", s)
	}
	return r, s[l:], nil
}

// ctrlOf translates a letter into its control code, mirroring ASCII
// control-character semantics (C-a => 0x01, etc.).
func ctrlOf(r rune) rune {
	u := unicode.ToUpper(r)
	if u >= 'A' && u <= '_' {
		return u - '@'
	}
	if r == '?' {
		return keyBackspace
	}
	return r & 0x1f
}
