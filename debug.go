package rline

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var dbg = struct {
	sync.Once
	w   io.WriteCloser
	err error
}{}

func initDebug() {
	path := os.Getenv("RLINE_DEBUG")
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		dbg.err = err
		return
	}
	dbg.w = f
}

func debugPrintf(format string, args ...interface{}) {
	dbg.Do(initDebug)
	if dbg.w == nil {
		return
	}
	fmt.Fprintf(dbg.w, format, args...)
}

// debugKey renders a decoded code point (real rune, control character,
// or one of the pseudo runes in keys.go) for RLINE_DEBUG traces.
func debugKey(r rune) string {
	if r < 32 && r != keyEscape {
		return "Control-" + string(rune(r+0x60))
	}
	switch r {
	case keyEscape:
		return "ESC"
	case keyBackspace:
		return "<backspace>"
	case keyUnknown:
		return "<unknown>"
	case keyUp:
		return "<up>"
	case keyDown:
		return "<down>"
	case keyLeft:
		return "<left>"
	case keyRight:
		return "<right>"
	case keyHome:
		return "<home>"
	case keyEnd:
		return "<end>"
	case keyPageUp:
		return "<page-up>"
	case keyPageDown:
		return "<page-down>"
	case keyDelete:
		return "<delete>"
	case keyInsert:
		return "<insert>"
	case keyPasteStart:
		return "<paste-start>"
	case keyPasteEnd:
		return "<paste-end>"
	default:
		return string(r)
	}
}
