package rline

import (
	"bytes"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
)

// integrationInputRE and integrationInputReplacements translate the teacher's <Control-x>/
// <Meta-x> notation (prompt_test.go) into the literal bytes an Editor
// reads from its input, so script files stay readable.
var integrationInputRE = regexp.MustCompile(`<[^>]*>`)

var integrationInputReplacements = map[string]string{
	"<Control-a>": "\x01",
	"<Control-b>": "\x02",
	"<Control-c>": "\x03",
	"<Control-d>": "\x04",
	"<Control-e>": "\x05",
	"<Control-f>": "\x06",
	"<Control-g>": "\x07",
	"<Control-k>": "\x0b",
	"<Control-l>": "\x0c",
	"<Control-n>": "\x0e",
	"<Control-p>": "\x10",
	"<Control-r>": "\x12",
	"<Control-t>": "\x14",
	"<Control-u>": "\x15",
	"<Control-w>": "\x17",
	"<Control-y>": "\x19",
	"<Escape>":    "\x1b",
	"<Backspace>": "\x7f",
	"<Enter>":     "\r",
	"<Tab>":       "\t",
}

func integrationReplace(src string) string {
	if r, ok := integrationInputReplacements[src]; ok {
		return r
	}
	return src
}

// TestEditorScripts drives complete ReadLinePrompt calls from
// data-driven script files, grounded on the teacher's prompt_test.go
// TestPrompt harness (input-notation regex/table, datadriven.Walk) and
// adapted to the Editor's synchronous one-call-per-line API: each
// "run" command is a full ReadLinePrompt, not a partial
// processInputLocked chunk, since the Editor holds no exported hook
// for resuming a readLine call mid-line.
func TestEditorScripts(t *testing.T) {
	animals := []string{"bat", "bear", "bison", "boar", "bull"}
	completer := func(text []rune, wordStart, wordEnd int) []string {
		word := strings.ToLower(string(text[wordStart:wordEnd]))
		i := sort.Search(len(animals), func(i int) bool { return animals[i] >= word })
		var out []string
		for ; i < len(animals) && strings.HasPrefix(animals[i], word); i++ {
			out = append(out, animals[i])
		}
		return out
	}

	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		history := NewHistory(-1)
		mode := EmacsMode

		datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
			switch td.Cmd {
			case "reset":
				history = NewHistory(-1)
				mode = EmacsMode
				for _, arg := range td.CmdArgs {
					if arg.Key == "vi" {
						mode = ViMode
					}
				}
				return ""

			case "run":
				input := integrationInputRE.ReplaceAllStringFunc(td.Input, integrationReplace)
				e := newEditorForInput(input, history, mode, completer)
				defer e.Close()
				line, err := e.ReadLinePrompt("> ")
				if err != nil {
					return "error: " + err.Error() + "\n"
				}
				return line + "\n"
			}
			return ""
		})
	})
}

func newEditorForInput(input string, h *History, mode EditingMode, c Completer) *Editor {
	var out bytes.Buffer
	return New(
		WithInput(strings.NewReader(input)),
		WithOutput(&out),
		WithSize(80, 24),
		WithHistory(h),
		WithEditingMode(mode),
		WithCompleter(c),
	)
}
