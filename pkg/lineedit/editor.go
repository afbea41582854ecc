// Package lineedit implements the raw-mode command line: in-place editing,
// cursor movement, tab completion against the command registry and a
// browsable history of submitted commands.
package lineedit

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Torchwoods/znp-host-framework/pkg/match"
	"github.com/Torchwoods/znp-host-framework/pkg/registry"
)

// State is the editor state.
type State uint8

const (
	// Collecting accepts edits to the current line.
	Collecting State = iota
	// Completing follows a Tab press; a second Tab shows help.
	Completing
	// NavigatingHistory shows a recalled history entry.
	NavigatingHistory
	// Submitted means a command was accepted.
	Submitted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Collecting:
		return "Collecting"
	case Completing:
		return "Completing"
	case NavigatingHistory:
		return "NavigatingHistory"
	case Submitted:
		return "Submitted"
	default:
		return "Unknown"
	}
}

// DefaultHeader is printed above every fresh input line.
const DefaultHeader = "Enter CMD"

// Console is the raw terminal the editor drives.
type Console interface {
	io.Writer

	// ReadKey blocks until one byte of input is available.
	ReadKey() (byte, error)

	// ClearLine erases the current output line and returns to column 0.
	ClearLine() error
}

// Options tune presentation. The zero value is usable.
type Options struct {
	// Header is printed on its own line before input. Defaults to DefaultHeader.
	Header string

	// Prompt precedes the edited text on the input line.
	Prompt string

	// Help styles description and candidate listings.
	Help func(string) string

	// Width returns the terminal width used to lay out candidate lists.
	Width func() int
}

// Editor reads one command per ReadCommand call.
type Editor struct {
	con  Console
	src  match.Source
	hist *History
	opts Options

	line    []byte
	cursor  int
	state   State
	lastTab bool

	// histPos counts steps back into history; 0 means editing the live line.
	histPos int
	saved   []byte
}

// NewEditor creates an editor completing against src and recording accepted
// commands in hist.
func NewEditor(con Console, src match.Source, hist *History, opts Options) *Editor {
	if opts.Header == "" {
		opts.Header = DefaultHeader
	}
	if opts.Help == nil {
		opts.Help = func(s string) string { return s }
	}
	if opts.Width == nil {
		opts.Width = func() int { return 80 }
	}
	if hist == nil {
		hist = NewHistory(DefaultHistorySize)
	}
	return &Editor{con: con, src: src, hist: hist, opts: opts}
}

// State returns the current editor state.
func (e *Editor) State() State {
	return e.state
}

// Line returns the text currently being edited.
func (e *Editor) Line() string {
	return string(e.line)
}

// Cursor returns the cursor offset within the line.
func (e *Editor) Cursor() int {
	return e.cursor
}

// History returns the history buffer.
func (e *Editor) History() *History {
	return e.hist
}

// ReadCommand collects keys until the operator submits a line naming exactly
// one command. Lines that resolve to nothing or to several commands are
// discarded and collection restarts.
//
// Ctrl-C returns readline.ErrInterrupt; Ctrl-D on an empty line returns io.EOF.
func (e *Editor) ReadCommand() (*registry.Command, error) {
	e.resetLine()
	if err := e.header(); err != nil {
		return nil, err
	}

	for {
		key, err := e.con.ReadKey()
		if err != nil {
			return nil, err
		}
		cmd, err := e.handleKey(key)
		if err != nil || cmd != nil {
			return cmd, err
		}
	}
}

func (e *Editor) resetLine() {
	e.line = e.line[:0]
	e.cursor = 0
	e.state = Collecting
	e.lastTab = false
	e.histPos = 0
	e.saved = nil
}

func (e *Editor) handleKey(key byte) (*registry.Command, error) {
	wasTab := e.lastTab
	e.lastTab = false

	switch key {
	case readline.CharTab:
		return nil, e.complete(wasTab)

	case readline.CharEnter, readline.CharCtrlJ:
		return e.submit()

	case readline.CharInterrupt:
		_, _ = io.WriteString(e.con, "\n")
		return nil, readline.ErrInterrupt

	case readline.CharDelete:
		if len(e.line) == 0 {
			_, _ = io.WriteString(e.con, "\n")
			return nil, io.EOF
		}
		if e.cursor < len(e.line) {
			e.deleteAt(e.cursor)
		}

	case readline.CharBackspace, readline.CharCtrlH:
		if e.cursor > 0 {
			e.deleteAt(e.cursor - 1)
			e.cursor--
		}

	case readline.CharCtrlU:
		e.line = e.line[:0]
		e.cursor = 0
		e.state = Collecting

	case readline.CharLineStart:
		e.cursor = 0
	case readline.CharLineEnd:
		e.cursor = len(e.line)
	case readline.CharBackward:
		e.left()
	case readline.CharForward:
		e.right()
	case readline.CharPrev:
		e.historyUp()
	case readline.CharNext:
		e.historyDown()

	case readline.CharEsc:
		if err := e.escape(); err != nil {
			return nil, err
		}

	default:
		if key < 0x20 || key > 0x7E {
			return nil, nil
		}
		e.insert(key)
	}

	return nil, e.redraw()
}

// escape decodes ESC [ x and ESC O x sequences.
func (e *Editor) escape() error {
	k, err := e.con.ReadKey()
	if err != nil {
		return err
	}
	if k != readline.CharEscapeEx && k != 'O' {
		return nil
	}
	k, err = e.con.ReadKey()
	if err != nil {
		return err
	}
	switch k {
	case 'A':
		e.historyUp()
	case 'B':
		e.historyDown()
	case 'C':
		e.right()
	case 'D':
		e.left()
	case 'H':
		e.cursor = 0
	case 'F':
		e.cursor = len(e.line)
	case '3':
		// ESC [ 3 ~ is forward delete.
		t, err := e.con.ReadKey()
		if err != nil {
			return err
		}
		if t == '~' && e.cursor < len(e.line) {
			e.deleteAt(e.cursor)
		}
	}
	return nil
}

func (e *Editor) insert(c byte) {
	e.line = append(e.line, 0)
	copy(e.line[e.cursor+1:], e.line[e.cursor:])
	e.line[e.cursor] = c
	e.cursor++
	e.state = Collecting
}

func (e *Editor) deleteAt(i int) {
	e.line = append(e.line[:i], e.line[i+1:]...)
	e.state = Collecting
}

func (e *Editor) left() {
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *Editor) right() {
	if e.cursor < len(e.line) {
		e.cursor++
	}
}

func (e *Editor) historyUp() {
	if e.histPos >= e.hist.Len() {
		return
	}
	if e.histPos == 0 {
		e.saved = append([]byte(nil), e.line...)
	}
	e.histPos++
	entry, _ := e.hist.Back(e.histPos - 1)
	e.setLine(entry)
	e.state = NavigatingHistory
}

func (e *Editor) historyDown() {
	if e.histPos == 0 {
		return
	}
	e.histPos--
	if e.histPos == 0 {
		e.setLine(string(e.saved))
		e.saved = nil
		e.state = Collecting
		return
	}
	entry, _ := e.hist.Back(e.histPos - 1)
	e.setLine(entry)
}

func (e *Editor) setLine(s string) {
	e.line = append(e.line[:0], s...)
	e.cursor = len(e.line)
}

func (e *Editor) complete(second bool) error {
	res := match.Resolve(e.src, string(e.line))
	e.state = Completing

	if !second {
		switch res.Kind {
		case match.Unique, match.Ambiguous:
			e.setLine(res.Prefix)
		}
		e.lastTab = true
		return e.redraw()
	}

	switch res.Kind {
	case match.Unique:
		text := "\n\nDescription:\n" + res.Command.Description + "\n"
		if _, err := io.WriteString(e.con, e.opts.Help(text)); err != nil {
			return err
		}
	case match.Ambiguous:
		names := make([]string, len(res.Matches))
		for i, c := range res.Matches {
			names[i] = c.Name
		}
		text := "\n\n" + columns(names, e.opts.Width()) + "\n"
		if _, err := io.WriteString(e.con, e.opts.Help(text)); err != nil {
			return err
		}
	default:
		return e.redraw()
	}
	if err := e.header(); err != nil {
		return err
	}
	return e.redraw()
}

func (e *Editor) submit() (*registry.Command, error) {
	line := string(e.line)
	res := match.Resolve(e.src, line)
	if _, err := io.WriteString(e.con, "\n"); err != nil {
		return nil, err
	}

	if res.Kind == match.Unique && res.Command.Name == line {
		e.hist.Add(line)
		e.state = Submitted
		return res.Command, nil
	}

	e.resetLine()
	return nil, e.header()
}

func (e *Editor) header() error {
	if _, err := io.WriteString(e.con, e.opts.Header+"\n"); err != nil {
		return err
	}
	return e.redraw()
}

// redraw repaints the prompt and line and parks the cursor.
func (e *Editor) redraw() error {
	if err := e.con.ClearLine(); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(e.opts.Prompt)
	b.Write(e.line)
	if back := len(e.line) - e.cursor; back > 0 {
		fmt.Fprintf(&b, "\x1b[%dD", back)
	}
	_, err := io.WriteString(e.con, b.String())
	return err
}

// columns lays names out left to right in as many columns as fit width.
func columns(names []string, width int) string {
	longest := 0
	for _, n := range names {
		if len(n) > longest {
			longest = len(n)
		}
	}
	colWidth := longest + 2
	cols := 1
	if width > colWidth {
		cols = width / colWidth
	}

	var b strings.Builder
	for i, n := range names {
		last := i == len(names)-1 || (i+1)%cols == 0
		if last {
			b.WriteString(n)
			if i != len(names)-1 {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteString(n)
		b.WriteString(strings.Repeat(" ", colWidth-len(n)))
	}
	return b.String()
}
