// Package console drives the operator terminal: raw-mode key input, echoed
// field input and colour styles for the command line output.
package console

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Console is the operator terminal. Output is safe for concurrent use;
// input is read by one goroutine at a time.
type Console struct {
	in  *bufio.Reader
	out io.Writer
	fd  int

	mu    sync.Mutex
	raw   bool
	saved *term.State

	styles Styles
}

// New creates a console over the process terminal.
func New() *Console {
	return NewWithIO(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
}

// NewWithIO creates a console over arbitrary streams. fd is the input file
// descriptor used for raw mode; pass -1 when input is not a terminal.
func NewWithIO(in io.Reader, out io.Writer, fd int) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		fd:     fd,
		styles: DefaultStyles(),
	}
}

// IsTerminal reports whether input comes from a terminal.
func (c *Console) IsTerminal() bool {
	return c.fd >= 0 && term.IsTerminal(c.fd)
}

// MakeRaw switches the terminal to raw mode. It is a no-op when input is not
// a terminal.
func (c *Console) MakeRaw() error {
	if !c.IsTerminal() {
		return nil
	}
	state, err := term.MakeRaw(c.fd)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.saved = state
	c.raw = true
	c.mu.Unlock()
	return nil
}

// Restore returns the terminal to the mode it had before MakeRaw.
func (c *Console) Restore() error {
	c.mu.Lock()
	state := c.saved
	c.saved = nil
	c.raw = false
	c.mu.Unlock()

	if state == nil {
		return nil
	}
	return term.Restore(c.fd, state)
}

// Raw reports whether raw mode is active.
func (c *Console) Raw() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw
}

// Write writes p to the terminal, translating \n to \r\n while raw.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.raw {
		return c.out.Write(p)
	}
	if _, err := c.out.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Stdout returns a writer for regular output.
func (c *Console) Stdout() io.Writer {
	return c
}

// Stderr returns a writer for diagnostics that follows the same line
// translation as Stdout.
func (c *Console) Stderr() io.Writer {
	return &lineWriter{c: c, w: os.Stderr}
}

// ReadKey blocks until one byte of input is available.
func (c *Console) ReadKey() (byte, error) {
	return c.in.ReadByte()
}

// ClearLine erases the current output line and returns to column 0.
func (c *Console) ClearLine() error {
	_, err := io.WriteString(c, "\r\x1b[K")
	return err
}

// Width returns the terminal width in columns.
func (c *Console) Width() int {
	if w := readline.GetScreenWidth(); w > 0 {
		return w
	}
	return 80
}

// ReadLine reads one line of operator input. In raw mode it echoes printable
// characters, handles backspace and discards cursor keys; otherwise the terminal's own line
// discipline applies.
//
// Ctrl-C returns readline.ErrInterrupt; Ctrl-D on an empty line returns io.EOF.
func (c *Console) ReadLine() (string, error) {
	if !c.Raw() {
		return c.readCooked()
	}

	var line []byte
	for {
		key, err := c.ReadKey()
		if err != nil {
			return "", err
		}
		switch key {
		case readline.CharEnter, readline.CharCtrlJ:
			if _, err := io.WriteString(c, "\n"); err != nil {
				return "", err
			}
			return string(line), nil
		case readline.CharInterrupt:
			_, _ = io.WriteString(c, "\n")
			return "", readline.ErrInterrupt
		case readline.CharDelete:
			if len(line) == 0 {
				_, _ = io.WriteString(c, "\n")
				return "", io.EOF
			}
		case readline.CharBackspace, readline.CharCtrlH:
			if len(line) > 0 {
				line = line[:len(line)-1]
				if _, err := io.WriteString(c, "\b \b"); err != nil {
					return "", err
				}
			}
		case readline.CharEsc:
			if err := c.skipEscape(); err != nil {
				return "", err
			}
		default:
			if key >= 0x20 && key < 0x7F {
				line = append(line, key)
				if _, err := c.Write([]byte{key}); err != nil {
					return "", err
				}
			}
		}
	}
}

// skipEscape consumes the rest of an escape sequence after ESC: a CSI
// sequence up to its final byte, an SS3 sequence, or a single Alt key.
func (c *Console) skipEscape() error {
	k, err := c.ReadKey()
	if err != nil {
		return err
	}
	switch k {
	case readline.CharEscapeEx:
		for {
			k, err = c.ReadKey()
			if err != nil {
				return err
			}
			if k >= 0x40 && k <= 0x7E {
				return nil
			}
		}
	case 'O':
		_, err = c.ReadKey()
		return err
	}
	return nil
}

func (c *Console) readCooked() (string, error) {
	s, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	s = string(bytes.TrimRight([]byte(s), "\r\n"))
	return s, nil
}

// lineWriter applies the console's raw-mode translation to another stream.
type lineWriter struct {
	c *Console
	w io.Writer
}

func (l *lineWriter) Write(p []byte) (int, error) {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()

	if !l.c.raw {
		return l.w.Write(p)
	}
	if _, err := l.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
