package encode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Torchwoods/znp-host-framework/pkg/registry"
)

// ErrNoCommand is returned when Encode is called without a command.
var ErrNoCommand = errors.New("encode: nil command")

// Prompter asks the operator for one field value.
type Prompter interface {
	io.Writer

	// ReadLine reads one line of operator input without the terminator.
	ReadLine() (string, error)
}

// Buffer is an encoded command payload.
type Buffer struct {
	data []byte
	n    int
}

// NewBuffer allocates a buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Bytes returns the encoded prefix of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n]
}

// Len returns the number of encoded bytes.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Options tune encoder output. The zero value is usable.
type Options struct {
	// Param styles the command header and field prompts.
	Param func(string) string
}

// Encoder prompts for every field of a command and packs the answers.
type Encoder struct {
	in   Prompter
	opts Options
}

// NewEncoder creates an encoder that prompts through in.
func NewEncoder(in Prompter, opts Options) *Encoder {
	if opts.Param == nil {
		opts.Param = func(s string) string { return s }
	}
	return &Encoder{in: in, opts: opts}
}

// Encode prompts for the fields of cmd in declaration order and returns the
// packed payload. Errors come only from the prompter.
func (e *Encoder) Encode(cmd *registry.Command) (*Buffer, error) {
	if cmd == nil {
		return nil, ErrNoCommand
	}
	buf := NewBuffer(cmd.Capacity())
	if len(cmd.Fields) == 0 {
		return buf, nil
	}
	e.line("Command: " + cmd.Name)

	// starts[i] is the buffer offset where field i begins.
	starts := make([]int, len(cmd.Fields))
	for i := 0; i < len(cmd.Fields); i++ {
		f := cmd.Fields[i]
		starts[i] = buf.n

		if !f.IsList() {
			text, err := e.ask(fmt.Sprintf("Enter %s: (%dB)", f.Name, f.Size))
			if err != nil {
				return nil, err
			}
			putScalar(buf.data[buf.n:buf.n+f.Size], text, f.Size)
			buf.n += f.Size
			continue
		}

		// Validation guarantees a scalar predecessor.
		prev := cmd.Fields[i-1]
		count := listCount(buf.data[starts[i-1]:starts[i-1]+prev.Size], prev.Size)
		if count > f.List {
			fmt.Fprintf(e.in, "\nPlease enter a length no greater than 0x%02X\n\n", f.List)
			buf.n = starts[i-1]
			i -= 2
			continue
		}
		for idx := 0; idx < count; idx++ {
			text, err := e.ask(fmt.Sprintf("Enter %s[%d]:", f.Name, idx))
			if err != nil {
				return nil, err
			}
			putScalar(buf.data[buf.n:buf.n+f.Size], text, f.Size)
			buf.n += f.Size
		}
	}
	return buf, nil
}

func (e *Encoder) ask(label string) (string, error) {
	e.line(label)
	return e.in.ReadLine()
}

func (e *Encoder) line(s string) {
	_, _ = io.WriteString(e.in, e.opts.Param(s)+"\n")
}

// putScalar encodes text into dst according to the field width.
func putScalar(dst []byte, text string, size int) {
	switch size {
	case 1, 2, 4:
		putInt(dst, parseHexInt(text), size)
	default:
		putPairs(dst, text, size)
	}
}

// listCount reads an element count from an encoded field: the byte itself
// for width 1, otherwise its first two bytes little-endian.
func listCount(field []byte, size int) int {
	if size == 1 {
		return int(field[0])
	}
	return int(field[0]) | int(field[1])<<8
}

// Encode is a convenience wrapper around NewEncoder(in, Options{}).Encode.
func Encode(in Prompter, cmd *registry.Command) (*Buffer, error) {
	return NewEncoder(in, Options{}).Encode(cmd)
}
