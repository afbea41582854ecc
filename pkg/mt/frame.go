package mt

import (
	"errors"
	"fmt"
)

// Frame constants.
const (
	// SOF is the start-of-frame marker.
	SOF byte = 0xFE

	// MaxDataLen is the largest payload the coprocessor accepts in one frame.
	MaxDataLen = 250

	// HeaderSize is SOF + LEN + CMD0 + CMD1.
	HeaderSize = 4

	// Overhead is the number of non-payload bytes in a frame.
	Overhead = HeaderSize + 1
)

// Frame errors.
var (
	// ErrFrameTooLarge indicates the payload exceeds MaxDataLen.
	ErrFrameTooLarge = errors.New("frame payload too large")

	// ErrBadFCS indicates the frame check sequence did not match.
	ErrBadFCS = errors.New("bad frame check sequence")

	// ErrFrameTruncated indicates the frame ended early.
	ErrFrameTruncated = errors.New("frame truncated")
)

// Frame is one decoded MT frame.
type Frame struct {
	Command Command
	Data    []byte
}

// FCS computes the XOR checksum over LEN, CMD0, CMD1 and the payload.
func FCS(b []byte) byte {
	var fcs byte
	for _, v := range b {
		fcs ^= v
	}
	return fcs
}

// Marshal encodes the frame to its wire representation.
func (f *Frame) Marshal() ([]byte, error) {
	if len(f.Data) > MaxDataLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(f.Data), MaxDataLen)
	}
	buf := make([]byte, 0, Overhead+len(f.Data))
	buf = append(buf, SOF, byte(len(f.Data)), f.Command.CMD0(), f.Command.CMD1())
	buf = append(buf, f.Data...)
	buf = append(buf, FCS(buf[1:]))
	return buf, nil
}

// Unmarshal decodes a complete wire frame, SOF through FCS.
func Unmarshal(b []byte) (*Frame, error) {
	if len(b) < Overhead || b[0] != SOF {
		return nil, ErrFrameTruncated
	}
	n := int(b[1])
	if n > MaxDataLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, MaxDataLen)
	}
	if len(b) < Overhead+n {
		return nil, ErrFrameTruncated
	}
	if FCS(b[1:HeaderSize+n]) != b[HeaderSize+n] {
		return nil, ErrBadFCS
	}
	data := make([]byte, n)
	copy(data, b[HeaderSize:HeaderSize+n])
	return &Frame{Command: ParseCommand(b[2], b[3]), Data: data}, nil
}

// Status returns the first payload byte as a status code. Responses that
// carry no payload report success.
func (f *Frame) Status() Status {
	if len(f.Data) == 0 {
		return StatusSuccess
	}
	return Status(f.Data[0])
}
