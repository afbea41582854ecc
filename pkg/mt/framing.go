package mt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Torchwoods/znp-host-framework/pkg/log"
)

// FrameWriter writes MT frames to an underlying writer.
type FrameWriter struct {
	w  io.Writer
	mu sync.Mutex

	// Logging support (optional)
	logger    log.Logger
	sessionID string
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// SetLogger configures logging for this writer.
// Pass nil to disable logging.
func (fw *FrameWriter) SetLogger(logger log.Logger, sessionID string) {
	fw.logger = logger
	fw.sessionID = sessionID
}

// WriteFrame encodes and writes one frame.
// Thread-safe: can be called from multiple goroutines.
func (fw *FrameWriter) WriteFrame(f *Frame) error {
	raw, err := f.Marshal()
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.w.Write(raw); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if fw.logger != nil {
		fw.logger.Log(makeFrameEvent(fw.sessionID, raw, log.DirectionOut))
	}

	return nil
}

// FrameReader reads MT frames from an underlying reader. Bytes preceding a
// start-of-frame marker are discarded so the reader resynchronises after
// line noise or a partial frame.
type FrameReader struct {
	r *bufio.Reader

	// Logging support (optional)
	logger    log.Logger
	sessionID string

	skipped uint64
}

// NewFrameReader creates a new frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReaderSize(r, Overhead+MaxDataLen)}
}

// SetLogger configures logging for this reader.
// Pass nil to disable logging.
func (fr *FrameReader) SetLogger(logger log.Logger, sessionID string) {
	fr.logger = logger
	fr.sessionID = sessionID
}

// Skipped returns how many bytes were discarded while hunting for SOF.
func (fr *FrameReader) Skipped() uint64 {
	return fr.skipped
}

// ReadFrame blocks until one complete frame has been read.
// io.EOF is returned unchanged when the stream ends between frames.
func (fr *FrameReader) ReadFrame() (*Frame, error) {
	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == SOF {
			break
		}
		fr.skipped++
	}

	n, err := fr.r.ReadByte()
	if err != nil {
		return nil, truncated(err)
	}
	if int(n) > MaxDataLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, MaxDataLen)
	}

	raw := make([]byte, Overhead+int(n))
	raw[0] = SOF
	raw[1] = n
	if _, err := io.ReadFull(fr.r, raw[2:]); err != nil {
		return nil, truncated(err)
	}

	if fr.logger != nil {
		fr.logger.Log(makeFrameEvent(fr.sessionID, raw, log.DirectionIn))
	}

	return Unmarshal(raw)
}

func truncated(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
		return ErrFrameTruncated
	}
	return fmt.Errorf("failed to read frame: %w", err)
}

// makeFrameEvent creates a log event for a raw frame.
func makeFrameEvent(sessionID string, raw []byte, direction log.Direction) log.Event {
	data := make([]byte, len(raw))
	copy(data, raw)
	return log.Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: direction,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size: len(raw),
			Data: data,
		},
	}
}

// Framer combines frame reading and writing.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a new framer for bidirectional communication.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{
		FrameReader: NewFrameReader(rw),
		FrameWriter: NewFrameWriter(rw),
	}
}

// SetLogger configures logging for both reader and writer.
// Pass nil to disable logging.
func (f *Framer) SetLogger(logger log.Logger, sessionID string) {
	f.FrameReader.SetLogger(logger, sessionID)
	f.FrameWriter.SetLogger(logger, sessionID)
}
