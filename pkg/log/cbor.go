package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// A capture file is a plain sequence of CBOR items, one Event each, with no
// framing between them. A torn write at the tail only loses the last event.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: capture encoder mode: %v", err))
	}

	// MT payloads are at most 250 bytes; anything far larger is a corrupt item.
	decMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyQuiet,
		IndefLength:      cbor.IndefLengthAllowed,
		MaxArrayElements: 4096,
		MaxMapPairs:      64,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: capture decoder mode: %v", err))
	}
}

// EncodeEvent encodes one capture event.
func EncodeEvent(event Event) ([]byte, error) {
	b, err := encMode.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode capture event: %w", err)
	}
	return b, nil
}

// DecodeEvent decodes one capture event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := decMode.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("decode capture event: %w", err)
	}
	return event, nil
}

// NewEncoder returns a streaming capture encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a streaming capture decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
