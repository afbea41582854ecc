package encode

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Torchwoods/znp-host-framework/pkg/registry"
)

// scriptPrompter answers prompts from a fixed list of lines.
type scriptPrompter struct {
	bytes.Buffer
	lines []string
	asked int
}

func (p *scriptPrompter) ReadLine() (string, error) {
	if p.asked >= len(p.lines) {
		return "", io.EOF
	}
	line := p.lines[p.asked]
	p.asked++
	return line, nil
}

func answers(lines ...string) *scriptPrompter {
	return &scriptPrompter{lines: lines}
}

func command(fields ...registry.Field) *registry.Command {
	return &registry.Command{Name: "TEST_CMD", Fields: fields}
}

func TestEncodeScalarWidths(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		input string
		want  []byte
	}{
		{"byte", 1, "7f", []byte{0x7F}},
		{"byte with prefix", 1, "0x2A", []byte{0x2A}},
		{"byte overflow masked", 1, "1234", []byte{0x34}},
		{"word", 2, "1234", []byte{0x34, 0x12}},
		{"word short", 2, "5", []byte{0x05, 0x00}},
		{"word upper case", 2, "ABCD", []byte{0xCD, 0xAB}},
		{"dword", 4, "00000800", []byte{0x00, 0x08, 0x00, 0x00}},
		{"dword overflow masked", 4, "1122334455", []byte{0x55, 0x44, 0x33, 0x22}},
		{"malformed zero", 2, "zz", []byte{0x00, 0x00}},
		{"empty zero", 1, "", []byte{0x00}},
		{"leading blanks", 2, "  beef", []byte{0xEF, 0xBE}},
		{"stops at garbage", 2, "12g4", []byte{0x12, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Encode(answers(tt.input), command(registry.Field{Name: "V", Size: tt.size}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.Bytes())
		})
	}
}

func TestEncodeScalarRoundTrip(t *testing.T) {
	for _, size := range []int{1, 2, 4} {
		for _, v := range []uint64{0, 1, 0x7F, 0xFF, 0x1234, 0xFFFF, 0xDEADBEEF} {
			mask := uint64(1)<<(8*size) - 1
			text := strings.ToUpper(hexString(v & mask))
			buf, err := Encode(answers(text), command(registry.Field{Name: "V", Size: size}))
			require.NoError(t, err)

			var got uint64
			for i, b := range buf.Bytes() {
				got |= uint64(b) << (8 * i)
			}
			assert.Equal(t, v&mask, got, "size %d value %x", size, v)
		}
	}
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var out []byte
	for v > 0 {
		out = append([]byte{digits[v&0xF]}, out...)
		v >>= 4
	}
	return string(out)
}

func TestEncodeRawPairs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{
			name:  "colon separated",
			input: "00:12:4B:00:01:02:03:04",
			want:  []byte{0x04, 0x03, 0x02, 0x01, 0x00, 0x4B, 0x12, 0x00},
		},
		{
			name:  "contiguous",
			input: "00124B0001020304",
			want:  []byte{0x04, 0x03, 0x02, 0x01, 0x00, 0x4B, 0x12, 0x00},
		},
		{
			name:  "short input zero pads low bytes",
			input: "AA:BB",
			want:  []byte{0, 0, 0, 0, 0, 0, 0xBB, 0xAA},
		},
		{
			name:  "empty",
			input: "",
			want:  make([]byte, 8),
		},
		{
			name:  "malformed pair",
			input: "zz:11",
			want:  []byte{0, 0, 0, 0, 0, 0, 0x11, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Encode(answers(tt.input), command(registry.Field{Name: "ExtAddr", Size: 8}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.Bytes())
		})
	}
}

func TestEncodeList(t *testing.T) {
	cmd := command(
		registry.Field{Name: "Num", Size: 1},
		registry.Field{Name: "Clusters", Size: 2, List: 16},
		registry.Field{Name: "Tail", Size: 1},
	)

	p := answers("2", "0006", "0008", "ff")
	buf, err := Encode(p, cmd)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x02, 0x06, 0x00, 0x08, 0x00, 0xFF}, buf.Bytes())
	assert.Equal(t, 1+2*16+1, buf.Cap())
	out := p.String()
	assert.Contains(t, out, "Command: TEST_CMD\n")
	assert.Contains(t, out, "Enter Num: (1B)\n")
	assert.Contains(t, out, "Enter Clusters[0]:\n")
	assert.Contains(t, out, "Enter Clusters[1]:\n")
	assert.NotContains(t, out, "Enter Clusters[2]:")
}

func TestEncodeListCountAtMaximum(t *testing.T) {
	cmd := command(
		registry.Field{Name: "Num", Size: 1},
		registry.Field{Name: "Items", Size: 1, List: 3},
	)

	buf, err := Encode(answers("3", "a", "b", "c"), cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x0A, 0x0B, 0x0C}, buf.Bytes())
	assert.Equal(t, buf.Cap(), buf.Len())
}

func TestEncodeEmptyList(t *testing.T) {
	cmd := command(
		registry.Field{Name: "Num", Size: 1},
		registry.Field{Name: "Items", Size: 2, List: 4},
	)

	p := answers("0")
	buf, err := Encode(p, cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, buf.Bytes())
	assert.Equal(t, 1, p.asked)
}

func TestEncodeListCountTooLargeReprompts(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	cmd, ok := reg.Lookup("AF_REGISTER")
	require.True(t, ok)

	p := answers(
		"1",    // EndPoint
		"0104", // AppProfId
		"0100", // AppDeviceId
		"1",    // AppDevVer
		"0",    // LatencyReq
		"20",   // AppNumInClusters: 0x20 exceeds 16
		"1",    // AppNumInClusters again
		"0006", // AppInClusterList[0]
		"0",    // AppNumOutClusters
	)
	buf, err := Encode(p, cmd)
	require.NoError(t, err)

	out := p.String()
	assert.Contains(t, out, "Please enter a length no greater than 0x10")
	assert.Equal(t, 2, strings.Count(out, "Enter AppNumInClusters: (1B)"))
	assert.Equal(t, 1, strings.Count(out, "Enter AppInClusterList[0]:"))
	assert.Equal(t, len(p.lines), p.asked)

	want := []byte{
		0x01,
		0x04, 0x01,
		0x00, 0x01,
		0x01,
		0x00,
		0x01,
		0x06, 0x00,
		0x00,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestEncodeWideCount(t *testing.T) {
	cmd := command(
		registry.Field{Name: "Len", Size: 2},
		registry.Field{Name: "Data", Size: 1, List: 0x100},
	)

	// 0x0102 exceeds the maximum of 0x100, so Len is asked again.
	over := answers("0102")
	_, err := Encode(over, cmd)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, strings.Count(over.String(), "Enter Len: (2B)"))

	p := answers("0003", "1", "2", "3")
	buf, err := Encode(p, cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x00, 0x01, 0x02, 0x03}, buf.Bytes())
}

func TestEncodeNoFields(t *testing.T) {
	p := answers()
	buf, err := Encode(p, command())
	require.NoError(t, err)
	assert.Zero(t, buf.Len())
	assert.Empty(t, p.String())
}

func TestEncodeNilCommand(t *testing.T) {
	_, err := Encode(answers(), nil)
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestEncodePrompterError(t *testing.T) {
	cmd := command(registry.Field{Name: "A", Size: 1}, registry.Field{Name: "B", Size: 1})
	_, err := Encode(answers("1"), cmd)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestEncodeParamStyle(t *testing.T) {
	p := answers("1")
	enc := NewEncoder(p, Options{Param: func(s string) string { return "<" + s + ">" }})
	_, err := enc.Encode(command(registry.Field{Name: "A", Size: 1}))
	require.NoError(t, err)
	assert.Equal(t, "<Command: TEST_CMD>\n<Enter A: (1B)>\n", p.String())
}

func TestEncodeNeverWritesPastCapacity(t *testing.T) {
	cmd := command(
		registry.Field{Name: "Num", Size: 1},
		registry.Field{Name: "Items", Size: 4, List: 2},
	)
	for _, count := range []string{"0", "1", "2"} {
		lines := []string{count, "11111111", "22222222"}
		buf, err := Encode(answers(lines...), cmd)
		require.NoError(t, err)
		assert.LessOrEqual(t, buf.Len(), buf.Cap())
	}
}
