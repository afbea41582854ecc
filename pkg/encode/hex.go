package encode

// parseHexInt mimics scanf("%x"): leading blanks are skipped, an optional
// 0x prefix is accepted and digits are consumed until the first non-hex
// character. No digits yields zero. Overflow wraps.
func parseHexInt(s string) uint64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') && i+2 < len(s) && isHex(s[i+2]) {
		i += 2
	}
	var v uint64
	for ; i < len(s) && isHex(s[i]); i++ {
		v = v<<4 | uint64(hexVal(s[i]))
	}
	return v
}

// parsePair mimics scanf("%2hhx") on s: leading blanks are skipped, then up
// to two hex digits are read. No digits yields zero.
func parsePair(s string) byte {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	var v byte
	for n := 0; n < 2 && i < len(s) && isHex(s[i]); n, i = n+1, i+1 {
		v = v<<4 | hexVal(s[i])
	}
	return v
}

// putPairs writes size bytes at dst from a pair string, first pair into the
// highest address. A pair followed by ':' consumes the separator. Once the
// text runs out the remaining bytes are zero.
func putPairs(dst []byte, text string, size int) {
	pos := 0
	for idx := 0; idx < size; idx++ {
		at := size - 1 - idx
		if pos >= len(text) {
			dst[at] = 0
			continue
		}
		dst[at] = parsePair(text[pos:])
		if pos+2 < len(text) && text[pos+2] == ':' {
			pos += 3
		} else {
			pos += 2
		}
	}
}

// putInt writes the low size bytes of v little-endian.
func putInt(dst []byte, v uint64, size int) {
	for i := 0; i < size; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
