// Package encode turns operator-typed hex text into the little-endian byte
// layout a command expects.
//
// Scalar fields of width 1, 2 or 4 are read as one hexadecimal integer.
// Wider fields (addresses, keys) are read as a string of hex byte pairs,
// optionally separated by colons, most significant pair first. In both cases
// the bytes land in the buffer least significant first.
//
// A list field takes its element count from the value already encoded for
// the field before it. A count above the list's maximum rolls the encoder
// back to that count field and asks for it again.
//
// Malformed input is never rejected: missing or non-hex digits encode as
// zero. Existing operator scripts rely on this.
package encode
