// Package transport carries MT frames between the host and the ZNP
// coprocessor over a serial link.
//
// The link handles:
//   - Opening the serial port (8N1, DTR/RTS asserted)
//   - One outstanding synchronous request at a time, matched to its SRSP
//   - Fanning asynchronous frames out on the Events channel
//   - Backing off on read errors until the link is closed
//
// # Frame Format
//
//	┌─────┬─────┬──────┬──────┬──────────┬─────┐
//	│ SOF │ LEN │ CMD0 │ CMD1 │ DATA     │ FCS │
//	│ FE  │ 1B  │ 1B   │ 1B   │ LEN B    │ 1B  │
//	└─────┴─────┴──────┴──────┴──────────┴─────┘
//
// CMD0 carries the command type in its top three bits and the subsystem in
// the low five. FCS is the XOR of LEN through the last data byte.
//
// # Sessions
//
// Every Link gets a random session ID so captures from successive runs
// against the same port can be told apart.
package transport
