// Package mt implements the Z-Stack Monitor and Test (MT) serial protocol
// framing used to talk to a ZNP coprocessor.
//
// Every frame on the wire has the layout
//
//	SOF(0xFE) | LEN | CMD0 | CMD1 | DATA[LEN] | FCS
//
// where CMD0 packs the command type in its top three bits and the subsystem
// in the low five, CMD1 is the command id, and FCS is the XOR of every byte
// from LEN through the end of DATA.
//
// # Usage
//
//	fw := mt.NewFrameWriter(port)
//	err := fw.WriteFrame(&mt.Frame{Command: mt.Command{Type: mt.TypeSREQ, Subsystem: mt.SubsystemSYS, ID: 0x01}})
//
//	fr := mt.NewFrameReader(port)
//	frame, err := fr.ReadFrame()
package mt
