package znp

import "encoding/binary"

// NV item identifiers.
const (
	NVStartupOption = 0x0003
	NVPanID         = 0x0083
	NVChannelList   = 0x0084
	NVLogicalType   = 0x0087
	NVZdoDirectCB   = 0x008F
)

// Startup option flags for NVStartupOption.
const (
	StartupClearConfig = 0x01
	StartupClearState  = 0x02

	// StartupKeep restores the saved network on the next reset.
	StartupKeep = 0x00
)

// PanIDAny lets a coordinator pick a PAN and a router or end device join any.
const PanIDAny = 0xFFFF

// Channel limits for the 2.4 GHz band.
const (
	MinChannel = 11
	MaxChannel = 26
)

// ChannelMask returns the channel-list bitmap selecting one channel.
func ChannelMask(channel int) uint32 {
	return 1 << uint(channel)
}

// NVWrite builds the SYS_OSAL_NV_WRITE payload writing value to item id at
// offset 0.
func NVWrite(id uint16, value []byte) []byte {
	p := make([]byte, 4+len(value))
	binary.LittleEndian.PutUint16(p, id)
	p[2] = 0
	p[3] = byte(len(value))
	copy(p[4:], value)
	return p
}

// Uint16LE encodes v little-endian.
func Uint16LE(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

// Uint32LE encodes v little-endian.
func Uint32LE(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}
