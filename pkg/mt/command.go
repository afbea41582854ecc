package mt

import (
	"fmt"
	"strings"
)

// Type is the MT command type carried in the top three bits of CMD0.
type Type uint8

const (
	// TypePOLL polls the coprocessor for queued data (SPI only).
	TypePOLL Type = 0
	// TypeSREQ is a synchronous request; the coprocessor answers with an SRSP.
	TypeSREQ Type = 1
	// TypeAREQ is an asynchronous request or indication.
	TypeAREQ Type = 2
	// TypeSRSP is a synchronous response.
	TypeSRSP Type = 3
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypePOLL:
		return "POLL"
	case TypeSREQ:
		return "SREQ"
	case TypeAREQ:
		return "AREQ"
	case TypeSRSP:
		return "SRSP"
	default:
		return "UNKNOWN"
	}
}

// Subsystem is the MT subsystem carried in the low five bits of CMD0.
type Subsystem uint8

// MT subsystems.
const (
	SubsystemRPCError Subsystem = 0
	SubsystemSYS      Subsystem = 1
	SubsystemMAC      Subsystem = 2
	SubsystemNWK      Subsystem = 3
	SubsystemAF       Subsystem = 4
	SubsystemZDO      Subsystem = 5
	SubsystemSAPI     Subsystem = 6
	SubsystemUTIL     Subsystem = 7
	SubsystemDBG      Subsystem = 8
	SubsystemAPP      Subsystem = 9
)

var subsystemNames = map[Subsystem]string{
	SubsystemRPCError: "RPC",
	SubsystemSYS:      "SYS",
	SubsystemMAC:      "MAC",
	SubsystemNWK:      "NWK",
	SubsystemAF:       "AF",
	SubsystemZDO:      "ZDO",
	SubsystemSAPI:     "SAPI",
	SubsystemUTIL:     "UTIL",
	SubsystemDBG:      "DBG",
	SubsystemAPP:      "APP",
}

// String returns the subsystem name.
func (s Subsystem) String() string {
	if name, ok := subsystemNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SUBSYS(%d)", uint8(s))
}

// ParseSubsystem parses a subsystem name, case-insensitively.
func ParseSubsystem(name string) (Subsystem, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for s, n := range subsystemNames {
		if n == upper {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown MT subsystem %q", name)
}

// Command identifies one MT command: its type, subsystem and id.
type Command struct {
	Type      Type
	Subsystem Subsystem
	ID        uint8
}

// CMD0 returns the first command byte.
func (c Command) CMD0() byte {
	return byte(c.Type)<<5 | byte(c.Subsystem)&0x1F
}

// CMD1 returns the second command byte.
func (c Command) CMD1() byte {
	return c.ID
}

// ParseCommand decodes the two command bytes of a frame.
func ParseCommand(cmd0, cmd1 byte) Command {
	return Command{
		Type:      Type(cmd0 >> 5),
		Subsystem: Subsystem(cmd0 & 0x1F),
		ID:        cmd1,
	}
}

// Key identifies a command regardless of its type. A synchronous request and
// its response share a key.
type Key struct {
	Subsystem Subsystem
	ID        uint8
}

// Key returns the type-independent key of the command.
func (c Command) Key() Key {
	return Key{Subsystem: c.Subsystem, ID: c.ID}
}

// String formats the command as TYPE SUBSYS 0xID.
func (c Command) String() string {
	return fmt.Sprintf("%s %s 0x%02X", c.Type, c.Subsystem, c.ID)
}
