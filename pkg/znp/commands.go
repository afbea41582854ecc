package znp

import "github.com/Torchwoods/znp-host-framework/pkg/mt"

// Commands the host issues on its own behalf.
var (
	CmdResetReq       = mt.Command{Type: mt.TypeAREQ, Subsystem: mt.SubsystemSYS, ID: 0x00}
	CmdGetExtAddr     = mt.Command{Type: mt.TypeSREQ, Subsystem: mt.SubsystemSYS, ID: 0x04}
	CmdNVWrite        = mt.Command{Type: mt.TypeSREQ, Subsystem: mt.SubsystemSYS, ID: 0x09}
	CmdAFRegister     = mt.Command{Type: mt.TypeSREQ, Subsystem: mt.SubsystemAF, ID: 0x00}
	CmdStartupFromApp = mt.Command{Type: mt.TypeSREQ, Subsystem: mt.SubsystemZDO, ID: 0x40}
)

// Indications the host reacts to.
var (
	IndResetInd    = mt.Key{Subsystem: mt.SubsystemSYS, ID: 0x80}
	IndStateChange = mt.Key{Subsystem: mt.SubsystemZDO, ID: 0xC0}
)

// Reset types for SYS_RESET_REQ.
const (
	ResetHard = 0x00
	ResetSoft = 0x01
)

// StartupResult is the status returned by ZDO_STARTUP_FROM_APP.
type StartupResult uint8

const (
	StartupRestored        StartupResult = 0x00
	StartupNew             StartupResult = 0x01
	StartupLeaveNotStarted StartupResult = 0x02
)

// String returns the result name.
func (r StartupResult) String() string {
	switch r {
	case StartupRestored:
		return "RESTORED_NETWORK"
	case StartupNew:
		return "NEW_NETWORK"
	case StartupLeaveNotStarted:
		return "LEAVE_AND_NOT_STARTED"
	default:
		return "UNKNOWN"
	}
}

// Started reports whether the stack is coming up.
func (r StartupResult) Started() bool {
	return r == StartupRestored || r == StartupNew
}

// Endpoint describes an application endpoint for AF_REGISTER.
type Endpoint struct {
	ID          uint8
	ProfileID   uint16
	DeviceID    uint16
	Version     uint8
	Latency     uint8
	InClusters  []uint16
	OutClusters []uint16
}

// DefaultEndpoint is the endpoint the host registers before starting the
// stack: EP 1, Home Automation profile, On/Off cluster server.
var DefaultEndpoint = Endpoint{
	ID:         1,
	ProfileID:  0x0104,
	DeviceID:   0x0100,
	Version:    1,
	InClusters: []uint16{0x0006},
}

// Payload encodes the AF_REGISTER request.
func (e Endpoint) Payload() []byte {
	p := []byte{e.ID}
	p = append(p, Uint16LE(e.ProfileID)...)
	p = append(p, Uint16LE(e.DeviceID)...)
	p = append(p, e.Version, e.Latency, byte(len(e.InClusters)))
	for _, c := range e.InClusters {
		p = append(p, Uint16LE(c)...)
	}
	p = append(p, byte(len(e.OutClusters)))
	for _, c := range e.OutClusters {
		p = append(p, Uint16LE(c)...)
	}
	return p
}
