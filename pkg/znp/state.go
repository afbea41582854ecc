package znp

import "fmt"

// DeviceState is the coprocessor's network state.
type DeviceState uint8

// Device states as reported by ZDO_STATE_CHANGE_IND.
const (
	Hold            DeviceState = 0  // initialized, not started automatically
	Init            DeviceState = 1  // initialized, not connected to anything
	NwkDiscovering  DeviceState = 2  // discovering PANs to join
	NwkJoining      DeviceState = 3  // joining a PAN
	NwkRejoining    DeviceState = 4  // rejoining a PAN, end devices only
	EndDeviceUnauth DeviceState = 5  // joined, not yet authenticated by the trust center
	EndDevice       DeviceState = 6  // started as an end device after authentication
	Router          DeviceState = 7  // joined, authenticated and routing
	CoordStarting   DeviceState = 8  // starting as coordinator
	Coordinator     DeviceState = 9  // started as coordinator
	NwkOrphan       DeviceState = 10 // lost information about its parent
)

var stateNames = map[DeviceState]string{
	Hold:            "HOLD",
	Init:            "INIT",
	NwkDiscovering:  "NWK_DISC",
	NwkJoining:      "NWK_JOINING",
	NwkRejoining:    "NWK_REJOIN",
	EndDeviceUnauth: "END_DEVICE_UNAUTH",
	EndDevice:       "END_DEVICE",
	Router:          "ROUTER",
	CoordStarting:   "COORD_STARTING",
	Coordinator:     "ZB_COORD",
	NwkOrphan:       "NWK_ORPHAN",
}

// String returns the state name.
func (s DeviceState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
}

// Valid reports whether s is a known state.
func (s DeviceState) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// Joined reports whether the device is operating on a network.
func (s DeviceState) Joined() bool {
	switch s {
	case EndDevice, Router, Coordinator:
		return true
	default:
		return false
	}
}

// Describe returns the operator text printed when the state is reported,
// or "" for states that are not announced.
func (s DeviceState) Describe() string {
	switch s {
	case NwkDiscovering:
		return "Network Discovering"
	case NwkJoining:
		return "Network Joining"
	case NwkRejoining:
		return "Network Rejoining"
	case EndDeviceUnauth:
		return "Network Authenticating"
	case EndDevice, Router:
		return "Network Joined"
	case CoordStarting:
		return "Network Starting"
	case Coordinator:
		return "Network Started"
	case NwkOrphan:
		return "Network Orphaned"
	default:
		return ""
	}
}
