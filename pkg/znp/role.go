package znp

import "fmt"

// Role is the logical device type a new network is formed or joined as.
// Values match the ZCD_NV_LOGICAL_TYPE encoding.
type Role uint8

const (
	RoleCoordinator Role = 0
	RoleRouter      Role = 1
	RoleEndDevice   Role = 2
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleCoordinator:
		return "coordinator"
	case RoleRouter:
		return "router"
	case RoleEndDevice:
		return "end-device"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// TerminalState is the device state that means the role has been reached.
func (r Role) TerminalState() DeviceState {
	switch r {
	case RoleCoordinator:
		return Coordinator
	case RoleRouter:
		return Router
	default:
		return EndDevice
	}
}

// ParseRole maps an operator answer to a role by its first letter:
// c for coordinator, r for router. Anything else selects end device.
func ParseRole(answer string) Role {
	if answer == "" {
		return RoleEndDevice
	}
	switch answer[0] {
	case 'c', 'C':
		return RoleCoordinator
	case 'r', 'R':
		return RoleRouter
	default:
		return RoleEndDevice
	}
}

// ParseRoleName is the inverse of Role.String.
func ParseRoleName(name string) (Role, bool) {
	for _, r := range []Role{RoleCoordinator, RoleRouter, RoleEndDevice} {
		if r.String() == name {
			return r, true
		}
	}
	return 0, false
}
