// Package znp holds the coprocessor-side vocabulary the host needs: the
// device state reported by ZDO_STATE_CHANGE_IND, the logical roles a device
// can be configured for and the NV items written while forming or joining a
// network.
//
// # Device state
//
// States are an ordered enumeration matching the coprocessor's numbering.
// Only EndDevice, Router and Coordinator count as joined; nothing is
// inferred from the numeric order of the others.
//
// # Tracker
//
// A Tracker holds the last reported state. The event pump is its only
// writer; the join controller and the shell read it.
package znp
