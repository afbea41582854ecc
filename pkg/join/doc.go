// Package join runs the interactive sequence that brings the coprocessor
// onto a network at startup.
//
// The operator chooses between forming or joining a new network and
// restoring the one saved in the coprocessor's NV memory. For a new network
// the controller also asks for the logical role and the radio channel. It
// then registers the host endpoint, starts the stack and waits for the
// device to report the state that matches the role.
//
// Whatever the outcome, the startup option is set back to keep-state so a
// later reset restores the network instead of wiping it.
package join
