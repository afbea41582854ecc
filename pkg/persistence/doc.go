// Package persistence keeps host state that must survive restarts of the
// command line: the role and channel chosen at the last join, the
// coprocessor's IEEE address and the command history.
//
// The coprocessor keeps its own network state in NV memory; this file only
// records what the host needs to interpret a restored network.
package persistence
