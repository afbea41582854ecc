// Package match resolves partially typed command names against the registry.
package match

import (
	"github.com/Torchwoods/znp-host-framework/pkg/registry"
)

// Kind classifies a resolution.
type Kind uint8

const (
	// None means no command starts with the input.
	None Kind = iota
	// Unique means exactly one command was selected.
	Unique
	// Ambiguous means several commands share the accepted prefix.
	Ambiguous
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Source is the part of the registry the matcher needs.
type Source interface {
	ByPrefix(prefix string) []*registry.Command
}

// Result is the outcome of Resolve.
type Result struct {
	Kind Kind

	// Command is set when Kind is Unique.
	Command *registry.Command

	// Matches lists every candidate in registration order. Every member's
	// name starts with Prefix.
	Matches []*registry.Command

	// Prefix is the accepted prefix: the input extended by every character
	// shared by all candidates. For a unique match it is the full name.
	Prefix string
}

// Resolve finds the commands whose names start with partial.
//
// An exact name match wins even when longer names share it as a prefix.
// Otherwise the accepted prefix is grown one character at a time for as long
// as every candidate agrees on the next character, stopping at the first
// divergence or when a candidate name ends.
func Resolve(src Source, partial string) Result {
	matches := src.ByPrefix(partial)
	if len(matches) == 0 {
		return Result{Kind: None, Prefix: partial}
	}

	for _, c := range matches {
		if c.Name == partial {
			return Result{Kind: Unique, Command: c, Matches: matches, Prefix: c.Name}
		}
	}

	if len(matches) == 1 {
		return Result{Kind: Unique, Command: matches[0], Matches: matches, Prefix: matches[0].Name}
	}

	return Result{Kind: Ambiguous, Matches: matches, Prefix: commonPrefix(partial, matches)}
}

// commonPrefix extends prefix while all names agree on the next byte.
func commonPrefix(prefix string, matches []*registry.Command) string {
	n := len(prefix)
	for {
		first := matches[0].Name
		if len(first) <= n {
			return first[:n]
		}
		next := first[n]
		for _, c := range matches[1:] {
			if len(c.Name) <= n || c.Name[n] != next {
				return first[:n]
			}
		}
		n++
	}
}
