// Package registry holds the fixed table of MT commands the shell offers and
// the asynchronous indications it understands.
//
// The table is embedded from commands.yaml and parsed once. Each command
// lists its typed input fields in wire order. A field with a non-zero list
// bound is a variable-length list whose element count is the value already
// entered for the field before it.
package registry
