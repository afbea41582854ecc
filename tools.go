//go:build tools

package tools

// The Sender mock in pkg/dispatch/mocks comes from the mockery v3 binary and
// .mockery.yml; it needs no import here. Regenerate with `mockery` from the
// module root after changing dispatch.Sender.
