//go:build !debug

// Package debug exposes the Debug constant, set with the debug build tag.
package debug

const Debug = false
