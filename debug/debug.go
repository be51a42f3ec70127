//go:build debug

package debug

// Debug enables expensive invariant checks.
const Debug = true
