// Package domain contains the core types of the orange-agent runtime:
// transcript messages, tool calls and outcomes, lifecycle events, and the
// sentinel errors shared across packages.
//
// The domain layer has no dependencies on the engine or on any adapter; it is
// the vocabulary every other package speaks.
package domain
