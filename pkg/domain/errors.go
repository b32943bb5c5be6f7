package domain

import "errors"

// ErrNoPendingConfirmation is returned when a confirmation decision arrives
// for a tool call that is not awaiting one. This is structural misuse and
// fails loudly; swallowing it would desynchronize caller and engine state.
var ErrNoPendingConfirmation = errors.New("no pending tool confirmation")

// ErrUnknownTool is returned when the model requests a tool that was never
// registered with the session.
var ErrUnknownTool = errors.New("unknown tool")

// ErrSessionNotFound is returned when a session ID cannot be found in a
// transcript store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionClosed is returned when operating on a closed session.
var ErrSessionClosed = errors.New("session closed")
