// Package session orchestrates concurrent access to persisted transcripts.
//
// The manager wraps a ports.TranscriptStore with per-session locking (and an
// optional distributed locker for multi-replica deployments), so two hosts
// never interleave saves for the same conversation.
package session
