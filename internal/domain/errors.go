package domain

import "errors"

// Error taxonomy. Every failure in this service wraps one of these so the
// HTTP layer can map it without inspecting messages. None of them is fatal:
// the process keeps serving after any single failure.
var (
	// ErrValidation: malformed or structurally invalid inbound payload.
	// Surfaced as a 4xx; no state was mutated.
	ErrValidation = errors.New("validation error")

	// ErrPersistence: durable-store read/write failure. The in-memory
	// collection is still updated (availability over durability), so the
	// caller may observe a record that a later crash loses from disk.
	ErrPersistence = errors.New("persistence error")

	// ErrQuery: unexpected failure on the history read path. Degrades to
	// an empty result, never propagates a panic to the caller.
	ErrQuery = errors.New("query error")
)
