package compliance

import "errors"

// ErrValidation indicates missing or malformed caller input (400-equivalent).
var ErrValidation = errors.New("validation failed")

// ErrNotFound indicates a referenced analysis or profile is absent.
var ErrNotFound = errors.New("not found")

// ErrReconciliationMismatch indicates a recheck payload could not be joined
// one-to-one against the original violation list. Treated as a data-integrity
// fault; the engine never silently truncates.
var ErrReconciliationMismatch = errors.New("reconciliation mismatch")
