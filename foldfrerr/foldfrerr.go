// Package foldfrerr defines the error kinds surfaced by the folding core.
package foldfrerr

import "errors"

// Sentinel errors for the kinds discriminated by the folding core. Call
// sites wrap these with fmt.Errorf("...: %w", foldfrerr.ErrX) so that
// errors.Is keeps working after the message gains context.
var (
	// ErrInvalidInstances is returned when the instance column count or
	// sizing does not match the proving/verifying key.
	ErrInvalidInstances = errors.New("invalid instances")

	// ErrInstanceTooLarge is returned when an instance column's row count
	// exceeds the usable rows (domain size minus blinding factors minus one).
	ErrInstanceTooLarge = errors.New("instance too large for domain")

	// ErrBoundsFailure is returned when a synthesis-time advice or instance
	// query refers to an out-of-range row.
	ErrBoundsFailure = errors.New("query out of bounds")

	// ErrTranscriptError is returned when the underlying transcript read or
	// write operation fails.
	ErrTranscriptError = errors.New("transcript error")

	// ErrInternalInvariantViolated marks an unrecoverable condition: a
	// compiled gate with inconsistent degrees or indices, or any other
	// state the core should never be able to reach. Fold aborts.
	ErrInternalInvariantViolated = errors.New("internal invariant violated")

	// ErrShapeMismatch is returned when two accumulators being folded
	// disagree on domain size. Fatal; must be prevented at setup.
	ErrShapeMismatch = errors.New("accumulator shape mismatch")
)
