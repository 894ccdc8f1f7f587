package core

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed pattern data. It is fatal to the current
// step only, except at run entry where an invalid seed fails the whole run.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// GenerationError reports a synthesis capability failure. The controller
// retries once with the same parent, then skips the iteration.
type GenerationError struct {
	Mode string // "mutation" or "dream"
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (mode=%s): %v", e.Mode, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ScoringError reports an evaluation capability failure or an out-of-range
// result. An unscoreable offspring is discarded, never promoted.
type ScoringError struct {
	PatternID string
	Err       error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed for pattern %s: %v", e.PatternID, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsGeneration reports whether err is (or wraps) a GenerationError.
func IsGeneration(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// IsScoring reports whether err is (or wraps) a ScoringError.
func IsScoring(err error) bool {
	var se *ScoringError
	return errors.As(err, &se)
}
