package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrPolicyViolation signals a title that breaks a static naming rule.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrSimilarityConflict signals a title too similar to an existing one.
	ErrSimilarityConflict = errors.New("similarity conflict")
	// ErrNotFound signals a missing title.
	ErrNotFound = errors.New("title not found")
	// ErrForbidden signals an operation on a title owned by another user.
	ErrForbidden = errors.New("not the title owner")
)

// PolicyViolationError wraps ErrPolicyViolation with the rule that fired
// and the term it matched.
type PolicyViolationError struct {
	Rule string
	Term string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("%s: %s (%q)", ErrPolicyViolation.Error(), e.Rule, e.Term)
}

func (e *PolicyViolationError) Unwrap() error { return ErrPolicyViolation }

// SimilarityConflictError wraps ErrSimilarityConflict with the name of the
// conflicting corpus title and the offending similarity percentage.
type SimilarityConflictError struct {
	ConflictingTitle string
	Percent          int
}

func (e *SimilarityConflictError) Error() string {
	return fmt.Sprintf("%s: too similar to %q (%d%%)", ErrSimilarityConflict.Error(), e.ConflictingTitle, e.Percent)
}

func (e *SimilarityConflictError) Unwrap() error { return ErrSimilarityConflict }

// NewSimilarityConflict creates a similarity conflict error.
func NewSimilarityConflict(conflictingTitle string, percent int) error {
	return &SimilarityConflictError{ConflictingTitle: conflictingTitle, Percent: percent}
}
