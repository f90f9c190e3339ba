package repository

import "errors"

// Sentinel errors surfaced by conditional writes so services can react to
// lost races without inspecting SQL state.
var (
	// ErrActiveAttemptExists is returned when an insert loses to the partial
	// unique index guaranteeing at most one IN_PROGRESS attempt per
	// (exam, student).
	ErrActiveAttemptExists = errors.New("an attempt is already in progress for this exam and student")

	// ErrAttemptNotInProgress is returned when a compare-and-swap update
	// finds the attempt no longer IN_PROGRESS.
	ErrAttemptNotInProgress = errors.New("attempt is not in progress")

	// ErrQuestionsMissing is returned when a bulk question lookup cannot
	// resolve every requested id.
	ErrQuestionsMissing = errors.New("one or more questions were not found")

	// ErrEmailTaken is returned when a user insert violates the unique
	// email constraint.
	ErrEmailTaken = errors.New("a user with this email already exists")
)
