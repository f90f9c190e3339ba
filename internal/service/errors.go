package service

import (
	"errors"
	"fmt"

	"github.com/aptiva/examgate-backend/internal/model"
)

// Domain errors shared across services. Handlers map these onto the
// response code taxonomy.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrEmailTaken          = errors.New("email already registered")

	ErrExamNotFound    = errors.New("exam not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrStudentNotFound = errors.New("student not found under this proctor")

	ErrNotEligible   = errors.New("student is not assigned to this exam")
	ErrNotExamOwner  = errors.New("not the author of this exam")
	ErrExamNotActive = errors.New("exam is not active right now")

	ErrInvalidSchedule = errors.New("invalid exam schedule")
	ErrNoQuestions     = errors.New("exam must include at least one question")
	ErrUnknownQuestion = errors.New("one or more questions were not found")

	ErrAttemptLimitReached = errors.New("attempt limit reached")
	ErrDeviceConflict      = errors.New("single device policy violated for this exam")
	ErrInvalidSession      = errors.New("invalid exam session token")
)

// AttemptFinalizedError rejects an action on an attempt that already reached
// a terminal state, naming that state so replays can report it.
type AttemptFinalizedError struct {
	Status model.AttemptStatus
}

func (e *AttemptFinalizedError) Error() string {
	return fmt.Sprintf("attempt already %s", e.Status)
}
