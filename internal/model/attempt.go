package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt lifecycle states. SUBMITTED and TIMEOUT
// are terminal; no transition ever leaves them.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
	AttemptStatusTimeout    AttemptStatus = "TIMEOUT"
)

// Terminal reports whether the status permits no further transitions.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptStatusSubmitted || s == AttemptStatusTimeout
}

// SnapshotEntry is one frozen question inside an attempt. Options and the
// correct answer are already resolved against the per-attempt ordering, so
// the entry is self-contained for grading. CorrectAnswer stays server-side;
// ForStudent strips it before anything reaches a client.
type SnapshotEntry struct {
	QuestionID    uuid.UUID    `json:"question_id"`
	Type          QuestionType `json:"type"`
	Subject       string       `json:"subject"`
	Difficulty    Difficulty   `json:"difficulty"`
	Options       []string     `json:"options"`
	Marks         float64      `json:"marks"`
	NegativeMarks float64      `json:"negative_marks"`
	CorrectAnswer Answer       `json:"correct_answer"`
}

// StudentQuestion is a snapshot entry with the correct answer redacted.
type StudentQuestion struct {
	QuestionID    uuid.UUID    `json:"question_id"`
	Type          QuestionType `json:"type"`
	Subject       string       `json:"subject"`
	Difficulty    Difficulty   `json:"difficulty"`
	Options       []string     `json:"options"`
	Marks         float64      `json:"marks"`
	NegativeMarks float64      `json:"negative_marks"`
}

// ForStudent returns the client-safe projection of the entry.
func (e SnapshotEntry) ForStudent() StudentQuestion {
	return StudentQuestion{
		QuestionID:    e.QuestionID,
		Type:          e.Type,
		Subject:       e.Subject,
		Difficulty:    e.Difficulty,
		Options:       e.Options,
		Marks:         e.Marks,
		NegativeMarks: e.NegativeMarks,
	}
}

// SubmittedAnswer pairs a snapshot question with the student's raw answer.
type SubmittedAnswer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Answer     Answer    `json:"answer"`
}

// Attempt is one student's run at one exam. It carries its own question
// snapshot and deadline, and is retained forever as the grading record.
type Attempt struct {
	ID               uuid.UUID         `json:"id"`
	ExamID           uuid.UUID         `json:"exam_id"`
	StudentID        uuid.UUID         `json:"student_id"`
	Status           AttemptStatus     `json:"status"`
	StartedAt        time.Time         `json:"started_at"`
	EndedAt          *time.Time        `json:"ended_at,omitempty"`
	DeadlineAt       time.Time         `json:"deadline_at"`
	IPAddress        string            `json:"-"`
	SessionTokenHash string            `json:"-"`
	QuestionSnapshot []SnapshotEntry   `json:"-"`
	Answers          []SubmittedAnswer `json:"answers,omitempty"`
	Score            float64           `json:"score"`
	ViolationFlags   []string          `json:"violation_flags,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// FinalizeAttemptRequest is the payload shared by submit and timeout.
type FinalizeAttemptRequest struct {
	AttemptID      string            `json:"attempt_id" binding:"required,uuid"`
	SessionToken   string            `json:"session_token" binding:"required,min=20"`
	Answers        []SubmittedAnswer `json:"answers" binding:"omitempty,dive"`
	ViolationFlags []string          `json:"violation_flags" binding:"omitempty,dive,min=1"`
}
