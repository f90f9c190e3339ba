package model

import (
	"time"

	"github.com/google/uuid"
)

// BatchAll makes an exam eligible for every student regardless of department.
const BatchAll = "ALL"

// Exam is an exam definition. It is treated as immutable once any attempt
// has been created against it.
type Exam struct {
	ID                 uuid.UUID   `json:"id"`
	Title              string      `json:"title"`
	AuthorID           uuid.UUID   `json:"author_id"`
	QuestionIDs        []uuid.UUID `json:"question_ids"`
	DurationMinutes    int         `json:"duration_minutes"`
	StartTime          time.Time   `json:"start_time"`
	EndTime            time.Time   `json:"end_time"`
	AssignedBatch      string      `json:"assigned_batch"`
	AttemptLimit       int         `json:"attempt_limit"`
	RandomizeQuestions bool        `json:"randomize_questions"`
	ShuffleOptions     bool        `json:"shuffle_options"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// EligibleFor reports whether a student from the given department may sit
// this exam.
func (e *Exam) EligibleFor(department string) bool {
	return e.AssignedBatch == BatchAll || e.AssignedBatch == department
}

// ActiveAt reports whether now falls inside the scheduling window
// [StartTime, EndTime).
func (e *Exam) ActiveAt(now time.Time) bool {
	return !now.Before(e.StartTime) && now.Before(e.EndTime)
}

// CreateExamRequest is the payload for creating an exam.
type CreateExamRequest struct {
	Title              string    `json:"title" binding:"required,min=3,max=255"`
	QuestionIDs        []string  `json:"question_ids" binding:"required,min=1,dive,uuid"`
	DurationMinutes    int       `json:"duration_minutes" binding:"required,min=1,max=600"`
	StartTime          time.Time `json:"start_time" binding:"required"`
	EndTime            time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	AssignedBatch      string    `json:"assigned_batch" binding:"required,min=1,max=64"`
	AttemptLimit       int       `json:"attempt_limit" binding:"omitempty,min=1,max=10"`
	RandomizeQuestions *bool     `json:"randomize_questions" binding:"omitempty"`
	ShuffleOptions     *bool     `json:"shuffle_options" binding:"omitempty"`
}
