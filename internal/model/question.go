package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported answer formats.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "MCQ"
	QuestionTypeMultiSelect QuestionType = "MultiSelect"
	QuestionTypeNumerical   QuestionType = "Numerical"
	QuestionTypeCoding      QuestionType = "Coding"
	QuestionTypeDescriptive QuestionType = "Descriptive"
)

// Difficulty grades a question for bank filtering and reporting.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Question is a master question-bank record. The correct answer is either a
// literal value or an index (list of indexes) into Options; snapshots resolve
// indexes at attempt creation so later edits never change in-flight grading.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	AuthorID      uuid.UUID    `json:"author_id"`
	Type          QuestionType `json:"type"`
	Subject       string       `json:"subject"`
	Tags          []string     `json:"tags"`
	Difficulty    Difficulty   `json:"difficulty"`
	Options       []string     `json:"options"`
	CorrectAnswer Answer       `json:"correct_answer"`
	Marks         float64      `json:"marks"`
	NegativeMarks float64      `json:"negative_marks"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	Type          QuestionType `json:"type" binding:"required,oneof=MCQ MultiSelect Numerical Coding Descriptive"`
	Subject       string       `json:"subject" binding:"required,min=1,max=100"`
	Tags          []string     `json:"tags" binding:"omitempty,dive,min=1,max=50"`
	Difficulty    Difficulty   `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Options       []string     `json:"options" binding:"omitempty,dive,min=1"`
	CorrectAnswer Answer       `json:"correct_answer" binding:"required"`
	Marks         float64      `json:"marks" binding:"min=0"`
	NegativeMarks float64      `json:"negative_marks" binding:"min=0"`
}
