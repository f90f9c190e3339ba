package engine

import (
	"math"

	"github.com/aptiva/examgate-backend/internal/model"
)

// ScoreResult is the outcome of grading one attempt.
type ScoreResult struct {
	Score     float64 `json:"score"`
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Total     int     `json:"total"`
}

// Score grades submitted answers against a question snapshot. It is a pure
// function: correct answers add marks, attempted-but-wrong answers subtract
// negative marks, unanswered questions contribute nothing. Duplicate
// submissions for the same question keep the last one.
func Score(snapshot []model.SnapshotEntry, submitted []model.SubmittedAnswer) ScoreResult {
	answers := make(map[string]model.Answer, len(submitted))
	for _, sa := range submitted {
		answers[sa.QuestionID.String()] = sa.Answer
	}

	result := ScoreResult{Total: len(snapshot)}
	var score float64

	for _, entry := range snapshot {
		raw, ok := answers[entry.QuestionID.String()]
		if !ok {
			continue
		}

		answer := ResolveAgainstOptions(raw, entry.Options)
		if answer.IsEmpty() {
			continue
		}

		result.Attempted++
		if AnswersEqual(answer, entry.CorrectAnswer) {
			score += entry.Marks
			result.Correct++
		} else {
			score -= entry.NegativeMarks
		}
	}

	result.Score = math.Round(score*100) / 100
	return result
}
