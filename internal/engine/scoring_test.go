package engine

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/aptiva/examgate-backend/internal/model"
)

func entry(id uuid.UUID, correct model.Answer, marks, negative float64, options ...string) model.SnapshotEntry {
	return model.SnapshotEntry{
		QuestionID:    id,
		Type:          model.QuestionTypeMCQ,
		Options:       options,
		Marks:         marks,
		NegativeMarks: negative,
		CorrectAnswer: correct,
	}
}

func TestScoreCorrectAndWrong(t *testing.T) {
	q1 := uuid.New()
	q2 := uuid.New()
	q3 := uuid.New()

	snapshot := []model.SnapshotEntry{
		entry(q1, model.TextAnswer("paris"), 4, 1, "London", "Paris", "Rome"),
		entry(q2, model.TextAnswer("rome"), 4, 1, "London", "Paris", "Rome"),
		entry(q3, model.TextAnswer("london"), 4, 1, "London", "Paris", "Rome"),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q1, Answer: model.TextAnswer("Paris")},
		{QuestionID: q2, Answer: model.TextAnswer("London")},
	})

	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
	if result.Attempted != 2 {
		t.Errorf("Attempted = %d, want 2", result.Attempted)
	}
	if result.Correct != 1 {
		t.Errorf("Correct = %d, want 1", result.Correct)
	}
	if result.Score != 3 {
		t.Errorf("Score = %v, want 3 (4 - 1)", result.Score)
	}
}

func TestScoreUnansweredContributesNothing(t *testing.T) {
	q := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q, model.TextAnswer("yes"), 2, 5),
	}

	result := Score(snapshot, nil)
	if result.Score != 0 || result.Attempted != 0 {
		t.Errorf("Score=%v Attempted=%d, want 0/0", result.Score, result.Attempted)
	}
}

func TestScoreEmptyAnswersSkipped(t *testing.T) {
	q1 := uuid.New()
	q2 := uuid.New()
	q3 := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q1, model.TextAnswer("a"), 1, 2),
		entry(q2, model.TextAnswer("b"), 1, 2),
		entry(q3, model.TextAnswer("c"), 1, 2),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q1, Answer: model.Answer{Kind: model.AnswerNull}},
		{QuestionID: q2, Answer: model.TextAnswer("   ")},
		{QuestionID: q3, Answer: model.ListAnswer()},
	})

	if result.Attempted != 0 {
		t.Errorf("Attempted = %d, want 0 (blank answers skipped)", result.Attempted)
	}
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 (no negative marks for blanks)", result.Score)
	}
}

func TestScoreLastSubmissionWins(t *testing.T) {
	q := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q, model.TextAnswer("right"), 3, 1),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q, Answer: model.TextAnswer("wrong")},
		{QuestionID: q, Answer: model.TextAnswer("right")},
	})

	if result.Correct != 1 || result.Score != 3 {
		t.Errorf("Correct=%d Score=%v, want 1/3", result.Correct, result.Score)
	}
}

func TestScoreIndexAnswerResolvesToOption(t *testing.T) {
	q := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q, model.TextAnswer("paris"), 2, 0, "London", "Paris", "Rome"),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q, Answer: model.NumberAnswer(1)},
	})
	if result.Correct != 1 {
		t.Errorf("index 1 should resolve to %q and match", "Paris")
	}
}

func TestScoreOutOfRangeIndexPassesThrough(t *testing.T) {
	q := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q, model.NumberAnswer(42), 2, 0, "A", "B"),
	}

	// 42 is outside [0, 2) so it stays a literal number and matches the
	// literal stored answer.
	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q, Answer: model.NumberAnswer(42)},
	})
	if result.Correct != 1 {
		t.Errorf("out-of-range index should compare as a literal number")
	}
}

func TestScoreMultiSelectOrderIndependent(t *testing.T) {
	q := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q, model.ListAnswer(model.TextAnswer("a"), model.TextAnswer("b")), 5, 2),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q, Answer: model.ListAnswer(model.TextAnswer("B"), model.TextAnswer(" a "))},
	})
	if result.Correct != 1 || result.Score != 5 {
		t.Errorf("list answers should compare order-independently after normalization, got Correct=%d", result.Correct)
	}
}

func TestScoreCaseAndWhitespaceInsensitive(t *testing.T) {
	q := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q, model.TextAnswer("Photosynthesis"), 1, 0),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q, Answer: model.TextAnswer("  PHOTOSYNTHESIS  ")},
	})
	if result.Correct != 1 {
		t.Errorf("string comparison should ignore case and surrounding whitespace")
	}
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	q1 := uuid.New()
	q2 := uuid.New()
	q3 := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q1, model.TextAnswer("x"), 0.1, 0),
		entry(q2, model.TextAnswer("x"), 0.1, 0),
		entry(q3, model.TextAnswer("x"), 0.1, 0),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q1, Answer: model.TextAnswer("x")},
		{QuestionID: q2, Answer: model.TextAnswer("x")},
		{QuestionID: q3, Answer: model.TextAnswer("x")},
	})

	if math.Abs(result.Score-0.3) > 1e-9 {
		t.Errorf("Score = %v, want exactly 0.3 after rounding", result.Score)
	}
}

func TestScoreNegativeTotalAllowed(t *testing.T) {
	q1 := uuid.New()
	q2 := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q1, model.TextAnswer("right"), 1, 2),
		entry(q2, model.TextAnswer("right"), 1, 2),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q1, Answer: model.TextAnswer("wrong")},
		{QuestionID: q2, Answer: model.TextAnswer("wrong")},
	})
	if result.Score != -4 {
		t.Errorf("Score = %v, want -4 (scores may go negative)", result.Score)
	}
}

func TestScoreUnknownQuestionIDsIgnored(t *testing.T) {
	q := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q, model.TextAnswer("right"), 1, 0),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: uuid.New(), Answer: model.TextAnswer("whatever")},
	})
	if result.Attempted != 0 || result.Score != 0 {
		t.Errorf("answers for questions outside the snapshot must be ignored")
	}
}

func TestScoreBooleanAnswers(t *testing.T) {
	q := uuid.New()
	snapshot := []model.SnapshotEntry{
		entry(q, model.BoolAnswer(true), 2, 1),
	}

	result := Score(snapshot, []model.SubmittedAnswer{
		{QuestionID: q, Answer: model.BoolAnswer(true)},
	})
	if result.Correct != 1 {
		t.Errorf("boolean answers should compare by value")
	}
}
