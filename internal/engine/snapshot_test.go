package engine

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/aptiva/examgate-backend/internal/model"
)

func bankQuestion(subject string, correct model.Answer, options ...string) model.Question {
	return model.Question{
		ID:            uuid.New(),
		Type:          model.QuestionTypeMCQ,
		Subject:       subject,
		Difficulty:    model.DifficultyMedium,
		Options:       options,
		CorrectAnswer: correct,
		Marks:         1,
	}
}

func TestBuildPreservesOrderWithoutShuffle(t *testing.T) {
	questions := []model.Question{
		bankQuestion("math", model.TextAnswer("a"), "a", "b"),
		bankQuestion("math", model.TextAnswer("c"), "c", "d"),
		bankQuestion("math", model.TextAnswer("e"), "e", "f"),
	}

	builder := NewSnapshotBuilder(rand.New(rand.NewSource(1)))
	snapshot := builder.Build(ShuffleFlags{}, questions)

	if len(snapshot) != 3 {
		t.Fatalf("len = %d, want 3", len(snapshot))
	}
	for i, q := range questions {
		if snapshot[i].QuestionID != q.ID {
			t.Errorf("entry %d: order changed with shuffling disabled", i)
		}
		for j, opt := range q.Options {
			if snapshot[i].Options[j] != opt {
				t.Errorf("entry %d: option order changed with shuffling disabled", i)
			}
		}
	}
}

func TestBuildShufflePermutesWithoutLoss(t *testing.T) {
	questions := make([]model.Question, 10)
	for i := range questions {
		questions[i] = bankQuestion("sci", model.NumberAnswer(0), "w", "x", "y", "z")
	}

	builder := NewSnapshotBuilder(rand.New(rand.NewSource(42)))
	snapshot := builder.Build(ShuffleFlags{RandomizeQuestions: true, ShuffleOptions: true}, questions)

	if len(snapshot) != len(questions) {
		t.Fatalf("len = %d, want %d", len(snapshot), len(questions))
	}

	seen := make(map[uuid.UUID]bool, len(snapshot))
	for _, e := range snapshot {
		seen[e.QuestionID] = true
		if len(e.Options) != 4 {
			t.Fatalf("options len = %d, want 4", len(e.Options))
		}
		opts := map[string]bool{}
		for _, o := range e.Options {
			opts[o] = true
		}
		for _, o := range []string{"w", "x", "y", "z"} {
			if !opts[o] {
				t.Errorf("option %q lost during shuffle", o)
			}
		}
	}
	for _, q := range questions {
		if !seen[q.ID] {
			t.Errorf("question %s lost during shuffle", q.ID)
		}
	}
}

func TestBuildResolvesCorrectAnswerAgainstShuffledOptions(t *testing.T) {
	// An index-encoded correct answer is resolved against the option list as
	// the student will see it, so after shuffling it must carry the literal
	// text of whatever option now sits at that index.
	q := bankQuestion("hist", model.NumberAnswer(0), "alpha", "beta", "gamma", "delta")

	for seed := int64(0); seed < 8; seed++ {
		builder := NewSnapshotBuilder(rand.New(rand.NewSource(seed)))
		snapshot := builder.Build(ShuffleFlags{ShuffleOptions: true}, []model.Question{q})

		got := snapshot[0].CorrectAnswer
		if got.Kind != model.AnswerText || got.Text != snapshot[0].Options[0] {
			t.Fatalf("seed %d: correct answer = %+v, want text of shuffled option 0 %q",
				seed, got, snapshot[0].Options[0])
		}
	}
}

func TestBuildResolvesListOfIndexes(t *testing.T) {
	q := bankQuestion("geo", model.ListAnswer(model.NumberAnswer(0), model.NumberAnswer(2)), "red", "green", "blue")

	builder := NewSnapshotBuilder(rand.New(rand.NewSource(7)))
	snapshot := builder.Build(ShuffleFlags{}, []model.Question{q})

	got := snapshot[0].CorrectAnswer
	if got.Kind != model.AnswerList || len(got.List) != 2 {
		t.Fatalf("correct answer = %+v, want a 2-item list", got)
	}
	if got.List[0].Text != "red" || got.List[1].Text != "blue" {
		t.Errorf("list indexes not resolved: %+v", got.List)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	questions := []model.Question{
		bankQuestion("a", model.TextAnswer("x"), "1", "2", "3"),
		bankQuestion("b", model.TextAnswer("y"), "4", "5", "6"),
	}
	originalIDs := []uuid.UUID{questions[0].ID, questions[1].ID}
	originalFirstOptions := append([]string(nil), questions[0].Options...)

	builder := NewSnapshotBuilder(rand.New(rand.NewSource(99)))
	builder.Build(ShuffleFlags{RandomizeQuestions: true, ShuffleOptions: true}, questions)

	if questions[0].ID != originalIDs[0] || questions[1].ID != originalIDs[1] {
		t.Errorf("input question order mutated")
	}
	for i, o := range originalFirstOptions {
		if questions[0].Options[i] != o {
			t.Errorf("input option order mutated")
		}
	}
}

func TestForStudentStripsCorrectAnswer(t *testing.T) {
	q := bankQuestion("chem", model.TextAnswer("secret"), "a", "b")
	builder := NewSnapshotBuilder(rand.New(rand.NewSource(3)))
	snapshot := builder.Build(ShuffleFlags{}, []model.Question{q})

	view := snapshot[0].ForStudent()
	if view.QuestionID != q.ID || len(view.Options) != 2 {
		t.Errorf("student view lost question data: %+v", view)
	}
}
