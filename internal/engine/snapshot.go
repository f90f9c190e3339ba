package engine

import (
	"math/rand"

	"github.com/aptiva/examgate-backend/internal/model"
)

// ShuffleFlags carries an exam's randomization settings into the builder.
type ShuffleFlags struct {
	RandomizeQuestions bool
	ShuffleOptions     bool
}

// SnapshotBuilder freezes an exam's questions into per-attempt snapshot
// entries. The randomness source is injected so tests can seed it and assert
// exact permutations; production wiring seeds it from the clock.
type SnapshotBuilder struct {
	rng *rand.Rand
}

// NewSnapshotBuilder creates a builder around the given randomness source.
func NewSnapshotBuilder(rng *rand.Rand) *SnapshotBuilder {
	return &SnapshotBuilder{rng: rng}
}

// Build produces the immutable question snapshot for one attempt. Question
// order and per-question option order are permuted according to flags, and
// each stored correct answer is resolved against its shuffled option list so
// the entry grades correctly no matter how the bank changes later.
func (b *SnapshotBuilder) Build(flags ShuffleFlags, questions []model.Question) []model.SnapshotEntry {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)
	if flags.RandomizeQuestions {
		b.rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	snapshot := make([]model.SnapshotEntry, len(ordered))
	for i, q := range ordered {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		if flags.ShuffleOptions {
			b.rng.Shuffle(len(options), func(x, y int) {
				options[x], options[y] = options[y], options[x]
			})
		}

		snapshot[i] = model.SnapshotEntry{
			QuestionID:    q.ID,
			Type:          q.Type,
			Subject:       q.Subject,
			Difficulty:    q.Difficulty,
			Options:       options,
			Marks:         q.Marks,
			NegativeMarks: q.NegativeMarks,
			CorrectAnswer: ResolveAgainstOptions(q.CorrectAnswer, options),
		}
	}
	return snapshot
}
