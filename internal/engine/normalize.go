package engine

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/aptiva/examgate-backend/internal/model"
)

// ResolveAgainstOptions maps index-encoded answers to the option value at
// that index. An integral number inside [0, len(options)) becomes the option
// text; lists resolve element-wise; everything else passes through unchanged.
func ResolveAgainstOptions(a model.Answer, options []string) model.Answer {
	if idx, ok := a.Index(); ok {
		if idx >= 0 && idx < len(options) {
			return model.TextAnswer(options[idx])
		}
		return a
	}

	if a.Kind == model.AnswerList {
		resolved := make([]model.Answer, len(a.List))
		for i, item := range a.List {
			resolved[i] = ResolveAgainstOptions(item, options)
		}
		return model.Answer{Kind: model.AnswerList, List: resolved}
	}

	return a
}

// normalize reduces an answer to its canonical comparable form: strings are
// trimmed and lower-cased, lists are normalized recursively then sorted so
// multi-select grading is order-independent, null becomes the empty string,
// and structured values collapse to a normalized canonical encoding.
func normalize(a model.Answer) any {
	switch a.Kind {
	case model.AnswerText:
		return normalizeString(a.Text)
	case model.AnswerNumber:
		return a.Number
	case model.AnswerBool:
		return a.Bool
	case model.AnswerList:
		items := make([]any, len(a.List))
		for i, item := range a.List {
			items[i] = normalize(item)
		}
		sort.Slice(items, func(i, j int) bool {
			return canonical(items[i]) < canonical(items[j])
		})
		return items
	case model.AnswerObject:
		return normalizeString(string(a.Object))
	default:
		return ""
	}
}

func normalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// canonical renders a normalized value as a deterministic string so
// normalized forms can be compared and ordered.
func canonical(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// AnswersEqual reports whether two answers are equal under normalization.
func AnswersEqual(a, b model.Answer) bool {
	return canonical(normalize(a)) == canonical(normalize(b))
}
