package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// AnswerKind tags the dynamic type of a submitted or stored answer value.
type AnswerKind int

const (
	AnswerNull AnswerKind = iota
	AnswerText
	AnswerNumber
	AnswerBool
	AnswerList
	AnswerObject
)

// Answer is a tagged union over the JSON value shapes the exam engine
// accepts: a string, a number (possibly an option index), a boolean, a list
// of answers, an arbitrary object, or null. Exactly one variant is active,
// selected by Kind.
type Answer struct {
	Kind   AnswerKind
	Text   string
	Number float64
	Bool   bool
	List   []Answer
	Object json.RawMessage
}

// TextAnswer builds a Text variant.
func TextAnswer(s string) Answer { return Answer{Kind: AnswerText, Text: s} }

// NumberAnswer builds a Number variant.
func NumberAnswer(n float64) Answer { return Answer{Kind: AnswerNumber, Number: n} }

// BoolAnswer builds a Bool variant.
func BoolAnswer(b bool) Answer { return Answer{Kind: AnswerBool, Bool: b} }

// ListAnswer builds a List variant.
func ListAnswer(items ...Answer) Answer { return Answer{Kind: AnswerList, List: items} }

// UnmarshalJSON decodes any JSON value into the matching variant.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Answer{Kind: AnswerNull}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*a = Answer{Kind: AnswerText, Text: s}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*a = Answer{Kind: AnswerBool, Bool: b}
	case '[':
		var list []Answer
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*a = Answer{Kind: AnswerList, List: list}
	case '{':
		raw := make(json.RawMessage, len(trimmed))
		copy(raw, trimmed)
		*a = Answer{Kind: AnswerObject, Object: raw}
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("unsupported answer value %q: %w", trimmed, err)
		}
		*a = Answer{Kind: AnswerNumber, Number: n}
	}
	return nil
}

// MarshalJSON encodes the active variant back to plain JSON.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerText:
		return json.Marshal(a.Text)
	case AnswerNumber:
		return json.Marshal(a.Number)
	case AnswerBool:
		return json.Marshal(a.Bool)
	case AnswerList:
		if a.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.List)
	case AnswerObject:
		return a.Object, nil
	default:
		return []byte("null"), nil
	}
}

// Index returns the answer as an option index when it is an integral number.
func (a Answer) Index() (int, bool) {
	if a.Kind != AnswerNumber {
		return 0, false
	}
	if a.Number != math.Trunc(a.Number) || math.IsInf(a.Number, 0) || math.IsNaN(a.Number) {
		return 0, false
	}
	return int(a.Number), true
}

// IsEmpty reports whether the value counts as "not attempted": null, a blank
// string, or an empty list.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case AnswerNull:
		return true
	case AnswerText:
		return strings.TrimSpace(a.Text) == ""
	case AnswerList:
		return len(a.List) == 0
	}
	return false
}
