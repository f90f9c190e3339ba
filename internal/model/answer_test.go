package model

import (
	"encoding/json"
	"testing"
)

func TestAnswerUnmarshalVariants(t *testing.T) {
	cases := []struct {
		in   string
		kind AnswerKind
	}{
		{`null`, AnswerNull},
		{`"hello"`, AnswerText},
		{`3.5`, AnswerNumber},
		{`2`, AnswerNumber},
		{`true`, AnswerBool},
		{`false`, AnswerBool},
		{`["a", 1]`, AnswerList},
		{`{"x": 1}`, AnswerObject},
	}

	for _, tc := range cases {
		var a Answer
		if err := json.Unmarshal([]byte(tc.in), &a); err != nil {
			t.Errorf("unmarshal %s: %v", tc.in, err)
			continue
		}
		if a.Kind != tc.kind {
			t.Errorf("unmarshal %s: kind = %d, want %d", tc.in, a.Kind, tc.kind)
		}
	}
}

func TestAnswerNestedList(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`[0, "two", [3]]`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(a.List) != 3 {
		t.Fatalf("list len = %d, want 3", len(a.List))
	}
	if a.List[0].Kind != AnswerNumber || a.List[1].Kind != AnswerText || a.List[2].Kind != AnswerList {
		t.Errorf("nested kinds wrong: %+v", a.List)
	}
}

func TestAnswerMarshalRoundTrip(t *testing.T) {
	inputs := []string{`"text"`, `1.5`, `true`, `null`, `[1,"a"]`, `{"k":"v"}`}
	for _, in := range inputs {
		var a Answer
		if err := json.Unmarshal([]byte(in), &a); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		out, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("marshal %s: %v", in, err)
		}

		// Compare canonicalized encodings; whitespace may differ.
		var want, got any
		_ = json.Unmarshal([]byte(in), &want)
		_ = json.Unmarshal(out, &got)
		wb, _ := json.Marshal(want)
		gb, _ := json.Marshal(got)
		if string(wb) != string(gb) {
			t.Errorf("round trip %s -> %s", in, out)
		}
	}
}

func TestAnswerIndex(t *testing.T) {
	if idx, ok := NumberAnswer(2).Index(); !ok || idx != 2 {
		t.Errorf("integral number should be an index")
	}
	if _, ok := NumberAnswer(2.5).Index(); ok {
		t.Errorf("fractional number is not an index")
	}
	if _, ok := TextAnswer("2").Index(); ok {
		t.Errorf("text is never an index")
	}
	if idx, ok := NumberAnswer(-1).Index(); !ok || idx != -1 {
		t.Errorf("negative integral numbers still report as indexes; range checks happen later")
	}
}

func TestAnswerIsEmpty(t *testing.T) {
	empties := []Answer{
		{Kind: AnswerNull},
		TextAnswer(""),
		TextAnswer("   "),
		ListAnswer(),
	}
	for _, a := range empties {
		if !a.IsEmpty() {
			t.Errorf("%+v should be empty", a)
		}
	}

	nonEmpties := []Answer{
		TextAnswer("x"),
		NumberAnswer(0),
		BoolAnswer(false),
		ListAnswer(TextAnswer("a")),
	}
	for _, a := range nonEmpties {
		if a.IsEmpty() {
			t.Errorf("%+v should not be empty", a)
		}
	}
}
