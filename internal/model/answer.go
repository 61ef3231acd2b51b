package model

import (
	"bytes"
	"encoding/json"
)

// AnswerKind discriminates the shape of an Answer.
type AnswerKind int

const (
	// AnswerNone means the question was never answered.
	AnswerNone AnswerKind = iota
	// AnswerSingle is one selected option (single choice and judge questions).
	AnswerSingle
	// AnswerMultiple is a set of selected options (multiple choice questions).
	AnswerMultiple
)

// Answer is a tagged variant holding a user's response or a question's
// correct answer. Exactly one branch is populated according to Kind.
// On the wire it is a JSON string (single), array of strings (multiple)
// or null (none), matching the stored document format.
type Answer struct {
	Kind   AnswerKind
	Value  string
	Values []string
}

// SingleAnswer builds a single-valued answer.
func SingleAnswer(v string) Answer {
	return Answer{Kind: AnswerSingle, Value: v}
}

// MultipleAnswer builds a set-valued answer.
func MultipleAnswer(vs ...string) Answer {
	return Answer{Kind: AnswerMultiple, Values: vs}
}

// IsNone reports whether no answer was given.
func (a Answer) IsNone() bool {
	return a.Kind == AnswerNone
}

// Set returns the answer's values as a set. A single value becomes a
// one-element set; duplicates in a multiple answer collapse.
func (a Answer) Set() map[string]struct{} {
	set := make(map[string]struct{})
	switch a.Kind {
	case AnswerSingle:
		set[a.Value] = struct{}{}
	case AnswerMultiple:
		for _, v := range a.Values {
			set[v] = struct{}{}
		}
	}
	return set
}

// MarshalJSON encodes the populated branch: string, array or null.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerSingle:
		return json.Marshal(a.Value)
	case AnswerMultiple:
		if a.Values == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(a.Values)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a string, an array of strings or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Answer{}
		return nil
	}
	if trimmed[0] == '[' {
		var vs []string
		if err := json.Unmarshal(trimmed, &vs); err != nil {
			return err
		}
		*a = MultipleAnswer(vs...)
		return nil
	}
	var v string
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*a = SingleAnswer(v)
	return nil
}
