package models

import (
	"encoding/json"
)

// AnswerValue is either a single string (single-choice, free text) or an
// ordered set of strings (multi-choice). The zero value is an empty scalar.
type AnswerValue struct {
	text   string
	values []string
	set    bool
}

// TextAnswer builds a scalar answer
func TextAnswer(v string) AnswerValue {
	return AnswerValue{text: v}
}

// SetAnswer builds a multi-valued answer, dropping duplicates
func SetAnswer(values ...string) AnswerValue {
	a := AnswerValue{set: true, values: []string{}}
	for _, v := range values {
		if !a.Contains(v) {
			a.values = append(a.values, v)
		}
	}
	return a
}

// IsSet reports whether the answer is multi-valued
func (a AnswerValue) IsSet() bool {
	return a.set
}

// Text returns the scalar value; empty for set answers
func (a AnswerValue) Text() string {
	return a.text
}

// Values returns a copy of the selected values; nil for scalar answers
func (a AnswerValue) Values() []string {
	if !a.set {
		return nil
	}
	out := make([]string, len(a.values))
	copy(out, a.values)
	return out
}

// Empty reports whether nothing is staged
func (a AnswerValue) Empty() bool {
	if a.set {
		return len(a.values) == 0
	}
	return a.text == ""
}

// Contains matches label by equality for scalars and membership for sets
func (a AnswerValue) Contains(label string) bool {
	if !a.set {
		return a.text == label
	}
	for _, v := range a.values {
		if v == label {
			return true
		}
	}
	return false
}

// Toggle returns a set answer with label added when absent, removed when present
func (a AnswerValue) Toggle(label string) AnswerValue {
	out := SetAnswer(a.values...)
	if out.Contains(label) {
		kept := out.values[:0]
		for _, v := range out.values {
			if v != label {
				kept = append(kept, v)
			}
		}
		out.values = kept
		return out
	}
	out.values = append(out.values, label)
	return out
}

// MarshalJSON writes a string for scalars and an array for sets
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if a.set {
		return json.Marshal(a.Values())
	}
	return json.Marshal(a.text)
}

// UnmarshalJSON accepts a string or an array of strings. Any other shape
// decodes as an empty answer so one odd record never fails a whole listing.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = TextAnswer(text)
		return nil
	}

	var values []string
	if err := json.Unmarshal(data, &values); err == nil {
		*a = SetAnswer(values...)
		return nil
	}

	*a = AnswerValue{}
	return nil
}

// AnswerSet maps question identifiers to answers
type AnswerSet map[string]AnswerValue

// Clone copies the set so callers can freeze it
func (s AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
