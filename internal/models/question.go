package models

// QuestionKind is the input style of a question
type QuestionKind string

const (
	KindSingleChoice QuestionKind = "single_choice"
	KindMultiChoice  QuestionKind = "multi_choice"
	KindText         QuestionKind = "text"
)

// Question is an immutable question definition
type Question struct {
	ID               string       `json:"id" validate:"required"`
	Text             string       `json:"questionText" validate:"required"`
	Kind             QuestionKind `json:"type" validate:"required,oneof=single_choice multi_choice text"`
	Options          []string     `json:"options,omitempty" validate:"required_unless=Kind text,dive,required"`
	Placeholder      string       `json:"placeholder,omitempty"`
	VideoSrc         string       `json:"videoSrc,omitempty"`
	AllowMultiple    bool         `json:"allowMultiple,omitempty"`
	AllowVideoUpload bool         `json:"allowVideoUpload,omitempty"`
}

// IsChoice reports whether the question is answered by picking options
func (q Question) IsChoice() bool {
	return q.Kind == KindSingleChoice || q.Kind == KindMultiChoice
}

// HasOption reports whether label is one of the defined options
func (q Question) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt == label {
			return true
		}
	}
	return false
}

// Qualifies reports whether answer is enough to advance past q
func (q Question) Qualifies(answer AnswerValue) bool {
	switch q.Kind {
	case KindMultiChoice:
		return answer.IsSet() && len(answer.Values()) > 0
	default:
		return !answer.IsSet() && answer.Text() != ""
	}
}
