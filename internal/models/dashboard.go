package models

import "time"

// OptionCount is one bar of a question chart
type OptionCount struct {
	Option string `json:"name"`
	Count  int    `json:"count"`
}

// Distribution is the per-option frequency table of one question within one profession.
// Unrecognized counts answers whose values match none of the defined options.
type Distribution struct {
	Profession   Profession    `json:"profession"`
	QuestionID   string        `json:"questionId"`
	QuestionText string        `json:"questionText"`
	Options      []OptionCount `json:"options"`
	Responses    int           `json:"responses"`
	Unrecognized int           `json:"unrecognized"`
}

// ProfessionCount is one slice of the profession overview chart
type ProfessionCount struct {
	Profession Profession `json:"profession"`
	Label      string     `json:"name"`
	Count      int        `json:"value"`
}

// DashboardSummary holds the headline numbers of the results dashboard
type DashboardSummary struct {
	TotalResponses         int        `json:"totalResponses"`
	ProfessionsRepresented int        `json:"professionsRepresented"`
	LatestResponse         *time.Time `json:"latestResponse,omitempty"`
}

// TextResponse is one free-text answer row
type TextResponse struct {
	Email     string    `json:"email"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}
