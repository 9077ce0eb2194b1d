package models

import (
	"strings"

	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
)

// Profession selects which question sequence a respondent answers
type Profession string

const (
	ProfessionStudent            Profession = "student"
	ProfessionITProfessional     Profession = "itProfessional"
	ProfessionDoctor             Profession = "doctor"
	ProfessionGovernmentEmployee Profession = "governmentEmployee"
	ProfessionOther              Profession = "other"
)

// Professions lists the closed set in display order
var Professions = []Profession{
	ProfessionStudent,
	ProfessionITProfessional,
	ProfessionDoctor,
	ProfessionGovernmentEmployee,
	ProfessionOther,
}

var professionLabels = map[Profession]string{
	ProfessionStudent:            "Student",
	ProfessionITProfessional:     "IT Professional",
	ProfessionDoctor:             "Doctor",
	ProfessionGovernmentEmployee: "Government Employee",
	ProfessionOther:              "Other",
}

// Valid reports whether p is one of the known professions
func (p Profession) Valid() bool {
	_, ok := professionLabels[p]
	return ok
}

// Label returns the human readable name; unknown tags are returned as-is
func (p Profession) Label() string {
	if label, ok := professionLabels[p]; ok {
		return label
	}
	return string(p)
}

// ParseProfession accepts the wire tag, case-insensitively
func ParseProfession(s string) (Profession, error) {
	s = strings.TrimSpace(s)
	for _, p := range Professions {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", apperrors.InvalidInputError("profession", "unknown profession "+s)
}

// ProfessionFromClaim turns an optional server-asserted profession into a
// known value. Absent or unrecognized values mean "unset".
func ProfessionFromClaim(claim *string) *Profession {
	if claim == nil || *claim == "" {
		return nil
	}
	p, err := ParseProfession(*claim)
	if err != nil {
		return nil
	}
	return &p
}
