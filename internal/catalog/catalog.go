package catalog

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/typeform-survey/survey-client/internal/models"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
)

// Catalog maps each profession to its ordered question sequence. It is
// read-only after construction.
type Catalog struct {
	sequences map[models.Profession][]models.Question
}

var validate = validator.New()

// New validates the sequences and builds a catalog. Every sequence must be
// non-empty with unique question ids, and multi-choice must match AllowMultiple.
func New(sequences map[models.Profession][]models.Question) (*Catalog, error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("catalog has no sequences")
	}

	copied := make(map[models.Profession][]models.Question, len(sequences))
	for profession, questions := range sequences {
		if err := validateSequence(profession, questions); err != nil {
			return nil, err
		}
		seq := make([]models.Question, len(questions))
		copy(seq, questions)
		copied[profession] = seq
	}

	return &Catalog{sequences: copied}, nil
}

// Default returns the built-in catalog: the shared block followed by the
// profession-specific questions.
func Default() *Catalog {
	sequences := make(map[models.Profession][]models.Question, len(models.Professions))
	for _, p := range models.Professions {
		seq := make([]models.Question, 0, len(commonQuestions)+len(professionQuestions[p]))
		seq = append(seq, commonQuestions...)
		seq = append(seq, professionQuestions[p]...)
		sequences[p] = seq
	}

	c, err := New(sequences)
	if err != nil {
		panic(fmt.Sprintf("built-in question catalog is invalid: %v", err))
	}
	return c
}

// Sequence returns a copy of the profession's questions
func (c *Catalog) Sequence(p models.Profession) ([]models.Question, error) {
	seq, ok := c.sequences[p]
	if !ok {
		return nil, apperrors.InvalidInputError("profession", fmt.Sprintf("no question sequence for %q", p))
	}
	out := make([]models.Question, len(seq))
	copy(out, seq)
	return out, nil
}

// Question looks up one question of a profession's sequence
func (c *Catalog) Question(p models.Profession, id string) (models.Question, bool) {
	for _, q := range c.sequences[p] {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

// Professions lists the professions that have a sequence, in display order
func (c *Catalog) Professions() []models.Profession {
	out := make([]models.Profession, 0, len(c.sequences))
	for _, p := range models.Professions {
		if _, ok := c.sequences[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func validateSequence(profession models.Profession, questions []models.Question) error {
	if !profession.Valid() {
		return fmt.Errorf("unknown profession %q", profession)
	}
	if len(questions) == 0 {
		return fmt.Errorf("sequence for %s is empty", profession)
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			return fmt.Errorf("sequence %s question %d: %w", profession, i, err)
		}
		if seen[q.ID] {
			return fmt.Errorf("sequence %s has duplicate question id %q", profession, q.ID)
		}
		seen[q.ID] = true

		if (q.Kind == models.KindMultiChoice) != q.AllowMultiple {
			return fmt.Errorf("sequence %s question %s: allowMultiple does not match kind %s", profession, q.ID, q.Kind)
		}
	}
	return nil
}
