package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typeform-survey/survey-client/internal/models"
)

func TestDefault_EverySequenceIsWellFormed(t *testing.T) {
	c := Default()

	assert.Equal(t, models.Professions, c.Professions())
	for _, p := range models.Professions {
		seq, err := c.Sequence(p)
		require.NoError(t, err)
		require.NotEmpty(t, seq)

		assert.Equal(t, "common_1", seq[0].ID, "sequence %s starts with the shared block", p)

		ids := map[string]bool{}
		for _, q := range seq {
			assert.False(t, ids[q.ID], "duplicate id %s in %s", q.ID, p)
			ids[q.ID] = true
			if q.IsChoice() {
				assert.NotEmpty(t, q.Options)
			}
		}
	}
}

func TestDefault_AgeQuestion(t *testing.T) {
	q, ok := Default().Question(models.ProfessionStudent, "common_1")
	require.True(t, ok)

	assert.Equal(t, models.KindSingleChoice, q.Kind)
	assert.True(t, q.HasOption("20–29"))
	assert.True(t, q.HasOption("30–39"))
}

func TestSequence_ReturnsCopy(t *testing.T) {
	c := Default()
	seq, err := c.Sequence(models.ProfessionDoctor)
	require.NoError(t, err)

	seq[0].Text = "mutated"

	again, err := c.Sequence(models.ProfessionDoctor)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0].Text)
}

func TestSequence_UnknownProfession(t *testing.T) {
	_, err := Default().Sequence(models.Profession("astronaut"))
	assert.Error(t, err)
}

func TestNew_RejectsInvalidSequences(t *testing.T) {
	valid := models.Question{ID: "q1", Text: "Q?", Kind: models.KindSingleChoice, Options: []string{"a"}}

	tests := []struct {
		name      string
		sequences map[models.Profession][]models.Question
	}{
		{
			name:      "empty catalog",
			sequences: map[models.Profession][]models.Question{},
		},
		{
			name:      "empty sequence",
			sequences: map[models.Profession][]models.Question{models.ProfessionDoctor: {}},
		},
		{
			name:      "duplicate ids",
			sequences: map[models.Profession][]models.Question{models.ProfessionDoctor: {valid, valid}},
		},
		{
			name: "choice without options",
			sequences: map[models.Profession][]models.Question{models.ProfessionDoctor: {
				{ID: "q1", Text: "Q?", Kind: models.KindSingleChoice},
			}},
		},
		{
			name: "multi choice without allowMultiple",
			sequences: map[models.Profession][]models.Question{models.ProfessionDoctor: {
				{ID: "q1", Text: "Q?", Kind: models.KindMultiChoice, Options: []string{"a"}},
			}},
		},
		{
			name:      "unknown profession",
			sequences: map[models.Profession][]models.Question{"astronaut": {valid}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sequences)
			assert.Error(t, err)
		})
	}
}
