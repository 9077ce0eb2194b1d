package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/typeform-survey/survey-client/internal/cache"
	"github.com/typeform-survey/survey-client/internal/catalog"
	"github.com/typeform-survey/survey-client/internal/models"
	"github.com/typeform-survey/survey-client/internal/services"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
)

var baseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func record(email string, p models.Profession, offset time.Duration, answers models.AnswerSet) models.Submission {
	return models.Submission{Email: email, Profession: p, Answers: answers, Timestamp: baseTime.Add(offset)}
}

func newResultsService(t *testing.T, subs []models.Submission) (*services.ResultsService, *MockBackendClient) {
	t.Helper()
	api := new(MockBackendClient)
	svc := services.NewResultsService(cache.NewSubmissionsCache(api, time.Hour), catalog.Default())
	if subs != nil {
		api.On("ListSubmissions", mock.Anything).Return(subs, nil).Once()
		require.NoError(t, svc.FetchAll(context.Background()))
	}
	return svc, api
}

func counts(d *models.Distribution) map[string]int {
	out := map[string]int{}
	for _, oc := range d.Options {
		out[oc.Option] = oc.Count
	}
	return out
}

func TestDistributionFor_NoDataListsEveryOptionAtZero(t *testing.T) {
	svc, _ := newResultsService(t, nil)

	for _, p := range models.Professions {
		seq, err := catalog.Default().Sequence(p)
		require.NoError(t, err)
		for _, q := range seq {
			if !q.IsChoice() {
				continue
			}
			dist, err := svc.DistributionFor(p, q.ID)
			require.NoError(t, err)
			require.Len(t, dist.Options, len(q.Options))
			for i, oc := range dist.Options {
				assert.Equal(t, q.Options[i], oc.Option)
				assert.Zero(t, oc.Count)
			}
		}
	}
}

func TestDistributionFor_AgeGroupCounts(t *testing.T) {
	svc, _ := newResultsService(t, []models.Submission{
		record("a@example.com", models.ProfessionStudent, 0, models.AnswerSet{"common_1": models.TextAnswer("20–29")}),
		record("b@example.com", models.ProfessionStudent, time.Minute, models.AnswerSet{"common_1": models.TextAnswer("20–29")}),
		record("c@example.com", models.ProfessionStudent, 2*time.Minute, models.AnswerSet{"common_1": models.TextAnswer("30–39")}),
	})

	dist, err := svc.DistributionFor(models.ProfessionStudent, "common_1")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"Under 20":    0,
		"20–29":       2,
		"30–39":       1,
		"40–49":       0,
		"50–59":       0,
		"60 or older": 0,
	}, counts(dist))
	assert.Equal(t, 3, dist.Responses)
	assert.Zero(t, dist.Unrecognized)
}

func TestDistributionFor_FiltersProfessionAndCountsSets(t *testing.T) {
	q, ok := catalog.Default().Question(models.ProfessionDoctor, "common_2")
	require.True(t, ok)
	require.Equal(t, models.KindMultiChoice, q.Kind)

	svc, _ := newResultsService(t, []models.Submission{
		record("a@example.com", models.ProfessionDoctor, 0, models.AnswerSet{"common_2": models.SetAnswer(q.Options[0], q.Options[1])}),
		record("b@example.com", models.ProfessionDoctor, 0, models.AnswerSet{"common_2": models.SetAnswer(q.Options[1])}),
		record("c@example.com", models.ProfessionStudent, 0, models.AnswerSet{"common_2": models.SetAnswer(q.Options[0])}),
		record("d@example.com", models.ProfessionDoctor, 0, models.AnswerSet{"common_2": models.TextAnswer("legacy value")}),
		record("e@example.com", models.ProfessionDoctor, 0, models.AnswerSet{}),
	})

	dist, err := svc.DistributionFor(models.ProfessionDoctor, "common_2")
	require.NoError(t, err)

	c := counts(dist)
	assert.Equal(t, 1, c[q.Options[0]])
	assert.Equal(t, 2, c[q.Options[1]])
	assert.Equal(t, 3, dist.Responses)
	assert.Equal(t, 1, dist.Unrecognized)
	assert.NotContains(t, c, "legacy value")
}

func TestDistributionFor_IsDeterministic(t *testing.T) {
	svc, _ := newResultsService(t, []models.Submission{
		record("a@example.com", models.ProfessionStudent, 0, models.AnswerSet{"common_1": models.TextAnswer("20–29")}),
		record("b@example.com", "retired", 0, models.AnswerSet{}),
		record("c@example.com", models.ProfessionDoctor, 0, models.AnswerSet{}),
		record("d@example.com", "astronaut", 0, models.AnswerSet{}),
	})

	first, err := svc.DistributionFor(models.ProfessionStudent, "common_1")
	require.NoError(t, err)
	second, err := svc.DistributionFor(models.ProfessionStudent, "common_1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, svc.ProfessionDistribution(), svc.ProfessionDistribution())
}

func TestDistributionFor_RejectsUnknownAndTextQuestions(t *testing.T) {
	svc, _ := newResultsService(t, nil)

	_, err := svc.DistributionFor(models.ProfessionStudent, "nope")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.DistributionFor(models.ProfessionStudent, "student_2")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestProfessionDistribution_Ordering(t *testing.T) {
	svc, _ := newResultsService(t, []models.Submission{
		record("a@example.com", models.ProfessionOther, 0, nil),
		record("b@example.com", "retired", 0, nil),
		record("c@example.com", models.ProfessionStudent, 0, nil),
		record("d@example.com", models.ProfessionStudent, 0, nil),
		record("e@example.com", "astronaut", 0, nil),
	})

	got := svc.ProfessionDistribution()

	require.Len(t, got, 4)
	assert.Equal(t, models.ProfessionCount{Profession: models.ProfessionStudent, Label: "Student", Count: 2}, got[0])
	assert.Equal(t, models.ProfessionCount{Profession: models.ProfessionOther, Label: "Other", Count: 1}, got[1])
	assert.Equal(t, models.Profession("astronaut"), got[2].Profession)
	assert.Equal(t, models.Profession("retired"), got[3].Profession)
}

func TestFetchAll_FailureKeepsPreviousData(t *testing.T) {
	svc, api := newResultsService(t, []models.Submission{
		record("a@example.com", models.ProfessionStudent, 0, nil),
	})
	api.On("ListSubmissions", mock.Anything).Return(nil, assert.AnError).Once()

	err := svc.FetchAll(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrFetchFailed)
	assert.Equal(t, 1, svc.Summary().TotalResponses)
}

func TestFetchAll_ReplacesWholesale(t *testing.T) {
	svc, api := newResultsService(t, []models.Submission{
		record("a@example.com", models.ProfessionStudent, 0, nil),
		record("b@example.com", models.ProfessionStudent, 0, nil),
	})
	api.On("ListSubmissions", mock.Anything).Return([]models.Submission{
		record("c@example.com", models.ProfessionDoctor, 0, nil),
	}, nil).Once()

	require.NoError(t, svc.FetchAll(context.Background()))

	got := svc.ProfessionDistribution()
	require.Len(t, got, 1)
	assert.Equal(t, models.ProfessionDoctor, got[0].Profession)
}

func TestSummary(t *testing.T) {
	svc, _ := newResultsService(t, []models.Submission{
		record("a@example.com", models.ProfessionStudent, time.Hour, nil),
		record("b@example.com", models.ProfessionDoctor, 3*time.Hour, nil),
		record("c@example.com", models.ProfessionStudent, 2*time.Hour, nil),
	})

	summary := svc.Summary()

	assert.Equal(t, 3, summary.TotalResponses)
	assert.Equal(t, 2, summary.ProfessionsRepresented)
	require.NotNil(t, summary.LatestResponse)
	assert.True(t, baseTime.Add(3*time.Hour).Equal(*summary.LatestResponse))
}

func TestTextResponses_NewestFirst(t *testing.T) {
	svc, _ := newResultsService(t, []models.Submission{
		record("old@example.com", models.ProfessionDoctor, time.Hour, models.AnswerSet{"doctor_2": models.TextAnswer("staffing")}),
		record("new@example.com", models.ProfessionDoctor, 2*time.Hour, models.AnswerSet{"doctor_2": models.TextAnswer("burnout")}),
		record("empty@example.com", models.ProfessionDoctor, 3*time.Hour, models.AnswerSet{"doctor_2": models.TextAnswer("")}),
		record("student@example.com", models.ProfessionStudent, 4*time.Hour, models.AnswerSet{"doctor_2": models.TextAnswer("n/a")}),
	})

	rows, err := svc.TextResponses(models.ProfessionDoctor, "doctor_2")

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new@example.com", rows[0].Email)
	assert.Equal(t, "burnout", rows[0].Answer)
	assert.Equal(t, "old@example.com", rows[1].Email)

	_, err = svc.TextResponses(models.ProfessionDoctor, "common_1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestQuestionDistributions_CoversChoiceQuestions(t *testing.T) {
	svc, _ := newResultsService(t, nil)

	dists, err := svc.QuestionDistributions(models.ProfessionDoctor)
	require.NoError(t, err)

	seq, err := catalog.Default().Sequence(models.ProfessionDoctor)
	require.NoError(t, err)
	choice := 0
	for _, q := range seq {
		if q.IsChoice() {
			assert.Equal(t, q.ID, dists[choice].QuestionID)
			choice++
		}
	}
	assert.Len(t, dists, choice)
}

func TestEnsureFresh_ServesLastGoodListAfterExpiry(t *testing.T) {
	api := new(MockBackendClient)
	svc := services.NewResultsService(cache.NewSubmissionsCache(api, 20*time.Millisecond), catalog.Default())
	api.On("ListSubmissions", mock.Anything).Return([]models.Submission{
		record("a@example.com", models.ProfessionDoctor, 0, models.AnswerSet{"common_1": models.TextAnswer("30–39")}),
	}, nil).Once()

	stale, err := svc.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)

	time.Sleep(40 * time.Millisecond)
	api.On("ListSubmissions", mock.Anything).Return(nil, assert.AnError).Once()

	stale, err = svc.EnsureFresh(context.Background())

	require.NoError(t, err)
	assert.True(t, stale)
	assert.True(t, svc.Loaded())
	dist, err := svc.DistributionFor(models.ProfessionDoctor, "common_1")
	require.NoError(t, err)
	assert.Equal(t, 1, dist.Responses)
	assert.Len(t, svc.ProfessionDistribution(), 1)
	api.AssertNumberOfCalls(t, "ListSubmissions", 2)
}

func TestEnsureFresh_NothingLoadedIsAnError(t *testing.T) {
	svc, api := newResultsService(t, nil)
	api.On("ListSubmissions", mock.Anything).Return(nil, assert.AnError).Once()

	_, err := svc.EnsureFresh(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrFetchFailed)
	assert.False(t, svc.Loaded())
}

func TestEnsureFresh_FreshListIsNotRefetched(t *testing.T) {
	svc, api := newResultsService(t, []models.Submission{record("a@example.com", models.ProfessionStudent, 0, nil)})

	stale, err := svc.EnsureFresh(context.Background())

	require.NoError(t, err)
	assert.False(t, stale)
	api.AssertNumberOfCalls(t, "ListSubmissions", 1)
}
