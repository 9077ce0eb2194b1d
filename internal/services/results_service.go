package services

import (
	"context"
	"sort"

	"github.com/typeform-survey/survey-client/internal/cache"
	"github.com/typeform-survey/survey-client/internal/catalog"
	"github.com/typeform-survey/survey-client/internal/models"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"go.uber.org/zap"
)

// ResultsService aggregates fetched submissions into chart data. Every
// aggregate is a pure function of the cached list.
type ResultsService struct {
	cache   *cache.SubmissionsCache
	catalog *catalog.Catalog
}

// NewResultsService creates a new results service instance
func NewResultsService(submissions *cache.SubmissionsCache, c *catalog.Catalog) *ResultsService {
	return &ResultsService{
		cache:   submissions,
		catalog: c,
	}
}

// FetchAll replaces the cached submissions with the backend's current list
func (s *ResultsService) FetchAll(ctx context.Context) error {
	if _, err := s.cache.Refresh(ctx); err != nil {
		logger.Error("Failed to fetch submissions", zap.Error(err))
		return apperrors.FetchFailedError(err)
	}
	return nil
}

// Loaded reports whether a fetched list is currently cached
func (s *ResultsService) Loaded() bool {
	return s.cache.Has()
}

// EnsureFresh refetches when the cached list is missing or stale. A failed
// refetch over an existing list is not an error: the last good list keeps
// being served and stale reports it.
func (s *ResultsService) EnsureFresh(ctx context.Context) (stale bool, err error) {
	if !s.cache.Stale() {
		return false, nil
	}

	err = s.FetchAll(ctx)
	switch {
	case err == nil:
		return false, nil
	case s.cache.Has():
		logger.Warn("Serving stale submissions after failed refresh",
			zap.Time("fetched_at", s.cache.FetchedAt()), zap.Error(err))
		return true, nil
	default:
		return false, err
	}
}

func (s *ResultsService) submissions() []models.Submission {
	subs, _ := s.cache.Get()
	return subs
}

// DistributionFor counts, for every defined option of a choice question, the
// records of profession whose answer equals or contains it. Options are
// returned in definition order including zero counts.
func (s *ResultsService) DistributionFor(profession models.Profession, questionID string) (*models.Distribution, error) {
	q, ok := s.catalog.Question(profession, questionID)
	if !ok {
		return nil, apperrors.InvalidInputError("question", "unknown question "+questionID+" for "+string(profession))
	}
	if !q.IsChoice() {
		return nil, apperrors.InvalidInputError("question", questionID+" is not a choice question")
	}

	dist := distribution(profession, q, s.submissions())
	return &dist, nil
}

func distribution(profession models.Profession, q models.Question, subs []models.Submission) models.Distribution {
	dist := models.Distribution{
		Profession:   profession,
		QuestionID:   q.ID,
		QuestionText: q.Text,
		Options:      make([]models.OptionCount, len(q.Options)),
	}
	for i, opt := range q.Options {
		dist.Options[i] = models.OptionCount{Option: opt}
	}

	for _, sub := range subs {
		if sub.Profession != profession {
			continue
		}
		answer, ok := sub.Answers[q.ID]
		if !ok || answer.Empty() {
			continue
		}

		dist.Responses++
		matched := false
		for i, opt := range q.Options {
			if answerMatches(answer, opt) {
				dist.Options[i].Count++
				matched = true
			}
		}
		if !matched {
			dist.Unrecognized++
		}
	}
	return dist
}

func answerMatches(answer models.AnswerValue, option string) bool {
	if answer.IsSet() {
		return answer.Contains(option)
	}
	return answer.Text() == option
}

// QuestionDistributions returns DistributionFor every choice question of the profession, in sequence order
func (s *ResultsService) QuestionDistributions(profession models.Profession) ([]models.Distribution, error) {
	seq, err := s.catalog.Sequence(profession)
	if err != nil {
		return nil, err
	}

	subs := s.submissions()
	out := make([]models.Distribution, 0, len(seq))
	for _, q := range seq {
		if !q.IsChoice() {
			continue
		}
		out = append(out, distribution(profession, q, subs))
	}
	return out, nil
}

// ProfessionDistribution counts records per profession tag. Known professions
// come first in catalog order, then unknown tags alphabetically.
func (s *ResultsService) ProfessionDistribution() []models.ProfessionCount {
	counts := map[models.Profession]int{}
	for _, sub := range s.submissions() {
		counts[sub.Profession]++
	}

	out := make([]models.ProfessionCount, 0, len(counts))
	for _, p := range s.catalog.Professions() {
		if n, ok := counts[p]; ok {
			out = append(out, models.ProfessionCount{Profession: p, Label: p.Label(), Count: n})
			delete(counts, p)
		}
	}

	unknown := make([]models.Profession, 0, len(counts))
	for p := range counts {
		unknown = append(unknown, p)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, p := range unknown {
		out = append(out, models.ProfessionCount{Profession: p, Label: p.Label(), Count: counts[p]})
	}
	return out
}

// Summary returns the headline figures of the dashboard
func (s *ResultsService) Summary() models.DashboardSummary {
	subs := s.submissions()
	summary := models.DashboardSummary{TotalResponses: len(subs)}

	seen := map[models.Profession]struct{}{}
	for i := range subs {
		seen[subs[i].Profession] = struct{}{}
		ts := subs[i].Timestamp
		if ts.IsZero() {
			continue
		}
		if summary.LatestResponse == nil || ts.After(*summary.LatestResponse) {
			summary.LatestResponse = &ts
		}
	}
	summary.ProfessionsRepresented = len(seen)
	return summary
}

// TextResponses lists the free-text answers to a question, newest first
func (s *ResultsService) TextResponses(profession models.Profession, questionID string) ([]models.TextResponse, error) {
	q, ok := s.catalog.Question(profession, questionID)
	if !ok {
		return nil, apperrors.InvalidInputError("question", "unknown question "+questionID+" for "+string(profession))
	}
	if q.Kind != models.KindText {
		return nil, apperrors.InvalidInputError("question", questionID+" is not a free-text question")
	}

	out := []models.TextResponse{}
	for _, sub := range s.submissions() {
		if sub.Profession != profession {
			continue
		}
		answer, ok := sub.Answers[questionID]
		if !ok || answer.IsSet() || answer.Text() == "" {
			continue
		}
		out = append(out, models.TextResponse{Email: sub.Email, Answer: answer.Text(), Timestamp: sub.Timestamp})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}
