package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/typeform-survey/survey-client/internal/catalog"
	"github.com/typeform-survey/survey-client/internal/models"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"github.com/typeform-survey/survey-client/pkg/metrics"
	"go.uber.org/zap"
)

// State is the survey engine lifecycle position
type State int

const (
	StateIdle State = iota
	StateSelectingProfession
	StateAnswering
	StateSubmitting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelectingProfession:
		return "selecting_profession"
	case StateAnswering:
		return "answering"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable view of the engine for rendering
type Snapshot struct {
	State      State
	Profession models.Profession
	// Index is the 0-based current question; meaningful while answering or submitting
	Index    int
	Total    int
	Question *models.Question
	Staged   models.AnswerValue
	// Attachment is the media staged for the current question, if any
	Attachment *models.Attachment
	Answered   int
	CanAdvance bool
	LastError  error
}

// Progress is the completed share of the sequence in percent
func (s Snapshot) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	if s.State == StateCompleted {
		return 100
	}
	return float64(s.Index) / float64(s.Total) * 100
}

// SurveyEngine walks one respondent through the question sequence of their profession
type SurveyEngine struct {
	catalog   *catalog.Catalog
	submitter Submitter

	mu          sync.Mutex
	state       State
	profession  models.Profession
	sequence    []models.Question
	index       int
	answers     models.AnswerSet
	staged      models.AnswerValue
	attachments map[string]models.Attachment
	lastErr     error
	// generation changes on every Reset so a late submission result is discarded
	generation uint64
}

// NewSurveyEngine creates an idle engine
func NewSurveyEngine(c *catalog.Catalog, submitter Submitter) *SurveyEngine {
	return &SurveyEngine{
		catalog:     c,
		submitter:   submitter,
		answers:     models.AnswerSet{},
		attachments: map[string]models.Attachment{},
	}
}

// Start leaves Idle. A known profession skips the selection step.
func (e *SurveyEngine) Start(profession *models.Profession) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return fmt.Errorf("%w: start from %s", apperrors.ErrInvalidTransition, e.state)
	}

	e.transition(StateSelectingProfession)
	if profession == nil {
		return nil
	}
	return e.chooseProfession(*profession)
}

// ChooseProfession selects the sequence and starts answering from the first question
func (e *SurveyEngine) ChooseProfession(p models.Profession) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateSelectingProfession {
		return fmt.Errorf("%w: choose profession from %s", apperrors.ErrInvalidTransition, e.state)
	}
	return e.chooseProfession(p)
}

func (e *SurveyEngine) chooseProfession(p models.Profession) error {
	seq, err := e.catalog.Sequence(p)
	if err != nil {
		return err
	}

	e.profession = p
	e.sequence = seq
	e.index = 0
	e.answers = models.AnswerSet{}
	e.attachments = map[string]models.Attachment{}
	e.staged = models.AnswerValue{}
	e.lastErr = nil
	e.transition(StateAnswering)
	return nil
}

// SelectOption stages a choice: multi-choice toggles it, single-choice replaces the answer
func (e *SurveyEngine) SelectOption(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.editableQuestion()
	if err != nil {
		return err
	}
	if !q.IsChoice() {
		return apperrors.InvalidInputError(q.ID, "question takes free text")
	}
	if !q.HasOption(label) {
		return apperrors.InvalidInputError(q.ID, fmt.Sprintf("unknown option %q", label))
	}

	if q.Kind == models.KindMultiChoice {
		e.staged = e.staged.Toggle(label)
	} else {
		e.staged = models.TextAnswer(label)
	}
	return nil
}

// SetText stages a free-text answer
func (e *SurveyEngine) SetText(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.editableQuestion()
	if err != nil {
		return err
	}
	if q.Kind != models.KindText {
		return apperrors.InvalidInputError(q.ID, "question takes options")
	}

	e.staged = models.TextAnswer(value)
	return nil
}

// AttachMedia stages a recording for the current question, replacing any earlier one
func (e *SurveyEngine) AttachMedia(att models.Attachment) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, err := e.editableQuestion()
	if err != nil {
		return err
	}
	if !q.AllowVideoUpload {
		return apperrors.InvalidInputError(q.ID, "question does not accept uploads")
	}

	att.QuestionID = q.ID
	e.attachments[q.ID] = att
	return nil
}

// CanAdvance reports whether the advance control should be enabled
func (e *SurveyEngine) CanAdvance() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canAdvance()
}

func (e *SurveyEngine) canAdvance() bool {
	if e.state != StateAnswering {
		return false
	}
	return e.sequence[e.index].Qualifies(e.staged)
}

// Advance records the staged answer and moves on. At the last question the
// whole answer set is checked and handed to the Submitter.
func (e *SurveyEngine) Advance(ctx context.Context) error {
	e.mu.Lock()

	switch e.state {
	case StateAnswering:
	case StateSubmitting:
		e.mu.Unlock()
		return apperrors.ErrSubmissionInFlight
	default:
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: advance from %s", apperrors.ErrInvalidTransition, state)
	}

	q := e.sequence[e.index]
	if !q.Qualifies(e.staged) {
		e.mu.Unlock()
		return apperrors.ErrIncompleteAnswer
	}
	e.answers[q.ID] = e.staged

	if e.index < len(e.sequence)-1 {
		e.index++
		e.staged = e.answers[e.sequence[e.index].ID]
		metrics.SurveyTransitions.WithLabelValues(StateAnswering.String(), StateAnswering.String()).Inc()
		e.mu.Unlock()
		return nil
	}

	for _, seqQ := range e.sequence {
		if !seqQ.Qualifies(e.answers[seqQ.ID]) {
			e.mu.Unlock()
			logger.Debug("Submission blocked by unanswered question", zap.String("question_id", seqQ.ID))
			return fmt.Errorf("%w: %s", apperrors.ErrIncompleteAnswer, seqQ.ID)
		}
	}

	req := e.submissionRequest()
	generation := e.generation
	e.lastErr = nil
	e.transition(StateSubmitting)
	e.mu.Unlock()

	err := e.submitter.Submit(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.generation != generation || e.state != StateSubmitting {
		logger.Debug("Discarding submission result after reset")
		return err
	}
	if err != nil {
		e.lastErr = err
		e.transition(StateAnswering)
		return err
	}

	e.transition(StateCompleted)
	return nil
}

// Back returns to the previous question with its recorded answer staged
func (e *SurveyEngine) Back() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAnswering || e.index == 0 {
		return fmt.Errorf("%w: back from %s", apperrors.ErrInvalidTransition, e.state)
	}

	if q := e.sequence[e.index]; !e.staged.Empty() {
		e.answers[q.ID] = e.staged
	}
	e.index--
	e.staged = e.answers[e.sequence[e.index].ID]
	return nil
}

// Reset discards all progress and returns to Idle. A submission in flight
// is not cancelled; its result is ignored.
func (e *SurveyEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.profession = ""
	e.sequence = nil
	e.index = 0
	e.answers = models.AnswerSet{}
	e.attachments = map[string]models.Attachment{}
	e.staged = models.AnswerValue{}
	e.lastErr = nil
	e.transition(StateIdle)
}

// LastError is the most recent submission failure, cleared on the next attempt
func (e *SurveyEngine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// State returns the current lifecycle state
func (e *SurveyEngine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns a copy of everything needed to render the current step
func (e *SurveyEngine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:      e.state,
		Profession: e.profession,
		Index:      e.index,
		Total:      len(e.sequence),
		Staged:     e.staged,
		Answered:   len(e.answers),
		CanAdvance: e.canAdvance(),
		LastError:  e.lastErr,
	}
	if (e.state == StateAnswering || e.state == StateSubmitting) && e.index < len(e.sequence) {
		q := e.sequence[e.index]
		snap.Question = &q
		if att, ok := e.attachments[q.ID]; ok {
			snap.Attachment = &att
		}
	}
	return snap
}

func (e *SurveyEngine) editableQuestion() (models.Question, error) {
	switch e.state {
	case StateAnswering:
		return e.sequence[e.index], nil
	case StateSubmitting:
		return models.Question{}, apperrors.ErrSubmissionInFlight
	default:
		return models.Question{}, fmt.Errorf("%w: edit answer in %s", apperrors.ErrInvalidTransition, e.state)
	}
}

// submissionRequest freezes the answers and orders attachments by sequence position
func (e *SurveyEngine) submissionRequest() models.SubmissionRequest {
	req := models.SubmissionRequest{
		Profession: e.profession,
		Answers:    e.answers.Clone(),
	}
	for _, q := range e.sequence {
		if att, ok := e.attachments[q.ID]; ok {
			req.Attachments = append(req.Attachments, att)
		}
	}
	return req
}

func (e *SurveyEngine) transition(to State) {
	if e.state == to {
		return
	}
	metrics.SurveyTransitions.WithLabelValues(e.state.String(), to.String()).Inc()
	logger.Debug("Survey state changed",
		zap.String("from", e.state.String()),
		zap.String("to", to.String()))
	e.state = to
}
