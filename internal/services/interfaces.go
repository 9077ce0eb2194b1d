package services

import (
	"context"

	"github.com/typeform-survey/survey-client/internal/models"
	"github.com/typeform-survey/survey-client/pkg/surveyapi"
)

// BackendClient is the survey backend contract consumed by the services
type BackendClient interface {
	ExchangeIdentity(ctx context.Context, credential string) (*models.IdentityExchangeResponse, error)
	UserStatus(ctx context.Context, token string) (*models.UserStatusResponse, error)
	SaveProfession(ctx context.Context, token string, profession models.Profession) error
	SubmitSurvey(ctx context.Context, token string, req models.SubmissionRequest) (*models.SubmitResponse, error)
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
}

// Submitter transmits a finalized answer set
type Submitter interface {
	Submit(ctx context.Context, req models.SubmissionRequest) error
}

// Resetter is anything that must forget its state on sign-out
type Resetter interface {
	Reset()
}

// AuthServiceInterface defines the interface for the sign-in lifecycle
type AuthServiceInterface interface {
	SignIn(ctx context.Context, credential string) (*models.SessionStatus, error)
	ResumeSession(ctx context.Context) (*models.SessionStatus, error)
	RefreshStatus(ctx context.Context) (*models.SessionStatus, error)
	SaveProfession(ctx context.Context, profession models.Profession)
	SignOut(ctx context.Context) error
	Token(ctx context.Context) (string, error)
}

// ResultsServiceInterface defines the interface for dashboard aggregation
type ResultsServiceInterface interface {
	FetchAll(ctx context.Context) error
	Loaded() bool
	EnsureFresh(ctx context.Context) (stale bool, err error)
	DistributionFor(profession models.Profession, questionID string) (*models.Distribution, error)
	ProfessionDistribution() []models.ProfessionCount
	Summary() models.DashboardSummary
	TextResponses(profession models.Profession, questionID string) ([]models.TextResponse, error)
	QuestionDistributions(profession models.Profession) ([]models.Distribution, error)
}

var (
	_ AuthServiceInterface    = (*AuthService)(nil)
	_ SessionAuthority        = (*AuthService)(nil)
	_ ResultsServiceInterface = (*ResultsService)(nil)
	_ Submitter               = (*SubmissionService)(nil)
	_ Resetter                = (*SurveyEngine)(nil)
	_ BackendClient           = (*surveyapi.Client)(nil)
)
