package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/typeform-survey/survey-client/internal/models"
	"github.com/typeform-survey/survey-client/internal/services"
	"github.com/typeform-survey/survey-client/internal/session"
	"github.com/typeform-survey/survey-client/pkg/jwt"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"github.com/typeform-survey/survey-client/pkg/retry"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

const testSecret = "test-secret"

func signToken(t *testing.T, email string, hasSubmitted bool, profession *string, exp time.Time) string {
	t.Helper()
	token, err := jwt.Sign(jwt.NewSessionClaims(email, "Test User", hasSubmitted, profession, exp), testSecret)
	require.NoError(t, err)
	return token
}

func newStore(t *testing.T) *session.FileStore {
	t.Helper()
	return session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
}

// fastAuthConfig keeps the 1-2-4 backoff shape at millisecond scale
func fastAuthConfig() services.AuthConfig {
	cfg := services.DefaultAuthConfig()
	cfg.Retry = retry.IdentityExchangeConfig(nil)
	cfg.Retry.InitialDelay = time.Millisecond
	return cfg
}

func strPtr(s string) *string {
	return &s
}

// answerCurrent stages a qualifying answer for whatever question is current
func answerCurrent(t *testing.T, e *services.SurveyEngine) {
	t.Helper()
	snap := e.Snapshot()
	require.NotNil(t, snap.Question)
	q := snap.Question
	if q.Kind == models.KindText {
		require.NoError(t, e.SetText("answer to "+q.ID))
		return
	}
	require.NoError(t, e.SelectOption(q.Options[0]))
}

// answerUntilLast answers and advances until the last question is current
func answerUntilLast(t *testing.T, e *services.SurveyEngine) {
	t.Helper()
	for {
		snap := e.Snapshot()
		if snap.Index == snap.Total-1 {
			return
		}
		answerCurrent(t, e)
		require.NoError(t, e.Advance(context.Background()))
	}
}
