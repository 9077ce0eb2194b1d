package services_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/typeform-survey/survey-client/internal/models"
	"github.com/typeform-survey/survey-client/internal/services"
	"github.com/typeform-survey/survey-client/internal/session"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
)

func exchangeResponse(token string, hasSubmitted bool, profession *string) *models.IdentityExchangeResponse {
	return &models.IdentityExchangeResponse{
		Token:        token,
		User:         models.UserProfile{Email: "ada@example.com", Name: "Ada", Picture: "https://example.com/ada.png"},
		HasSubmitted: hasSubmitted,
		Profession:   profession,
	}
}

func TestSignIn_Success(t *testing.T) {
	store := newStore(t)
	api := new(MockBackendClient)
	svc := services.NewAuthService(store, api, fastAuthConfig())

	token := signToken(t, "ada@example.com", false, nil, time.Now().Add(time.Hour))
	api.On("ExchangeIdentity", mock.Anything, "google-credential").
		Return(exchangeResponse(token, false, strPtr("doctor")), nil)

	status, err := svc.SignIn(context.Background(), "google-credential")

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", status.Profile.Email)
	assert.Equal(t, "https://example.com/ada.png", status.Profile.Picture)
	assert.False(t, status.HasSubmitted)
	require.NotNil(t, status.Profession)
	assert.Equal(t, models.ProfessionDoctor, *status.Profession)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, stored.Token)
	api.AssertExpectations(t)
}

func TestSignIn_ReportedSubmissionIsShadowed(t *testing.T) {
	store := newStore(t)
	api := new(MockBackendClient)
	svc := services.NewAuthService(store, api, fastAuthConfig())

	token := signToken(t, "ada@example.com", false, nil, time.Now().Add(time.Hour))
	api.On("ExchangeIdentity", mock.Anything, "cred").Return(exchangeResponse(token, true, nil), nil)

	status, err := svc.SignIn(context.Background(), "cred")
	require.NoError(t, err)
	assert.True(t, status.HasSubmitted)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored.Shadow)
	assert.True(t, stored.HasSubmitted())
}

func TestSignIn_Rejected(t *testing.T) {
	api := new(MockBackendClient)
	svc := services.NewAuthService(newStore(t), api, fastAuthConfig())

	api.On("ExchangeIdentity", mock.Anything, "bad").
		Return(nil, &apperrors.HTTPError{StatusCode: http.StatusUnauthorized, Message: "invalid credential"})

	_, err := svc.SignIn(context.Background(), "bad")

	assert.ErrorIs(t, err, apperrors.ErrAuthRejected)
	assert.Contains(t, err.Error(), "invalid credential")
	api.AssertNumberOfCalls(t, "ExchangeIdentity", 1)
}

func TestSignIn_RateLimitedRetriesThreeTimesThenSurfaces(t *testing.T) {
	api := new(MockBackendClient)
	svc := services.NewAuthService(newStore(t), api, fastAuthConfig())

	api.On("ExchangeIdentity", mock.Anything, "cred").
		Return(nil, &apperrors.HTTPError{StatusCode: http.StatusTooManyRequests})

	_, err := svc.SignIn(context.Background(), "cred")

	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	assert.Contains(t, err.Error(), "please wait a few minutes")
	api.AssertNumberOfCalls(t, "ExchangeIdentity", 4)
}

func TestSignIn_RateLimitedThenSucceeds(t *testing.T) {
	store := newStore(t)
	api := new(MockBackendClient)
	svc := services.NewAuthService(store, api, fastAuthConfig())

	token := signToken(t, "ada@example.com", false, nil, time.Now().Add(time.Hour))
	api.On("ExchangeIdentity", mock.Anything, "cred").
		Return(nil, &apperrors.HTTPError{StatusCode: http.StatusTooManyRequests}).Twice()
	api.On("ExchangeIdentity", mock.Anything, "cred").
		Return(exchangeResponse(token, false, nil), nil).Once()

	status, err := svc.SignIn(context.Background(), "cred")

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", status.Profile.Email)
	api.AssertNumberOfCalls(t, "ExchangeIdentity", 3)
}

func TestSignIn_UndecodableTokenIsNotPersisted(t *testing.T) {
	store := newStore(t)
	api := new(MockBackendClient)
	svc := services.NewAuthService(store, api, fastAuthConfig())

	api.On("ExchangeIdentity", mock.Anything, "cred").Return(exchangeResponse("not-a-jwt", false, nil), nil)

	_, err := svc.SignIn(context.Background(), "cred")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestResumeSession_Absent(t *testing.T) {
	api := new(MockBackendClient)
	svc := services.NewAuthService(newStore(t), api, fastAuthConfig())

	status, err := svc.ResumeSession(context.Background())

	require.NoError(t, err)
	assert.Nil(t, status)
	api.AssertNotCalled(t, "UserStatus", mock.Anything, mock.Anything)
}

func TestResumeSession_ExpiredTokenClearedWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	api := new(MockBackendClient)
	resetter := &countingResetter{}
	svc := services.NewAuthService(store, api, fastAuthConfig())
	svc.RegisterResetter(resetter)

	require.NoError(t, store.Save(ctx, signToken(t, "ada@example.com", false, nil, time.Now().Add(-time.Minute))))

	status, err := svc.ResumeSession(ctx)

	require.NoError(t, err)
	assert.Nil(t, status)
	api.AssertNotCalled(t, "UserStatus", mock.Anything, mock.Anything)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Equal(t, 1, resetter.Count())
}

func TestResumeSession_ExpiryUsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	api := new(MockBackendClient)
	exp := time.Now().Add(time.Hour)

	cfg := fastAuthConfig()
	cfg.Now = func() time.Time { return exp.Add(time.Second) }
	svc := services.NewAuthService(store, api, cfg)

	require.NoError(t, store.Save(ctx, signToken(t, "ada@example.com", false, nil, exp)))

	status, err := svc.ResumeSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, status)
	api.AssertNotCalled(t, "UserStatus", mock.Anything, mock.Anything)
}

func TestResumeSession_UnauthenticatedStatusLogsOut(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			api := new(MockBackendClient)
			svc := services.NewAuthService(store, api, fastAuthConfig())

			token := signToken(t, "ada@example.com", false, nil, time.Now().Add(time.Hour))
			require.NoError(t, store.Save(ctx, token))
			api.On("UserStatus", mock.Anything, token).Return(nil, &apperrors.HTTPError{StatusCode: code})

			status, err := svc.ResumeSession(ctx)

			require.NoError(t, err)
			assert.Nil(t, status)
			stored, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, stored)
		})
	}
}

func TestResumeSession_BackendDownKeepsLocalStatus(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	api := new(MockBackendClient)
	svc := services.NewAuthService(store, api, fastAuthConfig())

	token := signToken(t, "ada@example.com", true, strPtr("student"), time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, token))
	api.On("UserStatus", mock.Anything, token).Return(nil, &apperrors.HTTPError{StatusCode: http.StatusBadGateway})

	status, err := svc.ResumeSession(ctx)

	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.HasSubmitted)
	require.NotNil(t, status.Profession)
	assert.Equal(t, models.ProfessionStudent, *status.Profession)
}

func TestResumeSession_ShadowWinsOverStaleClaim(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	api := new(MockBackendClient)
	cfg := fastAuthConfig()
	cfg.VerifyOnResume = false
	svc := services.NewAuthService(store, api, cfg)

	require.NoError(t, store.Save(ctx, signToken(t, "ada@example.com", false, nil, time.Now().Add(time.Hour))))
	require.NoError(t, store.SaveShadow(ctx, session.Shadow{Email: "ada@example.com", HasSubmitted: true, Timestamp: time.Now()}))

	status, err := svc.ResumeSession(ctx)

	require.NoError(t, err)
	assert.True(t, status.HasSubmitted)
	api.AssertNotCalled(t, "UserStatus", mock.Anything, mock.Anything)
}

func TestResumeSession_CorruptStoreIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewAuthService(store, new(MockBackendClient), fastAuthConfig())

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"token":"garbage"}`), 0o600))

	status, err := svc.ResumeSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestToken_NeverReturnsExpired(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	svc := services.NewAuthService(store, new(MockBackendClient), fastAuthConfig())

	_, err := svc.Token(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	require.NoError(t, store.Save(ctx, signToken(t, "ada@example.com", false, nil, time.Now().Add(-time.Second))))
	_, err = svc.Token(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSaveProfession_FailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	api := new(MockBackendClient)
	svc := services.NewAuthService(store, api, fastAuthConfig())

	token := signToken(t, "ada@example.com", false, nil, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, token))
	api.On("SaveProfession", mock.Anything, token, models.ProfessionDoctor).Return(assert.AnError)

	assert.NotPanics(t, func() { svc.SaveProfession(ctx, models.ProfessionDoctor) })
	api.AssertExpectations(t)
}

func TestSignOut_ClearsStoreAndResets(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	resetter := &countingResetter{}
	svc := services.NewAuthService(store, new(MockBackendClient), fastAuthConfig())
	svc.RegisterResetter(resetter)

	require.NoError(t, store.Save(ctx, signToken(t, "ada@example.com", false, nil, time.Now().Add(time.Hour))))

	require.NoError(t, svc.SignOut(ctx))
	require.NoError(t, svc.SignOut(ctx))

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Equal(t, 2, resetter.Count())
}

func TestRefreshStatus_UnauthenticatedLogsOut(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	api := new(MockBackendClient)
	svc := services.NewAuthService(store, api, fastAuthConfig())

	token := signToken(t, "ada@example.com", false, nil, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, token))
	api.On("UserStatus", mock.Anything, token).Return(nil, &apperrors.HTTPError{StatusCode: http.StatusUnauthorized})

	_, err := svc.RefreshStatus(ctx)

	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
