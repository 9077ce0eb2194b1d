package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/typeform-survey/survey-client/internal/models"
)

// MockBackendClient is a mock implementation of BackendClient
type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) ExchangeIdentity(ctx context.Context, credential string) (*models.IdentityExchangeResponse, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IdentityExchangeResponse), args.Error(1)
}

func (m *MockBackendClient) UserStatus(ctx context.Context, token string) (*models.UserStatusResponse, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStatusResponse), args.Error(1)
}

func (m *MockBackendClient) SaveProfession(ctx context.Context, token string, profession models.Profession) error {
	args := m.Called(ctx, token, profession)
	return args.Error(0)
}

func (m *MockBackendClient) SubmitSurvey(ctx context.Context, token string, req models.SubmissionRequest) (*models.SubmitResponse, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitResponse), args.Error(1)
}

func (m *MockBackendClient) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}

// MockSubmitter is a mock implementation of Submitter
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, req models.SubmissionRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockSessionAuthority is a mock implementation of SessionAuthority
type MockSessionAuthority struct {
	mock.Mock
}

func (m *MockSessionAuthority) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSessionAuthority) MarkSubmitted(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSessionAuthority) RefreshStatus(ctx context.Context) (*models.SessionStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionStatus), args.Error(1)
}

// countingResetter records Reset calls
type countingResetter struct {
	mu    sync.Mutex
	count int
}

func (r *countingResetter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func (r *countingResetter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
