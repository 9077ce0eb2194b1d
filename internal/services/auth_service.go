package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/typeform-survey/survey-client/internal/models"
	"github.com/typeform-survey/survey-client/internal/session"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"github.com/typeform-survey/survey-client/pkg/metrics"
	"github.com/typeform-survey/survey-client/pkg/retry"
	"go.uber.org/zap"
)

// AuthConfig tunes the sign-in lifecycle
type AuthConfig struct {
	// Retry is the identity exchange backoff; RetryableErrors is always replaced
	Retry retry.Config
	// VerifyOnResume checks a resumed session against the backend
	VerifyOnResume bool
	// Now is the clock used for token expiry; defaults to time.Now
	Now func() time.Time
}

// DefaultAuthConfig retries a throttled exchange after 1s, 2s and 4s and verifies resumed sessions
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Retry:          retry.IdentityExchangeConfig(nil),
		VerifyOnResume: true,
		Now:            time.Now,
	}
}

// AuthService exchanges identity credentials for backend sessions and owns their lifecycle
type AuthService struct {
	store  session.Store
	api    BackendClient
	config AuthConfig

	mu        sync.Mutex
	resetters []Resetter
}

// NewAuthService creates a new auth service instance
func NewAuthService(store session.Store, api BackendClient, cfg AuthConfig) *AuthService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Retry.RetryableErrors = isRateLimited

	return &AuthService{
		store:  store,
		api:    api,
		config: cfg,
	}
}

// RegisterResetter adds state that is discarded on sign-out
func (s *AuthService) RegisterResetter(r Resetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetters = append(s.resetters, r)
}

func isRateLimited(err error) bool {
	return errors.Is(err, apperrors.ErrRateLimited)
}

// SignIn posts the provider credential to the backend and persists the issued token
func (s *AuthService) SignIn(ctx context.Context, credential string) (*models.SessionStatus, error) {
	resp, err := retry.DoWithResult(ctx, s.config.Retry, "identity_exchange", func() (*models.IdentityExchangeResponse, error) {
		resp, err := s.api.ExchangeIdentity(ctx, credential)
		if apperrors.StatusCode(err) == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrRateLimited, err)
		}
		return resp, err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrRateLimited) {
			metrics.SignIns.WithLabelValues("rate_limited").Inc()
			logger.Warn("Sign-in throttled after all retries", zap.Error(err))
			return nil, apperrors.RateLimitedError()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		metrics.SignIns.WithLabelValues("rejected").Inc()
		logger.Warn("Sign-in rejected", zap.Error(err))
		return nil, apperrors.AuthRejectedError(err)
	}

	if err := s.store.Save(ctx, resp.Token); err != nil {
		metrics.SignIns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	sess, err := s.store.Load(ctx)
	if err != nil || sess == nil {
		metrics.SignIns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to reload session: %w", err)
	}

	status := sess.Status()
	if resp.User.Email != "" {
		status.Profile = resp.User
	}
	s.applyRemote(ctx, sess, resp.HasSubmitted, resp.Profession, &status)

	metrics.SignIns.WithLabelValues("success").Inc()
	logger.Info("Signed in",
		zap.String("email", status.Profile.Email),
		zap.Bool("has_submitted", status.HasSubmitted))

	return &status, nil
}

// ResumeSession restores a persisted session. A nil status means the user must sign in.
func (s *AuthService) ResumeSession(ctx context.Context) (*models.SessionStatus, error) {
	sess, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidToken) {
			logger.Info("Stored session was unreadable, signing out")
			return nil, nil
		}
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	if sess.Expired(s.config.Now()) {
		logger.Info("Stored session expired", zap.Time("expired_at", sess.Claims.ExpiresAtTime()))
		return nil, s.logout(ctx)
	}

	status := sess.Status()
	if !s.config.VerifyOnResume {
		return &status, nil
	}

	remote, err := s.api.UserStatus(ctx, sess.Token)
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			logger.Info("Backend no longer accepts the stored session", zap.Int("status", apperrors.StatusCode(err)))
			return nil, s.logout(ctx)
		}
		logger.Warn("Could not verify stored session, using cached status", zap.Error(err))
		return &status, nil
	}

	s.applyRemote(ctx, sess, remote.HasSubmitted, remote.Profession, &status)
	return &status, nil
}

// RefreshStatus re-reads the submission status of the current session from the backend
func (s *AuthService) RefreshStatus(ctx context.Context) (*models.SessionStatus, error) {
	sess, err := s.activeSession(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := s.api.UserStatus(ctx, sess.Token)
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			if logoutErr := s.logout(ctx); logoutErr != nil {
				return nil, errors.Join(apperrors.ErrInvalidToken, logoutErr)
			}
			return nil, fmt.Errorf("%w: session rejected by backend", apperrors.ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to refresh status: %w", err)
	}

	status := sess.Status()
	s.applyRemote(ctx, sess, remote.HasSubmitted, remote.Profession, &status)
	return &status, nil
}

// SaveProfession records the chosen profession on the backend. Failures are logged only.
func (s *AuthService) SaveProfession(ctx context.Context, profession models.Profession) {
	token, err := s.Token(ctx)
	if err != nil {
		logger.Debug("Skipping profession save without a session", zap.Error(err))
		return
	}
	if err := s.api.SaveProfession(ctx, token, profession); err != nil {
		logger.Warn("Failed to save profession",
			zap.String("profession", string(profession)),
			zap.Error(err))
	}
}

// SignOut clears the session and every registered survey state
func (s *AuthService) SignOut(ctx context.Context) error {
	logger.Info("Signing out")
	return s.logout(ctx)
}

// Token returns the bearer token for outgoing requests. An expired token is
// cleared and never returned.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	sess, err := s.activeSession(ctx)
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// MarkSubmitted stores the shadow status for the current user after a confirmed submission
func (s *AuthService) MarkSubmitted(ctx context.Context) error {
	sess, err := s.activeSession(ctx)
	if err != nil {
		return err
	}
	return s.store.SaveShadow(ctx, session.Shadow{
		Email:        sess.Claims.Email,
		HasSubmitted: true,
		Timestamp:    s.config.Now(),
	})
}

func (s *AuthService) activeSession(ctx context.Context) (*session.Session, error) {
	sess, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: not signed in", apperrors.ErrInvalidToken)
	}
	if sess.Expired(s.config.Now()) {
		if err := s.logout(ctx); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: session expired", apperrors.ErrInvalidToken)
	}
	return sess, nil
}

// applyRemote merges a backend status into status; a reported submission is shadowed locally
func (s *AuthService) applyRemote(ctx context.Context, sess *session.Session, hasSubmitted bool, profession *string, status *models.SessionStatus) {
	if p := models.ProfessionFromClaim(profession); p != nil {
		status.Profession = p
	}
	if !hasSubmitted {
		return
	}

	status.HasSubmitted = true
	shadow := session.Shadow{Email: sess.Claims.Email, HasSubmitted: true, Timestamp: s.config.Now()}
	if err := s.store.SaveShadow(ctx, shadow); err != nil {
		logger.Warn("Failed to store submission status", zap.Error(err))
	}
}

func (s *AuthService) logout(ctx context.Context) error {
	s.mu.Lock()
	resetters := append([]Resetter(nil), s.resetters...)
	s.mu.Unlock()

	for _, r := range resetters {
		r.Reset()
	}

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
