package session

import (
	"context"
	"fmt"
	"time"

	"github.com/typeform-survey/survey-client/internal/models"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
	"github.com/typeform-survey/survey-client/pkg/jwt"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"go.uber.org/zap"
)

// Store is the only durable home of the identity token. A nil *Session from
// Load means no session is persisted.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, token string) error
	SaveShadow(ctx context.Context, shadow Shadow) error
	Clear(ctx context.Context) error
}

// Shadow is a locally cached copy of the submission status, written only
// after the backend confirmed a submission (or reported one)
type Shadow struct {
	Email        string    `json:"email"`
	HasSubmitted bool      `json:"hasSubmitted"`
	Timestamp    time.Time `json:"timestamp"`
}

// Session is a decoded persisted token plus its shadow status
type Session struct {
	Token  string
	Claims *jwt.SessionClaims
	Shadow *Shadow
}

// Expired reports whether the token may no longer be used at now
func (s *Session) Expired(now time.Time) bool {
	return s.Claims.ExpiredAt(now)
}

// HasSubmitted reconciles the token claim with the shadow copy: the claim
// decides unless a shadow for the same user reports a submission.
func (s *Session) HasSubmitted() bool {
	if s.Claims.HasSubmitted {
		return true
	}
	return s.Shadow != nil && s.Shadow.HasSubmitted && s.Shadow.Email == s.Claims.Email
}

// Profile returns the identity carried by the token
func (s *Session) Profile() models.UserProfile {
	return models.UserProfile{
		Email:   s.Claims.Email,
		Name:    s.Claims.Name,
		Picture: s.Claims.Picture,
	}
}

// Profession returns the server-asserted profession, nil when unset
func (s *Session) Profession() *models.Profession {
	return models.ProfessionFromClaim(s.Claims.Profession)
}

// Status is the reconciled status view of the session
func (s *Session) Status() models.SessionStatus {
	return models.SessionStatus{
		Profile:      s.Profile(),
		HasSubmitted: s.HasSubmitted(),
		Profession:   s.Profession(),
	}
}

// record is the persisted document shared by every backend
type record struct {
	Token  string  `json:"token"`
	Shadow *Shadow `json:"shadow,omitempty"`
}

func decodeRecord(rec record) (*Session, error) {
	claims, err := jwt.Decode(rec.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	return &Session{Token: rec.Token, Claims: claims, Shadow: rec.Shadow}, nil
}

// nextRecord applies Save semantics: the token is replaced and a shadow
// that belongs to someone else is dropped
func nextRecord(prev *record, token string) (record, *jwt.SessionClaims, error) {
	claims, err := jwt.Decode(token)
	if err != nil {
		return record{}, nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	next := record{Token: token}
	if prev != nil && prev.Shadow != nil && prev.Shadow.Email == claims.Email {
		next.Shadow = prev.Shadow
	}
	return next, claims, nil
}

func logCorruptSession(backend string, err error) {
	logger.Warn("Discarding undecodable session",
		zap.String("backend", backend),
		zap.Error(err))
}
