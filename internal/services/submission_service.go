package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/typeform-survey/survey-client/internal/models"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"github.com/typeform-survey/survey-client/pkg/metrics"
	"go.uber.org/zap"
)

// DefaultMaxAttachmentBytes bounds a single recording
const DefaultMaxAttachmentBytes = 100 << 20

// SessionAuthority is the part of AuthService the submission flow depends on
type SessionAuthority interface {
	Token(ctx context.Context) (string, error)
	MarkSubmitted(ctx context.Context) error
	RefreshStatus(ctx context.Context) (*models.SessionStatus, error)
}

// SubmissionService transmits completed answer sets to the backend
type SubmissionService struct {
	api                BackendClient
	auth               SessionAuthority
	maxAttachmentBytes int64
}

// NewSubmissionService creates a new submission service instance
func NewSubmissionService(api BackendClient, auth SessionAuthority, maxAttachmentBytes int64) *SubmissionService {
	if maxAttachmentBytes <= 0 {
		maxAttachmentBytes = DefaultMaxAttachmentBytes
	}
	return &SubmissionService{
		api:                api,
		auth:               auth,
		maxAttachmentBytes: maxAttachmentBytes,
	}
}

// Submit sends the request once. It never retries; the engine lets the user try again.
func (s *SubmissionService) Submit(ctx context.Context, req models.SubmissionRequest) error {
	start := time.Now()

	attachments, err := s.checkAttachments(req.Attachments)
	if err != nil {
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return err
	}
	req.Attachments = attachments

	token, err := s.auth.Token(ctx)
	if err != nil {
		metrics.Submissions.WithLabelValues("unauthenticated").Inc()
		return err
	}

	resp, err := s.api.SubmitSurvey(ctx, token, req)
	if err != nil {
		metrics.Submissions.WithLabelValues("rejected").Inc()
		logger.Warn("Survey submission failed",
			zap.String("profession", string(req.Profession)),
			zap.Int("status", apperrors.StatusCode(err)),
			zap.Error(err))
		return apperrors.SubmissionRejectedError(err)
	}

	metrics.Submissions.WithLabelValues("success").Inc()
	logger.Info("Survey submitted",
		zap.String("profession", string(req.Profession)),
		zap.Int("answers", len(req.Answers)),
		zap.Int("attachments", len(req.Attachments)),
		zap.String("message", resp.Message),
		zap.Duration("duration", time.Since(start)))

	if err := s.auth.MarkSubmitted(ctx); err != nil {
		logger.Warn("Failed to record submission locally", zap.Error(err))
	}
	if _, err := s.auth.RefreshStatus(ctx); err != nil {
		logger.Warn("Failed to refresh status after submission", zap.Error(err))
	}
	return nil
}

// checkAttachments sniffs each recording and fills in its content type
func (s *SubmissionService) checkAttachments(in []models.Attachment) ([]models.Attachment, error) {
	out := make([]models.Attachment, 0, len(in))
	for _, att := range in {
		if len(att.Data) == 0 {
			return nil, apperrors.InvalidInputError(att.FieldName(), "empty recording")
		}
		if int64(len(att.Data)) > s.maxAttachmentBytes {
			return nil, apperrors.InvalidInputError(att.FieldName(),
				fmt.Sprintf("recording is %d bytes, limit is %d", len(att.Data), s.maxAttachmentBytes))
		}

		mtype := mimetype.Detect(att.Data)
		if !strings.HasPrefix(mtype.String(), "video/") {
			return nil, apperrors.InvalidInputError(att.FieldName(), "not a video: "+mtype.String())
		}
		att.ContentType = mtype.String()
		if att.FileName == "" {
			att.FileName = att.QuestionID + mtype.Extension()
		}
		out = append(out, att)
	}
	return out, nil
}
