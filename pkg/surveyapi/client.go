package surveyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/typeform-survey/survey-client/internal/models"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
	"github.com/typeform-survey/survey-client/pkg/httpclient"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"github.com/typeform-survey/survey-client/pkg/metrics"
	"github.com/typeform-survey/survey-client/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const (
	serviceName = "survey-backend"

	pathIdentityExchange = "/api/auth/google"
	pathUserStatus       = "/api/user/status"
	pathSaveProfession   = "/api/user/profession"
	pathSubmitSurvey     = "/api/submit-survey"
	pathSubmissions      = "/api/submissions"

	// RequestIDHeader correlates a client call with backend logs
	RequestIDHeader = "X-Request-ID"
)

// Client is the typed HTTP contract of the survey backend
type Client struct {
	baseURL    string
	httpClient httpclient.Client
	validate   *validator.Validate
}

// NewClient creates a backend client rooted at baseURL
func NewClient(baseURL string, httpClient httpclient.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		validate:   validator.New(),
	}
}

// ExchangeIdentity trades a Google ID token for a backend session token
func (c *Client) ExchangeIdentity(ctx context.Context, credential string) (*models.IdentityExchangeResponse, error) {
	body, err := json.Marshal(models.IdentityExchangeRequest{Token: credential})
	if err != nil {
		return nil, fmt.Errorf("failed to encode identity exchange: %w", err)
	}

	var resp models.IdentityExchangeResponse
	if err := c.call(ctx, "identity_exchange", http.MethodPost, pathIdentityExchange, "", "application/json", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("invalid identity exchange response: %w", err)
	}
	return &resp, nil
}

// UserStatus returns the backend view of the signed-in respondent
func (c *Client) UserStatus(ctx context.Context, token string) (*models.UserStatusResponse, error) {
	var resp models.UserStatusResponse
	if err := c.call(ctx, "user_status", http.MethodGet, pathUserStatus, token, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveProfession records the respondent's profession on the backend
func (c *Client) SaveProfession(ctx context.Context, token string, profession models.Profession) error {
	body, err := json.Marshal(models.SaveProfessionRequest{Profession: profession})
	if err != nil {
		return fmt.Errorf("failed to encode profession: %w", err)
	}
	return c.call(ctx, "save_profession", http.MethodPost, pathSaveProfession, token, "application/json", bytes.NewReader(body), nil)
}

// SubmitSurvey transmits the answer set and attachments as a single multipart request
func (c *Client) SubmitSurvey(ctx context.Context, token string, req models.SubmissionRequest) (*models.SubmitResponse, error) {
	body, contentType, err := encodeSubmission(req)
	if err != nil {
		return nil, err
	}

	var resp models.SubmitResponse
	if err := c.call(ctx, "submit_survey", http.MethodPost, pathSubmitSurvey, token, contentType, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSubmissions fetches every stored submission
func (c *Client) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	var resp []models.Submission
	if err := c.call(ctx, "list_submissions", http.MethodGet, pathSubmissions, "", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func encodeSubmission(req models.SubmissionRequest) (*bytes.Buffer, string, error) {
	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode answers: %w", err)
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if err := w.WriteField("answers", string(answers)); err != nil {
		return nil, "", fmt.Errorf("failed to write answers field: %w", err)
	}
	if err := w.WriteField("profession", string(req.Profession)); err != nil {
		return nil, "", fmt.Errorf("failed to write profession field: %w", err)
	}

	for _, att := range req.Attachments {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, att.FieldName(), att.FileName))
		h.Set("Content-Type", att.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %s: %w", att.FieldName(), err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write part %s: %w", att.FieldName(), err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// call performs one backend round trip. out may be nil when the body is ignored.
func (c *Client) call(ctx context.Context, operation, method, path, token, contentType string, body io.Reader, out interface{}) error {
	start := time.Now()
	requestID := uuid.NewString()

	ctx, span := tracing.StartSpan(ctx, "surveyapi."+operation,
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.String("request.id", requestID),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := metrics.MeasureDuration(start)
		metrics.BackendRequestDuration.WithLabelValues(operation, status).Observe(duration)
		metrics.BackendRequestTotal.WithLabelValues(operation, status).Inc()
		logger.LogAPICall(serviceName, operation, status, duration, zap.String("request_id", requestID))
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	tracing.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	status = fmt.Sprintf("%d", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := decodeError(resp)
		span.SetStatus(codes.Error, httpErr.Error())
		return httpErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

// decodeError reads the backend error body; a missing or foreign body leaves Message empty
func decodeError(resp *http.Response) *apperrors.HTTPError {
	httpErr := &apperrors.HTTPError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return httpErr
	}

	var body models.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		httpErr.Message = body.Message
		if httpErr.Message == "" {
			httpErr.Message = body.Error
		}
	}
	return httpErr
}
