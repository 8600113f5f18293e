package profileclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/internal/models"
	"github.com/vsconnecto/vsconnecto-api/pkg/circuitbreaker"
	apperrors "github.com/vsconnecto/vsconnecto-api/pkg/errors"
	"github.com/vsconnecto/vsconnecto-api/pkg/httpclient"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/metrics"
	"github.com/vsconnecto/vsconnecto-api/pkg/retry"
	"github.com/vsconnecto/vsconnecto-api/pkg/tracing"
)

const (
	serviceName  = "profile_api"
	profilePath  = "/users/profile"
	maxBodyBytes = 1 << 20
)

// Client reads and writes profiles through the remote marketplace REST API,
// authenticating as the end user with their bearer token.
type Client struct {
	baseURL    string
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
	retryCfg   retry.Config
}

// New creates a client for baseURL, e.g. https://api.vsconnecto.com/api/v1
func New(baseURL string, httpClient httpclient.Client) *Client {
	cbCfg := circuitbreaker.DefaultConfig(serviceName)
	// a rejected request says nothing about the health of the backend
	cbCfg.IsSuccessful = func(err error) bool {
		return err == nil || !isRetryable(err)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    circuitbreaker.New(cbCfg),
		retryCfg:   retry.ProfileAPIConfig(isRetryable),
	}
}

// GetProfile fetches the caller's profile. Reads are retried on transient failures.
func (c *Client) GetProfile(ctx context.Context, session *models.UserSession) (*models.User, error) {
	return retry.DoWithResult(ctx, c.retryCfg, "profile_api.getProfile", func() (*models.User, error) {
		return circuitbreaker.Execute(c.breaker, func() (*models.User, error) {
			return c.do(ctx, "getProfile", http.MethodGet, session, nil)
		})
	})
}

// UpdateProfile sends a partial update. Writes are not retried.
func (c *Client) UpdateProfile(ctx context.Context, session *models.UserSession, req *models.UpdateProfileRequest) (*models.User, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile update: %w", err)
	}
	return circuitbreaker.Execute(c.breaker, func() (*models.User, error) {
		return c.do(ctx, "updateProfile", http.MethodPut, session, body)
	})
}

func (c *Client) do(ctx context.Context, operation, method string, session *models.UserSession, body []byte) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "profile_api."+operation)
	defer span.End()

	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+profilePath, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	tracing.InjectHeaders(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(ctx, operation, "error", start, zap.Error(err))
		return nil, &apperrors.UpstreamError{Service: serviceName, Message: "profile service unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.record(ctx, operation, "error", start, zap.Error(err))
		return nil, &apperrors.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	var envelope models.ProfileResponse
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := envelope.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.record(ctx, operation, "error", start, zap.Int("status_code", resp.StatusCode))
		return nil, statusError(resp.StatusCode, msg)
	}

	if decodeErr != nil || envelope.Data == nil || envelope.Data.User == nil {
		c.record(ctx, operation, "error", start, zap.Int("status_code", resp.StatusCode))
		return nil, &apperrors.UpstreamError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Message:    "malformed profile response",
			Err:        decodeErr,
		}
	}

	c.record(ctx, operation, "success", start, zap.Int("status_code", resp.StatusCode))
	return envelope.Data.User, nil
}

func (c *Client) record(ctx context.Context, operation, status string, start time.Time, fields ...zap.Field) {
	duration := metrics.MeasureDuration(start)
	metrics.ProfileAPIRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.ProfileAPIRequestTotal.WithLabelValues(operation, status).Inc()
	logger.LogAPICall(ctx, serviceName, operation, status, duration, fields...)
}

// statusError maps a non-2xx response onto the shared error kinds so handlers can pick a status
func statusError(status int, msg string) error {
	upstream := &apperrors.UpstreamError{Service: serviceName, StatusCode: status, Message: msg}
	switch status {
	case http.StatusUnauthorized:
		upstream.Err = apperrors.ErrUnauthorized
	case http.StatusForbidden:
		upstream.Err = apperrors.ErrAccessDenied
	case http.StatusNotFound:
		upstream.Err = apperrors.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		upstream.Err = apperrors.ErrInvalidInput
	}
	return upstream
}

// isRetryable is true for transport failures and 5xx/429 responses
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return false
	}
	var upstream *apperrors.UpstreamError
	if !errors.As(err, &upstream) {
		return false
	}
	if upstream.StatusCode == 0 {
		return true
	}
	return upstream.StatusCode >= 500 || upstream.StatusCode == http.StatusTooManyRequests
}
