package trigger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/vsconnecto/vsconnecto-api/pkg/httpclient"
	"github.com/vsconnecto/vsconnecto-api/pkg/logger"
	"github.com/vsconnecto/vsconnecto-api/pkg/tracing"
)

const callTimeout = 10 * time.Second

// Event is the payload passed to a trigger URL as query parameters
type Event struct {
	Name   string
	UserID string
	Role   string
}

// Notifier calls an external hook when something happens to a profile.
// Calls run in the background; failures are logged and never reach the caller.
type Notifier struct {
	triggerURL string
	httpClient httpclient.Client
	wg         sync.WaitGroup
}

// NewNotifier returns a notifier for triggerURL. An empty URL disables it.
func NewNotifier(triggerURL string, httpClient httpclient.Client) *Notifier {
	return &Notifier{
		triggerURL: triggerURL,
		httpClient: httpClient,
	}
}

// Enabled reports whether a trigger URL is configured
func (n *Notifier) Enabled() bool {
	return n != nil && n.triggerURL != ""
}

// CallAsync fires the trigger without blocking. The span context of ctx is propagated,
// but its cancellation is not, so the call outlives the request that caused it.
func (n *Notifier) CallAsync(ctx context.Context, event Event) {
	if !n.Enabled() {
		return
	}

	targetURL, err := buildURL(n.triggerURL, event)
	if err != nil {
		logger.Error("Invalid trigger URL", zap.Error(err), zap.String("event", event.Name))
		return
	}

	headers := http.Header{}
	tracing.InjectHeaders(ctx, propagation.HeaderCarrier(headers))

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.call(targetURL, headers, event)
	}()
}

// Wait blocks until every in-flight call has finished
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) call(targetURL string, headers http.Header, event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		logger.Error("Failed to build trigger request", zap.Error(err), zap.String("event", event.Name))
		return
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	logger.Info("Calling trigger URL",
		zap.String("event", event.Name),
		zap.String("user_id", event.UserID))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to call trigger URL",
			zap.Error(err),
			zap.String("event", event.Name),
			zap.String("user_id", event.UserID))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.Info("Trigger URL called successfully",
			zap.String("event", event.Name),
			zap.String("user_id", event.UserID),
			zap.Int("status_code", resp.StatusCode))
	} else {
		logger.Warn("Trigger URL returned non-success status",
			zap.String("event", event.Name),
			zap.String("user_id", event.UserID),
			zap.Int("status_code", resp.StatusCode))
	}
}

func buildURL(base string, event Event) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse trigger url: %w", err)
	}
	q := u.Query()
	q.Set("event", event.Name)
	q.Set("user_id", event.UserID)
	if event.Role != "" {
		q.Set("role", event.Role)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
