// Package activityapi is the HTTP client for the upstream activities API.
//
// It speaks the three endpoints the board needs (list, signup, remove),
// decodes the activity mapping in document order and turns non-2xx
// responses into *domain.UpstreamError values carrying the server's
// "detail" field. Calls are never retried; a circuit breaker sheds load
// while the API keeps failing.
package activityapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/pscheid92/signupboard/internal/adapter/metrics"
	"github.com/pscheid92/signupboard/internal/domain"
	"github.com/pscheid92/signupboard/internal/platform/correlation"
	"github.com/pscheid92/signupboard/internal/platform/version"
)

const (
	maxBodyBytes = 1 << 20

	opList   = "list"
	opSignup = "signup"
	opRemove = "remove"
)

var _ domain.ActivityService = (*Client)(nil)

// Client calls the activities API rooted at a base URL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker circuitbreaker.CircuitBreaker[any]
	metrics *metrics.UpstreamMetrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb circuitbreaker.CircuitBreaker[any]) Option {
	return func(c *Client) { c.breaker = cb }
}

// NewClient creates a client for the API at baseURL. A trailing path on
// baseURL (e.g. http://api/school) is kept as a prefix.
func NewClient(baseURL string, timeout time.Duration, m *metrics.UpstreamMetrics, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid activities API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("activities API URL must be absolute, got %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		metrics: m,
	}
	c.breaker = NewBreaker(m)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewBreaker builds the default breaker: open after 5 consecutive
// failures, probe again after 15s, close after 1 successful probe.
func NewBreaker(m *metrics.UpstreamMetrics) circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(5).
		WithDelay(15 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Activities API circuit breaker state changed",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if m != nil {
				m.BreakerState.Set(stateToFloat(e.NewState))
			}
		}).
		Build()
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// ListActivities fetches GET /activities. Any failure is reported as
// domain.ErrLoadFailed (or domain.ErrUnavailable while shedding).
func (c *Client) ListActivities(ctx context.Context) (domain.Board, error) {
	status, body, err := c.do(ctx, opList, http.MethodGet, c.endpoint(nil, "activities"), nil)
	if err != nil {
		return domain.Board{}, fmt.Errorf("%w: %w", domain.ErrLoadFailed, err)
	}
	if status < 200 || status > 299 {
		return domain.Board{}, fmt.Errorf("%w: %w", domain.ErrLoadFailed, &domain.UpstreamError{Op: opList, Status: status})
	}

	board, err := decodeBoard(body)
	if err != nil {
		return domain.Board{}, fmt.Errorf("%w: %w", domain.ErrLoadFailed, err)
	}
	return board, nil
}

// Signup issues POST /activities/{name}/signup?email={email}.
func (c *Client) Signup(ctx context.Context, activity, email string) error {
	q := url.Values{"email": []string{email}}
	return c.mutate(ctx, opSignup, http.MethodPost, c.endpoint(q, "activities", activity, "signup"))
}

// RemoveParticipant issues DELETE /activities/{name}/participants?email={email}.
func (c *Client) RemoveParticipant(ctx context.Context, activity, email string) error {
	q := url.Values{"email": []string{email}}
	return c.mutate(ctx, opRemove, http.MethodDelete, c.endpoint(q, "activities", activity, "participants"))
}

func (c *Client) mutate(ctx context.Context, op, method, target string) error {
	status, body, err := c.do(ctx, op, method, target, nil)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &domain.UpstreamError{Op: op, Status: status, Detail: parseDetail(body)}
	}
	return nil
}

// endpoint joins escaped path segments onto the base URL. Each segment is
// percent-encoded on its own so an activity name containing "/" or "?"
// stays a single segment.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.baseURL
	raw := u.EscapedPath()
	for _, s := range segments {
		raw += "/" + url.PathEscape(s)
	}
	u.RawPath = raw
	u.Path, _ = url.PathUnescape(raw)
	u.RawQuery = query.Encode()
	return u.String()
}

// do performs one request through the breaker. A returned error means the
// request failed at the transport level or was shed; HTTP error statuses
// are returned as status codes for the caller to classify.
func (c *Client) do(ctx context.Context, op, method, target string, body io.Reader) (int, []byte, error) {
	if !c.breaker.TryAcquirePermit() {
		c.observe(op, metrics.OutcomeShed)
		return 0, nil, fmt.Errorf("%s: %w", op, domain.ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		c.breaker.RecordSuccess()
		return 0, nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if id, ok := correlation.ID(ctx); ok {
		req.Header.Set(correlation.Header, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		c.metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			// The visitor went away; says nothing about upstream health.
			c.breaker.RecordSuccess()
		} else {
			c.breaker.RecordError(err)
		}
		c.observe(op, metrics.OutcomeError)
		return 0, nil, fmt.Errorf("failed to execute %s request: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.breaker.RecordError(err)
		c.observe(op, metrics.OutcomeError)
		return 0, nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	switch {
	case resp.StatusCode >= 500:
		c.breaker.RecordError(fmt.Errorf("%s: status %d", op, resp.StatusCode))
		c.observe(op, metrics.OutcomeError)
	case resp.StatusCode >= 300:
		c.breaker.RecordSuccess()
		c.observe(op, metrics.OutcomeRejected)
	default:
		c.breaker.RecordSuccess()
		c.observe(op, metrics.OutcomeOK)
	}

	slog.DebugContext(ctx, "Activities API call", "operation", op, "method", method, "status", resp.StatusCode, "latency", time.Since(start))
	return resp.StatusCode, payload, nil
}

func (c *Client) observe(op, outcome string) {
	if c.metrics != nil {
		c.metrics.RequestsTotal.WithLabelValues(op, outcome).Inc()
	}
}

// Ping checks that the activities API answers the list endpoint. Used by
// the readiness probe; bypasses the breaker so probes don't trip it.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(nil, "activities"), nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("activities API unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("activities API returned status %d", resp.StatusCode)
	}
	return nil
}
