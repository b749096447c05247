package clients

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"gfdeals/pkg/logging"
)

// maxBufferedBody bounds how much of a retried response is kept in memory.
const maxBufferedBody = 1 << 20

// DefaultShouldRetry determines if an HTTP request should be retried.
// Retries on network errors, server errors (5xx), and rate limits (429).
func DefaultShouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return true
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// HTTPExecutorConfig configures retries and the circuit breaker in front of
// one upstream API.
type HTTPExecutorConfig struct {
	// Name identifies the upstream in logs.
	Name string

	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// BreakerFailures out of BreakerWindow executions open the breaker for
	// BreakerDelay. A zero BreakerWindow disables the breaker.
	BreakerFailures uint
	BreakerWindow   uint
	BreakerDelay    time.Duration

	ShouldRetry func(resp *http.Response, err error) bool
	Logger      logging.Logger

	// OnStateChange observes breaker transitions, e.g. BreakerMetrics.Record.
	OnStateChange func(name, from, to string)
}

// DefaultHTTPExecutorConfig returns defaults tuned for metered search APIs.
func DefaultHTTPExecutorConfig(name string) HTTPExecutorConfig {
	return HTTPExecutorConfig{
		Name:            name,
		MaxRetries:      2,
		BaseDelay:       time.Second,
		MaxDelay:        10 * time.Second,
		BreakerFailures: 5,
		BreakerWindow:   10,
		BreakerDelay:    30 * time.Second,
		ShouldRetry:     DefaultShouldRetry,
	}
}

func normalizeHTTPExecutorConfig(cfg HTTPExecutorConfig) HTTPExecutorConfig {
	if cfg.Name == "" {
		cfg.Name = "http"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.BreakerFailures > cfg.BreakerWindow {
		cfg.BreakerFailures = cfg.BreakerWindow
	}
	if cfg.BreakerDelay <= 0 {
		cfg.BreakerDelay = 15 * time.Second
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = DefaultShouldRetry
	}
	return cfg
}

// HTTPExecutor runs HTTP calls through a failsafe-go retry policy and an
// optional circuit breaker.
type HTTPExecutor struct {
	name        string
	executor    failsafe.Executor[*http.Response]
	breaker     circuitbreaker.CircuitBreaker[*http.Response]
	shouldRetry func(resp *http.Response, err error) bool
}

// NewHTTPExecutor builds an executor from cfg.
//
//nolint:bodyclose // false positive: [*http.Response] is a generic type parameter, not an actual response
func NewHTTPExecutor(cfg HTTPExecutorConfig) *HTTPExecutor {
	cfg = normalizeHTTPExecutorConfig(cfg)

	retry := retrypolicy.NewBuilder[*http.Response]().
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(resp *http.Response, err error) bool {
			return cfg.ShouldRetry(resp, err)
		}).
		Build()

	exec := &HTTPExecutor{name: cfg.Name, shouldRetry: cfg.ShouldRetry}
	if cfg.BreakerWindow == 0 {
		exec.executor = failsafe.With(retry)
		return exec
	}

	builder := circuitbreaker.NewBuilder[*http.Response]().
		WithFailureThresholdRatio(cfg.BreakerFailures, cfg.BreakerWindow).
		WithDelay(cfg.BreakerDelay).
		WithSuccessThreshold(1).
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && (resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests)
		})
	if cfg.Logger != nil || cfg.OnStateChange != nil {
		logger, observe, name := cfg.Logger, cfg.OnStateChange, cfg.Name
		builder = builder.OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			from, to := stateName(event.OldState), stateName(event.NewState)
			if observe != nil {
				observe(name, from, to)
			}
			if logger != nil {
				logger.WithFields(logging.Fields{
					"circuit_breaker": name,
					"from_state":      from,
					"to_state":        to,
				}).Warn("circuit breaker state change")
			}
		})
	}
	exec.breaker = builder.Build()
	exec.executor = failsafe.With(retry, exec.breaker)
	return exec
}

// Name returns the upstream name the executor was built for.
func (e *HTTPExecutor) Name() string { return e.name }

// BreakerOpen reports whether the circuit breaker is currently rejecting calls.
func (e *HTTPExecutor) BreakerOpen() bool {
	return e.breaker != nil && e.breaker.IsOpen()
}

// Do executes fn with retries. Responses that trigger a retry have their body
// buffered and closed so discarded attempts never leak connections. When
// retries run out on a retryable status the last response is returned along
// with the error; the caller owns any non-nil response.
func (e *HTTPExecutor) Do(ctx context.Context, fn func(ctx context.Context) (*http.Response, error)) (*http.Response, error) {
	var last *http.Response
	resp, err := e.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		last = nil
		resp, err := fn(ctx)
		if err == nil && resp != nil && e.shouldRetry(resp, nil) {
			bufferBody(resp)
			last = resp
		}
		return resp, err
	})
	if err != nil && resp == nil && last != nil {
		return last, err
	}
	return resp, err
}

func stateName(state circuitbreaker.State) string {
	switch state {
	case circuitbreaker.ClosedState:
		return "closed"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	case circuitbreaker.OpenState:
		return "open"
	default:
		return "unknown"
	}
}

func bufferBody(resp *http.Response) {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBufferedBody))
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
}
