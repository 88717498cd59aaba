package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Request is a single outbound HTTP request. Body is a byte slice rather
// than a reader so retries can replay it without buffering logic.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is the final HTTP response after retries.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte

	// Attempts is how many attempts were made to get this response
	Attempts int
}

// Client executes HTTP requests with bounded retries and exponential
// backoff. Each Do call carries independent retry state; the client is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	policy     *RetryPolicy
	timeout    time.Duration
	logger     *slog.Logger

	// sleep is swappable in tests to avoid real backoff waits
	sleep func(ctx context.Context, d time.Duration) error

	// maxResponseBytes caps response body reads
	maxResponseBytes int64
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy *RetryPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithTimeout sets the per-attempt timeout (default: 30s).
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the structured logger for attempt-level logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client with the default retry policy.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:       &http.Client{},
		policy:           DefaultRetryPolicy(),
		timeout:          30 * time.Second,
		logger:           slog.Default(),
		sleep:            sleepContext,
		maxResponseBytes: 10 << 20, // 10 MiB
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes the request, retrying retryable failures up to the policy's
// MaxAttempts. Non-retryable failures and context cancellation return
// immediately. Failures always surface as *Error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var lastErr *Error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, cancelledError(err, attempt-1)
		}

		resp, err := c.doAttempt(ctx, req)
		if err == nil {
			resp.Attempts = attempt
			return resp, nil
		}

		err.Attempts = attempt
		lastErr = err

		if !err.Retryable || attempt == c.policy.MaxAttempts {
			break
		}

		delay := c.policy.backoff(attempt, parseRetryAfter(err.RetryAfter))
		c.logger.Debug("retrying request",
			"method", req.Method,
			"url", req.URL,
			"attempt", attempt,
			"status", err.StatusCode,
			"delay", delay.String())

		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return nil, cancelledError(sleepErr, attempt)
		}
	}

	return nil, lastErr
}

// doAttempt executes one attempt with its own timeout.
func (c *Client) doAttempt(ctx context.Context, req *Request) (*Response, *Error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL, body)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeInvalidReq,
			Message: fmt.Sprintf("building request: %v", err),
			Cause:   err,
		}
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyNetworkError(err, ctx)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxResponseBytes))
	if err != nil {
		return nil, &Error{
			Type:      ErrorTypeConnection,
			Message:   "reading response body",
			Retryable: true,
			Cause:     err,
		}
	}

	if c.policy.IsRetryableStatus(httpResp.StatusCode) || httpResp.StatusCode >= 400 {
		return nil, c.statusError(httpResp, respBody)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}, nil
}

// statusError builds a classified error from a non-2xx response.
func (c *Client) statusError(resp *http.Response, body []byte) *Error {
	errType := classifyStatus(resp.StatusCode)
	message := http.StatusText(resp.StatusCode)
	if message == "" {
		message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return &Error{
		Type:       errType,
		StatusCode: resp.StatusCode,
		Message:    message,
		Retryable:  c.policy.IsRetryableStatus(resp.StatusCode),
		RetryAfter: resp.Header.Get("Retry-After"),
		Cause:      fmt.Errorf("%s: %s", resp.Status, truncate(body, 512)),
	}
}

// classifyNetworkError maps transport-level failures to error types.
// Timeouts and connection errors are retryable; cancellation is not.
func classifyNetworkError(err error, ctx context.Context) *Error {
	if ctx.Err() != nil {
		return cancelledError(ctx.Err(), 0)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{
			Type:      ErrorTypeTimeout,
			Message:   "request timed out",
			Retryable: true,
			Cause:     err,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Type:      ErrorTypeTimeout,
			Message:   "request timed out",
			Retryable: true,
			Cause:     err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &Error{
			Type:      ErrorTypeTimeout,
			Message:   "request timed out",
			Retryable: true,
			Cause:     err,
		}
	}

	return &Error{
		Type:      ErrorTypeConnection,
		Message:   "connection failed",
		Retryable: true,
		Cause:     err,
	}
}

func cancelledError(cause error, attempts int) *Error {
	return &Error{
		Type:     ErrorTypeCancelled,
		Message:  "request cancelled",
		Attempts: attempts,
		Cause:    cause,
	}
}

func validateRequest(req *Request) *Error {
	if req == nil {
		return &Error{Type: ErrorTypeInvalidReq, Message: "request is nil"}
	}
	if req.Method == "" {
		return &Error{Type: ErrorTypeInvalidReq, Message: "method is required"}
	}
	if req.URL == "" {
		return &Error{Type: ErrorTypeInvalidReq, Message: "url is required"}
	}
	return nil
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
