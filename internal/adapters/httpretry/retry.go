// Package httpretry sends outbound HTTP requests with retries, exponential
// backoff and a shared request budget.
package httpretry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultMaxRetries = 3
	DefaultBackoff    = 500 * time.Millisecond
)

// ErrRetriesExhausted is wrapped by every error returned after the last attempt failed.
var ErrRetriesExhausted = errors.New("request failed after retries")

// Doer retries requests that fail with a transport error, 429 or 5xx.
// Every attempt first waits on Limiter when one is set.
type Doer struct {
	HTTPClient  *http.Client
	MaxRetries  int
	BaseBackoff time.Duration
	Limiter     *rate.Limiter
	// Name prefixes log lines and errors, e.g. "itunes adapter".
	Name string
}

// New returns a Doer with the given retry settings.
func New(name string, httpClient *http.Client, maxRetries int, baseBackoff time.Duration, limiter *rate.Limiter) *Doer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Doer{
		HTTPClient:  httpClient,
		MaxRetries:  maxRetries,
		BaseBackoff: baseBackoff,
		Limiter:     limiter,
		Name:        name,
	}
}

// PerMinute builds a limiter allowing n requests a minute with a burst of one.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

// Do sends req, retrying as configured. A non-nil response is the first
// non-retryable one; the caller closes its body.
func (d *Doer) Do(req *http.Request) (*http.Response, error) {
	maxRetries := d.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	baseBackoff := d.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = DefaultBackoff
	}

	if req.Body != nil && req.GetBody == nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: read request body: %w", d.name(), err)
		}
		_ = req.Body.Close()
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(bodyBytes)), nil
		}
	}

	ctx := req.Context()
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: request canceled: %w", d.name(), err)
		}
		if d.Limiter != nil {
			if err := d.Limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%s: rate limit wait: %w", d.name(), err)
			}
		}

		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("%s: reset request body: %w", d.name(), err)
			}
			req.Body = body
		}

		// #nosec G107 -- URL built from the configured provider base URL
		resp, err := d.client().Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		attemptNum := attempt + 1
		if err != nil {
			log.Printf("WARN %s: retry attempt %d/%d after error: %v", d.name(), attemptNum, maxRetries, err) // #nosec G706 -- error value is from trusted internal HTTP operation
		} else if resp != nil {
			log.Printf("WARN %s: retry attempt %d/%d after status %d", d.name(), attemptNum, maxRetries, resp.StatusCode) // #nosec G706 -- status code is numeric from trusted HTTP response
			_ = resp.Body.Close()
		}

		if attempt == maxRetries-1 {
			if err != nil {
				return nil, fmt.Errorf("%s: %w (%d attempts): %w", d.name(), ErrRetriesExhausted, maxRetries, err)
			}
			return nil, fmt.Errorf("%s: %w (%d attempts): status %d", d.name(), ErrRetriesExhausted, maxRetries, resp.StatusCode)
		}

		backoff := baseBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}

		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, fmt.Errorf("%s: %w", d.name(), err)
		}
	}

	return nil, fmt.Errorf("%s: %w (%d attempts)", d.name(), ErrRetriesExhausted, maxRetries)
}

func (d *Doer) client() *http.Client {
	if d.HTTPClient == nil {
		return http.DefaultClient
	}
	return d.HTTPClient
}

func (d *Doer) name() string {
	if d.Name == "" {
		return "http"
	}
	return d.Name
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		// a canceled caller is not worth another attempt
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, false
		}
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}

	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
