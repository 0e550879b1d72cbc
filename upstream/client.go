// Package upstream performs the outbound GET requests against the third-party
// sports data APIs. Every call is rate limited and guarded by a circuit
// breaker per host and runs under an explicit timeout.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 32 << 20

// Getter fetches a JSON document. Adapters depend on this instead of Client so
// tests can count calls.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string) ([]byte, error)
}

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned %d", e.URL, e.StatusCode)
}

// Client is safe for concurrent use. Its breakers and limiters live for the
// process lifetime and only shed load, no result depends on them.
type Client struct {
	HTTP    *http.Client
	Timeout time.Duration

	rps   float64
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
}

// New returns a Client whose requests time out after timeout and are limited
// to rps requests per second (with burst) per upstream host.
func New(timeout time.Duration, rps float64, burst int) *Client {
	return &Client{
		HTTP:     &http.Client{},
		Timeout:  timeout,
		rps:      rps,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// GetJSON issues a GET for rawURL and returns the body once it is confirmed to
// be valid JSON.
func (c *Client) GetJSON(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid upstream url '%s'", rawURL)
	}

	limiter, breaker := c.guards(u.Host)

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	if err := limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(err, "rate limited waiting for %s", u.Host)
	}

	out, err := breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, rawURL)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed fetching %s", rawURL)
	}

	return out.([]byte), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	log := zerolog.Ctx(ctx)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed building request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	log.Info().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed reading body")
	}

	if !gjson.ValidBytes(body) {
		return nil, errors.Errorf("GET %s returned invalid JSON", rawURL)
	}

	return body, nil
}

// guards returns the limiter and breaker for host, creating them on first use.
func (c *Client) guards(host string) (*rate.Limiter, *gobreaker.CircuitBreaker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.limiters == nil {
		c.limiters = make(map[string]*rate.Limiter)
		c.breakers = make(map[string]*gobreaker.CircuitBreaker)
	}

	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.rps), c.burst)
		c.limiters[host] = limiter
	}

	breaker, ok := c.breakers[host]
	if !ok {
		breaker = newBreaker(host)
		c.breakers[host] = breaker
	}

	return limiter, breaker
}

func newBreaker(host string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: host}
	st.Interval = 60 * time.Second
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	// a 4xx means the caller asked for something that does not exist, the
	// host itself is fine
	st.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		var se *StatusError
		return errors.As(err, &se) && se.StatusCode < 500
	}
	return gobreaker.NewCircuitBreaker(st)
}
