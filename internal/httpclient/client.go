// Package httpclient builds the HTTP client used for the GitHub API.
package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Option configures the client.
type Option func(*config)

type config struct {
	timeout time.Duration
	limiter *rate.Limiter
	base    http.RoundTripper
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *config) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithTransport replaces the underlying transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) { c.base = rt }
}

// New returns an *http.Client that applies the configured rate limit.
func New(opts ...Option) *http.Client {
	c := &config{timeout: 30 * time.Second, base: http.DefaultTransport}
	for _, opt := range opts {
		opt(c)
	}
	var rt http.RoundTripper = c.base
	if c.limiter != nil {
		rt = &Transport{Base: c.base, Limiter: c.limiter}
	}
	return &http.Client{Timeout: c.timeout, Transport: rt}
}

// Transport waits on Limiter before handing each request to Base.
type Transport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
