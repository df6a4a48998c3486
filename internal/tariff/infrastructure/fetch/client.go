package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0"
	defaultReferer   = "https://www.95598.cn/"
	defaultAccept    = "application/pdf"
	maxBodyBytes     = 64 << 20
)

var (
	// ErrEmptySource is returned for a blank source.
	ErrEmptySource = errors.New("fetch: empty source")
	// ErrTooLarge is returned when a body exceeds the size limit.
	ErrTooLarge = errors.New("fetch: body too large")
)

// Client downloads tariff documents. Sources are http(s) URLs or local paths.
type Client struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	referer   string
}

// Option configures the client.
type Option func(*Client)

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithReferer overrides the Referer header.
func WithReferer(referer string) Option {
	return func(c *Client) {
		if referer != "" {
			c.referer = referer
		}
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.client.Transport = rt
		}
	}
}

// NewClient constructs a client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		client:    &http.Client{},
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		referer:   defaultReferer,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client.Timeout = c.timeout
	return c
}

// Fetch returns the content of source. There is no retry.
func (c *Client) Fetch(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}
	if !isURL(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("fetch: read file: %w", err)
		}
		return data, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)
	req.Header.Set("Accept", defaultAccept)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch: http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if len(data) > maxBodyBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func isURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
