package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "legalsts/1.0 (dataset-builder)"
	maxBodyBytes     = 5 * 1024 * 1024
)

// Client downloads pages for the scrape stage
type Client struct {
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger (default: slog.Default())
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client with a 30s timeout
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the raw body of an http(s) URL
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Scrape fetches every URL into dir/<slug>.html. A page that fails is
// logged and skipped; the paths written are returned.
func (c *Client) Scrape(ctx context.Context, dir string, urls []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scrape dir: %w", err)
	}

	var written []string
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		body, err := c.Fetch(ctx, u)
		if err != nil {
			c.logger.Warn("page skipped", "url", u, "err", err)
			continue
		}
		path := filepath.Join(dir, Slug(u)+".html")
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		c.logger.Info("page saved", "url", u, "path", path, "bytes", len(body))
		written = append(written, path)
	}
	return written, nil
}

// IsURL checks if a string looks like a URL
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "www.")
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a URL into a file name: host, path and query, lowercased,
// with every other character run replaced by '-'
func Slug(rawURL string) string {
	s := strings.ToLower(rawURL)
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		s = u.Host + u.Path
		if u.RawQuery != "" {
			s += "-" + u.RawQuery
		}
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
}
