package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// DefaultUserAgent is a browser-like agent; several sources block obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// ErrNonText is returned when a response is not a text document.
var ErrNonText = errors.New("response is not text content")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch URL %s: status code %d", e.URL, e.Code)
}

// Response is the body and content type of a successful fetch.
type Response struct {
	Body        []byte
	ContentType string
}

// IsText reports whether the response declares a textual media type.
// A missing Content-Type is treated as text.
func (r *Response) IsText() bool {
	if r.ContentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return false
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case mediaType == "application/xhtml+xml",
		mediaType == "application/xml",
		mediaType == "application/rss+xml",
		mediaType == "application/atom+xml",
		mediaType == "application/feed+json",
		mediaType == "application/json":
		return true
	default:
		return false
	}
}

// Client performs single-attempt GET requests with a per-call timeout.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client that sends the given User-Agent. An empty
// agent falls back to DefaultUserAgent.
func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{},
		userAgent:  userAgent,
	}
}

// WithHTTPClient swaps the underlying transport client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Get fetches url. The call is bounded by timeout in addition to ctx.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}

	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
