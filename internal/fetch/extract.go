package fetch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FallbackText replaces the excerpt whenever extraction fails.
const FallbackText = "Content not available"

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// nonContentSelector lists the elements dropped before flattening a page.
const nonContentSelector = "script, style, nav, footer, header, aside"

// Excerpt is the outcome of one extraction. Text is always usable: on
// failure it holds FallbackText and Err holds the cause.
type Excerpt struct {
	URL       string
	Text      string
	Truncated bool
	Err       error
}

// OK reports whether the excerpt came from the page itself.
func (e Excerpt) OK() bool {
	return e.Err == nil
}

// Extractor turns a page URL into a bounded plain-text excerpt.
type Extractor struct {
	client    *Client
	timeout   time.Duration
	maxLength int
	log       *slog.Logger
}

// NewExtractor creates an extractor with the given fetch timeout and excerpt bound.
func NewExtractor(client *Client, timeout time.Duration, maxLength int, log *slog.Logger) *Extractor {
	if client == nil {
		client = NewClient("")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		client:    client,
		timeout:   timeout,
		maxLength: maxLength,
		log:       log,
	}
}

// Extract fetches url once and returns its visible text, truncated to the
// configured bound. It never fails; see Excerpt.
func (e *Extractor) Extract(ctx context.Context, url string) Excerpt {
	resp, err := e.client.Get(ctx, url, e.timeout)
	if err != nil {
		return e.fallback(url, err)
	}
	if !resp.IsText() {
		return e.fallback(url, fmt.Errorf("%s (%s): %w", url, resp.ContentType, ErrNonText))
	}

	text, err := ExtractText(resp.Body)
	if err != nil {
		return e.fallback(url, err)
	}

	truncated := Truncate(text, e.maxLength)
	return Excerpt{
		URL:       url,
		Text:      truncated,
		Truncated: truncated != text,
	}
}

func (e *Extractor) fallback(url string, err error) Excerpt {
	e.log.Warn("Error extracting content", "url", url, "error", err)
	return Excerpt{URL: url, Text: FallbackText, Err: err}
}

// ExtractText strips non-content elements from an HTML document and returns
// its visible text with all whitespace runs collapsed to single spaces.
func ExtractText(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to create goquery document: %w", err)
	}

	doc.Find(nonContentSelector).Remove()

	return CollapseWhitespace(doc.Text()), nil
}

// CollapseWhitespace joins the non-empty fields of s with single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate keeps the first n characters of text and appends Ellipsis when
// anything was cut. Text of n characters or fewer is returned unchanged.
func Truncate(text string, n int) string {
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + Ellipsis
}
