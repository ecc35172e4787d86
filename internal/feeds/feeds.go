// Package feeds reads RSS, Atom and JSON feeds into core entries
package feeds

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"geodigest/internal/core"
	"geodigest/internal/fetch"

	"github.com/mmcdole/gofeed"
)

// httpPrefix is the scheme prefix used to decide whether a GUID is a usable link.
const httpPrefix = "http"

// Reader fetches and parses feeds
type Reader struct {
	client  *fetch.Client
	timeout time.Duration
}

// NewReader creates a feed reader using client with the given per-feed timeout
func NewReader(client *fetch.Client, timeout time.Duration) *Reader {
	if client == nil {
		client = fetch.NewClient("")
	}
	return &Reader{client: client, timeout: timeout}
}

// Read fetches feedURL and returns its entries in feed order.
// Items without a usable link are skipped.
func (r *Reader) Read(ctx context.Context, feedURL string) ([]core.Entry, error) {
	resp, err := r.client.Get(ctx, feedURL, r.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries, err := Parse(ctx, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	return entries, nil
}

// Parse parses a feed document. An empty feed returns a non-nil empty slice.
func Parse(ctx context.Context, body []byte) ([]core.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := gofeed.NewParser()

	parsed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	entries := make([]core.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		link := extractLink(item)
		if link == "" {
			continue
		}
		entries = append(entries, core.Entry{
			Title:     strings.TrimSpace(item.Title),
			Link:      link,
			Summary:   extractSummary(item),
			Published: extractPublished(item),
		})
	}

	return entries, nil
}

// extractLink prefers the explicit link, falling back to an http GUID
func extractLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	if strings.HasPrefix(item.GUID, httpPrefix) {
		return item.GUID
	}
	return ""
}

// extractSummary returns the description, or the content when there is none,
// as plain text. Feeds such as Google News put markup in the description.
func extractSummary(item *gofeed.Item) string {
	raw := strings.TrimSpace(item.Description)
	if raw == "" {
		raw = strings.TrimSpace(item.Content)
	}
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}
	text, err := fetch.ExtractText([]byte(raw))
	if err != nil {
		return fetch.CollapseWhitespace(raw)
	}
	return text
}

// extractPublished keeps the feed's own date text; scoring matches on it verbatim
func extractPublished(item *gofeed.Item) string {
	if item.Published != "" {
		return strings.TrimSpace(item.Published)
	}
	return strings.TrimSpace(item.Updated)
}
