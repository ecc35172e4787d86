// Package sources collects scored candidates from the configured feeds
package sources

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"geodigest/internal/core"
	"geodigest/internal/fetch"
	"geodigest/internal/relevance"
)

// ErrNoEntries is recorded for a feed that parsed but returned nothing.
var ErrNoEntries = errors.New("feed returned no entries")

// FeedReader reads the entries of one feed.
type FeedReader interface {
	Read(ctx context.Context, url string) ([]core.Entry, error)
}

// ContentExtractor returns a text excerpt for an article page.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) fetch.Excerpt
}

// FeedResult is the outcome of processing one source.
type FeedResult struct {
	Source          core.Source
	Entries         int // entries considered, after the per-feed limit
	Candidates      int
	Extractions     int
	ExtractFailures int
	Err             error
}

// Result is the outcome of one collection pass.
type Result struct {
	Candidates []core.Candidate
	Feeds      []FeedResult
	Err        error // set when the context ended the pass early
}

// FailedFeeds counts sources that produced an error.
func (r Result) FailedFeeds() int {
	n := 0
	for _, f := range r.Feeds {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Aggregator walks sources one at a time and builds scored candidates.
type Aggregator struct {
	reader    FeedReader
	extractor ContentExtractor
	policy    Policy
	calendar  relevance.Calendar
	keywords  *relevance.KeywordScorer
	trends    *relevance.TrendScorer
	log       *slog.Logger
}

// NewAggregator creates an aggregator for one variant policy.
func NewAggregator(reader FeedReader, extractor ContentExtractor, policy Policy, cal relevance.Calendar, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		reader:    reader,
		extractor: extractor,
		policy:    policy,
		calendar:  cal,
		keywords:  relevance.NewKeywordScorer(cal),
		trends:    relevance.NewTrendScorer(cal),
		log:       log,
	}
}

// Collect reads every source in order. Feed failures are recorded in the
// result and never abort the pass. Links are unique across the result.
func (a *Aggregator) Collect(ctx context.Context, sources []core.Source) Result {
	result := Result{Candidates: []core.Candidate{}}
	seen := NewSeenSet()

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			a.log.Warn("Aggregation cancelled", "reason", err)
			result.Err = err
			break
		}

		fr, candidates := a.collectSource(ctx, src, seen)
		result.Feeds = append(result.Feeds, fr)
		result.Candidates = append(result.Candidates, candidates...)
	}
	if result.Err == nil && ctx.Err() != nil {
		a.log.Warn("Aggregation cancelled", "reason", ctx.Err())
		result.Err = ctx.Err()
	}

	a.log.Info("Aggregation completed",
		"variant", a.policy.Variant,
		"feeds", len(result.Feeds),
		"failed", result.FailedFeeds(),
		"candidates", len(result.Candidates),
	)
	return result
}

func (a *Aggregator) collectSource(ctx context.Context, src core.Source, seen *SeenSet) (FeedResult, []core.Candidate) {
	fr := FeedResult{Source: src}
	a.log.Info("Checking feed", "source", src.DisplayName(), "url", src.URL)

	entries, err := a.reader.Read(ctx, src.URL)
	if err != nil {
		a.log.Warn("Error processing feed", "url", src.URL, "error", err)
		fr.Err = err
		return fr, nil
	}
	if len(entries) == 0 {
		a.log.Warn("No entries found in feed", "url", src.URL)
		fr.Err = ErrNoEntries
		return fr, nil
	}

	if limit := a.policy.EntriesPerFeed; limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	fr.Entries = len(entries)

	var candidates []core.Candidate
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if seen.Has(entry.Link) {
			continue
		}
		if a.policy.SkipStale && a.calendar.IsStale(entry.Published) {
			continue
		}
		if a.policy.TitlePrefilter && !relevance.MatchesPrefilter(entry.Title) {
			continue
		}

		content := entry.Summary
		if utf8.RuneCountInString(content) < a.policy.MinSummaryLength {
			excerpt := a.extractor.Extract(ctx, entry.Link)
			fr.Extractions++
			if !excerpt.OK() {
				fr.ExtractFailures++
			}
			content = excerpt.Text
		}

		if a.policy.TrendGate && !a.trends.IsTrend(entry.Title, content) {
			continue
		}

		candidates = append(candidates, a.buildCandidate(src, entry, content))
		seen.Add(entry.Link)
	}

	fr.Candidates = len(candidates)
	a.log.Debug("Feed processed",
		"url", src.URL,
		"entries", fr.Entries,
		"candidates", fr.Candidates,
		"extractions", fr.Extractions,
		"extract_failures", fr.ExtractFailures,
	)
	return fr, candidates
}

func (a *Aggregator) buildCandidate(src core.Source, entry core.Entry, content string) core.Candidate {
	published := entry.Published
	if published == "" {
		published = a.policy.DefaultPublished
	}

	c := core.Candidate{
		ID:         core.CandidateID(entry.Link),
		Title:      entry.Title,
		Link:       entry.Link,
		Summary:    fetch.Truncate(content, a.policy.SummaryLength),
		Source:     src.DisplayName(),
		SourceURL:  src.URL,
		SourceType: src.Type,
		Published:  published,
	}

	switch a.policy.Variant {
	case core.VariantWeekly:
		b := a.trends.Explain(relevance.TrendInput{
			Title:     entry.Title,
			Content:   content,
			Published: entry.Published,
		}, string(src.Type))
		c.Score, c.Explanation = b.Total(), b.String()
	default:
		c.Source = src.URL
		b := a.keywords.Explain(relevance.Input{
			Title:     entry.Title,
			Content:   content,
			Source:    src.URL,
			Published: entry.Published,
		})
		c.Score, c.Explanation = b.Total(), b.String()
	}
	return c
}
