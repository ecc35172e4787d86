// Package pipeline runs one digest end to end: aggregate, select, render,
// write and send.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"geodigest/internal/config"
	"geodigest/internal/core"
	"geodigest/internal/email"
	"geodigest/internal/relevance"
	"geodigest/internal/render"
	"geodigest/internal/sources"
)

// DefaultMaxArticles is used when a profile sets no positive limit
const DefaultMaxArticles = 10

// Options configures one run
type Options struct {
	Variant   core.Variant
	DryRun    bool   // render and report, but do not send
	OutputDir string // overrides output.directory when set
}

// Report contains the outcome of one run. Per-feed and delivery failures
// are recorded here instead of being returned from Run.
type Report struct {
	Variant      core.Variant
	StartedAt    time.Time
	Duration     time.Duration
	Feeds        []sources.FeedResult
	Candidates   int
	Selected     []core.Candidate
	HTML         string
	ArtifactPath string
	ArtifactErr  error
	Sent         bool
	SendErr      error
	CollectErr   error // set when the context ended aggregation early
}

// FailedFeeds counts feeds that produced an error
func (r *Report) FailedFeeds() int {
	n := 0
	for _, f := range r.Feeds {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Runner executes digest runs. Runs share no state, so one Runner may be
// used for any number of sequential runs.
type Runner struct {
	cfg        *config.Config
	collectors CollectorFactory
	sender     MessageSender
	now        func() time.Time
	log        *slog.Logger
}

// NewRunner creates a runner. A nil sender makes every non-dry run report
// email.ErrNotConfigured.
func NewRunner(cfg *config.Config, collectors CollectorFactory, sender MessageSender, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		cfg:        cfg,
		collectors: collectors,
		sender:     sender,
		now:        time.Now,
		log:        log,
	}
}

// WithClock replaces the run clock
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run performs one digest run. It returns an error only for an unknown
// variant or a collector or template failure.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	profile, err := r.cfg.Profile(opts.Variant)
	if err != nil {
		return nil, err
	}

	now := r.now()
	report := &Report{Variant: opts.Variant, StartedAt: now}
	log := r.log.With("variant", opts.Variant)

	collector, err := r.collectors(opts.Variant, profile, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build collector: %w", err)
	}

	// Step 1: aggregate
	srcs := profile.SourceList()
	log.Info("Starting digest run", "sources", len(srcs), "dry_run", opts.DryRun)
	result := collector.Collect(ctx, srcs)
	report.Feeds = result.Feeds
	report.Candidates = len(result.Candidates)
	report.CollectErr = result.Err
	log.Info("Found potential articles", "count", report.Candidates, "failed_feeds", report.FailedFeeds())

	// Step 2: select
	limit := profile.MaxArticles
	if limit <= 0 {
		limit = DefaultMaxArticles
	}
	report.Selected = relevance.SelectTop(result.Candidates, limit)
	log.Info("Selected top articles", "count", len(report.Selected))

	// Step 3: render
	html, err := email.Render(opts.Variant, email.DigestData{
		Title:         profile.Title,
		Date:          now,
		RecipientName: r.cfg.Email.RecipientName,
		Articles:      report.Selected,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}
	report.HTML = html

	// Step 4: artifact
	dir := opts.OutputDir
	if dir == "" {
		dir = r.cfg.Output.Directory
	}
	if dir != "" {
		path, err := render.WriteDigestToFile(html, dir, render.ArtifactName(opts.Variant, now))
		if err != nil {
			log.Warn("Failed to write digest artifact", "dir", dir, "error", err)
			report.ArtifactErr = err
		} else {
			report.ArtifactPath = path
			log.Info("Digest written", "path", path)
		}
	}

	// Step 5: send
	if opts.DryRun {
		log.Info("Dry run, not sending email")
	} else {
		report.SendErr = r.send(ctx, opts.Variant, now, html)
		report.Sent = report.SendErr == nil
		if report.Sent {
			log.Info("Digest sent", "articles", len(report.Selected))
		} else {
			log.Error("Failed to send digest", "error", report.SendErr)
		}
	}

	report.Duration = r.now().Sub(now)
	return report, nil
}

func (r *Runner) send(ctx context.Context, v core.Variant, now time.Time, html string) error {
	if r.sender == nil {
		return email.ErrNotConfigured
	}
	subject, err := email.Subject(v, now)
	if err != nil {
		return err
	}
	return r.sender.Send(ctx, email.Message{
		From:     r.cfg.Email.FromAddress,
		FromName: r.cfg.Email.FromName,
		To:       r.cfg.Email.ToAddress,
		Subject:  subject,
		HTML:     html,
		Date:     now,
	})
}
