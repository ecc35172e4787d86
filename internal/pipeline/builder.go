package pipeline

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"geodigest/internal/config"
	"geodigest/internal/core"
	"geodigest/internal/email"
	"geodigest/internal/feeds"
	"geodigest/internal/fetch"
	"geodigest/internal/logger"
	"geodigest/internal/relevance"
	"geodigest/internal/sources"
)

// Builder helps construct a fully configured Runner
type Builder struct {
	cfg        *config.Config
	httpClient *http.Client
	sender     MessageSender
	senderSet  bool
	clock      func() time.Time
	log        *slog.Logger
}

// NewBuilder creates a builder for cfg
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithHTTPClient sets the HTTP client used for feeds and pages
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithSender replaces the SMTP sender
func (b *Builder) WithSender(s MessageSender) *Builder {
	b.sender = s
	b.senderSet = true
	return b
}

// WithClock sets the run clock
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithLogger sets the base logger
func (b *Builder) WithLogger(log *slog.Logger) *Builder {
	b.log = log
	return b
}

// Build constructs the Runner
func (b *Builder) Build() (*Runner, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	client := fetch.NewClient(b.cfg.Feeds.UserAgent)
	if b.httpClient != nil {
		client = client.WithHTTPClient(b.httpClient)
	}

	sender := b.sender
	if !b.senderSet && b.cfg.Email.Configured() {
		sender = email.NewSMTPSender(b.cfg.Email, logger.ComponentOf(b.log, "smtp"))
	}

	runner := NewRunner(b.cfg, AggregatorFactory(b.cfg, client, b.log), sender, logger.ComponentOf(b.log, "pipeline"))
	if b.clock != nil {
		runner.WithClock(b.clock)
	}
	return runner, nil
}

// AggregatorFactory builds a sources.Aggregator per run from the profile
// and the scoring overrides of cfg. A nil log uses the default logger.
func AggregatorFactory(cfg *config.Config, client *fetch.Client, log *slog.Logger) CollectorFactory {
	return func(v core.Variant, profile config.Profile, now time.Time) (Collector, error) {
		policy, err := sources.PolicyFor(v, profile, now)
		if err != nil {
			return nil, err
		}
		cal := relevance.NewCalendar(now, cfg.Scoring.RecentYears, cfg.Scoring.StaleYears)
		reader := feeds.NewReader(client, cfg.Feeds.TimeoutDuration())
		extractor := fetch.NewExtractor(client, profile.FetchTimeoutDuration(), profile.ExcerptLength,
			logger.ComponentOf(log, "extractor"))
		return sources.NewAggregator(reader, extractor, policy, cal, logger.ComponentOf(log, "aggregator")), nil
	}
}
