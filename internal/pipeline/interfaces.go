package pipeline

import (
	"context"
	"time"

	"geodigest/internal/config"
	"geodigest/internal/core"
	"geodigest/internal/email"
	"geodigest/internal/sources"
)

// Collector gathers scored candidates from a list of sources
type Collector interface {
	Collect(ctx context.Context, srcs []core.Source) sources.Result
}

// CollectorFactory builds the collector of one run. now is the run clock,
// used for year tokens and the daily fallback date.
type CollectorFactory func(v core.Variant, profile config.Profile, now time.Time) (Collector, error)

// MessageSender delivers the rendered digest
type MessageSender interface {
	Send(ctx context.Context, msg email.Message) error
}
