package sources

import (
	"fmt"
	"time"

	"geodigest/internal/config"
	"geodigest/internal/core"
)

// runDateLayout is the date stamped on daily candidates without a published date
const runDateLayout = "2006-01-02"

// Policy selects the per-variant aggregation behavior.
type Policy struct {
	Variant          core.Variant
	EntriesPerFeed   int
	MinSummaryLength int
	SummaryLength    int

	// TitlePrefilter drops entries whose title has no prefilter keyword (daily).
	TitlePrefilter bool
	// SkipStale drops entries whose published text names a stale year (weekly).
	SkipStale bool
	// TrendGate drops entries that fail the trend gate (weekly).
	TrendGate bool
	// DefaultPublished replaces an empty published text when set (daily).
	DefaultPublished string
}

// DailyPolicy builds the daily policy from its profile. now supplies the
// fallback published date.
func DailyPolicy(p config.Profile, now time.Time) Policy {
	return Policy{
		Variant:          core.VariantDaily,
		EntriesPerFeed:   p.EntriesPerFeed,
		MinSummaryLength: p.MinSummaryLength,
		SummaryLength:    p.SummaryLength,
		TitlePrefilter:   true,
		DefaultPublished: now.Format(runDateLayout),
	}
}

// WeeklyPolicy builds the weekly policy from its profile.
func WeeklyPolicy(p config.Profile) Policy {
	return Policy{
		Variant:          core.VariantWeekly,
		EntriesPerFeed:   p.EntriesPerFeed,
		MinSummaryLength: p.MinSummaryLength,
		SummaryLength:    p.SummaryLength,
		SkipStale:        true,
		TrendGate:        true,
	}
}

// PolicyFor returns the policy of variant v.
func PolicyFor(v core.Variant, p config.Profile, now time.Time) (Policy, error) {
	switch v {
	case core.VariantDaily:
		return DailyPolicy(p, now), nil
	case core.VariantWeekly:
		return WeeklyPolicy(p), nil
	default:
		return Policy{}, fmt.Errorf("no aggregation policy for variant %q", v)
	}
}
