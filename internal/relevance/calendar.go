package relevance

import (
	"strconv"
	"time"
)

// Calendar holds the year tokens used for recency heuristics.
type Calendar struct {
	RecentYears []string
	StaleYears  []string
}

// NewCalendar derives year tokens from now: recent years are the current and
// previous year, stale years the two before that. Non-empty overrides win.
func NewCalendar(now time.Time, recentOverride, staleOverride []string) Calendar {
	y := now.Year()
	cal := Calendar{
		RecentYears: []string{strconv.Itoa(y), strconv.Itoa(y - 1)},
		StaleYears:  []string{strconv.Itoa(y - 2), strconv.Itoa(y - 3)},
	}
	if len(recentOverride) > 0 {
		cal.RecentYears = append([]string(nil), recentOverride...)
	}
	if len(staleOverride) > 0 {
		cal.StaleYears = append([]string(nil), staleOverride...)
	}
	return cal
}

// IsRecent reports whether published mentions a recent year.
func (c Calendar) IsRecent(published string) bool {
	return containsAny(published, c.RecentYears)
}

// IsStale reports whether published mentions a stale year.
func (c Calendar) IsStale(published string) bool {
	return containsAny(published, c.StaleYears)
}
