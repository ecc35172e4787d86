package relevance

import (
	"testing"
	"time"
)

var testCalendar = NewCalendar(time.Date(2025, time.October, 13, 8, 0, 0, 0, time.UTC), nil, nil)

func TestKeywordScorerEndToEndExample(t *testing.T) {
	scorer := NewKeywordScorer(testCalendar)

	in := Input{
		Title:   "AI GIS breakthrough in satellite imagery",
		Content: "A new machine learning model improves geospatial analysis.",
		Source:  "https://arxiv.org/rss/cs.AI",
	}

	b := scorer.Explain(in)

	// "ai gis" in title
	if b.High != 10 {
		t.Errorf("Expected high tier 10, got %d", b.High)
	}
	if b.Medium != 0 {
		t.Errorf("Expected medium tier 0, got %d", b.Medium)
	}
	// title: gis (+3); content: geospatial (+1), spatial (+1)
	if b.GIS != 5 {
		t.Errorf("Expected GIS tier 5, got %d", b.GIS)
	}
	// title: ai (+3); content: machine learning (+1)
	if b.AI != 4 {
		t.Errorf("Expected AI tier 4, got %d", b.AI)
	}
	if b.Source != 5 {
		t.Errorf("Expected arXiv bonus 5, got %d", b.Source)
	}
	if b.Recency != 0 {
		t.Errorf("Expected no recency bonus without a date, got %d", b.Recency)
	}

	if got := scorer.Score(in); got != 24 {
		t.Errorf("Expected total 24, got %d (%s)", got, b)
	}
}

func TestKeywordScorerCaseInsensitive(t *testing.T) {
	scorer := NewKeywordScorer(testCalendar)

	upper := scorer.Score(Input{Title: "AI GIS", Content: "MACHINE LEARNING", Source: "ARXIV"})
	lower := scorer.Score(Input{Title: "ai gis", Content: "machine learning", Source: "arxiv"})

	if upper != lower {
		t.Errorf("Expected case-insensitive scoring, got %d and %d", upper, lower)
	}
}

func TestKeywordScorerAdditiveTiers(t *testing.T) {
	scorer := NewKeywordScorer(testCalendar)

	// "geospatial ai" also contains "spatial ai", so both medium phrases
	// match in title and content. The single keywords geospatial, spatial
	// and ai match in both as well.
	b := scorer.Explain(Input{Title: "geospatial ai", Content: "geospatial ai"})

	if b.Medium != (5+2)*2 {
		t.Errorf("Expected medium tier 14, got %d", b.Medium)
	}
	if b.GIS != (3+1)*2 {
		t.Errorf("Expected GIS tier 8, got %d", b.GIS)
	}
	if b.AI != 3+1 {
		t.Errorf("Expected AI tier 4, got %d", b.AI)
	}
}

func TestKeywordScorerSourcePrecedence(t *testing.T) {
	testCases := []struct {
		source   string
		expected int
	}{
		{"https://arxiv.org/rss/cs.CV", 5},
		{"https://www.esri.com/arcgis-blog/feed/", 4},
		{"https://www.nasa.gov/rss", 3},
		{"https://arxiv.org/mirror/esri/nasa", 5},
		{"https://esri.nasa.example", 4},
		{"https://blog.mapbox.com/rss", 0},
	}

	for _, tc := range testCases {
		if got := sourceBonus(tc.source); got != tc.expected {
			t.Errorf("sourceBonus(%q) = %d, expected %d", tc.source, got, tc.expected)
		}
	}
}

func TestKeywordScorerRecencyBonus(t *testing.T) {
	scorer := NewKeywordScorer(testCalendar)

	recent := scorer.Explain(Input{Published: "Mon, 13 Oct 2025 08:00:00 GMT"})
	if recent.Recency != RecentYearBonus {
		t.Errorf("Expected recency bonus for 2025, got %d", recent.Recency)
	}

	previous := scorer.Explain(Input{Published: "2024-12-31"})
	if previous.Recency != RecentYearBonus {
		t.Errorf("Expected recency bonus for 2024, got %d", previous.Recency)
	}

	old := scorer.Explain(Input{Published: "Fri, 03 Mar 2023 10:00:00 GMT"})
	if old.Recency != 0 {
		t.Errorf("Expected no recency bonus for 2023, got %d", old.Recency)
	}
}

func TestKeywordScorerNoMatches(t *testing.T) {
	scorer := NewKeywordScorer(testCalendar)

	if got := scorer.Score(Input{Title: "Cooking recipes", Content: "Easy dinners for everyone", Source: "https://food.example.com"}); got != 0 {
		t.Errorf("Expected zero score, got %d", got)
	}
}

func TestKeywordScorerDeterministicAndNonNegative(t *testing.T) {
	scorer := NewKeywordScorer(testCalendar)

	inputs := []Input{
		{},
		{Title: "GIS"},
		{Title: "Remote sensing AI", Content: "ai remote sensing from orbit", Source: "nasa"},
		{Title: "Drone mapping AI for urban planning AI", Content: "cartography", Published: "2025"},
		{Title: "ünïcode 地図 mapping", Content: "géospatial"},
	}

	for _, in := range inputs {
		first := scorer.Score(in)
		if first < 0 {
			t.Errorf("Expected non-negative score for %+v, got %d", in, first)
		}
		for i := 0; i < 3; i++ {
			if again := scorer.Score(in); again != first {
				t.Errorf("Expected deterministic score for %+v, got %d then %d", in, first, again)
			}
		}
	}
}

func TestMatchesPrefilter(t *testing.T) {
	testCases := map[string]bool{
		"New GIS release":              true,
		"Neural Network pruning":       true,
		"SATELLITE launch":             true,
		"Quarterly earnings call":      false,
		"":                             false,
		"Remote Sensing of the Arctic": true,
	}

	for title, expected := range testCases {
		if got := MatchesPrefilter(title); got != expected {
			t.Errorf("MatchesPrefilter(%q) = %v, expected %v", title, got, expected)
		}
	}
}

func TestNewCalendar(t *testing.T) {
	cal := NewCalendar(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC), nil, nil)
	if cal.RecentYears[0] != "2026" || cal.RecentYears[1] != "2025" {
		t.Errorf("Unexpected recent years %v", cal.RecentYears)
	}
	if cal.StaleYears[0] != "2024" || cal.StaleYears[1] != "2023" {
		t.Errorf("Unexpected stale years %v", cal.StaleYears)
	}

	override := NewCalendar(time.Now(), []string{"1999"}, []string{"1990"})
	if !override.IsRecent("Dec 1999") || override.IsRecent("2026") {
		t.Errorf("Expected recent override to apply, got %v", override.RecentYears)
	}
	if !override.IsStale("1990-01-01") {
		t.Errorf("Expected stale override to apply, got %v", override.StaleYears)
	}
}
