package relevance

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TrendInput is the text scored by the weekly TrendScorer.
type TrendInput struct {
	Title     string
	Content   string
	Published string
}

// TrendBreakdown is the per-factor contribution to a weekly score.
type TrendBreakdown struct {
	SourceType int
	Trend      int
	Impact     int
	Recency    int
	Length     int
}

// Total sums every factor.
func (b TrendBreakdown) Total() int {
	return b.SourceType + b.Trend + b.Impact + b.Recency + b.Length
}

func (b TrendBreakdown) String() string {
	return fmt.Sprintf("source_type=%d trend=%d impact=%d recency=%d length=%d",
		b.SourceType, b.Trend, b.Impact, b.Recency, b.Length)
}

// TrendScorer gates and scores weekly trend articles.
type TrendScorer struct {
	gateKeywords  []string
	scoreKeywords []string
}

// NewTrendScorer builds the trend vocabularies around cal's recent years
func NewTrendScorer(cal Calendar) *TrendScorer {
	score := make([]string, 0, len(trendLeadKeywords)+len(cal.RecentYears)+len(trendTailKeywords))
	score = append(score, trendLeadKeywords...)
	score = append(score, cal.RecentYears...)
	score = append(score, trendTailKeywords...)

	gate := make([]string, 0, len(score)+len(trendGateExtraKeywords))
	gate = append(gate, score...)
	gate = append(gate, trendGateExtraKeywords...)

	return &TrendScorer{gateKeywords: gate, scoreKeywords: score}
}

// GateKeywords returns the vocabulary used by IsTrend.
func (ts *TrendScorer) GateKeywords() []string {
	return append([]string(nil), ts.gateKeywords...)
}

// IsTrend reports whether at least two distinct trend keywords appear in
// the title or content. Repeats of one keyword count once.
func (ts *TrendScorer) IsTrend(title, content string) bool {
	title = strings.ToLower(title)
	content = strings.ToLower(content)

	found := 0
	for _, kw := range ts.gateKeywords {
		if strings.Contains(title, kw) || strings.Contains(content, kw) {
			found++
			if found >= TrendGateThreshold {
				return true
			}
		}
	}
	return false
}

// Score returns the trend score of in for a source of the given type name.
func (ts *TrendScorer) Score(in TrendInput, sourceType string) int {
	return ts.Explain(in, sourceType).Total()
}

// Explain scores in and reports each factor separately.
func (ts *TrendScorer) Explain(in TrendInput, sourceType string) TrendBreakdown {
	title := strings.ToLower(in.Title)
	content := strings.ToLower(in.Content)

	b := TrendBreakdown{
		SourceType: sourceTypeWeight(sourceType),
		Trend:      weigh(title, content, ts.scoreKeywords, TrendTitleWeight, TrendContentWeight),
		Impact:     weigh(title, content, ImpactKeywords, ImpactTitleWeight, ImpactContentWeight),
		Recency:    relativeRecencyBonus(in.Published),
	}
	if utf8.RuneCountInString(content) > LongContentRunes {
		b.Length = LongContentBonus
	}
	return b
}

func sourceTypeWeight(sourceType string) int {
	if w, ok := SourceTypeWeights[strings.ToLower(sourceType)]; ok {
		return w
	}
	return DefaultSourceWeight
}

// relativeRecencyBonus matches relative-time words in the published text
func relativeRecencyBonus(published string) int {
	switch {
	case strings.Contains(published, "hour"), strings.Contains(published, "day"):
		return RecentDayBonus
	case strings.Contains(published, "week"):
		return RecentWeekBonus
	default:
		return 0
	}
}
