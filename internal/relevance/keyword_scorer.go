package relevance

import (
	"fmt"
	"strings"
)

// Input is the text scored by the daily KeywordScorer.
type Input struct {
	Title     string
	Content   string
	Source    string // feed URL or source name
	Published string
}

// Breakdown is the per-tier contribution to a daily score.
type Breakdown struct {
	High    int
	Medium  int
	GIS     int
	AI      int
	Source  int
	Recency int
}

// Total sums every tier.
func (b Breakdown) Total() int {
	return b.High + b.Medium + b.GIS + b.AI + b.Source + b.Recency
}

func (b Breakdown) String() string {
	return fmt.Sprintf("high=%d medium=%d gis=%d ai=%d source=%d recency=%d",
		b.High, b.Medium, b.GIS, b.AI, b.Source, b.Recency)
}

// KeywordScorer implements the weighted keyword heuristic of the daily digest.
// It is stateless apart from its calendar and safe to reuse.
type KeywordScorer struct {
	calendar Calendar
}

// NewKeywordScorer creates a daily scorer using cal for the recency bonus
func NewKeywordScorer(cal Calendar) *KeywordScorer {
	return &KeywordScorer{calendar: cal}
}

// Score returns the relevance score of in. The result is never negative.
func (ks *KeywordScorer) Score(in Input) int {
	return ks.Explain(in).Total()
}

// Explain scores in and reports each tier separately.
// Every matching phrase counts and tiers overlap, so a term such as "gis"
// contributes both through compound phrases and as a single keyword.
func (ks *KeywordScorer) Explain(in Input) Breakdown {
	title := strings.ToLower(in.Title)
	content := strings.ToLower(in.Content)

	return Breakdown{
		High:    weigh(title, content, HighRelevanceTerms, HighTitleWeight, HighContentWeight),
		Medium:  weigh(title, content, MediumRelevanceTerms, MediumTitleWeight, MediumContentWeight),
		GIS:     weigh(title, content, GISTerms, TermTitleWeight, TermContentWeight),
		AI:      weigh(title, content, AITerms, TermTitleWeight, TermContentWeight),
		Source:  sourceBonus(strings.ToLower(in.Source)),
		Recency: ks.recencyBonus(in.Published),
	}
}

func (ks *KeywordScorer) recencyBonus(published string) int {
	if ks.calendar.IsRecent(published) {
		return RecentYearBonus
	}
	return 0
}

// sourceBonus returns the bonus of the first matching pattern
func sourceBonus(source string) int {
	for _, sb := range SourceBonuses {
		if strings.Contains(source, sb.Pattern) {
			return sb.Bonus
		}
	}
	return 0
}

// MatchesPrefilter reports whether a title mentions any prefilter keyword.
func MatchesPrefilter(title string) bool {
	return containsAny(strings.ToLower(title), PrefilterKeywords)
}
