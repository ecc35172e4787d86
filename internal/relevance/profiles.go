package relevance

// Keyword vocabularies and fixed weights for the digest scorers.
// All terms are lowercase; matching lowercases the input.

// HighRelevanceTerms combine an AI technique with a GIS domain term.
var HighRelevanceTerms = []string{
	"ai gis", "gis ai", "ai and gis", "gis and ai",
	"machine learning gis", "gis machine learning",
	"deep learning geospatial", "geospatial deep learning",
	"computer vision gis", "gis computer vision",
	"ai remote sensing", "remote sensing ai",
	"artificial intelligence gis", "gis artificial intelligence",
}

// MediumRelevanceTerms name specific AI-for-GIS applications.
var MediumRelevanceTerms = []string{
	"spatial ai", "ai spatial", "geospatial ai", "ai geospatial",
	"satellite imagery ai", "ai satellite imagery",
	"drone mapping ai", "ai drone mapping",
	"urban planning ai", "ai urban planning",
	"environmental monitoring ai", "ai environmental monitoring",
}

// GISTerms is the single-keyword geospatial vocabulary.
var GISTerms = []string{"gis", "geospatial", "spatial", "mapping", "cartography"}

// AITerms is the single-keyword AI vocabulary.
var AITerms = []string{"ai", "artificial intelligence", "machine learning", "deep learning", "computer vision"}

// PrefilterKeywords gate daily entries on their title before any extraction.
var PrefilterKeywords = []string{
	"gis", "geospatial", "spatial",
	"ai", "artificial intelligence", "machine learning", "deep learning",
	"remote sensing", "satellite", "imagery",
	"computer vision", "neural network",
}

// Tier weights as (title, content) pairs.
const (
	HighTitleWeight     = 10
	HighContentWeight   = 5
	MediumTitleWeight   = 5
	MediumContentWeight = 2
	TermTitleWeight     = 3
	TermContentWeight   = 1
	RecentYearBonus     = 2
)

// SourceBonus is awarded when the source identifier contains Pattern.
type SourceBonus struct {
	Pattern string
	Bonus   int
}

// SourceBonuses are checked in order; only the first match counts.
var SourceBonuses = []SourceBonus{
	{Pattern: "arxiv", Bonus: 5},
	{Pattern: "esri", Bonus: 4},
	{Pattern: "nasa", Bonus: 3},
}

// trendLeadKeywords and trendTailKeywords surround the recent-year tokens
// in the trend vocabulary.
var (
	trendLeadKeywords = []string{"trend", "development", "advance", "innovation", "emerging", "future"}
	trendTailKeywords = []string{"outlook", "prediction"}

	// trendGateExtraKeywords only count towards the trend gate, not the trend score.
	trendGateExtraKeywords = []string{
		"breakthrough", "new", "latest", "update", "release",
		"survey", "report", "study", "analysis", "forecast",
	}
)

// ImpactKeywords signal industry impact in the weekly scorer.
var ImpactKeywords = []string{
	"transform", "revolution", "disrupt", "change", "shift",
	"growth", "market", "industry", "adoption", "implementation",
}

// Weekly trend weights.
const (
	TrendTitleWeight    = 3
	TrendContentWeight  = 2
	ImpactTitleWeight   = 2
	ImpactContentWeight = 1
	RecentDayBonus      = 5
	RecentWeekBonus     = 3
	LongContentBonus    = 2
	LongContentRunes    = 500
	TrendGateThreshold  = 2
	DefaultSourceWeight = 5
)

// SourceTypeWeights is the base trend score per source type.
var SourceTypeWeights = map[string]int{
	"academic":  8,
	"corporate": 7,
	"news":      6,
	"gis":       6,
	"blog":      5,
}
