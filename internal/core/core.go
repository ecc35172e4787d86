package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SourceType is the coarse category of a feed source.
type SourceType string

const (
	SourceAcademic  SourceType = "academic"
	SourceCorporate SourceType = "corporate"
	SourceNews      SourceType = "news"
	SourceBlog      SourceType = "blog"
	SourceGIS       SourceType = "gis"
	SourceUnknown   SourceType = "unknown"
)

// ParseSourceType maps a configuration value to a SourceType.
// Unrecognized values map to SourceUnknown.
func ParseSourceType(s string) SourceType {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceAcademic:
		return SourceAcademic
	case SourceCorporate:
		return SourceCorporate
	case SourceNews:
		return SourceNews
	case SourceBlog:
		return SourceBlog
	case SourceGIS:
		return SourceGIS
	default:
		return SourceUnknown
	}
}

// Label returns the capitalized type name used in digest badges.
func (t SourceType) Label() string {
	if t == "" {
		return "Unknown"
	}
	s := string(t)
	if t == SourceGIS {
		return "GIS"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Source describes one configured feed.
type Source struct {
	URL  string     `json:"url" mapstructure:"url"`
	Name string     `json:"name" mapstructure:"name"`
	Type SourceType `json:"type" mapstructure:"type"`
}

// DisplayName returns the source name, or its URL when no name is set.
func (s Source) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// Variant selects which digest is produced.
type Variant string

const (
	VariantDaily  Variant = "daily"
	VariantWeekly Variant = "weekly"
)

// Variants lists every supported digest variant.
var Variants = []Variant{VariantDaily, VariantWeekly}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantDaily:
		return VariantDaily, nil
	case VariantWeekly:
		return VariantWeekly, nil
	default:
		return "", fmt.Errorf("unknown digest variant %q (expected daily or weekly)", s)
	}
}

// Entry is a single item as returned by a feed.
type Entry struct {
	Title     string
	Link      string
	Summary   string
	Published string
}

// Candidate is an entry that passed prefiltering and was scored.
type Candidate struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Link       string     `json:"link"`
	Summary    string     `json:"summary"`
	Source     string     `json:"source"` // feed URL (daily) or source name (weekly)
	SourceURL  string     `json:"source_url"`
	SourceType SourceType `json:"source_type"`
	Published  string     `json:"published"`
	Score      int        `json:"score"`

	// Explanation is the per-factor score breakdown, for previews.
	Explanation string `json:"explanation,omitempty"`
}

// CandidateID derives a stable identifier from an article link.
func CandidateID(link string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
}
