package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"geodigest/internal/core"
)

// Fallback documents returned when a digest has no articles.
const (
	DailyEmptyHTML  = "<p>No relevant articles found today. Check back tomorrow!</p>"
	WeeklyEmptyHTML = `<html>
<body>
    <h2>🌐 GIS & AI Weekly Trends Digest</h2>
    <p>No significant trends identified this week. Check back next week!</p>
</body>
</html>`
)

// EmailTemplate represents the visual configuration of one digest variant
type EmailTemplate struct {
	Name             string
	Emoji            string
	HeaderBackground string
	HeaderTextColor  string
	AccentColor      string
	ArticleRadius    string
	DateLayout       string // subtitle layout, e.g. "Monday, January 02, 2006"
	Tagline          string // "Top %d ..." subtitle
	ScoreLabel       string
	LinkText         string
	ShowInsight      bool
	ShowSourceName   bool
}

// DigestData contains all data needed to render one digest
type DigestData struct {
	Title         string
	Date          time.Time
	RecipientName string
	Articles      []core.Candidate
}

// articleView is one numbered article block
type articleView struct {
	Index      int
	Title      string
	Link       string
	Summary    string
	Published  string
	Source     string
	Score      int
	BadgeClass string
	BadgeName  string
}

// GetDailyEmailTemplate returns the daily digest template
func GetDailyEmailTemplate() *EmailTemplate {
	return &EmailTemplate{
		Name:             "daily",
		Emoji:            "🌍",
		HeaderBackground: "#f8f9fa",
		HeaderTextColor:  "#333",
		AccentColor:      "#4CAF50",
		ArticleRadius:    "0",
		DateLayout:       "Monday, January 02, 2006",
		Tagline:          "Top %d most relevant articles curated for you",
		ScoreLabel:       "Relevance",
		LinkText:         "📖 Read full article",
	}
}

// GetWeeklyEmailTemplate returns the weekly trends template
func GetWeeklyEmailTemplate() *EmailTemplate {
	return &EmailTemplate{
		Name:             "weekly",
		Emoji:            "🌐",
		HeaderBackground: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
		HeaderTextColor:  "white",
		AccentColor:      "#667eea",
		ArticleRadius:    "8px",
		DateLayout:       "Week of January 02, 2006",
		Tagline:          "Top %d industry developments and emerging trends",
		ScoreLabel:       "Impact",
		LinkText:         "🔗 Read detailed analysis",
		ShowInsight:      true,
		ShowSourceName:   true,
	}
}

// getEmailCSS returns the inline stylesheet for the template
func getEmailCSS(tmpl *EmailTemplate) string {
	return fmt.Sprintf(`
<style type="text/css">
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; }
  .header { background: %s; color: %s; padding: 20px; text-align: center; border-bottom: 2px solid %s; }
  .article { margin-bottom: 25px; padding: 15px; border-left: 4px solid %s; border-radius: %s; background-color: #f9f9f9; }
  .article h3 { margin-top: 0; color: #2c3e50; }
  .article a { color: #3498db; text-decoration: none; }
  .article a:hover { text-decoration: underline; }
  .meta { font-size: 0.9em; color: #7f8c8d; margin-bottom: 10px; }
  .score { float: right; background-color: %s; color: white; padding: 2px 8px; border-radius: 12px; font-size: 0.8em; }
  .insight { background-color: #fff3cd; border-left: 5px solid #ffc107; padding: 15px; margin: 20px 0; border-radius: 5px; }
  .footer { margin-top: 30px; padding: 15px; text-align: center; font-size: 0.9em; color: #7f8c8d; border-top: 1px solid #eee; }
  .source-badge { display: inline-block; padding: 3px 8px; border-radius: 4px; font-size: 0.8em; margin-right: 8px; }
  .source-arxiv { background-color: #b6e3ff; color: #005c9e; }
  .source-google { background-color: #fce8e6; color: #c5221f; }
  .source-esri { background-color: #e6f4ea; color: #137333; }
  .source-medium { background-color: #000; color: white; }
  .source-academic { background-color: #8e44ad; color: white; }
  .source-corporate { background-color: #3498db; color: white; }
  .source-news { background-color: #e74c3c; color: white; }
  .source-blog { background-color: #2ecc71; color: white; }
  .source-gis { background-color: #f39c12; color: white; }
  .source-unknown { background-color: #95a5a6; color: white; }
</style>
`,
		tmpl.HeaderBackground, tmpl.HeaderTextColor, tmpl.AccentColor,
		tmpl.AccentColor, tmpl.ArticleRadius, tmpl.AccentColor)
}

const htmlTemplate = `<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    {{.CSS}}
</head>
<body>
    <div class="header">
        <h1>{{.Template.Emoji}} {{.Title}}</h1>
        <p>{{.DateLine}}</p>
        <p>{{.Tagline}}</p>
    </div>
    {{if .Template.ShowInsight}}
    <div class="insight">
        <strong>📈 This Week's Focus:</strong> The most significant developments in geospatial AI,
        machine learning applications, and data science innovations that are shaping the industry.
    </div>
    {{end}}
    {{range .Articles}}
    <div class="article">
        <span class="score">{{$.Template.ScoreLabel}}: {{.Score}}</span>
        <h3>{{.Index}}. {{.Title}}</h3>
        <div class="meta">
            <span class="source-badge {{.BadgeClass}}">{{.BadgeName}}</span>
            {{if $.Template.ShowSourceName}}<strong>Source:</strong> {{.Source}} | {{end}}
            <strong>Published:</strong> {{.Published}}
        </div>
        <p>{{.Summary}}</p>
        <p><a href="{{.Link}}">{{$.Template.LinkText}}</a></p>
    </div>
    {{end}}
    <div class="footer">
        {{range .FooterLines}}<p>{{.}}</p>
        {{end}}
    </div>
</body>
</html>
`

var digestTemplate = template.Must(template.New("digest").Parse(htmlTemplate))

// RenderDaily renders the daily digest document
func RenderDaily(data DigestData) (string, error) {
	if len(data.Articles) == 0 {
		return DailyEmptyHTML, nil
	}
	footer := []string{
		fmt.Sprintf("Curated from %d most relevant articles found today", len(data.Articles)),
		"This digest was automatically generated for " + recipient(data),
	}
	return renderDigest(GetDailyEmailTemplate(), data, footer, dailyBadge)
}

// RenderWeekly renders the weekly trends document
func RenderWeekly(data DigestData) (string, error) {
	if len(data.Articles) == 0 {
		return WeeklyEmptyHTML, nil
	}
	footer := []string{
		"Curated from leading industry sources • " + data.Date.Format("2006-01-02"),
		"This weekly digest was created for " + recipient(data),
	}
	return renderDigest(GetWeeklyEmailTemplate(), data, footer, weeklyBadge)
}

// Render dispatches on the digest variant
func Render(v core.Variant, data DigestData) (string, error) {
	switch v {
	case core.VariantDaily:
		return RenderDaily(data)
	case core.VariantWeekly:
		return RenderWeekly(data)
	default:
		return "", fmt.Errorf("no email template for variant %q", v)
	}
}

func renderDigest(tmpl *EmailTemplate, data DigestData, footer []string, badge func(core.Candidate) (string, string)) (string, error) {
	articles := make([]articleView, 0, len(data.Articles))
	for i, c := range data.Articles {
		class, name := badge(c)
		articles = append(articles, articleView{
			Index:      i + 1,
			Title:      c.Title,
			Link:       c.Link,
			Summary:    c.Summary,
			Published:  c.Published,
			Source:     c.Source,
			Score:      c.Score,
			BadgeClass: class,
			BadgeName:  name,
		})
	}

	templateData := struct {
		Title       string
		DateLine    string
		Tagline     string
		Template    *EmailTemplate
		CSS         template.HTML
		Articles    []articleView
		FooterLines []string
	}{
		Title:       data.Title,
		DateLine:    data.Date.Format(tmpl.DateLayout),
		Tagline:     fmt.Sprintf(tmpl.Tagline, len(articles)),
		Template:    tmpl,
		CSS:         template.HTML(getEmailCSS(tmpl)),
		Articles:    articles,
		FooterLines: footer,
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, templateData); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return buf.String(), nil
}

func recipient(data DigestData) string {
	if data.RecipientName == "" {
		return "you"
	}
	return data.RecipientName
}

// dailyBadge picks the badge from well-known substrings of the feed URL
func dailyBadge(c core.Candidate) (string, string) {
	source := strings.ToLower(c.Source)
	switch {
	case strings.Contains(source, "arxiv"):
		return "source-arxiv", "arXiv"
	case strings.Contains(source, "google"):
		return "source-google", "Google News"
	case strings.Contains(source, "esri"):
		return "source-esri", "Esri"
	case strings.Contains(source, "medium"), strings.Contains(source, "towardsdatascience"):
		return "source-medium", "Blog"
	default:
		return "", "Other"
	}
}

// weeklyBadge uses the source type
func weeklyBadge(c core.Candidate) (string, string) {
	t := c.SourceType
	if t == "" {
		t = core.SourceUnknown
	}
	return "source-" + string(t), t.Label()
}

// Subject returns the email subject line for a variant and run date
func Subject(v core.Variant, date time.Time) (string, error) {
	day := date.Format("2006-01-02")
	switch v {
	case core.VariantDaily:
		return "AI & GIS Daily Digest - " + day, nil
	case core.VariantWeekly:
		return "🌐 GIS & AI Weekly Trends - " + day, nil
	default:
		return "", fmt.Errorf("no subject for variant %q", v)
	}
}
