package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"geodigest/internal/core"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Logging  Logging  `mapstructure:"logging"`
	Email    Email    `mapstructure:"email"`
	Feeds    Feeds    `mapstructure:"feeds"`
	Output   Output   `mapstructure:"output"`
	Scoring  Scoring  `mapstructure:"scoring"`
	Schedule Schedule `mapstructure:"schedule"`
	Digests  Digests  `mapstructure:"digests"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Email holds email configuration
type Email struct {
	SMTP          SMTPConfig `mapstructure:"smtp"`
	FromAddress   string     `mapstructure:"from_address"`
	FromName      string     `mapstructure:"from_name"`
	ToAddress     string     `mapstructure:"to_address"`
	RecipientName string     `mapstructure:"recipient_name"`
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	Timeout    string `mapstructure:"timeout"`
}

// Configured reports whether enough SMTP settings are present to attempt delivery.
func (e Email) Configured() bool {
	return e.SMTP.Host != "" && e.SMTP.Username != "" && e.SMTP.Password != "" && e.ToAddress != ""
}

// Feeds holds RSS/feed fetch configuration
type Feeds struct {
	UserAgent string `mapstructure:"user_agent"`
	Timeout   string `mapstructure:"timeout"`
}

// Output holds artifact output configuration. An empty directory disables writing.
type Output struct {
	Directory string `mapstructure:"directory"`
}

// Scoring overrides the year tokens derived from the run clock.
type Scoring struct {
	RecentYears []string `mapstructure:"recent_years"`
	StaleYears  []string `mapstructure:"stale_years"`
}

// Schedule holds scheduler configuration
type Schedule struct {
	Timezone string `mapstructure:"timezone"`
}

// Digests holds one profile per digest variant
type Digests struct {
	Daily  Profile `mapstructure:"daily"`
	Weekly Profile `mapstructure:"weekly"`
}

// Profile holds the limits, schedule and sources of one digest variant
type Profile struct {
	Title            string         `mapstructure:"title"`
	MaxArticles      int            `mapstructure:"max_articles"`
	EntriesPerFeed   int            `mapstructure:"entries_per_feed"`
	MinSummaryLength int            `mapstructure:"min_summary_length"`
	ExcerptLength    int            `mapstructure:"excerpt_length"`
	SummaryLength    int            `mapstructure:"summary_length"`
	FetchTimeout     string         `mapstructure:"fetch_timeout"`
	Cron             string         `mapstructure:"cron"`
	Sources          []SourceConfig `mapstructure:"sources"`
}

// SourceConfig is the configuration form of a core.Source
type SourceConfig struct {
	URL  string `mapstructure:"url"`
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
}

// SourceList converts the configured sources into core descriptors
func (p Profile) SourceList() []core.Source {
	sources := make([]core.Source, 0, len(p.Sources))
	for _, s := range p.Sources {
		sources = append(sources, core.Source{
			URL:  s.URL,
			Name: s.Name,
			Type: core.ParseSourceType(s.Type),
		})
	}
	return sources
}

// FetchTimeoutDuration returns the extraction timeout of the profile
func (p Profile) FetchTimeoutDuration() time.Duration {
	return mustDuration(p.FetchTimeout, 10*time.Second)
}

// TimeoutDuration returns the feed fetch timeout
func (f Feeds) TimeoutDuration() time.Duration {
	return mustDuration(f.Timeout, 30*time.Second)
}

// TimeoutDuration returns the SMTP dial timeout
func (s SMTPConfig) TimeoutDuration() time.Duration {
	return mustDuration(s.Timeout, 30*time.Second)
}

// Location resolves the scheduler timezone
func (s Schedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Profile returns the digest profile for a variant
func (c *Config) Profile(v core.Variant) (Profile, error) {
	switch v {
	case core.VariantDaily:
		return c.Digests.Daily, nil
	case core.VariantWeekly:
		return c.Digests.Weekly, nil
	default:
		return Profile{}, fmt.Errorf("no digest profile for variant %q", v)
	}
}

// Load loads the configuration from defaults, an optional YAML file,
// a .env file and the environment. Each call builds a fresh viper instance.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".geodigest")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(cfg); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading files or the environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("invalid built-in configuration: %v", err))
	}
	return cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Email defaults
	v.SetDefault("email.smtp.host", "smtp.gmail.com")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.tls_enabled", true)
	v.SetDefault("email.smtp.timeout", "30s")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.from_name", "AI & GIS Digest")
	v.SetDefault("email.to_address", "")
	v.SetDefault("email.recipient_name", "you")

	// Feeds defaults
	v.SetDefault("feeds.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("feeds.timeout", "30s")

	// Output defaults
	v.SetDefault("output.directory", "")

	// Scoring defaults
	v.SetDefault("scoring.recent_years", []string{})
	v.SetDefault("scoring.stale_years", []string{})

	// Schedule defaults
	v.SetDefault("schedule.timezone", "Local")

	// Daily digest defaults
	v.SetDefault("digests.daily.title", "AI & GIS Daily Digest")
	v.SetDefault("digests.daily.max_articles", 10)
	v.SetDefault("digests.daily.entries_per_feed", 20)
	v.SetDefault("digests.daily.min_summary_length", 50)
	v.SetDefault("digests.daily.excerpt_length", 250)
	v.SetDefault("digests.daily.summary_length", 250)
	v.SetDefault("digests.daily.fetch_timeout", "10s")
	v.SetDefault("digests.daily.cron", "0 8 * * *")
	v.SetDefault("digests.daily.sources", defaultDailySources())

	// Weekly digest defaults
	v.SetDefault("digests.weekly.title", "GIS & AI Weekly Trends Digest")
	v.SetDefault("digests.weekly.max_articles", 10)
	v.SetDefault("digests.weekly.entries_per_feed", 15)
	v.SetDefault("digests.weekly.min_summary_length", 100)
	v.SetDefault("digests.weekly.excerpt_length", 350)
	v.SetDefault("digests.weekly.summary_length", 300)
	v.SetDefault("digests.weekly.fetch_timeout", "15s")
	v.SetDefault("digests.weekly.cron", "0 8 * * 1")
	v.SetDefault("digests.weekly.sources", defaultWeeklySources())
}

func defaultDailySources() []map[string]string {
	return []map[string]string{
		{"url": "https://news.google.com/rss/search?q=%22AI+GIS%22+OR+%22GIS+AI%22+OR+%22machine+learning+GIS%22&ceid=US:en&hl=en-US&gl=US", "name": "Google News: AI GIS", "type": "news"},
		{"url": "https://news.google.com/rss/search?q=geospatial+artificial+intelligence+OR+spatial+AI&ceid=US:en&hl=en-US&gl=US", "name": "Google News: Geospatial AI", "type": "news"},
		{"url": "https://arxiv.org/rss/cs.AI", "name": "arXiv cs.AI", "type": "academic"},
		{"url": "https://arxiv.org/rss/cs.CV", "name": "arXiv cs.CV", "type": "academic"},
		{"url": "https://www.esri.com/arcgis-blog/feed/", "name": "Esri ArcGIS Blog", "type": "gis"},
		{"url": "https://blog.mapbox.com/rss", "name": "Mapbox Blog", "type": "gis"},
		{"url": "https://towardsdatascience.com/feed/tagged/geospatial", "name": "Towards Data Science: Geospatial", "type": "blog"},
	}
}

func defaultWeeklySources() []map[string]string {
	return []map[string]string{
		{"url": "https://towardsdatascience.com/feed", "name": "Towards Data Science Trends", "type": "blog"},
		{"url": "https://www.technologyreview.com/topic/artificial-intelligence/feed/", "name": "MIT Technology Review AI", "type": "news"},
		{"url": "https://ai.googleblog.com/feeds/posts/default", "name": "Google AI Blog", "type": "corporate"},
		{"url": "https://aws.amazon.com/blogs/machine-learning/feed/", "name": "AWS Machine Learning Blog", "type": "corporate"},
		{"url": "https://www.esri.com/arcgis-blog/feed/", "name": "Esri Insights Blog", "type": "gis"},
		{"url": "https://blog.mapbox.com/rss", "name": "Mapbox Blog", "type": "gis"},
		{"url": "https://www.kdnuggets.com/feed", "name": "KDnuggets News", "type": "news"},
		{"url": "https://www.analyticsvidhya.com/blog/feed/", "name": "Analytics Vidhya", "type": "blog"},
		{"url": "https://www.gislounge.com/feed/", "name": "GIS Lounge", "type": "gis"},
		{"url": "https://hdsr.mitpress.mit.edu/rss_2.0", "name": "Harvard Data Science Review", "type": "academic"},
	}
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "email.smtp.host", []string{
		"SMTP_HOST",
		"SMTP_SERVER",
	})

	bindEnvKeys(v, "email.smtp.port", []string{
		"SMTP_PORT",
	})

	bindEnvKeys(v, "email.smtp.username", []string{
		"SMTP_USERNAME",
		"EMAIL_ADDRESS",
	})

	bindEnvKeys(v, "email.smtp.password", []string{
		"SMTP_PASSWORD",
		"EMAIL_PASSWORD",
	})

	bindEnvKeys(v, "email.from_address", []string{
		"EMAIL_FROM",
		"EMAIL_ADDRESS",
	})

	bindEnvKeys(v, "email.to_address", []string{
		"RECIPIENT_EMAIL",
		"EMAIL_TO",
	})

	bindEnvKeys(v, "logging.level", []string{
		"LOG_LEVEL",
	})

	bindEnvKeys(v, "output.directory", []string{
		"DIGEST_OUTPUT_DIR",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Output.Directory != "" {
		config.Output.Directory = expandPath(config.Output.Directory)
	}

	if config.Email.FromAddress == "" {
		config.Email.FromAddress = config.Email.SMTP.Username
	}

	durations := map[string]string{
		"email.smtp.timeout":           config.Email.SMTP.Timeout,
		"feeds.timeout":                config.Feeds.Timeout,
		"digests.daily.fetch_timeout":  config.Digests.Daily.FetchTimeout,
		"digests.weekly.fetch_timeout": config.Digests.Weekly.FetchTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	if tz := config.Schedule.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid schedule.timezone %q: %w", tz, err)
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures limits and source descriptors are usable
func validateConfig(config *Config) error {
	var errs []string

	profiles := map[string]Profile{
		"digests.daily":  config.Digests.Daily,
		"digests.weekly": config.Digests.Weekly,
	}
	for key, p := range profiles {
		if p.MaxArticles <= 0 {
			errs = append(errs, fmt.Sprintf("%s.max_articles must be positive", key))
		}
		if p.EntriesPerFeed <= 0 {
			errs = append(errs, fmt.Sprintf("%s.entries_per_feed must be positive", key))
		}
		if p.ExcerptLength <= 0 {
			errs = append(errs, fmt.Sprintf("%s.excerpt_length must be positive", key))
		}
		if p.SummaryLength <= 0 {
			errs = append(errs, fmt.Sprintf("%s.summary_length must be positive", key))
		}
		if p.MinSummaryLength < 0 {
			errs = append(errs, fmt.Sprintf("%s.min_summary_length must not be negative", key))
		}
		for i, s := range p.Sources {
			if strings.TrimSpace(s.URL) == "" {
				errs = append(errs, fmt.Sprintf("%s.sources[%d] has no url", key, i))
			}
			if s.Type != "" && core.ParseSourceType(s.Type) == core.SourceUnknown && !strings.EqualFold(s.Type, string(core.SourceUnknown)) {
				errs = append(errs, fmt.Sprintf("%s.sources[%d] has unknown type %q", key, i, s.Type))
			}
		}
	}

	// Validate email SMTP configuration if any credentials are provided
	if config.Email.SMTP.Username != "" || config.Email.SMTP.Password != "" {
		if config.Email.SMTP.Host == "" {
			errs = append(errs, "SMTP host is required when email is configured")
		}
		if config.Email.SMTP.Port <= 0 {
			errs = append(errs, "SMTP port must be positive")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func mustDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
