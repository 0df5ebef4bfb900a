package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // console|json
}

// ScoringConfig is the quality-score weight table. All values are
// points added to a score that is clamped to [0,100].
type ScoringConfig struct {
	CoreComplete     int `yaml:"core_complete"`     // name+date+time+location+description all present
	PartialCore      int `yaml:"partial_core"`      // only the always-required fields present
	TicketLink       int `yaml:"ticket_link"`       // ticket link present
	TrustedSource    int `yaml:"trusted_source"`    // source is in the trusted list
	DescriptionBand  int `yaml:"description_band"`  // description length within the band
	ShortDescription int `yaml:"short_description"` // description present but below the band
	Price            int `yaml:"price"`             // price descriptor present
	Image            int `yaml:"image"`             // image URL present

	DescriptionMin int `yaml:"description_min"` // lower bound of the band, exclusive
	DescriptionMax int `yaml:"description_max"` // upper bound of the band, exclusive
}

// ThresholdConfig maps quality scores to publication statuses.
type ThresholdConfig struct {
	MinQualityScore int `yaml:"min_quality_score"` // below this: Rejected
	AutoApprove     int `yaml:"auto_approve"`      // at or above this: Approved
}

// SelectorConfig names the CSS selectors an HTML source uses to pull
// fields out of a listing page. Item is required; the rest fall back to
// the first text segment of the item.
type SelectorConfig struct {
	Item     string `yaml:"item"`
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Time     string `yaml:"time"`
	Venue    string `yaml:"venue"`
	Link     string `yaml:"link"`
	Image    string `yaml:"image"`
	Price    string `yaml:"price"`
	Summary  string `yaml:"summary"`
	MaxItems int    `yaml:"max_items"`
}

// SourceConfig describes one configured source adapter.
type SourceConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // html | ai | file
	URL  string `yaml:"url"`

	// html sources
	Selectors       SelectorConfig `yaml:"selectors"`
	DefaultVenue    string         `yaml:"default_venue"`
	DefaultCategory string         `yaml:"default_category"`

	// file sources
	Path string `yaml:"path"`

	// ai sources
	Context string `yaml:"context"` // hint passed to the extractor, e.g. "Norwich theatre listings"
}

// AIConfig configures the extraction collaborator used by ai sources.
type AIConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// GatewayConfig configures the submission gateway. An empty URL means
// unconfigured: the pipeline writes the backup document instead of
// submitting.
type GatewayConfig struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"` // 0 disables retry, the observed production behavior
}

// Config is the single explicit configuration structure constructed at
// startup and passed into each component. No component reads ambient
// process state directly.
type Config struct {
	Categories     []string          `yaml:"categories"`
	CategoryHints  map[string]string `yaml:"category_hints"`
	TrustedSources []string          `yaml:"trusted_sources"`

	Scoring    ScoringConfig   `yaml:"scoring"`
	Thresholds ThresholdConfig `yaml:"thresholds"`

	Sources []SourceConfig `yaml:"sources"`
	AI      AIConfig       `yaml:"ai"`
	Gateway GatewayConfig  `yaml:"gateway"`

	// DefaultDateFallback enables the documented last-resort date
	// default (+7 days from the reference time) when no date can be
	// parsed. Disabled, dateless candidates are dropped instead.
	DefaultDateFallback bool `yaml:"default_date_fallback"`

	RequestDelay time.Duration `yaml:"request_delay"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	DataDir string        `yaml:"data_dir"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when a field is absent from
// the config file.
func Default() Config {
	return Config{
		Categories: []string{
			"nightlife", "gigs", "theatre", "sports",
			"markets", "community", "culture", "free",
		},
		CategoryHints: map[string]string{
			"dj":        "nightlife",
			"club":      "nightlife",
			"clubbing":  "nightlife",
			"party":     "nightlife",
			"band":      "gigs",
			"gig":       "gigs",
			"live":      "gigs",
			"concert":   "gigs",
			"acoustic":  "gigs",
			"play":      "theatre",
			"musical":   "theatre",
			"drama":     "theatre",
			"panto":     "theatre",
			"comedy":    "theatre",
			"football":  "sports",
			"rugby":     "sports",
			"run":       "sports",
			"match":     "sports",
			"market":    "markets",
			"fair":      "markets",
			"stall":     "markets",
			"charity":   "community",
			"volunteer": "community",
			"meetup":    "community",
			"workshop":  "community",
			"museum":    "culture",
			"gallery":   "culture",
			"exhibition": "culture",
			"art":       "culture",
			"heritage":  "culture",
			"free":      "free",
		},
		Scoring: ScoringConfig{
			CoreComplete:     40,
			PartialCore:      15,
			TicketLink:       20,
			TrustedSource:    15,
			DescriptionBand:  15,
			ShortDescription: 5,
			Price:            10,
			Image:            5,
			DescriptionMin:   50,
			DescriptionMax:   500,
		},
		Thresholds: ThresholdConfig{
			MinQualityScore: 50,
			AutoApprove:     70,
		},
		AI: AIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Gateway: GatewayConfig{
			Timeout: 15 * time.Second,
		},
		RequestDelay: 2 * time.Second,
		FetchTimeout: 30 * time.Second,
		DataDir:      "~/.local/share/eventpipe",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML config at path on top of the defaults and
// validates it. An empty path yields the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	// Secrets may come from the environment when absent from the file.
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the pipeline relies on.
func (c Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: categories must not be empty")
	}
	if c.Thresholds.MinQualityScore >= c.Thresholds.AutoApprove {
		return fmt.Errorf("config: min_quality_score (%d) must be below auto_approve (%d)",
			c.Thresholds.MinQualityScore, c.Thresholds.AutoApprove)
	}
	if c.Scoring.DescriptionMin >= c.Scoring.DescriptionMax {
		return fmt.Errorf("config: description_min (%d) must be below description_max (%d)",
			c.Scoring.DescriptionMin, c.Scoring.DescriptionMax)
	}
	for i, s := range c.Sources {
		switch s.Type {
		case "html":
			if s.URL == "" {
				return fmt.Errorf("config: source %d (%s): html source requires url", i, s.Name)
			}
		case "ai":
			if s.URL == "" {
				return fmt.Errorf("config: source %d (%s): ai source requires url", i, s.Name)
			}
		case "file":
			if s.Path == "" {
				return fmt.Errorf("config: source %d (%s): file source requires path", i, s.Name)
			}
		default:
			return fmt.Errorf("config: source %d (%s): unknown type %q", i, s.Name, s.Type)
		}
	}
	return nil
}

// IsCategory reports whether cat is a member of the configured closed
// category set.
func (c Config) IsCategory(cat string) bool {
	for _, v := range c.Categories {
		if v == cat {
			return true
		}
	}
	return false
}

// IsTrustedSource reports whether source is on the trusted allow-list.
func (c Config) IsTrustedSource(source string) bool {
	for _, v := range c.TrustedSources {
		if v == source {
			return true
		}
	}
	return false
}
