package config

import (
	"fmt"
	"time"

	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

// Default configuration values.
const (
	defaultScoreThresholdHigh   = 70
	defaultScoreThresholdMedium = 40
	defaultRegionWeight         = 30
	defaultServiceWeight        = 40
	defaultQualityWeight        = 30

	defaultRadiusKM          = 70
	defaultOriginLat         = 49.1427 // Heilbronn
	defaultOriginLon         = 9.2109
	defaultGeocoderBaseURL   = "https://nominatim.openstreetmap.org"
	defaultGeocoderUserAgent = "se-handwerk-agent"
	defaultGeocoderTimeout   = 10 * time.Second
	defaultRequestSpacing    = 1100 * time.Millisecond // Nominatim usage policy: 1 req/s + margin
	defaultCacheExpiryDays   = 30

	defaultScrapeInterval   = 30 * time.Minute
	defaultScrapeTimeout    = 30 * time.Second
	defaultScrapeRetries    = 3
	defaultMaxPerSearch     = 20
	defaultMaxTermsPerRun   = 8
	defaultMaxRegionsPerRun = 3

	defaultDBPath      = "se-handwerk.db"
	defaultCleanupDays = 30

	defaultSummaryTime = "20:00"

	defaultLLMModel         = "claude-3-haiku-20240307"
	defaultLLMStrategyModel = "claude-sonnet-4-20250514"
	defaultLLMMaxPerMinute  = 20
	defaultLLMDailyCostEUR  = 1.0
	defaultLLMBatchSize     = 5
	defaultLLMMaxTokens     = 500

	defaultMinSuccessRate = 0.05
)

// Config holds all runtime configuration for the agent.
type Config struct {
	Logging    logger.Config    `yaml:"logging"`
	Database   DatabaseConfig   `yaml:"database"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Exclusions ExclusionsConfig `yaml:"exclusions"`
	Categories []CategoryConfig `yaml:"categories"`
	Regions    []RegionConfig   `yaml:"regions"`
	Geo        GeoConfig        `yaml:"geo"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	LLM        LLMConfig        `yaml:"llm"`
	Learning   LearningConfig   `yaml:"learning"`
}

// DatabaseConfig holds SQLite storage settings.
type DatabaseConfig struct {
	Path        string `env:"DATABASE_PATH" yaml:"path"`
	CleanupDays int    `yaml:"cleanup_days"`
}

// ScoringConfig holds score weights and priority thresholds.
// Weights should sum to 100; the engine clamps rather than enforcing the sum.
type ScoringConfig struct {
	RegionWeight    int `yaml:"region_weight"`
	ServiceWeight   int `yaml:"service_weight"`
	QualityWeight   int `yaml:"quality_weight"`
	ThresholdHigh   int `yaml:"threshold_high"`
	ThresholdMedium int `yaml:"threshold_medium"`
}

// ExclusionsConfig lists hard-stop terms. Empty lists are legal and never match.
type ExclusionsConfig struct {
	// Services the business does not offer.
	Services []string `yaml:"services"`
	// Phrases signaling a price-shopping, non-serious inquiry.
	BudgetPhrases []string `yaml:"budget_phrases"`
	// Commercial-entity markers; any hit means not a private customer.
	CommercialMarkers []string `yaml:"commercial_markers"`
	// Urgency phrases.
	UrgencyPhrases []string `yaml:"urgency_phrases"`
}

// CategoryConfig binds a service category to its keyword list.
// Declaration order matters: earlier categories win score ties.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	// SearchTerms are fed to the scrapers for this category.
	SearchTerms []string `yaml:"search_terms"`
}

// RegionConfig is one named region in the region score table.
// Declaration order matters: earlier regions win on equal match.
type RegionConfig struct {
	Name           string   `yaml:"name"`
	Score          int      `yaml:"score"`
	Keywords       []string `yaml:"keywords"`
	PostalPrefixes []string `yaml:"postal_prefixes"`
}

// GeoConfig holds geographic eligibility settings.
type GeoConfig struct {
	// GeocodingEnabled turns the Nominatim tier on. When off only the
	// static keyword/postal-prefix tier is used.
	GeocodingEnabled bool    `yaml:"geocoding_enabled"`
	RadiusKM         float64 `yaml:"radius_km"`
	OriginLat        float64 `yaml:"origin_lat"`
	OriginLon        float64 `yaml:"origin_lon"`

	BaseURL        string        `env:"NOMINATIM_BASE_URL" yaml:"base_url"`
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestSpacing time.Duration `yaml:"request_spacing"`

	CachePath       string `yaml:"cache_path"`
	CacheExpiryDays int    `yaml:"cache_expiry_days"`

	// InsideKeywords are place-name substrings always inside the radius.
	InsideKeywords []string `yaml:"inside_keywords"`
	// OutsideKeywords are place names definitively outside the service area.
	OutsideKeywords []string `yaml:"outside_keywords"`
	// PostalPrefixes are the allowed two-digit postal code prefixes.
	PostalPrefixes []string `yaml:"postal_prefixes"`
}

// ScraperConfig holds shared scraping settings.
type ScraperConfig struct {
	Interval      time.Duration `yaml:"interval"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	MinDelay      time.Duration `yaml:"min_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	MaxPerSearch  int           `yaml:"max_per_search"`
	MaxTerms      int           `yaml:"max_terms_per_run"`
	MaxRegions    int           `yaml:"max_regions_per_run"`
	MaxListingAge time.Duration `yaml:"max_listing_age"` // 0 disables the age filter

	Kleinanzeigen KleinanzeigenConfig `yaml:"kleinanzeigen"`
}

// KleinanzeigenConfig configures the kleinanzeigen.de scraper.
type KleinanzeigenConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	// RegionPostcodes maps region names to the postal code used in search URLs.
	RegionPostcodes map[string]string `yaml:"region_postcodes"`
	RadiusKM        int               `yaml:"radius_km"`
}

// TelegramConfig holds the notification channel settings.
type TelegramConfig struct {
	Token       string `env:"TELEGRAM_BOT_TOKEN" yaml:"token"`
	ChatID      int64  `env:"TELEGRAM_CHAT_ID"   yaml:"chat_id"`
	SummaryTime string `yaml:"summary_time"` // HH:MM, daily digest
}

// LLMConfig holds the optional Anthropic-backed scoring layer settings.
type LLMConfig struct {
	Enabled       bool    `yaml:"enabled"`
	APIKey        string  `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model         string  `yaml:"model"`
	StrategyModel string  `yaml:"strategy_model"`
	MaxPerMinute  int     `yaml:"max_per_minute"`
	DailyCostEUR  float64 `yaml:"daily_cost_limit_eur"`
	BatchSize     int     `yaml:"batch_size"`
	MaxTokens     int     `yaml:"max_tokens"`
}

// LearningConfig holds feedback-loop reporting settings.
type LearningConfig struct {
	// MinSuccessRate below which a platform or search term is flagged.
	MinSuccessRate float64 `yaml:"min_success_rate"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return loadWithDefaults[Config](path, SetDefaults)
}

// Default returns the built-in configuration with environment overrides
// applied, for running without a config file.
func Default() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}
	cfg := &Config{}
	SetDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// SetDefaults applies default values to the config.
func SetDefaults(cfg *Config) {
	cfg.Logging.SetDefaults()
	setDatabaseDefaults(&cfg.Database)
	setScoringDefaults(&cfg.Scoring)
	setExclusionDefaults(&cfg.Exclusions)
	if len(cfg.Categories) == 0 {
		cfg.Categories = defaultCategories()
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = defaultRegions()
	}
	setGeoDefaults(&cfg.Geo)
	setScraperDefaults(&cfg.Scraper)
	if cfg.Telegram.SummaryTime == "" {
		cfg.Telegram.SummaryTime = defaultSummaryTime
	}
	setLLMDefaults(&cfg.LLM)
	if cfg.Learning.MinSuccessRate == 0 {
		cfg.Learning.MinSuccessRate = defaultMinSuccessRate
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Path == "" {
		d.Path = defaultDBPath
	}
	if d.CleanupDays == 0 {
		d.CleanupDays = defaultCleanupDays
	}
}

func setScoringDefaults(s *ScoringConfig) {
	if s.RegionWeight == 0 {
		s.RegionWeight = defaultRegionWeight
	}
	if s.ServiceWeight == 0 {
		s.ServiceWeight = defaultServiceWeight
	}
	if s.QualityWeight == 0 {
		s.QualityWeight = defaultQualityWeight
	}
	if s.ThresholdHigh == 0 {
		s.ThresholdHigh = defaultScoreThresholdHigh
	}
	if s.ThresholdMedium == 0 {
		s.ThresholdMedium = defaultScoreThresholdMedium
	}
}

func setExclusionDefaults(e *ExclusionsConfig) {
	if len(e.Services) == 0 {
		e.Services = []string{
			"fliesen verlegen", "fliesenleger", "dachdecker", "elektrik",
			"elektroinstallation", "sanitär", "heizung", "gartenarbeit",
			"entrümpelung",
		}
	}
	if len(e.BudgetPhrases) == 0 {
		e.BudgetPhrases = []string{
			"zum günstigsten preis", "so billig wie möglich", "schwarzarbeit",
			"ohne rechnung", "für ein paar euro", "taschengeld",
		}
	}
	if len(e.CommercialMarkers) == 0 {
		e.CommercialMarkers = []string{
			"firma", "gmbh", "ag ", "gbr", "unternehmen",
			"gewerbe", "gewerblich", "großauftrag", "serie",
		}
	}
	if len(e.UrgencyPhrases) == 0 {
		e.UrgencyPhrases = []string{
			"dringend", "schnell", "asap", "sofort", "diese woche",
			"kurzfristig", "eilig", "notfall", "baldmöglichst",
			"zeitnah", "nächste woche",
		}
	}
}

func defaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{
			Name: "flooring",
			Keywords: []string{
				"laminat", "vinyl", "klickvinyl", "parkett", "bodenbelag",
				"boden verlegen", "sockelleisten", "fußleisten",
				"trittschall", "teppich entfernen", "boden entfernen",
			},
			SearchTerms: []string{
				"laminat verlegen", "vinyl verlegen", "boden verlegen",
				"sockelleisten montieren",
			},
		},
		{
			Name: "assembly",
			Keywords: []string{
				"montage", "aufbau", "möbel", "ikea", "pax", "schrank",
				"küche aufbauen", "homegym", "power rack", "fitnessgerät",
				"kraftstation", "hantelbank", "laufband",
			},
			SearchTerms: []string{
				"möbelmontage", "ikea aufbau", "homegym aufbau",
			},
		},
		{
			Name: "handover",
			Keywords: []string{
				"übergabe", "wohnungsübergabe", "renovierung", "streichen",
				"auszug", "endrenovierung", "schönheitsreparaturen",
			},
			SearchTerms: []string{
				"wohnungsübergabe renovierung", "streichen auszug",
			},
		},
	}
}

func defaultRegions() []RegionConfig {
	return []RegionConfig{
		{
			Name:  "heilbronn",
			Score: 30,
			Keywords: []string{
				"heilbronn", "neckarsulm", "weinsberg", "bad friedrichshall",
				"lauffen", "brackenheim", "öhringen", "eppingen",
			},
			PostalPrefixes: []string{"74"},
		},
		{
			Name:  "stuttgart",
			Score: 25,
			Keywords: []string{
				"stuttgart", "ludwigsburg", "bietigheim", "besigheim",
				"sachsenheim",
			},
			PostalPrefixes: []string{"70", "71"},
		},
		{
			Name:  "rhein-neckar",
			Score: 20,
			Keywords: []string{
				"heidelberg", "mannheim", "sinsheim", "mosbach",
			},
			PostalPrefixes: []string{"68", "69"},
		},
		{
			Name:  "hohenlohe",
			Score: 20,
			Keywords: []string{
				"schwäbisch hall", "crailsheim", "künzelsau",
			},
			PostalPrefixes: []string{"73"},
		},
	}
}

func setGeoDefaults(g *GeoConfig) {
	if g.RadiusKM == 0 {
		g.RadiusKM = defaultRadiusKM
	}
	if g.OriginLat == 0 {
		g.OriginLat = defaultOriginLat
	}
	if g.OriginLon == 0 {
		g.OriginLon = defaultOriginLon
	}
	if g.BaseURL == "" {
		g.BaseURL = defaultGeocoderBaseURL
	}
	if g.UserAgent == "" {
		g.UserAgent = defaultGeocoderUserAgent
	}
	if g.Timeout == 0 {
		g.Timeout = defaultGeocoderTimeout
	}
	if g.RequestSpacing == 0 {
		g.RequestSpacing = defaultRequestSpacing
	}
	if g.CachePath == "" {
		g.CachePath = "geo-cache.db"
	}
	if g.CacheExpiryDays == 0 {
		g.CacheExpiryDays = defaultCacheExpiryDays
	}
	if len(g.InsideKeywords) == 0 {
		g.InsideKeywords = []string{
			"heilbronn", "neckarsulm", "weinsberg", "bad friedrichshall",
			"lauffen", "brackenheim", "öhringen", "neuenstadt", "eppingen",
			"besigheim", "bietigheim", "ludwigsburg", "stuttgart",
			"heidelberg", "mannheim", "schwäbisch hall", "crailsheim",
			"künzelsau", "mosbach", "sinsheim",
		}
	}
	if len(g.OutsideKeywords) == 0 {
		g.OutsideKeywords = []string{
			"berlin", "hamburg", "münchen", "köln", "frankfurt",
			"düsseldorf", "dortmund", "essen", "bremen", "dresden",
			"leipzig", "hannover", "nürnberg",
		}
	}
	if len(g.PostalPrefixes) == 0 {
		g.PostalPrefixes = []string{"74", "70", "71", "69", "68", "75", "72", "73"}
	}
}

func setScraperDefaults(s *ScraperConfig) {
	if s.Interval == 0 {
		s.Interval = defaultScrapeInterval
	}
	if s.Timeout == 0 {
		s.Timeout = defaultScrapeTimeout
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = defaultScrapeRetries
	}
	if s.MinDelay == 0 {
		s.MinDelay = 2 * time.Second
	}
	if s.MaxDelay == 0 {
		s.MaxDelay = 5 * time.Second
	}
	if s.MaxPerSearch == 0 {
		s.MaxPerSearch = defaultMaxPerSearch
	}
	if s.MaxTerms == 0 {
		s.MaxTerms = defaultMaxTermsPerRun
	}
	if s.MaxRegions == 0 {
		s.MaxRegions = defaultMaxRegionsPerRun
	}
	if s.Kleinanzeigen.BaseURL == "" {
		s.Kleinanzeigen.BaseURL = "https://www.kleinanzeigen.de"
	}
	if len(s.Kleinanzeigen.RegionPostcodes) == 0 {
		s.Kleinanzeigen.RegionPostcodes = map[string]string{
			"Heilbronn":   "74072",
			"Stuttgart":   "70173",
			"Ludwigsburg": "71638",
			"Mannheim":    "68159",
		}
	}
	if s.Kleinanzeigen.RadiusKM == 0 {
		s.Kleinanzeigen.RadiusKM = 100
	}
}

func setLLMDefaults(l *LLMConfig) {
	if l.Model == "" {
		l.Model = defaultLLMModel
	}
	if l.StrategyModel == "" {
		l.StrategyModel = defaultLLMStrategyModel
	}
	if l.MaxPerMinute == 0 {
		l.MaxPerMinute = defaultLLMMaxPerMinute
	}
	if l.DailyCostEUR == 0 {
		l.DailyCostEUR = defaultLLMDailyCostEUR
	}
	if l.BatchSize == 0 {
		l.BatchSize = defaultLLMBatchSize
	}
	if l.MaxTokens == 0 {
		l.MaxTokens = defaultLLMMaxTokens
	}
}
