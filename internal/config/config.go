// Package config loads application configuration from file and environment
// and owns global logger setup.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Edgar    EdgarConfig    `yaml:"edgar" mapstructure:"edgar"`
	Concepts ConceptsConfig `yaml:"concepts" mapstructure:"concepts"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// EdgarConfig configures access to the SEC EDGAR endpoints.
type EdgarConfig struct {
	// UserAgent is the mandatory identification header. SEC requires a
	// descriptive value with contact info; requests without one are refused.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	TickerMapURL    string `yaml:"ticker_map_url" mapstructure:"ticker_map_url"`
	SubmissionsBase string `yaml:"submissions_base" mapstructure:"submissions_base"`
	FactsBase       string `yaml:"facts_base" mapstructure:"facts_base"`
	ConceptBase     string `yaml:"concept_base" mapstructure:"concept_base"`

	// MaxRequestsPerSecond is the process-wide outbound ceiling. The SEC cap
	// is 10/s; the default stays under it.
	MaxRequestsPerSecond float64 `yaml:"max_requests_per_second" mapstructure:"max_requests_per_second"`
	MaxRetries           int     `yaml:"max_retries" mapstructure:"max_retries"`
	BackoffBaseSecs      float64 `yaml:"backoff_base_secs" mapstructure:"backoff_base_secs"`
	BackoffMaxSecs       float64 `yaml:"backoff_max_secs" mapstructure:"backoff_max_secs"`
	TimeoutSecs          int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`

	CacheDir         string `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheMaxAgeHours int    `yaml:"cache_max_age_hours" mapstructure:"cache_max_age_hours"`
}

// ConceptsConfig holds the immutable concept lookup tables: tag aliases,
// the priority concept allow-list, and the key-form set. Loaded once at
// process start and passed explicitly into the normalizer.
type ConceptsConfig struct {
	// File optionally points at a YAML file overriding the built-in tables.
	File     string            `yaml:"file" mapstructure:"file"`
	Aliases  map[string]string `yaml:"aliases" mapstructure:"aliases"`
	Priority []string          `yaml:"priority" mapstructure:"priority"`
	KeyForms []string          `yaml:"key_forms" mapstructure:"key_forms"`
}

// OutputConfig configures where and how results are written.
type OutputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	Format      string `yaml:"format" mapstructure:"format"`
	DBPath      string `yaml:"db_path" mapstructure:"db_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the viewer server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultAliases maps variant XBRL tags to a canonical concept name.
func DefaultAliases() map[string]string {
	return map[string]string{
		"RevenueFromContractWithCustomerExcludingAssessedTax": "Revenues",
		"RevenueFromContractWithCustomerIncludingAssessedTax": "Revenues",
		"SalesRevenueNet":                                     "Revenues",
		"SalesRevenueGoodsNet":                                "Revenues",
		"SalesRevenueServicesNet":                             "Revenues",
		"NetIncomeLossAvailableToCommonStockholdersBasic":     "NetIncomeLoss",
	}
}

// DefaultPriority lists the us-gaap concepts kept when --priority-only is set.
func DefaultPriority() []string {
	return []string{
		"Revenues",
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"NetIncomeLoss",
		"EarningsPerShareBasic",
		"EarningsPerShareDiluted",
		"Assets",
		"Liabilities",
		"StockholdersEquity",
		"OperatingIncomeLoss",
		"CashAndCashEquivalentsAtCarryingValue",
		"CommonStockSharesOutstanding",
	}
}

// DefaultKeyForms lists the high-significance filing form types.
func DefaultKeyForms() []string {
	return []string{"10-K", "10-Q", "8-K", "DEF 14A", "S-1"}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".edgar-cache"
	}
	return filepath.Join(home, ".cache", "edgar-cli")
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EDGAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The SEC-style env var most users already have set.
	_ = v.BindEnv("edgar.user_agent", "EDGAR_EDGAR_USER_AGENT", "SEC_EDGAR_USER_AGENT")

	// Defaults
	v.SetDefault("edgar.ticker_map_url", "https://www.sec.gov/files/company_tickers.json")
	v.SetDefault("edgar.submissions_base", "https://data.sec.gov/submissions")
	v.SetDefault("edgar.facts_base", "https://data.sec.gov/api/xbrl/companyfacts")
	v.SetDefault("edgar.concept_base", "https://data.sec.gov/api/xbrl/companyconcept")
	v.SetDefault("edgar.max_requests_per_second", 8.0)
	v.SetDefault("edgar.max_retries", 5)
	v.SetDefault("edgar.backoff_base_secs", 2.0)
	v.SetDefault("edgar.backoff_max_secs", 30.0)
	v.SetDefault("edgar.timeout_secs", 30)
	v.SetDefault("edgar.cache_dir", defaultCacheDir())
	v.SetDefault("edgar.cache_max_age_hours", 24)
	v.SetDefault("concepts.aliases", DefaultAliases())
	v.SetDefault("concepts.priority", DefaultPriority())
	v.SetDefault("concepts.key_forms", DefaultKeyForms())
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Concepts.File != "" {
		if err := cfg.Concepts.loadFile(cfg.Concepts.File); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// loadFile overrides the concept tables from a standalone YAML file.
// Only sections present in the file are replaced.
func (c *ConceptsConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "config: read concepts file %s", path)
	}

	var override struct {
		Aliases  map[string]string `yaml:"aliases"`
		Priority []string          `yaml:"priority"`
		KeyForms []string          `yaml:"key_forms"`
	}
	if err := yaml.Unmarshal(data, &override); err != nil {
		return eris.Wrapf(err, "config: parse concepts file %s", path)
	}

	if override.Aliases != nil {
		c.Aliases = override.Aliases
	}
	if override.Priority != nil {
		c.Priority = override.Priority
	}
	if override.KeyForms != nil {
		c.KeyForms = override.KeyForms
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
