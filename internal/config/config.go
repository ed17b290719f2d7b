package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "NEWSPOLARITY_CONFIG"
	logLevelEnv     = "LOG_LEVEL"
	dbDialectEnv    = "DB_DIALECT"
	dbHostEnv       = "DB_HOST"
	dbPortEnv       = "DB_PORT"
	dbNameEnv       = "DB_NAME"
	dbUserEnv       = "DB_USER"
	dbPasswordEnv   = "DB_PASSWORD"
	databaseDSNEnv  = "DATABASE_DSN"
	bucketEnv       = "S3_BUCKET_NAME"
	regionEnv       = "AWS_REGION"
	accessKeyEnv    = "AWS_ACCESS_KEY"
	secretKeyEnv    = "AWS_SECRET_ACCESS_KEY"
	s3EndpointEnv   = "S3_ENDPOINT"
	openAIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
)

// Dialects understood by the storage layer.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Staging   StagingConfig   `yaml:"staging"`
	ChatGPT   ChatGPTConfig   `yaml:"chatgpt"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Sites     []SiteConfig    `yaml:"sites"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the relational store. DSN, when set, wins over the parts.
type DatabaseConfig struct {
	Dialect  string `yaml:"dialect"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslMode"`
}

// ConnString returns the driver connection string for the configured dialect.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Dialect == DialectSQLite {
		return d.Name
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// StagingConfig points at the object-storage bucket for scraped batches.
type StagingConfig struct {
	Bucket          string        `yaml:"bucket"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint"`
	UsePathStyle    bool          `yaml:"usePathStyle"`
	AccessKeyID     string        `yaml:"accessKeyId"`
	SecretAccessKey string        `yaml:"secretAccessKey"`
	Retention       time.Duration `yaml:"retention"`
}

// ChatGPTConfig defines how to contact the classification model.
type ChatGPTConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"apiKey"`
	BatchSize int           `yaml:"batchSize"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ScraperConfig tunes article-page fetching.
type ScraperConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	WaveSize          int           `yaml:"waveSize"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	UserAgent         string        `yaml:"userAgent"`
	MaxAge            time.Duration `yaml:"maxAge"`
}

// AnalysisConfig holds policies of the analysis run.
type AnalysisConfig struct {
	DropUnclassified *bool `yaml:"dropUnclassified"`
}

// DropsUnclassified reports the effective policy; it defaults to true.
func (a AnalysisConfig) DropsUnclassified() bool {
	return a.DropUnclassified == nil || *a.DropUnclassified
}

// SchedulerConfig defines how often the watch loop runs.
type SchedulerConfig struct {
	ScrapeInterval time.Duration  `yaml:"scrapeInterval"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SiteConfig describes a single outlet with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig is one feed or index page of a site.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Database.Dialect, dbDialectEnv)
	setString(&c.Database.Host, dbHostEnv)
	setString(&c.Database.Name, dbNameEnv)
	setString(&c.Database.User, dbUserEnv)
	setString(&c.Database.Password, dbPasswordEnv)
	setString(&c.Database.DSN, databaseDSNEnv)

	if v := os.Getenv(dbPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		} else {
			log.Printf("config: ignoring %s=%q: %v", dbPortEnv, v, err)
		}
	}

	setString(&c.Staging.Bucket, bucketEnv)
	setString(&c.Staging.Region, regionEnv)
	setString(&c.Staging.AccessKeyID, accessKeyEnv)
	setString(&c.Staging.SecretAccessKey, secretKeyEnv)
	setString(&c.Staging.Endpoint, s3EndpointEnv)

	setString(&c.ChatGPT.APIKey, openAIKeyEnv)
	setString(&c.ChatGPT.Model, openAIModelEnv)
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	mergeString(&base.Database.Dialect, override.Database.Dialect)
	mergeString(&base.Database.DSN, override.Database.DSN)
	mergeString(&base.Database.Host, override.Database.Host)
	mergeString(&base.Database.Name, override.Database.Name)
	mergeString(&base.Database.User, override.Database.User)
	mergeString(&base.Database.Password, override.Database.Password)
	mergeString(&base.Database.SSLMode, override.Database.SSLMode)
	if override.Database.Port != 0 {
		base.Database.Port = override.Database.Port
	}

	mergeString(&base.Staging.Bucket, override.Staging.Bucket)
	mergeString(&base.Staging.Region, override.Staging.Region)
	mergeString(&base.Staging.Endpoint, override.Staging.Endpoint)
	mergeString(&base.Staging.AccessKeyID, override.Staging.AccessKeyID)
	mergeString(&base.Staging.SecretAccessKey, override.Staging.SecretAccessKey)
	if override.Staging.UsePathStyle {
		base.Staging.UsePathStyle = true
	}
	if override.Staging.Retention > 0 {
		base.Staging.Retention = override.Staging.Retention
	}

	mergeString(&base.ChatGPT.Endpoint, override.ChatGPT.Endpoint)
	mergeString(&base.ChatGPT.Model, override.ChatGPT.Model)
	mergeString(&base.ChatGPT.APIKey, override.ChatGPT.APIKey)
	if override.ChatGPT.BatchSize > 0 {
		base.ChatGPT.BatchSize = override.ChatGPT.BatchSize
	}
	if override.ChatGPT.Timeout > 0 {
		base.ChatGPT.Timeout = override.ChatGPT.Timeout
	}

	if override.Scraper.Timeout > 0 {
		base.Scraper.Timeout = override.Scraper.Timeout
	}
	if override.Scraper.WaveSize > 0 {
		base.Scraper.WaveSize = override.Scraper.WaveSize
	}
	if override.Scraper.RequestsPerSecond > 0 {
		base.Scraper.RequestsPerSecond = override.Scraper.RequestsPerSecond
	}
	if override.Scraper.MaxAge > 0 {
		base.Scraper.MaxAge = override.Scraper.MaxAge
	}
	mergeString(&base.Scraper.UserAgent, override.Scraper.UserAgent)

	if override.Analysis.DropUnclassified != nil {
		base.Analysis.DropUnclassified = override.Analysis.DropUnclassified
	}

	if override.Scheduler.ScrapeInterval > 0 {
		base.Scheduler.ScrapeInterval = override.Scheduler.ScrapeInterval
	}
	mergeString(&base.Scheduler.Timezone, override.Scheduler.Timezone)

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Database: DatabaseConfig{
			Dialect: DialectPostgres,
			Host:    "localhost",
			Port:    5432,
			Name:    "news_polarity",
			User:    "postgres",
			SSLMode: "disable",
		},
		Staging: StagingConfig{
			Region:    "eu-west-2",
			Retention: 7 * 24 * time.Hour,
		},
		ChatGPT: ChatGPTConfig{
			Endpoint:  "https://api.openai.com/v1/chat/completions",
			Model:     "gpt-4o-mini",
			BatchSize: 15,
			Timeout:   60 * time.Second,
		},
		Scraper: ScraperConfig{
			Timeout:           30 * time.Second,
			WaveSize:          50,
			RequestsPerSecond: 10,
			UserAgent:         "NewsPolarity/1.0",
			MaxAge:            7 * 24 * time.Hour,
		},
		Scheduler: SchedulerConfig{ScrapeInterval: time.Hour, Timezone: defaultTimezone, location: tz},
		Sites:     DefaultSites(),
	}
}

// DefaultSites lists the two outlets the product monitors.
func DefaultSites() []SiteConfig {
	foxFeeds := []string{"latest", "world", "politics", "science", "health", "sports", "travel", "tech", "opinion"}
	categories := make([]CategoryConfig, 0, len(foxFeeds))
	for _, name := range foxFeeds {
		categories = append(categories, CategoryConfig{
			Name: name,
			URL:  "https://moxie.foxnews.com/google-publisher/" + name + ".xml",
		})
	}

	return []SiteConfig{
		{Name: "Fox News", Scanner: "rss", Categories: categories},
		{
			Name:    "Democracy Now!",
			Scanner: "topics",
			Categories: []CategoryConfig{
				{Name: "topics", URL: "https://www.democracynow.org/topics/browse"},
			},
		},
	}
}
