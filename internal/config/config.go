package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"signal-sniper/internal/domain"
	"signal-sniper/internal/provider"
	"signal-sniper/pkg/logger"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tickers             []string
	Sources             []string
	PostLimit           int
	RefreshIntervalSecs int
	CycleTimeoutSecs    int
	SourceTimeoutSecs   int
	SourceRetryAttempts int
	MaxConcurrentSrc    int

	RedditClientID       string
	RedditClientSecret   string
	RedditUserAgent      string
	RedditRequestsPerMin int

	TickerMatchMode string
	HistoryLimit    int

	Classifier           string
	OpenAIAPIKey         string
	OpenAIModel          string
	HFAPIURL             string
	HFAPIToken           string
	ClassifyCacheTTLSecs int

	RedisURL string

	HTTPPort         int
	APIKey           string
	TelegramBotToken string
	MCPHTTPEnabled   bool

	SSHPort           int
	SSHHostKeyPath    string
	SSHAuthorizedKeys string
	SniperAPIURL      string

	LogLevel string
	AppEnv   string

	fileErr error
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE. Environment
// variables take precedence over it.
type fileConfig struct {
	Tickers             []string `yaml:"tickers"`
	Sources             []string `yaml:"sources"`
	Feeds               []string `yaml:"feeds"`
	PostLimit           int      `yaml:"post_limit"`
	RefreshIntervalSecs int      `yaml:"refresh_interval_secs"`
	HistoryLimit        *int     `yaml:"history_limit"`
	TickerMatchMode     string   `yaml:"ticker_match_mode"`
	Classifier          string   `yaml:"classifier"`
}

func Load() *Config {
	log := logger.Get()
	cfg := &Config{
		Tickers:             append([]string(nil), domain.DefaultTickers...),
		Sources:             append([]string(nil), domain.DefaultSources...),
		PostLimit:           100,
		RefreshIntervalSecs: 900,
		HistoryLimit:        1000,
		TickerMatchMode:     "substring",
		Classifier:          "heuristic",
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			cfg.fileErr = err
			log.Warnw("config file not applied", "path", path, "error", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("TICKERS")); v != "" {
		cfg.Tickers = uniqueList(strings.Split(v, ","), domain.CanonicalTicker)
	}
	if v := strings.TrimSpace(os.Getenv("SOURCES")); v != "" {
		cfg.Sources = splitList(v)
	}
	cfg.PostLimit = envInt("POST_LIMIT", cfg.PostLimit)
	cfg.RefreshIntervalSecs = envInt("REFRESH_INTERVAL_SECS", cfg.RefreshIntervalSecs)
	cfg.CycleTimeoutSecs = envPositive("CYCLE_TIMEOUT_SECS", 300)
	cfg.SourceTimeoutSecs = envPositive("SOURCE_TIMEOUT_SECS", 60)
	cfg.SourceRetryAttempts = envPositive("SOURCE_RETRY_ATTEMPTS", 3)
	cfg.MaxConcurrentSrc = envPositive("MAX_CONCURRENT_SOURCES", 4)

	cfg.RedditClientID = strings.TrimSpace(os.Getenv("REDDIT_CLIENT_ID"))
	cfg.RedditClientSecret = strings.TrimSpace(os.Getenv("REDDIT_CLIENT_SECRET"))
	if cfg.RedditClientID == "" {
		log.Info("REDDIT_CLIENT_ID not set, using the public Reddit listing endpoint")
	}
	cfg.RedditUserAgent = strings.TrimSpace(os.Getenv("REDDIT_USER_AGENT"))
	if cfg.RedditUserAgent == "" {
		cfg.RedditUserAgent = "signal-sniper-bot/1.0"
	}
	cfg.RedditRequestsPerMin = 60
	if v := strings.TrimSpace(os.Getenv("REDDIT_REQUESTS_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RedditRequestsPerMin = n
		}
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("TICKER_MATCH_MODE"))); v != "" {
		cfg.TickerMatchMode = v
	}
	if v := strings.TrimSpace(os.Getenv("HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.HistoryLimit = n
		} else {
			log.Warnw("invalid HISTORY_LIMIT, keeping default", "value", v, "default", cfg.HistoryLimit)
		}
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CLASSIFIER"))); v != "" {
		cfg.Classifier = v
	}
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	cfg.HFAPIURL = strings.TrimSpace(os.Getenv("HF_API_URL"))
	cfg.HFAPIToken = strings.TrimSpace(os.Getenv("HF_API_TOKEN"))
	cfg.ClassifyCacheTTLSecs = 86400
	if v := strings.TrimSpace(os.Getenv("CLASSIFY_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ClassifyCacheTTLSecs = n
		}
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, classification cache disabled")
	}

	cfg.HTTPPort = envPositive("HTTP_PORT", 8000)
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramBotToken == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}
	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.SSHPort = envPositive("SSH_PORT", 23234)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}
	cfg.SSHAuthorizedKeys = strings.TrimSpace(os.Getenv("SSH_AUTHORIZED_KEYS"))
	if cfg.SSHAuthorizedKeys == "" {
		cfg.SSHAuthorizedKeys = ".ssh/authorized_keys"
	}
	cfg.SniperAPIURL = strings.TrimSpace(os.Getenv("SNIPER_API_URL"))
	if cfg.SniperAPIURL == "" {
		cfg.SniperAPIURL = fmt.Sprintf("http://localhost:%d", cfg.HTTPPort)
	}

	cfg.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.AppEnv = strings.TrimSpace(os.Getenv("APP_ENV"))
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	return cfg
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if len(fc.Tickers) > 0 {
		c.Tickers = uniqueList(fc.Tickers, domain.CanonicalTicker)
	}
	sources := append([]string(nil), c.Sources...)
	if len(fc.Sources) > 0 {
		sources = fc.Sources
	}
	for _, feed := range fc.Feeds {
		if feed = strings.TrimSpace(feed); feed != "" {
			sources = append(sources, "rss:"+feed)
		}
	}
	c.Sources = uniqueList(sources, strings.TrimSpace)
	if fc.PostLimit != 0 {
		c.PostLimit = fc.PostLimit
	}
	if fc.RefreshIntervalSecs != 0 {
		c.RefreshIntervalSecs = fc.RefreshIntervalSecs
	}
	if fc.HistoryLimit != nil {
		c.HistoryLimit = *fc.HistoryLimit
	}
	if fc.TickerMatchMode != "" {
		c.TickerMatchMode = strings.ToLower(fc.TickerMatchMode)
	}
	if fc.Classifier != "" {
		c.Classifier = strings.ToLower(fc.Classifier)
	}
	return nil
}

// Validate reports every configuration problem at once. The returned error
// wraps domain.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	var problems []error
	if c.fileErr != nil {
		problems = append(problems, fmt.Errorf("config file: %w", c.fileErr))
	}
	if len(c.Tickers) == 0 {
		problems = append(problems, errors.New("ticker list is empty"))
	}
	for _, t := range c.Tickers {
		if domain.CanonicalTicker(t) == "" {
			problems = append(problems, fmt.Errorf("ticker %q is blank", t))
		}
	}
	if len(c.Sources) == 0 {
		problems = append(problems, errors.New("source list is empty"))
	}
	for _, s := range c.Sources {
		if _, _, err := provider.ParseSourceID(s); err != nil {
			problems = append(problems, fmt.Errorf("source %q: %w", s, err))
		}
	}
	if c.PostLimit <= 0 {
		problems = append(problems, fmt.Errorf("post limit must be positive, got %d", c.PostLimit))
	}
	if c.RefreshIntervalSecs <= 0 {
		problems = append(problems, fmt.Errorf("refresh interval must be positive, got %d", c.RefreshIntervalSecs))
	}
	if c.HistoryLimit < 0 {
		problems = append(problems, fmt.Errorf("history limit must not be negative, got %d", c.HistoryLimit))
	}
	if (c.RedditClientID == "") != (c.RedditClientSecret == "") {
		problems = append(problems, errors.New("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET must be set together"))
	}
	switch c.TickerMatchMode {
	case "substring", "word":
	default:
		problems = append(problems, fmt.Errorf("unknown ticker match mode %q", c.TickerMatchMode))
	}
	switch c.Classifier {
	case "heuristic":
	case "openai":
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			problems = append(problems, errors.New("CLASSIFIER=openai requires OPENAI_API_KEY"))
		}
	case "huggingface":
		if c.HFAPIToken == "" {
			problems = append(problems, errors.New("CLASSIFIER=huggingface requires HF_API_TOKEN"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown classifier %q", c.Classifier))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, errors.Join(problems...))
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSecs) * time.Second
}

func (c *Config) CycleTimeout() time.Duration {
	return time.Duration(c.CycleTimeoutSecs) * time.Second
}

func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSecs) * time.Second
}

func (c *Config) ClassifyCacheTTL() time.Duration {
	return time.Duration(c.ClassifyCacheTTLSecs) * time.Second
}

// splitList trims each comma-separated value and drops blanks and repeats,
// keeping the first occurrence.
func splitList(v string) []string {
	return uniqueList(strings.Split(v, ","), strings.TrimSpace)
}

func uniqueList(values []string, key func(string) string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		k := key(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// envInt parses key as an int, keeping def when unset. An unparsable value
// also keeps def; Validate rejects non-positive results.
func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Get().Warnw("invalid integer setting, keeping default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envPositive(key string, def int) int {
	if n := envInt(key, def); n > 0 {
		return n
	}
	return def
}
