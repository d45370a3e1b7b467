package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the hirecall service.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	AI           AIConfig
	Voice        VoiceConfig
	ATS          ATSConfig
	Mail         MailConfig
	Notification NotificationConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Reconcile    ReconcileConfig
	Tasks        TasksConfig
	Logging      LoggingConfig
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxUploadMB  int
	BaseURL      string // public URL used in recruiter alert links
}

// MaxUploadBytes is the upload cap for résumé files.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver          string // "sqlite" or "postgres"
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AIConfig controls the completion provider.
type AIConfig struct {
	Provider string // "openai" or "vertex"
	BaseURL  string // defaults to https://api.openai.com/v1
	Model    string
	APIKey   string // expanded from env var by Load
	Project  string // vertex only
	Location string // vertex only
	Timeout  time.Duration
	JSONMode bool
}

// VoiceConfig controls the voice provider gateway.
type VoiceConfig struct {
	BaseURL            string
	APIKey             string
	DefaultCountryCode string
	DispatchMinGap     time.Duration // minimum gap between outbound dispatches
	RetrieveRetries    int
	Timeout            time.Duration
}

// ATSConfig holds scoring settings.
type ATSConfig struct {
	ShortlistThreshold int
}

// MailConfig selects the transactional mailer.
type MailConfig struct {
	Type            string // "none", "log", "resend" or "gmail"
	From            string
	APIKey          string
	BaseURL         string
	CredentialsFile string // gmail only
	TokenFile       string // gmail only
	Retries         int
}

// Configured reports whether shortlist emails can be sent.
func (m MailConfig) Configured() bool {
	return m.Type != "none"
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type           string `yaml:"type"`        // "log", "slack" or "telegram"
	WebhookURL     string `yaml:"webhook_url"` // required if type is "slack"
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

// RedisConfig points at the rate-limit backend. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// EndpointLimit is a fixed-window budget for one public endpoint.
type EndpointLimit struct {
	Limit  int
	Window time.Duration
}

// RateLimitConfig holds per-endpoint budgets keyed by route name.
type RateLimitConfig struct {
	Endpoints map[string]EndpointLimit
}

// For returns the budget for endpoint and whether one is configured.
func (r RateLimitConfig) For(endpoint string) (EndpointLimit, bool) {
	l, ok := r.Endpoints[endpoint]
	return l, ok && l.Limit > 0
}

// ReconcileConfig controls the background sweep. A zero Interval disables it.
type ReconcileConfig struct {
	Interval time.Duration
	Batch    int
}

// TasksConfig bounds detached tasks.
type TasksConfig struct {
	Timeout       time.Duration
	ShutdownDrain time.Duration
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Format string // "text" or "json"
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultVoiceBaseURL  = "https://api.retellai.com"
	defaultMailFrom      = "onboarding@resend.dev"
	slackHookPrefix      = "https://hooks.slack.com/"
)

// defaultEndpointLimits protect the unauthenticated endpoints when Redis is configured.
var defaultEndpointLimits = map[string]EndpointLimit{
	"check-ats-score": {Limit: 10, Window: time.Minute},
	"apply-for-job":   {Limit: 5, Window: time.Minute},
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server       rawServerConfig     `yaml:"server"`
	Database     rawDatabaseConfig   `yaml:"database"`
	AI           rawAIConfig         `yaml:"ai"`
	Voice        rawVoiceConfig      `yaml:"voice"`
	ATS          rawATSConfig        `yaml:"ats"`
	Mail         rawMailConfig       `yaml:"mail"`
	Notification NotificationConfig  `yaml:"notification"`
	Redis        RedisConfig         `yaml:"redis"`
	RateLimit    map[string]rawLimit `yaml:"rate_limit"`
	Reconcile    rawReconcileConfig  `yaml:"reconcile"`
	Tasks        rawTasksConfig      `yaml:"tasks"`
	Logging      LoggingConfig       `yaml:"logging"`
}

type rawServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	MaxUploadMB  int    `yaml:"max_upload_mb"`
	BaseURL      string `yaml:"base_url"`
}

type rawDatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

type rawAIConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Project  string `yaml:"project"`
	Location string `yaml:"location"`
	Timeout  string `yaml:"timeout"`
	JSONMode bool   `yaml:"json_mode"`
}

type rawVoiceConfig struct {
	BaseURL            string `yaml:"base_url"`
	APIKey             string `yaml:"api_key"`
	DefaultCountryCode string `yaml:"default_country_code"`
	DispatchMinGap     string `yaml:"dispatch_min_gap"`
	RetrieveRetries    *int   `yaml:"retrieve_retries"`
	Timeout            string `yaml:"timeout"`
}

type rawATSConfig struct {
	ShortlistThreshold *int `yaml:"shortlist_threshold"`
}

type rawMailConfig struct {
	Type            string `yaml:"type"`
	From            string `yaml:"from"`
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	Retries         *int   `yaml:"retries"`
}

type rawLimit struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

type rawReconcileConfig struct {
	Interval string `yaml:"interval"`
	Batch    int    `yaml:"batch"`
}

type rawTasksConfig struct {
	Timeout       string `yaml:"timeout"`
	ShutdownDrain string `yaml:"shutdown_drain"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A .env file next to the config is loaded first; variables already set in
// the environment win.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func build(raw rawConfig) (*Config, error) {
	var err error
	d := func(field, value string, def time.Duration) time.Duration {
		if err != nil || value == "" {
			return def
		}
		v, perr := time.ParseDuration(value)
		if perr != nil {
			err = fmt.Errorf("parse %s %q: %w", field, value, perr)
			return def
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:         orDefault(raw.Server.Addr, ":8080"),
			ReadTimeout:  d("server.read_timeout", raw.Server.ReadTimeout, 30*time.Second),
			WriteTimeout: d("server.write_timeout", raw.Server.WriteTimeout, 120*time.Second),
			MaxUploadMB:  raw.Server.MaxUploadMB,
			BaseURL:      strings.TrimRight(raw.Server.BaseURL, "/"),
		},
		Database: DatabaseConfig{
			Driver:          orDefault(raw.Database.Driver, "sqlite"),
			DSN:             orDefault(raw.Database.DSN, "hirecall.db"),
			MaxOpenConns:    raw.Database.MaxOpenConns,
			MaxIdleConns:    raw.Database.MaxIdleConns,
			ConnMaxLifetime: d("database.conn_max_lifetime", raw.Database.ConnMaxLifetime, 0),
		},
		AI: AIConfig{
			Provider: orDefault(raw.AI.Provider, "openai"),
			BaseURL:  orDefault(raw.AI.BaseURL, defaultOpenAIBaseURL),
			Model:    raw.AI.Model,
			APIKey:   raw.AI.APIKey,
			Project:  raw.AI.Project,
			Location: orDefault(raw.AI.Location, "us-central1"),
			Timeout:  d("ai.timeout", raw.AI.Timeout, 60*time.Second),
			JSONMode: raw.AI.JSONMode,
		},
		Voice: VoiceConfig{
			BaseURL:            orDefault(raw.Voice.BaseURL, defaultVoiceBaseURL),
			APIKey:             raw.Voice.APIKey,
			DefaultCountryCode: orDefault(raw.Voice.DefaultCountryCode, "+91"),
			DispatchMinGap:     d("voice.dispatch_min_gap", raw.Voice.DispatchMinGap, 0),
			RetrieveRetries:    intOr(raw.Voice.RetrieveRetries, 2),
			Timeout:            d("voice.timeout", raw.Voice.Timeout, 30*time.Second),
		},
		ATS: ATSConfig{
			ShortlistThreshold: intOr(raw.ATS.ShortlistThreshold, 85),
		},
		Mail: MailConfig{
			Type:            orDefault(raw.Mail.Type, "log"),
			From:            orDefault(raw.Mail.From, defaultMailFrom),
			APIKey:          raw.Mail.APIKey,
			BaseURL:         raw.Mail.BaseURL,
			CredentialsFile: raw.Mail.CredentialsFile,
			TokenFile:       raw.Mail.TokenFile,
			Retries:         intOr(raw.Mail.Retries, 2),
		},
		Notification: raw.Notification,
		Redis:        raw.Redis,
		Reconcile: ReconcileConfig{
			Interval: d("reconcile.interval", raw.Reconcile.Interval, 0),
			Batch:    raw.Reconcile.Batch,
		},
		Tasks: TasksConfig{
			Timeout:       d("tasks.timeout", raw.Tasks.Timeout, 2*time.Minute),
			ShutdownDrain: d("tasks.shutdown_drain", raw.Tasks.ShutdownDrain, 30*time.Second),
		},
		Logging: LoggingConfig{Format: orDefault(raw.Logging.Format, "text")},
	}

	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 10
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Reconcile.Batch == 0 {
		cfg.Reconcile.Batch = 20
	}
	if cfg.AI.Provider == "vertex" && cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-1.5-pro"
	}

	endpoints := make(map[string]EndpointLimit, len(defaultEndpointLimits))
	for name, l := range defaultEndpointLimits {
		endpoints[name] = l
	}
	for name, rl := range raw.RateLimit {
		endpoints[name] = EndpointLimit{
			Limit:  rl.Limit,
			Window: d("rate_limit."+name+".window", rl.Window, time.Minute),
		}
	}
	cfg.RateLimit = RateLimitConfig{Endpoints: endpoints}

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if cfg.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must not be negative, got %d", cfg.Server.MaxUploadMB)
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"postgres\", got %q", cfg.Database.Driver)
	}

	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.provider is \"openai\"")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.provider is \"openai\"")
		}
	case "vertex":
		if cfg.AI.Project == "" {
			return fmt.Errorf("ai.project is required when ai.provider is \"vertex\"")
		}
	default:
		return fmt.Errorf("ai.provider must be \"openai\" or \"vertex\", got %q", cfg.AI.Provider)
	}

	if cfg.Voice.Timeout <= 0 {
		return fmt.Errorf("voice.timeout must be positive, got %v", cfg.Voice.Timeout)
	}
	if !strings.HasPrefix(cfg.Voice.DefaultCountryCode, "+") {
		return fmt.Errorf("voice.default_country_code must start with +, got %q", cfg.Voice.DefaultCountryCode)
	}

	if t := cfg.ATS.ShortlistThreshold; t < 0 || t > 100 {
		return fmt.Errorf("ats.shortlist_threshold must be between 0 and 100, got %d", t)
	}

	switch cfg.Mail.Type {
	case "none", "log":
	case "resend":
		if cfg.Mail.APIKey == "" {
			return fmt.Errorf("mail.api_key is required when mail.type is \"resend\"")
		}
	case "gmail":
		if cfg.Mail.CredentialsFile == "" || cfg.Mail.TokenFile == "" {
			return fmt.Errorf("mail.credentials_file and mail.token_file are required when mail.type is \"gmail\"")
		}
	default:
		return fmt.Errorf("unknown mail.type %q", cfg.Mail.Type)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackHookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackHookPrefix)
		}
	case "telegram":
		if cfg.Notification.TelegramToken == "" || cfg.Notification.TelegramChatID == 0 {
			return fmt.Errorf("notification.telegram_token and notification.telegram_chat_id are required when type is \"telegram\"")
		}
	default:
		return fmt.Errorf("unknown notification.type %q", cfg.Notification.Type)
	}

	for name, l := range cfg.RateLimit.Endpoints {
		if l.Limit < 0 || l.Window <= 0 {
			return fmt.Errorf("rate_limit.%s needs a non-negative limit and a positive window", name)
		}
	}

	if cfg.Reconcile.Interval < 0 {
		return fmt.Errorf("reconcile.interval must not be negative, got %v", cfg.Reconcile.Interval)
	}
	if cfg.Tasks.Timeout <= 0 {
		return fmt.Errorf("tasks.timeout must be positive, got %v", cfg.Tasks.Timeout)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", cfg.Logging.Format)
	}

	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
