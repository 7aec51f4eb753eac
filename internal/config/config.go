package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/ski-report/internal/artifact"
	"github.com/pfrederiksen/ski-report/internal/caption"
	"github.com/pfrederiksen/ski-report/internal/conditions"
	"github.com/pfrederiksen/ski-report/internal/scraper"
)

// Defaults
const (
	DefaultHashtags        = "#BeaverCreek #SkiReport #Colorado"
	DefaultDataDir         = "~/.ski-report"
	DefaultLogLevel        = "INFO"
	DefaultSendTimeout     = 30 * time.Second
	DefaultSendConcurrency = 2
	DefaultSMTPPort        = 587
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the runtime configuration for one invocation
type Config struct {
	SourceURL       string        `yaml:"source_url"`
	PDFURL          string        `yaml:"pdf_url"`
	Title           string        `yaml:"title"`
	Timezone        string        `yaml:"timezone"`
	RenderScale     float64       `yaml:"render_scale"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	SendTimeout     time.Duration `yaml:"send_timeout"`
	SendConcurrency int           `yaml:"send_concurrency"`
	SendInterval    time.Duration `yaml:"send_interval"`
	Hashtags        string        `yaml:"hashtags"`
	DataDir         string        `yaml:"data_dir"`
	LogLevel        string        `yaml:"log_level"`
	PushgatewayURL  string        `yaml:"pushgateway_url"`

	Telegram TelegramConfig `yaml:"telegram"`
	Twitter  TwitterConfig  `yaml:"twitter"`
	SMS      SMSConfig      `yaml:"sms"`
}

// TelegramConfig configures the Telegram channel and operator alerts
type TelegramConfig struct {
	Enabled     *bool  `yaml:"enabled"`
	BotToken    string `yaml:"bot_token"`
	ChatID      string `yaml:"chat_id"`
	AlertChatID string `yaml:"alert_chat_id"`
}

// TwitterConfig configures the Twitter channel
type TwitterConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	AccessToken  string `yaml:"access_token"`
	AccessSecret string `yaml:"access_secret"`
}

// SMSConfig configures the e-mail-to-SMS gateway channel
type SMSConfig struct {
	Enabled      *bool    `yaml:"enabled"`
	SMTPHost     string   `yaml:"smtp_host"`
	SMTPPort     int      `yaml:"smtp_port"`
	SMTPUsername string   `yaml:"smtp_username"`
	SMTPPassword string   `yaml:"smtp_password"`
	From         string   `yaml:"from"`
	Recipients   []string `yaml:"recipients"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		SourceURL:       scraper.SnowSummaryURL,
		PDFURL:          artifact.GroomingMapURL,
		Title:           caption.DefaultTitle,
		Timezone:        conditions.DefaultTimezone,
		RenderScale:     artifact.DefaultScale,
		HTTPTimeout:     artifact.Timeout,
		SendTimeout:     DefaultSendTimeout,
		SendConcurrency: DefaultSendConcurrency,
		Hashtags:        DefaultHashtags,
		DataDir:         DefaultDataDir,
		LogLevel:        DefaultLogLevel,
		SMS:             SMSConfig{SMTPPort: DefaultSMTPPort},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFile(cfg, path, true); err != nil {
			return nil, err
		}
		if err := mergeFile(cfg, localPath(path), false); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// localPath maps config.yaml to config.local.yaml
func localPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc Config
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := mergo.Merge(cfg, fc, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	str(&cfg.SourceURL, "SOURCE_URL")
	str(&cfg.PDFURL, "PDF_URL")
	str(&cfg.Title, "REPORT_TITLE")
	str(&cfg.Timezone, "REPORT_TIMEZONE")
	str(&cfg.Hashtags, "HASHTAGS")
	str(&cfg.DataDir, "DATA_DIR")
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.PushgatewayURL, "PUSHGATEWAY_URL")

	str(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN", "BOT_TOKEN")
	str(&cfg.Telegram.ChatID, "TELEGRAM_CHAT_ID", "CHAT_ID")
	str(&cfg.Telegram.AlertChatID, "TELEGRAM_ALERT_CHAT_ID")

	str(&cfg.Twitter.APIKey, "TWITTER_API_KEY")
	str(&cfg.Twitter.APISecret, "TWITTER_API_SECRET")
	str(&cfg.Twitter.AccessToken, "TWITTER_ACCESS_TOKEN")
	str(&cfg.Twitter.AccessSecret, "TWITTER_ACCESS_SECRET")

	str(&cfg.SMS.SMTPHost, "SMS_SMTP_HOST")
	str(&cfg.SMS.SMTPUsername, "SMS_SMTP_USERNAME")
	str(&cfg.SMS.SMTPPassword, "SMS_SMTP_PASSWORD")
	str(&cfg.SMS.From, "SMS_FROM")

	if v, ok := lookup("SMS_RECIPIENTS"); ok && strings.TrimSpace(v) != "" {
		cfg.SMS.Recipients = splitList(v)
	}

	var errs []error
	errs = append(errs,
		envFloat(lookup, "RENDER_SCALE", &cfg.RenderScale),
		envDuration(lookup, "HTTP_TIMEOUT", &cfg.HTTPTimeout),
		envDuration(lookup, "SEND_TIMEOUT", &cfg.SendTimeout),
		envDuration(lookup, "SEND_INTERVAL", &cfg.SendInterval),
		envInt(lookup, "SEND_CONCURRENCY", &cfg.SendConcurrency),
		envInt(lookup, "SMS_SMTP_PORT", &cfg.SMS.SMTPPort),
		envBool(lookup, "TELEGRAM_ENABLED", &cfg.Telegram.Enabled),
		envBool(lookup, "TWITTER_ENABLED", &cfg.Twitter.Enabled),
		envBool(lookup, "SMS_ENABLED", &cfg.SMS.Enabled),
	)
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envInt(lookup lookupFunc, key string, dst *int) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, key, v)
	}
	*dst = n
	return nil
}

func envFloat(lookup lookupFunc, key string, dst *float64) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, v)
	}
	*dst = f
	return nil
}

func envDuration(lookup lookupFunc, key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a duration", ErrInvalid, key, v)
	}
	*dst = d
	return nil
}

func envBool(lookup lookupFunc, key string, dst **bool) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, key, v)
	}
	*dst = &b
	return nil
}

// Validate checks the configuration for values no component can run with
func (c *Config) Validate() error {
	var errs []error

	if err := checkURL("source URL", c.SourceURL); err != nil {
		errs = append(errs, err)
	}
	if err := checkURL("PDF URL", c.PDFURL); err != nil {
		errs = append(errs, err)
	}
	if c.PushgatewayURL != "" {
		if err := checkURL("pushgateway URL", c.PushgatewayURL); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := conditions.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err))
	}
	if c.RenderScale <= 0 {
		errs = append(errs, fmt.Errorf("%w: render scale must be positive, got %v", ErrInvalid, c.RenderScale))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: http timeout must be positive, got %s", ErrInvalid, c.HTTPTimeout))
	}
	if c.SendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: send timeout must be positive, got %s", ErrInvalid, c.SendTimeout))
	}
	if c.SendInterval < 0 {
		errs = append(errs, fmt.Errorf("%w: send interval must not be negative, got %s", ErrInvalid, c.SendInterval))
	}
	if c.SendConcurrency < 1 {
		errs = append(errs, fmt.Errorf("%w: send concurrency must be at least 1, got %d", ErrInvalid, c.SendConcurrency))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel))
	}

	return errors.Join(errs...)
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s %q must be an absolute http(s) URL", ErrInvalid, name, raw)
	}
	return nil
}

// Location returns the configured display timezone. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := conditions.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Enabled reports whether a channel toggle allows the channel; unset means on.
func Enabled(toggle *bool) bool {
	return toggle == nil || *toggle
}
