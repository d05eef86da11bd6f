// Package config provides configuration loading for the regdesk console.
//
// Values can come from several sources with the following precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables
//  3. Explicit config file (--config), or the local .regdeskrc.yaml
//  4. Global config file ($XDG_CONFIG_HOME/regdesk/config.yaml)
//  5. Default values (lowest priority)
//
// Every value records the source it came from.
package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/logging"
)

// Sources a value can come from.
const (
	SourceDefault = "default"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Defaults.
const (
	DefaultAPIBaseURL = "http://localhost:8080/api/v1"
	DefaultListen     = "127.0.0.1:8080"
	DefaultTimeout    = 30 * time.Second
	DefaultTokenTTL   = 24 * time.Hour
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// Mode is the data source of the console.
type Mode string

// Modes.
const (
	ModeMock Mode = "mock"
	ModeLive Mode = "live"
)

// Config is the resolved console configuration.
type Config struct {
	APIBaseURL  string        `yaml:"apiBaseUrl" json:"apiBaseUrl"`
	UseMockData bool          `yaml:"useMockData" json:"useMockData"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`

	Listen   string `yaml:"listen" json:"listen"`
	SeedDir  string `yaml:"seedDir,omitempty" json:"seedDir,omitempty"`
	AuditLog string `yaml:"auditLog,omitempty" json:"auditLog,omitempty"`

	SessionFile string        `yaml:"sessionFile,omitempty" json:"sessionFile,omitempty"`
	JWTSecret   string        `yaml:"jwtSecret,omitempty" json:"-"`
	TokenTTL    time.Duration `yaml:"tokenTTL" json:"tokenTTL"`
	WalletRole  string        `yaml:"walletRole" json:"walletRole"`
	WalletKey   string        `yaml:"walletKey,omitempty" json:"-"`

	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	PageSize int  `yaml:"pageSize" json:"pageSize"`
	JSON     bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from, keyed by YAML key.
	Sources map[string]string `yaml:"-" json:"-"`
	// Files lists the config files that were applied, in order.
	Files []string `yaml:"-" json:"-"`
}

// NewDefault returns a Config holding the default values.
func NewDefault() *Config {
	cfg := &Config{
		APIBaseURL:  DefaultAPIBaseURL,
		UseMockData: true,
		Timeout:     DefaultTimeout,
		Listen:      DefaultListen,
		TokenTTL:    DefaultTokenTTL,
		WalletRole:  string(domain.RoleOfficer),
		LogLevel:    "warn",
		LogFormat:   string(logging.FormatText),
		PageSize:    DefaultPageSize,
		Sources:     make(map[string]string),
	}
	for _, f := range fields {
		cfg.Sources[f.key] = SourceDefault
	}
	return cfg
}

// Mode reports mock mode unless mock data was switched off.
func (c *Config) Mode() Mode {
	if c.UseMockData {
		return ModeMock
	}
	return ModeLive
}

// Source returns where key came from.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Set parses value into key and records source.
func (c *Config) Set(key, value, source string) error {
	f, ok := lookup(key)
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
	return nil
}

// Get returns the string form of key. Secrets are masked.
func (c *Config) Get(key string) (string, bool) {
	f, ok := lookup(key)
	if !ok {
		return "", false
	}
	v := f.get(c)
	if f.secret && v != "" {
		v = "********"
	}
	return v, true
}

// Entry is one resolved value for display.
type Entry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
	Env    string `json:"env,omitempty"`
}

// Entries lists every key in a stable order.
func (c *Config) Entries() []Entry {
	out := make([]Entry, 0, len(fields))
	for _, f := range fields {
		v, _ := c.Get(f.key)
		out = append(out, Entry{Key: f.key, Value: v, Source: c.Source(f.key), Env: strings.Join(f.env, ", ")})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Keys returns the known config keys.
func Keys() []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if !c.UseMockData {
		u, err := url.Parse(c.APIBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("apiBaseUrl %q must be an absolute http(s) URL", c.APIBaseURL)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout %s must be positive", c.Timeout)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("tokenTTL %s must be positive", c.TokenTTL)
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return fmt.Errorf("pageSize %d is out of range (1-%d)", c.PageSize, MaxPageSize)
	}
	switch domain.Role(c.WalletRole) {
	case domain.RoleAdmin, domain.RoleOfficer, domain.RoleViewer:
	default:
		return fmt.Errorf("walletRole %q must be admin, officer or viewer", c.WalletRole)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return fmt.Errorf("jwtSecret must be at least 16 characters")
	}
	return nil
}

// field describes one config key: its YAML name, environment variables and
// string conversion.
type field struct {
	key    string
	env    []string
	secret bool
	get    func(*Config) string
	set    func(*Config, string) error
}

func lookup(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

func stringField(key string, ptr func(*Config) *string, env ...string) field {
	return field{
		key: key,
		env: env,
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error { *ptr(c) = v; return nil },
	}
}

func durationField(key string, ptr func(*Config) *time.Duration, env ...string) field {
	return field{
		key: key,
		env: env,
		get: func(c *Config) string { return ptr(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			*ptr(c) = d
			return nil
		},
	}
}

func intField(key string, ptr func(*Config) *int, env ...string) field {
	return field{
		key: key,
		env: env,
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*ptr(c) = n
			return nil
		},
	}
}

func boolField(key string, ptr func(*Config) *bool, env ...string) field {
	return field{
		key: key,
		env: env,
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*ptr(c) = b
			return nil
		},
	}
}

func secret(f field) field {
	f.secret = true
	return f
}

var fields = []field{
	stringField("apiBaseUrl", func(c *Config) *string { return &c.APIBaseURL }, "API_BASE_URL", "REGDESK_API_BASE_URL"),
	{
		key: "useMockData",
		env: []string{"USE_MOCK_DATA"},
		get: func(c *Config) string { return strconv.FormatBool(c.UseMockData) },
		// Only the exact string "false" switches to the live backend.
		set: func(c *Config, v string) error { c.UseMockData = v != "false"; return nil },
	},
	durationField("timeout", func(c *Config) *time.Duration { return &c.Timeout }, "REGDESK_TIMEOUT"),
	stringField("listen", func(c *Config) *string { return &c.Listen }, "REGDESK_LISTEN"),
	stringField("seedDir", func(c *Config) *string { return &c.SeedDir }, "REGDESK_SEED_DIR"),
	stringField("auditLog", func(c *Config) *string { return &c.AuditLog }, "REGDESK_AUDIT_LOG"),
	stringField("sessionFile", func(c *Config) *string { return &c.SessionFile }, "REGDESK_SESSION_FILE"),
	secret(stringField("jwtSecret", func(c *Config) *string { return &c.JWTSecret }, "REGDESK_JWT_SECRET")),
	durationField("tokenTTL", func(c *Config) *time.Duration { return &c.TokenTTL }, "REGDESK_TOKEN_TTL"),
	stringField("walletRole", func(c *Config) *string { return &c.WalletRole }, "REGDESK_WALLET_ROLE"),
	secret(stringField("walletKey", func(c *Config) *string { return &c.WalletKey }, "REGDESK_WALLET_KEY")),
	stringField("logLevel", func(c *Config) *string { return &c.LogLevel }, "REGDESK_LOG_LEVEL"),
	stringField("logFormat", func(c *Config) *string { return &c.LogFormat }, "REGDESK_LOG_FORMAT"),
	stringField("logFile", func(c *Config) *string { return &c.LogFile }, "REGDESK_LOG_FILE"),
	intField("pageSize", func(c *Config) *int { return &c.PageSize }, "REGDESK_PAGE_SIZE"),
	boolField("json", func(c *Config) *bool { return &c.JSON }, "REGDESK_JSON"),
}

// Logging returns the logging configuration.
func (c *Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.LogLevel)
	lc.Format = logging.ParseFormat(c.LogFormat)
	return lc
}
