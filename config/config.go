package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment `mapstructure:"-"`

	// Server configuration
	ServerHost string `mapstructure:"server_host"`
	ServerPort string `mapstructure:"server_port"`
	SiteURL    string `mapstructure:"site_url"`
	// Comma separated
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	// Comma separated IPs or CIDRs whose X-Forwarded-For is believed.
	// Empty trusts no proxy and uses the socket address.
	TrustedProxies string `mapstructure:"trusted_proxies"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Database configuration
	DBDriver    string `mapstructure:"db_driver"`
	DatabaseURL string `mapstructure:"database_url"`
	DBHost      string `mapstructure:"db_host"`
	DBPort      string `mapstructure:"db_port"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBName      string `mapstructure:"db_name"`
	DBSSLMode   string `mapstructure:"db_ssl_mode"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	// DBRLSRole is assumed with SET LOCAL ROLE inside every user-scoped
	// transaction so row-level policies apply even to a superuser login.
	DBRLSRole string `mapstructure:"db_rls_role"`

	RedisURL string `mapstructure:"redis_url"`

	// Auth provider token verification
	JWTSecret   string `mapstructure:"auth_jwt_secret"`
	JWTAudience string `mapstructure:"auth_jwt_audience"`
	CookieName  string `mapstructure:"auth_cookie_name"`

	// Language model provider. An empty key means permanent fallback mode.
	LLMProvider           string        `mapstructure:"llm_provider"`
	LLMAPIKey             string        `mapstructure:"llm_api_key"`
	LLMAPIURL             string        `mapstructure:"llm_api_url"`
	LLMModel              string        `mapstructure:"llm_model"`
	LLMTimeout            time.Duration `mapstructure:"llm_timeout"`
	LLMFallbackDisclaimer bool          `mapstructure:"llm_fallback_disclaimer"`

	ChatRateLimit  int           `mapstructure:"chat_rate_limit"`
	ChatRateWindow time.Duration `mapstructure:"chat_rate_window"`

	// List exports
	S3BucketName string        `mapstructure:"s3_bucket_name"`
	AWSRegion    string        `mapstructure:"aws_region"`
	ExportURLTTL time.Duration `mapstructure:"export_url_ttl"`
}

type setting struct {
	key  string
	envs []string
	def  any
}

var settings = []setting{
	{key: "server_host", def: "0.0.0.0"},
	{key: "server_port", def: "8080"},
	{key: "site_url", def: ""},
	{key: "cors_allowed_origins", def: "http://localhost:3000"},
	{key: "trusted_proxies", def: ""},
	{key: "log_level", def: "info"},
	{key: "log_format", def: "text"},
	{key: "db_driver", def: "postgres"},
	{key: "database_url", def: ""},
	{key: "db_host", def: "localhost"},
	{key: "db_port", def: "5432"},
	{key: "db_user", def: "postgres"},
	{key: "db_password", def: ""},
	{key: "db_name", def: "grocerylist"},
	{key: "db_ssl_mode", def: "disable"},
	{key: "sqlite_path", def: "grocerylist.db"},
	{key: "db_rls_role", def: ""},
	{key: "redis_url", def: ""},
	{key: "auth_jwt_secret", def: ""},
	{key: "auth_jwt_audience", def: ""},
	{key: "auth_cookie_name", def: "sb-access-token"},
	{key: "llm_provider", def: "openai"},
	{key: "llm_api_key", envs: []string{"LLM_API_KEY", "OPENAI_API_KEY"}, def: ""},
	{key: "llm_api_url", def: "https://api.openai.com/v1/chat/completions"},
	{key: "llm_model", def: "gpt-3.5-turbo"},
	{key: "llm_timeout", def: "30s"},
	{key: "llm_fallback_disclaimer", def: true},
	{key: "chat_rate_limit", def: 20},
	{key: "chat_rate_window", def: "1h"},
	{key: "s3_bucket_name", def: ""},
	{key: "aws_region", def: "us-east-1"},
	{key: "export_url_ttl", def: "15m"},
}

func (s setting) envNames() []string {
	if len(s.envs) > 0 {
		return s.envs
	}
	return []string{strings.ToUpper(s.key)}
}

// LoadConfig resolves every setting from the environment, then from a
// Docker secret file named after the lowercase key, then from its default.
func LoadConfig() (*Config, error) {
	v := viper.New()

	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(append([]string{s.key}, s.envNames()...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", s.key, err)
		}
		if envSet(s.envNames()) {
			continue
		}
		if secret, ok := readSecret(s.key); ok {
			v.Set(s.key, secret)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Env = GetEnvironment()

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func envSet(names []string) bool {
	for _, name := range names {
		if val, ok := os.LookupEnv(name); ok && val != "" {
			return true
		}
	}
	return false
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) (string, bool) {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// ListenAddr is the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// DSN returns DATABASE_URL, or a connection string built from the DB_*
// settings when it is unset.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBHost == "" || c.DBName == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSSLMode}}.Encode(),
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}
	return u.String()
}

func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LLMEnabled reports whether a provider credential is configured.
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLMAPIKey) != ""
}

func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func (c *Config) ExportsEnabled() bool {
	return c.S3BucketName != ""
}
