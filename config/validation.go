package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks cfg against the requirements of its environment.
// A missing LLM key is allowed; the chat route then always falls back.
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"AUTH_JWT_SECRET", "is required to verify access tokens"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DSN() == "" {
			errs = append(errs, ValidationError{"DATABASE_URL", "or DB_HOST and DB_NAME are required for postgres"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{"LOG_FORMAT", fmt.Sprintf("must be text or json, got %q", cfg.LogFormat)})
	}

	if cfg.LLMTimeout <= 0 {
		errs = append(errs, ValidationError{"LLM_TIMEOUT", "must be positive"})
	}
	if cfg.ChatRateLimit < 0 {
		errs = append(errs, ValidationError{"CHAT_RATE_LIMIT", "must not be negative"})
	}
	if cfg.ChatRateWindow <= 0 {
		errs = append(errs, ValidationError{"CHAT_RATE_WINDOW", "must be positive"})
	}
	for _, proxy := range cfg.TrustedProxyList() {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			errs = append(errs, ValidationError{"TRUSTED_PROXIES", fmt.Sprintf("%q is not an IP or CIDR", proxy)})
		}
	}
	if cfg.ExportsEnabled() && cfg.ExportURLTTL <= 0 {
		errs = append(errs, ValidationError{"EXPORT_URL_TTL", "must be positive"})
	}

	if cfg.Env.IsProduction() {
		if cfg.SiteURL == "" {
			errs = append(errs, ValidationError{"SITE_URL", "is required in production"})
		}
		if cfg.DBDriver != "postgres" {
			errs = append(errs, ValidationError{"DB_DRIVER", "must be postgres in production"})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "\n"))
}
