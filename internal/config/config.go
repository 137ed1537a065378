package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix              = "LINKDEN"
	defaultHTTPAddress     = "0.0.0.0:8080"
	defaultDatabaseDriver  = "sqlite"
	defaultDatabasePath    = "linkden.db"
	defaultLogLevel        = "info"
	defaultLogEncoding     = "json"
	defaultCookieName      = "linkden_session"
	defaultIssuer          = "linkden"
	defaultTokenTTLMinutes = 720
	defaultMailAPIURL      = "https://api.resend.com/emails"
	defaultAdminServerURL  = "http://127.0.0.1:8080"
)

// AppConfig captures runtime configuration for the server and the token command.
type AppConfig struct {
	HTTPAddress    string
	AllowedOrigins []string

	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string

	LogLevel    string
	LogEncoding string

	SigningSecret string
	CookieName    string
	Issuer        string
	TokenTTL      time.Duration
	OwnerUserID   string

	ResendAPIKey string
	MailFrom     string
	MailAPIURL   string
}

// ClientConfig is what the admin commands need to reach a running server.
type ClientConfig struct {
	ServerURL   string
	Token       string
	LogLevel    string
	LogEncoding string
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error. Variables already set are kept.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("http.allowed_origins", []string{})
	configViper.SetDefault("database.driver", defaultDatabaseDriver)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("database.dsn", "")
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.encoding", defaultLogEncoding)
	configViper.SetDefault("auth.signing_secret", "")
	configViper.SetDefault("auth.cookie_name", defaultCookieName)
	configViper.SetDefault("auth.issuer", defaultIssuer)
	configViper.SetDefault("auth.token_ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("owner.user_id", "")
	configViper.SetDefault("mail.resend_api_key", "")
	configViper.SetDefault("mail.from", "")
	configViper.SetDefault("mail.api_url", defaultMailAPIURL)
	configViper.SetDefault("admin.server_url", defaultAdminServerURL)
	configViper.SetDefault("admin.token", "")
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		AllowedOrigins: splitList(configViper.GetStringSlice("http.allowed_origins")),
		DatabaseDriver: strings.ToLower(strings.TrimSpace(configViper.GetString("database.driver"))),
		DatabasePath:   configViper.GetString("database.path"),
		DatabaseDSN:    configViper.GetString("database.dsn"),
		LogLevel:       configViper.GetString("log.level"),
		LogEncoding:    configViper.GetString("log.encoding"),
		SigningSecret:  configViper.GetString("auth.signing_secret"),
		CookieName:     configViper.GetString("auth.cookie_name"),
		Issuer:         configViper.GetString("auth.issuer"),
		TokenTTL:       time.Duration(configViper.GetInt("auth.token_ttl_minutes")) * time.Minute,
		OwnerUserID:    strings.TrimSpace(configViper.GetString("owner.user_id")),
		ResendAPIKey:   strings.TrimSpace(configViper.GetString("mail.resend_api_key")),
		MailFrom:       strings.TrimSpace(configViper.GetString("mail.from")),
		MailAPIURL:     configViper.GetString("mail.api_url"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// LoadClient parses the admin client configuration.
func LoadClient(configViper *viper.Viper) (ClientConfig, error) {
	cfg := ClientConfig{
		ServerURL:   strings.TrimSpace(configViper.GetString("admin.server_url")),
		Token:       strings.TrimSpace(configViper.GetString("admin.token")),
		LogLevel:    configViper.GetString("log.level"),
		LogEncoding: configViper.GetString("log.encoding"),
	}
	if cfg.ServerURL == "" {
		return ClientConfig{}, fmt.Errorf("admin.server_url is required")
	}
	if cfg.Token == "" {
		return ClientConfig{}, fmt.Errorf("admin.token is required")
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if c.OwnerUserID == "" {
		return fmt.Errorf("owner.user_id is required")
	}
	switch c.DatabaseDriver {
	case "sqlite":
		if strings.TrimSpace(c.DatabasePath) == "" {
			return fmt.Errorf("database.path is required")
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.CookieName) == "" {
		return fmt.Errorf("auth.cookie_name is required")
	}
	if strings.TrimSpace(c.Issuer) == "" {
		return fmt.Errorf("auth.issuer is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	if c.ResendAPIKey != "" && c.MailFrom == "" {
		return fmt.Errorf("mail.from is required when mail.resend_api_key is set")
	}
	return nil
}

// splitList accepts both repeated values and a single comma separated env value.
func splitList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}
