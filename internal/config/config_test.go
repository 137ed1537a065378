package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("LINKDEN_AUTH_SIGNING_SECRET", "secret")
	t.Setenv("LINKDEN_OWNER_USER_ID", "owner-1")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddress != defaultHTTPAddress || cfg.DatabaseDriver != "sqlite" || cfg.DatabasePath != defaultDatabasePath {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("unexpected token ttl %s", cfg.TokenTTL)
	}
	if cfg.CookieName != defaultCookieName || cfg.Issuer != defaultIssuer {
		t.Fatalf("unexpected auth defaults %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("expected no allowed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("LINKDEN_HTTP_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LINKDEN_DATABASE_DRIVER", "Postgres")
	t.Setenv("LINKDEN_DATABASE_DSN", "postgres://linkden@localhost/linkden")
	t.Setenv("LINKDEN_AUTH_TOKEN_TTL_MINUTES", "30")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.DatabaseDriver != "postgres" || cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing secret", env: map[string]string{"LINKDEN_OWNER_USER_ID": "o"}, wantErr: "auth.signing_secret"},
		{name: "missing owner", env: map[string]string{"LINKDEN_AUTH_SIGNING_SECRET": "s"}, wantErr: "owner.user_id"},
		{
			name:    "postgres without dsn",
			env:     map[string]string{"LINKDEN_AUTH_SIGNING_SECRET": "s", "LINKDEN_OWNER_USER_ID": "o", "LINKDEN_DATABASE_DRIVER": "postgres"},
			wantErr: "database.dsn",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"LINKDEN_AUTH_SIGNING_SECRET": "s", "LINKDEN_OWNER_USER_ID": "o", "LINKDEN_DATABASE_DRIVER": "mysql"},
			wantErr: "database.driver",
		},
		{
			name:    "resend without sender",
			env:     map[string]string{"LINKDEN_AUTH_SIGNING_SECRET": "s", "LINKDEN_OWNER_USER_ID": "o", "LINKDEN_MAIL_RESEND_API_KEY": "re_123"},
			wantErr: "mail.from",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for key, value := range testCase.env {
				t.Setenv(key, value)
			}
			_, err := Load(NewViper())
			if err == nil || !strings.Contains(err.Error(), testCase.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestLoadClient(t *testing.T) {
	if _, err := LoadClient(NewViper()); err == nil || !strings.Contains(err.Error(), "admin.token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
	t.Setenv("LINKDEN_ADMIN_TOKEN", "tok")
	cfg, err := LoadClient(NewViper())
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if cfg.ServerURL != defaultAdminServerURL || cfg.Token != "tok" {
		t.Fatalf("unexpected client config %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LINKDEN_OWNER_USER_ID=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LINKDEN_OWNER_USER_ID", "")
	os.Unsetenv("LINKDEN_OWNER_USER_ID")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("LINKDEN_OWNER_USER_ID"); got != "from-dotenv" {
		t.Fatalf("expected dotenv value, got %q", got)
	}
}
