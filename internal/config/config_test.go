package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "SERVER_ENV", "SERVER_PORT", "JWT_SECRET", "JWT_TTL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
		"RESET_URL_BASE", "FIRST_ADMIN_EMAIL", "FIRST_ADMIN_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_FromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9090
  env: production
database:
  url: postgres://x
jwt:
  secret: 0123456789abcdef0123456789abcdef-prod
  ttl: 1h
email:
  enabled: true
  smtp_host: smtp.example.com
auth:
  reset_token_ttl: 5m
  password_changed_skew: 2s
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://x", cfg.Database.DSN)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 2*time.Second, cfg.Auth.PasswordChangedSkew)
	// Значения по умолчанию сохраняются
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "jwt:\n  secret: from-file\n")
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("JWT_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWT.TTL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, "server:\n  port: 1\n"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestLoad_BadEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, "jwt:\n  secret: x\n"))
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_Production(t *testing.T) {
	prod := func() *Config {
		cfg := Default()
		cfg.Server.Env = "production"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef-prod"
		cfg.Email.Enabled = true
		cfg.Email.SMTPHost = "smtp.example.com"
		return cfg
	}
	require.NoError(t, prod().Validate())

	t.Run("placeholder secret", func(t *testing.T) {
		cfg := prod()
		cfg.JWT.Secret = PlaceholderJWTSecret
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "placeholder")
	})

	t.Run("short secret", func(t *testing.T) {
		cfg := prod()
		cfg.JWT.Secret = "s3cr3t"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 bytes")
	})

	t.Run("email disabled", func(t *testing.T) {
		cfg := prod()
		cfg.Email.Enabled = false
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email.enabled")
	})

	t.Run("development keeps placeholder", func(t *testing.T) {
		cfg := Default()
		cfg.JWT.Secret = PlaceholderJWTSecret
		assert.NoError(t, cfg.Validate())
	})
}
