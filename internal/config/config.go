package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
		MaxOpenConns int    `yaml:"max_open_conns"`
	} `yaml:"database"`

	JWT struct {
		Secret    string        `yaml:"secret"`
		TTL       time.Duration `yaml:"ttl"`
		CookieTTL time.Duration `yaml:"cookie_ttl"`
	} `yaml:"jwt"`

	Auth struct {
		BcryptCost          int           `yaml:"bcrypt_cost"`
		ResetTokenTTL       time.Duration `yaml:"reset_token_ttl"`
		PasswordChangedSkew time.Duration `yaml:"password_changed_skew"`
		// Если пусто - URL собирается из входящего запроса
		ResetURLBase string `yaml:"reset_url_base"`
	} `yaml:"auth"`

	Email struct {
		Enabled      bool   `yaml:"enabled"`
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

// IsProduction - cookie с флагом Secure и JSON-логи
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Default возвращает конфиг со значениями по умолчанию
func Default() *Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Database.MaxOpenConns = 10
	cfg.JWT.TTL = 90 * 24 * time.Hour
	cfg.JWT.CookieTTL = 90 * 24 * time.Hour
	cfg.Auth.BcryptCost = 12
	cfg.Auth.ResetTokenTTL = 10 * time.Minute
	cfg.Auth.PasswordChangedSkew = 0
	cfg.Email.SMTPPort = 587
	cfg.Email.FromName = "Natours"
	return &cfg
}

// Load читает YAML (CONFIG_PATH или config/config.yaml), затем
// накладывает переменные окружения и проверяет результат.
func Load() (*Config, error) {
	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath
	}

	if err := cfg.loadFile(configPath); err != nil {
		// Файл по умолчанию может отсутствовать, если все задано через env
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Server.Env, "SERVER_ENV")
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.Email.SMTPHost, "SMTP_HOST")
	setString(&c.Email.SMTPUsername, "SMTP_USER")
	setString(&c.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&c.Email.FromEmail, "SMTP_FROM")
	setString(&c.Auth.ResetURLBase, "RESET_URL_BASE")
	setString(&c.Admin.Email, "FIRST_ADMIN_EMAIL")
	setString(&c.Admin.Password, "FIRST_ADMIN_PASSWORD")

	if err := setInt(&c.Server.Port, "SERVER_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Email.SMTPPort, "SMTP_PORT"); err != nil {
		return err
	}
	if err := setDuration(&c.JWT.TTL, "JWT_TTL"); err != nil {
		return err
	}
	return nil
}

// PlaceholderJWTSecret - значение из поставляемого config.yaml
const PlaceholderJWTSecret = "change-me-in-production-please-32b"

// MinProductionSecretLen - минимальная длина jwt.secret в production
const MinProductionSecretLen = 32

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret (JWT_SECRET) is required")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("config: jwt.ttl must be positive")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return errors.New("config: auth.reset_token_ttl must be positive")
	}
	if c.Auth.PasswordChangedSkew < 0 {
		return errors.New("config: auth.password_changed_skew must not be negative")
	}
	if c.Email.Enabled && c.Email.SMTPHost == "" {
		return errors.New("config: email.smtp_host is required when email is enabled")
	}
	if c.IsProduction() {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	if c.JWT.Secret == PlaceholderJWTSecret {
		return errors.New("config: jwt.secret must be changed from the shipped placeholder in production")
	}
	if len(c.JWT.Secret) < MinProductionSecretLen {
		return fmt.Errorf("config: jwt.secret must be at least %d bytes in production", MinProductionSecretLen)
	}
	// Без отправки писем сбросные ссылки попали бы только в лог
	if !c.Email.Enabled {
		return errors.New("config: email.enabled must be true in production")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s must be a duration: %w", key, err)
	}
	*dst = d
	return nil
}
