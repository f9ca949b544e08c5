package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultServerAddr      = ":8080"
	defaultAccessTokenTTL  = "15m"
	defaultRefreshTokenTTL = "168h"
)

type AppConfig struct {
	DatabaseConfig DatabaseConfig   `yaml:"databaseConfig"`
	RedisConfig    RedisConfig      `yaml:"redisConfig"`
	ServerAddr     string           `yaml:"serverAddr"`
	Keys           KeysConfig       `yaml:"keys"`
	Encryption     EncryptionConfig `yaml:"encryption"`
	JWT            JWTConfig        `yaml:"jwt"`
	Logging        LoggingConfig    `yaml:"logging"`
}

// LoadConfig читает yaml-файл, затем .env (если есть) и переменные окружения.
// Переменные окружения имеют приоритет над значениями из файла.
// Пустой path означает конфигурацию только из окружения.
func LoadConfig(path string) (*AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *AppConfig) applyEnv() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"SERVER_ADDR", &cfg.ServerAddr},
		{"DATABASE_DSN", &cfg.DatabaseConfig.DSN},
		{"REDIS_URL", &cfg.RedisConfig.URL},
		{"PRIVATE_KEY_PATH", &cfg.Keys.PrivateKeyPath},
		{"PUBLIC_KEY_PATH", &cfg.Keys.PublicKeyPath},
		{"PRIVATE_KEY_PASSWORD", &cfg.Keys.PrivateKeyPassword},
		{"ENCRYPTION_KEY", &cfg.Encryption.Key},
		{"ACCESS_TOKEN_TTL", &cfg.JWT.AccessTokenTTL},
		{"REFRESH_TOKEN_TTL", &cfg.JWT.RefreshTokenTTL},
		{"LOG_LEVEL", &cfg.Logging.Level},
		{"LOG_FORMAT", &cfg.Logging.Format},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.target = v
		}
	}
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = defaultServerAddr
	}
	if cfg.JWT.AccessTokenTTL == "" {
		cfg.JWT.AccessTokenTTL = defaultAccessTokenTTL
	}
	if cfg.JWT.RefreshTokenTTL == "" {
		cfg.JWT.RefreshTokenTTL = defaultRefreshTokenTTL
	}
}

// Validate проверяет, что все параметры безопасности заданы.
// Любая ошибка здесь фатальна: сервер не должен принимать запросы.
func (cfg *AppConfig) Validate() error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{"databaseConfig.dsn (DATABASE_DSN)", cfg.DatabaseConfig.DSN},
		{"redisConfig.url (REDIS_URL)", cfg.RedisConfig.URL},
		{"keys.private_key_path (PRIVATE_KEY_PATH)", cfg.Keys.PrivateKeyPath},
		{"keys.public_key_path (PUBLIC_KEY_PATH)", cfg.Keys.PublicKeyPath},
		{"keys.private_key_password (PRIVATE_KEY_PASSWORD)", cfg.Keys.PrivateKeyPassword},
		{"encryption.key (ENCRYPTION_KEY)", cfg.Encryption.Key},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("не задан параметр %s", r.name))
		}
	}

	access, refresh, err := cfg.JWT.Durations()
	if err != nil {
		errs = append(errs, err)
	} else if access >= refresh {
		errs = append(errs, fmt.Errorf("access_token_ttl (%s) должен быть меньше refresh_token_ttl (%s)", access, refresh))
	}

	return errors.Join(errs...)
}

// Durations возвращает время жизни access и refresh токенов
func (c JWTConfig) Durations() (time.Duration, time.Duration, error) {
	access, err := time.ParseDuration(c.AccessTokenTTL)
	if err != nil || access <= 0 {
		return 0, 0, fmt.Errorf("некорректный access_token_ttl %q", c.AccessTokenTTL)
	}
	refresh, err := time.ParseDuration(c.RefreshTokenTTL)
	if err != nil || refresh < time.Second {
		return 0, 0, fmt.Errorf("некорректный refresh_token_ttl %q", c.RefreshTokenTTL)
	}
	return access, refresh, nil
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
