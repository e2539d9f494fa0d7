// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл .yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Ops       OpsConfig       `yaml:"ops"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки API-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// OpsConfig — сетевые настройки служебного сервера (liveness/readiness/метрики).
type OpsConfig struct {
	Host string `yaml:"host" env:"OPS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"OPS_PORT" env-default:"9090"`
}

// Addr возвращает адрес в формате host:port.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Addr возвращает адрес в формате host:port.
func (c OpsConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"30m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	Issuer          string        `yaml:"issuer" env:"ISSUER" env-default:"auth-service"`
}

// DBConfig — настройки подключения к хранилищу учётных записей.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — настройки общего кэша (отзыв токенов + rate-лимиты).
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-required:"true"`
	// RevocationPrefix — префикс ключей отозванных токенов.
	RevocationPrefix string `yaml:"revocation_prefix" env:"REVOCATION_PREFIX" env-default:"auth:bl:"`
	// RateLimitPrefix — префикс ключей счётчиков rate-лимитера.
	RateLimitPrefix string `yaml:"rate_limit_prefix" env:"RATE_LIMIT_PREFIX" env-default:"auth:rl:"`
	// FailMode — политика при недоступности Redis: "open" — разрешать
	// (доступность важнее полноты отзыва), "closed" — отказывать.
	// Строка вместо bool: cleanenv при overlay сбрасывает нулевой bool в env-default.
	FailMode string `yaml:"fail_mode" env:"REDIS_FAIL_MODE" env-default:"open"`
}

// FailOpen — true, если политика при недоступности Redis разрешающая.
func (c RedisConfig) FailOpen() bool {
	return c.FailMode != "closed"
}

// RateLimitConfig — лимиты фиксированных окон по действиям.
type RateLimitConfig struct {
	// Mode — "on"/"off"; строка по той же причине, что и RedisConfig.FailMode.
	Mode string `yaml:"mode" env:"RATE_LIMIT_MODE" env-default:"on"`

	// Generic-лимиты для действий без явной настройки (например, "api").
	PerMinute int `yaml:"per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"60"`
	PerHour   int `yaml:"per_hour" env:"RATE_LIMIT_PER_HOUR" env-default:"1000"`
	PerDay    int `yaml:"per_day" env:"RATE_LIMIT_PER_DAY" env-default:"10000"`

	// Лимиты попыток входа — жёстче generic.
	LoginPerMinute int `yaml:"login_per_minute" env:"RATE_LIMIT_LOGIN_PER_MINUTE" env-default:"5"`
	LoginPerHour   int `yaml:"login_per_hour" env:"RATE_LIMIT_LOGIN_PER_HOUR" env-default:"20"`
	LoginPerDay    int `yaml:"login_per_day" env:"RATE_LIMIT_LOGIN_PER_DAY" env-default:"100"`
}

// Enabled — true, если rate-лимитирование включено.
func (c RateLimitConfig) Enabled() bool {
	return c.Mode != "off"
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
