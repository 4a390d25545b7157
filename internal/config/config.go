// Package config загружает конфигурацию сервисов.
//
// Порядок применения (каждый следующий источник перекрывает предыдущий):
//   - значения по умолчанию (Default)
//   - YAML файл (путь из аргумента Load или TODOS_CONFIG)
//   - переменные окружения (API_PORT, STORE_DRIVER, DB_URL, ...)
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Драйверы хранилища.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config — полная конфигурация.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Store   StoreConfig   `yaml:"store"`
	AMQP    AMQPConfig    `yaml:"amqp"`
	Log     LogConfig     `yaml:"log"`
	Janitor JanitorConfig `yaml:"janitor"`
	Auditor AuditorConfig `yaml:"auditor"`
}

// APIConfig — HTTP сервер todos-api.
type APIConfig struct {
	Port string `yaml:"port"`
}

// Addr возвращает адрес для http.Server.
func (c APIConfig) Addr() string {
	return ":" + c.Port
}

// StoreConfig — выбор и параметры хранилища.
type StoreConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`         // для postgres
	SQLitePath string `yaml:"sqlite_path"` // для sqlite
}

// AMQPConfig — подключение к RabbitMQ. Пустой URL отключает события.
type AMQPConfig struct {
	URL string `yaml:"url"`
}

// Enabled возвращает true, если события включены.
func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

// LogConfig — параметры логирования.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// JanitorConfig — очистка выполненных todo по расписанию.
type JanitorConfig struct {
	Cron string `yaml:"cron"`
	Port string `yaml:"port"`
}

// AuditorConfig — потребитель событий.
type AuditorConfig struct {
	Port     string `yaml:"port"`
	Prefetch int    `yaml:"prefetch"`
}

// Default возвращает конфигурацию по умолчанию для локальной разработки.
func Default() Config {
	return Config{
		API: APIConfig{Port: "8080"},
		Store: StoreConfig{
			Driver:     DriverMemory,
			SQLitePath: "todos.db",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "json",
		},
		Janitor: JanitorConfig{
			Cron: "0 3 * * *",
			Port: "8081",
		},
		Auditor: AuditorConfig{
			Port:     "8082",
			Prefetch: 10,
		},
	}
}

// Load собирает конфигурацию из всех источников и валидирует её.
// Если path пустой, используется TODOS_CONFIG; если и он пустой, файл не читается.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TODOS_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile читает YAML поверх текущих значений.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv перекрывает значения переменными окружения.
func (c *Config) applyEnv() error {
	setFromEnv(&c.API.Port, "API_PORT")
	setFromEnv(&c.Store.Driver, "STORE_DRIVER")
	setFromEnv(&c.Store.DSN, "DB_URL")
	setFromEnv(&c.Store.SQLitePath, "SQLITE_PATH")
	setFromEnv(&c.AMQP.URL, "AMQP_URL")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
	setFromEnv(&c.Log.Format, "LOG_FORMAT")
	setFromEnv(&c.Janitor.Cron, "JANITOR_CRON")
	setFromEnv(&c.Janitor.Port, "JANITOR_PORT")
	setFromEnv(&c.Auditor.Port, "AUDITOR_PORT")

	if v := os.Getenv("AUDITOR_PREFETCH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse AUDITOR_PREFETCH %q: %w", v, err)
		}
		c.Auditor.Prefetch = n
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Ошибки валидации.
var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrMissingDSN    = errors.New("store dsn is required for postgres")
	ErrMissingPath   = errors.New("sqlite path is required")
	ErrMissingPort   = errors.New("api port is required")

	// ErrCronNeverFires — cron-выражение корректно, но не срабатывает ни разу (например, 30 февраля).
	ErrCronNeverFires = errors.New("cron schedule never fires")
)

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	if c.API.Port == "" {
		return ErrMissingPort
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return ErrMissingDSN
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return ErrMissingPath
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}

	sched, err := cron.ParseStandard(c.Janitor.Cron)
	if err != nil {
		return fmt.Errorf("invalid janitor cron %q: %w", c.Janitor.Cron, err)
	}
	if sched.Next(time.Now()).IsZero() {
		return fmt.Errorf("janitor cron %q: %w", c.Janitor.Cron, ErrCronNeverFires)
	}

	return nil
}
