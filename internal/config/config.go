package config

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Environment   string  `env:"ENV" envDefault:"development"`
	LogLevel      string  `env:"LOG_LEVEL" envDefault:"info"`
	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	OperatorIDs   []int64 `env:"OPERATOR_IDS" envSeparator:","` // Пусто - бот доступен всем

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	DBDSN         string `env:"DB_DSN"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"exams.db"`

	Timezone string `env:"TIMEZONE" envDefault:"Europe/Rome"`
	location *time.Location

	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8080"` // Пусто - API выключен
	APIUser          string `env:"API_USER"`
	APIPasswordHash  string `env:"API_PASSWORD_HASH"`
	APIRatePerMinute int    `env:"API_RATE_PER_MINUTE" envDefault:"60"`

	ReminderInterval    time.Duration `env:"REMINDER_INTERVAL" envDefault:"1h"`
	ReminderHorizonDays int           `env:"REMINDER_HORIZON_DAYS" envDefault:"14"`
	BackupKeep          int           `env:"BACKUP_KEEP" envDefault:"7"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required but not set")
	}

	switch c.StorageDriver {
	case DriverPostgres:
		if c.DBDSN == "" {
			return errors.New("DB_DSN is required when STORAGE_DRIVER=postgres")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("load TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.APIRatePerMinute <= 0 {
		return fmt.Errorf("API_RATE_PER_MINUTE must be positive, got %d", c.APIRatePerMinute)
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", c.ReminderInterval)
	}
	if c.ReminderHorizonDays < 0 {
		return fmt.Errorf("REMINDER_HORIZON_DAYS must not be negative, got %d", c.ReminderHorizonDays)
	}
	if c.BackupKeep < 1 {
		return fmt.Errorf("BACKUP_KEEP must be at least 1, got %d", c.BackupKeep)
	}
	if c.APIPasswordHash != "" && c.APIUser == "" {
		return errors.New("API_USER is required when API_PASSWORD_HASH is set")
	}

	return nil
}

// Location часовой пояс календаря
func (c *Config) Location() *time.Location {
	return c.location
}

// IsOperator может ли пользователь Telegram управлять записью
func (c *Config) IsOperator(userID int64) bool {
	return len(c.OperatorIDs) == 0 || slices.Contains(c.OperatorIDs, userID)
}
