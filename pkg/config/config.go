package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

// ItemsPerPage is the ranking page size used when nothing else is configured.
const ItemsPerPage = 5

type Database struct {
	Driver         string `yaml:"driver"`
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SQLitePath     string `yaml:"sqlitePath"`
	ConnectRetries int    `yaml:"connectRetries"`
}

// DSN builds the postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port)
}

type Config struct {
	Port         string   `yaml:"port"`
	Database     Database `yaml:"database"`
	JWTSecret    string   `yaml:"jwtSecret"`
	ItemsPerPage int      `yaml:"itemsPerPage"`
	LogLevel     string   `yaml:"logLevel"`
	GinMode      string   `yaml:"ginMode"`
	SeedDemo     bool     `yaml:"seedDemo"`
}

func defaults() Config {
	return Config{
		Port: "8080",
		Database: Database{
			Driver:         "postgres",
			Host:           "postgres",
			Port:           "5432",
			User:           "program",
			Password:       "test",
			Name:           "bookshelf",
			SQLitePath:     "bookshelf.db",
			ConnectRetries: 10,
		},
		ItemsPerPage: ItemsPerPage,
		LogLevel:     "info",
		GinMode:      "release",
	}
}

// Load reads the optional YAML file at path, then .env, then the process
// environment. Later sources win.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path == "" {
		path = getEnv("CONFIG_PATH", DefaultPath)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SQLitePath = getEnv("SQLITE_PATH", cfg.Database.SQLitePath)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.SeedDemo = getEnv("SEED_DEMO_DATA", strconv.FormatBool(cfg.SeedDemo)) == "true"

	if cfg.Database.ConnectRetries, err = getEnvInt("DB_CONNECT_RETRIES", cfg.Database.ConnectRetries); err != nil {
		return cfg, err
	}
	if cfg.ItemsPerPage, err = getEnvInt("ITEMS_PER_PAGE", cfg.ItemsPerPage); err != nil {
		return cfg, err
	}

	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("config: jwtSecret is required (set in config.yaml or JWT_SECRET)")
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown database driver %q", cfg.Database.Driver)
	}
	if cfg.ItemsPerPage < 1 {
		return fmt.Errorf("config: itemsPerPage must be positive, got %d", cfg.ItemsPerPage)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %q", key, value)
	}
	return n, nil
}
