package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the API server.
type Config struct {
	Env             string        `yaml:"env"`
	HTTPAddr        string        `yaml:"http_addr"`
	ActorHeader     string        `yaml:"actor_header"`
	DefaultStatuses []string      `yaml:"default_statuses"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	DB              DBConfig      `yaml:"db"`
}

// DBConfig selects the gorm dialect and its connection parameters.
// When URL is empty the DSN is assembled from the discrete fields.
type DBConfig struct {
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Load reads the optional YAML file named by CONFIG_FILE, then applies
// environment overrides and defaults.
func Load() (Config, error) {
	var cfg Config

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.ActorHeader, "ACTOR_HEADER")
	setString(&cfg.DB.Driver, "DB_DRIVER")
	setString(&cfg.DB.URL, "DATABASE_URL")
	setString(&cfg.DB.Host, "DB_HOST")
	setString(&cfg.DB.User, "DB_USER")
	setString(&cfg.DB.Password, "DB_PASSWORD")
	setString(&cfg.DB.Name, "DB_NAME")

	if port := strings.TrimSpace(os.Getenv("DB_PORT")); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if raw := strings.TrimSpace(os.Getenv("DEFAULT_STATUSES")); raw != "" {
		cfg.DefaultStatuses = splitList(raw)
	}
	if raw := strings.TrimSpace(os.Getenv("SHUTDOWN_TIMEOUT")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.ShutdownTimeout = d
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "production"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":3000"
	}
	if cfg.ActorHeader == "" {
		cfg.ActorHeader = "x-user-id"
	}
	if cfg.DefaultStatuses == nil {
		cfg.DefaultStatuses = []string{"open", "done"}
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	cfg.DB.Driver = strings.ToLower(cfg.DB.Driver)
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DriverSQLite
	}
	switch cfg.DB.Driver {
	case DriverSQLite:
		if cfg.DB.URL == "" {
			cfg.DB.URL = "task_tracker.db"
		}
	case DriverPostgres:
		if cfg.DB.Port == 0 {
			cfg.DB.Port = 5432
		}
	case DriverMySQL:
		if cfg.DB.Port == 0 {
			cfg.DB.Port = 3306
		}
	}
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.Driver != DriverSQLite && c.DB.URL == "" && (c.DB.Host == "" || c.DB.Name == "") {
		return fmt.Errorf("DATABASE_URL or DB_HOST and DB_NAME are required for %s", c.DB.Driver)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Name)
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	}
	return ""
}

// IsLocal reports whether the server runs in a developer environment.
func (c Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "development"
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
