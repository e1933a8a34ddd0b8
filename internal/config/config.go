package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const devAuthSecret = "quizo-dev-secret-change-me"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Driver     string `yaml:"driver"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL              string `yaml:"ttl"`
		SessionTTL       string `yaml:"session_ttl"`
		ShuffleQuestions bool   `yaml:"shuffle_questions"`
		LedgerRetries    int    `yaml:"ledger_retries"`
	} `yaml:"quiz"`
	Auth struct {
		Secret   string `yaml:"secret"`
		TokenTTL string `yaml:"token_ttl"`
	} `yaml:"auth"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// LoadDotEnv loads a .env file into the process environment if one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error; defaults and the environment still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err):
		log.Printf("config %s not found, using defaults", path)
	default:
		return cfg, err
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("QUIZO_AUTH_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := getenv("QUIZO_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
}

func (c *Config) applyDefaults() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		if c.Postgres.URL != "" {
			c.Storage.Driver = DriverPostgres
		} else {
			c.Storage.Driver = DriverMemory
		}
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "quizo.db"
	}
	if c.Quiz.LedgerRetries <= 0 {
		c.Quiz.LedgerRetries = 5
	}
	if c.Auth.Secret == "" {
		log.Println("auth secret not configured, using development secret")
		c.Auth.Secret = devAuthSecret
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
