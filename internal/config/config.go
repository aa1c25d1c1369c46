package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const envDevelopment = "development"

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	Port             string        `env:"PORT" envDefault:"8080"`
	DBPath           string        `env:"DB_PATH" envDefault:"./dev.db"`
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTTTL           time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AdminEmail       string        `env:"ADMIN_EMAIL"`
	AdminPassword    string        `env:"ADMIN_PASSWORD"`
	SeedDemo         bool          `env:"SEED_DEMO" envDefault:"false"`
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL         time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CORSOrigin       string        `env:"CORS_ORIGIN" envDefault:"http://localhost:5173"`
	MetricsNamespace string        `env:"METRICS_NAMESPACE" envDefault:"pricesense"`
}

// IsDev reports whether the server runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == envDevelopment
}

// Load reads an optional dotenv file and then the process environment.
// Variables already set in the environment win over the file.
func Load(dotenvPath string) (Config, error) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.JWTSecret == "" && !cfg.IsDev() {
		return Config{}, errors.New("JWT_SECRET is required outside development")
	}

	return cfg, nil
}

// Warnings lists settings that are missing but tolerated in the current mode.
func (c Config) Warnings() []string {
	var out []string
	if c.AdminEmail == "" {
		out = append(out, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		out = append(out, "ADMIN_PASSWORD is not set")
	}
	if c.JWTSecret == "" {
		out = append(out, "JWT_SECRET is not set; using an insecure development secret")
	}
	return out
}
