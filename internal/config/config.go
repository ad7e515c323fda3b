package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBDSN         string
	MigrationsDir string

	// IdP (verificación de tokens + emisión de credenciales de cuidador)
	AteneaBaseURL string
	AteneaAPIKey  string

	// Directorio de cuentas de vendedor
	AccountsBaseURL string
	AccountsAPIKey  string
}

// Load lee .env (si existe) y después las env vars.
// DB_DSN es opcional: sin DSN el servicio corre con repos in-memory (modo dev).
func Load() (*Config, error) {
	// Ignoramos el error si no hay .env: las env vars mandan igual.
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:            os.Getenv("PORT"),
		Environment:     os.Getenv("ENV"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		DBDSN:           os.Getenv("DB_DSN"),
		MigrationsDir:   os.Getenv("MIGRATIONS_DIR"),
		AteneaBaseURL:   os.Getenv("ATENEA_BASE_URL"),
		AteneaAPIKey:    os.Getenv("ATENEA_API_KEY"),
		AccountsBaseURL: os.Getenv("ACCOUNTS_BASE_URL"),
		AccountsAPIKey:  os.Getenv("ACCOUNTS_API_KEY"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}

	// En producción no hay modo in-memory ni sesiones debug.
	if cfg.IsProduction() {
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required in production")
		}
		if cfg.AteneaBaseURL == "" || cfg.AteneaAPIKey == "" {
			return nil, fmt.Errorf("ATENEA_BASE_URL and ATENEA_API_KEY are required in production")
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
