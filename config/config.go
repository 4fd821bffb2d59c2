// Package config loads server settings from the environment (and an optional .env file).
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         string
	GinMode      string
	Environment  string
	FrontendURLs []string
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns DATABASE_URL when set, otherwise a key/value string built from the DB_* parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GoogleConfig struct {
	PlacesKey         string
	GeocodingKey      string
	DistanceMatrixKey string
	BaseURL           string
}

type AmadeusConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	OpenAI   OpenAIConfig
	Google   GoogleConfig
	Amadeus  AmadeusConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "4000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "vayro")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com/maps/api")
	v.SetDefault("AMADEUS_ENV", "production")
}

// Load reads .env if present and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			GinMode:      v.GetString("GIN_MODE"),
			Environment:  v.GetString("ENVIRONMENT"),
			FrontendURLs: splitList(v.GetString("FRONTEND_URL")),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("DATABASE_URL"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("OPENAI_API_KEY"),
			Model:   v.GetString("OPENAI_MODEL"),
			BaseURL: strings.TrimRight(v.GetString("OPENAI_BASE_URL"), "/"),
		},
		Google: GoogleConfig{
			PlacesKey:         v.GetString("GOOGLE_PLACES_API_KEY"),
			GeocodingKey:      v.GetString("GOOGLE_GEOCODING_API_KEY"),
			DistanceMatrixKey: v.GetString("GOOGLE_DISTANCE_MATRIX_API_KEY"),
			BaseURL:           strings.TrimRight(v.GetString("GOOGLE_MAPS_BASE_URL"), "/"),
		},
		Amadeus: AmadeusConfig{
			ClientID:     v.GetString("AMADEUS_CLIENT_ID"),
			ClientSecret: v.GetString("AMADEUS_CLIENT_SECRET"),
			BaseURL:      amadeusBaseURL(v.GetString("AMADEUS_BASE_URL"), v.GetString("AMADEUS_ENV")),
		},
	}

	if cfg.Server.Port == "" {
		return nil, fmt.Errorf("PORT must not be empty")
	}
	if cfg.Database.MaxOpenConns < 1 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", cfg.Database.MaxOpenConns)
	}

	return cfg, nil
}

// amadeusBaseURL lets an explicit URL override the env switch.
func amadeusBaseURL(explicit, env string) string {
	if explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if env == "test" {
		return "https://test.api.amadeus.com"
	}
	return "https://api.amadeus.com"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
