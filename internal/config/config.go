package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-map/internal/view"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"
)

type AppConfig struct {
	// Provider selects the weather backend.
	Provider string `validate:"oneof=openweather weatherapi"`

	OpenWeatherAPIKey  string `validate:"required_if=Provider openweather"`
	OpenWeatherBaseURL string `validate:"omitempty,url"`
	WeatherAPIKey      string `validate:"required_if=Provider weatherapi"`
	WeatherAPIBaseURL  string `validate:"omitempty,url"`

	// IconURLTemplate turns an OpenWeather icon id into an image URL.
	IconURLTemplate string `validate:"required,contains=%s"`

	Map view.MapConfig

	// Outbound provider calls.
	HTTPTimeout        time.Duration `validate:"gte=0"`
	ProviderMaxRetries int           `validate:"gte=0,lte=5"`

	// Session retention.
	SessionTTL           time.Duration `validate:"gte=0"`
	SessionSweepInterval time.Duration `validate:"gte=0"`

	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is honoured if present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.Provider = getenvDefault("WEATHER_PROVIDER", ProviderOpenWeather)
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.WeatherAPIBaseURL = os.Getenv("WEATHERAPI_BASE_URL")
	cfg.IconURLTemplate = getenvDefault("WEATHER_ICON_URL_TEMPLATE", "https://openweathermap.org/img/wn/%s@2x.png")

	cfg.Map = view.DefaultMapConfig()
	cfg.Map.TileURL = getenvDefault("MAP_TILE_URL", cfg.Map.TileURL)
	cfg.Map.TileAttribution = getenvDefault("MAP_TILE_ATTRIBUTION", cfg.Map.TileAttribution)
	cfg.Map.Marker.IconURL = getenvDefault("MARKER_ICON_URL", cfg.Map.Marker.IconURL)
	cfg.Map.Marker.ShadowURL = getenvDefault("MARKER_SHADOW_URL", cfg.Map.Marker.ShadowURL)

	var err error
	if cfg.Map.Zoom, err = getenvInt("MAP_ZOOM", cfg.Map.Zoom); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ProviderMaxRetries, err = getenvInt("PROVIDER_MAX_RETRIES", 0); err != nil {
		return nil, err
	}

	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval, err = getenvDuration("SESSION_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints, including the map settings.
func (c *AppConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		return fmt.Errorf("invalid configuration: MAP_ZOOM %d out of range 0-19", c.Map.Zoom)
	}
	if c.Map.TileURL == "" {
		return fmt.Errorf("invalid configuration: MAP_TILE_URL is empty")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
