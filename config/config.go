package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Gemini GeminiConfig
	Sheets SheetsConfig
	Geo    GeoConfig
	Cache  CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds the extraction backend configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// SheetsConfig holds the spreadsheet storage configuration
type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	DirectoryTab    string `mapstructure:"directory_tab"`
	CatalogTab      string `mapstructure:"catalog_tab"`
	ObservationsTab string `mapstructure:"observations_tab"`
}

// GeoConfig holds geocoding and routing configuration
type GeoConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	NominatimURL      string        `mapstructure:"nominatim_url"`
	OSRMURL           string        `mapstructure:"osrm_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	RouteTimeout      time.Duration `mapstructure:"route_timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "bolt"
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricescan/")

	// Environment variable settings
	v.SetEnvPrefix("PRICESCAN")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Gemini defaults
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	// Sheets defaults: tab names match the legacy spreadsheet layout
	v.SetDefault("sheets.credentials_file", "credentials.json")
	v.SetDefault("sheets.directory_tab", "Supermercati")
	v.SetDefault("sheets.catalog_tab", "Catalogo")
	v.SetDefault("sheets.observations_tab", "Scontrini")

	// Geo defaults: public Nominatim allows at most 1 req/s
	v.SetDefault("geo.enabled", true)
	v.SetDefault("geo.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geo.osrm_url", "https://router.project-osrm.org")
	v.SetDefault("geo.user_agent", "pricescan/1.0")
	v.SetDefault("geo.requests_per_second", 1.0)
	v.SetDefault("geo.route_timeout", "3s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.path", "pricescan-cache.db")
	v.SetDefault("cache.ttl", "720h") // 30 days
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet ID is required (set PRICESCAN_SHEETS_SPREADSHEET_ID)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "bolt" {
		return fmt.Errorf("cache type must be 'memory' or 'bolt', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "bolt" && config.Cache.Path == "" {
		return fmt.Errorf("cache path is required when cache type is 'bolt'")
	}

	if config.Geo.Enabled {
		if config.Geo.NominatimURL == "" || config.Geo.OSRMURL == "" {
			return fmt.Errorf("nominatim and OSRM URLs are required when geo is enabled")
		}
	}

	return nil
}
