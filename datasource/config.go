package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration is a time.Duration read from JSON strings such as "10m"
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a duration string or a number of seconds
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Config represents the application configuration
type Config struct {
	// Forecast feed settings
	Feed struct {
		BaseURL   string   `json:"baseURL"`
		UserAgent string   `json:"userAgent"`
		Timeout   Duration `json:"timeout"`
	} `json:"feed"`

	// Outbound request throttling
	RateLimit struct {
		Enabled bool    `json:"enabled"`
		RPS     float64 `json:"rps"`
		Burst   int     `json:"burst"`
	} `json:"rateLimit"`

	// How long a fetched forecast is served from memory
	CacheFreshness Duration `json:"cacheFreshness"`

	// Locations kept warm in the cache and how often they are refreshed
	Refresh struct {
		Interval  Duration `json:"interval"`
		Locations []string `json:"locations"`
	} `json:"refresh"`

	// SQLite file for saved locations; empty keeps them in memory
	FavoritesDB string `json:"favoritesDB"`

	LogLevel string `json:"logLevel"`
}

// LoadConfig loads configuration from a JSON file on top of DefaultConfig.
// A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return config, nil
}

// ApplyEnv overrides configuration values from environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv("YR_BASE_URL"); v != "" {
		c.Feed.BaseURL = v
	}
	if v := os.Getenv("YR_USER_AGENT"); v != "" {
		c.Feed.UserAgent = v
	}
	if v := os.Getenv("FAVORITES_DB"); v != "" {
		c.FavoritesDB = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	config := &Config{}
	config.Feed.BaseURL = DefaultBaseURL
	config.Feed.UserAgent = DefaultUserAgent
	config.Feed.Timeout = Duration{10 * time.Second}
	config.RateLimit.Enabled = true
	config.RateLimit.RPS = 1.0
	config.RateLimit.Burst = 3
	config.CacheFreshness = Duration{10 * time.Minute}
	config.Refresh.Interval = Duration{15 * time.Minute}
	config.LogLevel = "info"
	return config
}
