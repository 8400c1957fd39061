package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-rider/internal/ride"
	"github.com/i474232898/weather-rider/internal/weather"
)

const (
	ProviderOpenMeteo   = "openmeteo"
	ProviderOpenWeather = "openweather"

	defaultConfigFile = "weather-rider.yaml"
)

type AppConfig struct {
	Port string

	// Provider selects the weather backend: "openmeteo" or "openweather".
	Provider             string
	OpenWeatherAPIKey    string
	GoogleGeocoderAPIKey string
	OSRMBaseURL          string
	HTTPTimeout          time.Duration

	// DefaultCity is shown when the rider has no remembered city.
	DefaultCity string

	// FetchInterval controls how often we fetch data for each watched location.
	FetchInterval time.Duration

	// Locations to watch.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// SessionKey signs the last-city cookie. Empty means a random key per process.
	SessionKey string

	// FallbackSpeedKmh is the average speed for straight-line route estimates.
	FallbackSpeedKmh float64

	Thresholds ride.Thresholds
}

// fileConfig is the optional YAML overlay. Environment variables take
// precedence over values set here.
type fileConfig struct {
	Port             string          `yaml:"port"`
	Provider         string          `yaml:"provider"`
	OSRMBaseURL      string          `yaml:"osrm_base_url"`
	HTTPTimeout      string          `yaml:"http_timeout"`
	DefaultCity      string          `yaml:"default_city"`
	FetchInterval    string          `yaml:"fetch_interval"`
	StoreMaxHistory  *int            `yaml:"store_max_history"`
	StoreMaxAge      string          `yaml:"store_max_age"`
	FallbackSpeedKmh float64         `yaml:"fallback_speed_kmh"`
	Locations        []fileLocation  `yaml:"locations"`
	Thresholds       ride.Thresholds `yaml:"thresholds"`
}

type fileLocation struct {
	City    string   `yaml:"city"`
	Country string   `yaml:"country"`
	Lat     *float64 `yaml:"lat"`
	Lon     *float64 `yaml:"lon"`
}

// Load reads configuration from .env, the optional YAML file and the
// environment, with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	path := getenvDefault("CONFIG_FILE", defaultConfigFile)
	file, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return fromEnv(file)
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("INFO: config file %s not found, using environment only", path)
			return fc, nil
		}
		return fc, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func fromEnv(fc fileConfig) (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", or(fc.Port, "8080"))

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", or(fc.Provider, ProviderOpenMeteo)))
	if cfg.Provider != ProviderOpenMeteo && cfg.Provider != ProviderOpenWeather {
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q: want %s or %s", cfg.Provider, ProviderOpenMeteo, ProviderOpenWeather)
	}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.SessionKey = os.Getenv("SESSION_KEY")
	cfg.OSRMBaseURL = getenvDefault("OSRM_BASE_URL", or(fc.OSRMBaseURL, "https://router.project-osrm.org"))
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", or(fc.DefaultCity, "London"))

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", or(fc.HTTPTimeout, "10s")); err != nil {
		return nil, err
	}

	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", or(fc.FetchInterval, "15m")); err != nil {
		return nil, err
	}

	// Store retention.
	maxHistory := 96 // roughly 24h at 15-minute intervals
	if fc.StoreMaxHistory != nil {
		maxHistory = *fc.StoreMaxHistory
	}
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", maxHistory); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", or(fc.StoreMaxAge, "24h")); err != nil {
		return nil, err
	}

	speed := fc.FallbackSpeedKmh
	if speed <= 0 {
		speed = 50
	}
	if cfg.FallbackSpeedKmh, err = getenvFloat("FALLBACK_SPEED_KMH", speed); err != nil {
		return nil, err
	}

	envLocs, err := loadWatchLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = mergeLocations(fc.Locations, envLocs)

	cfg.Thresholds = fc.Thresholds

	return cfg, nil
}

func loadWatchLocations() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	if strings.TrimSpace(city) == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}

	return locs, nil
}

func mergeLocations(file []fileLocation, env []weather.Location) []weather.Location {
	seen := make(map[string]bool)
	var out []weather.Location
	add := func(loc weather.Location) {
		key := loc.Key()
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, loc)
	}
	for _, fl := range file {
		add(weather.Location{City: fl.City, Country: fl.Country, Lat: fl.Lat, Lon: fl.Lon})
	}
	for _, loc := range env {
		add(loc)
	}
	return out
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
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

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
