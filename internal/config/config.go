package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultMCDURL is the NOAA MapServer query for active mesoscale discussions.
const DefaultMCDURL = "https://mapservices.weather.noaa.gov/vector/rest/services/outlooks/spc_mesoscale_discussion/MapServer/0/query?where=1%3D1&outFields=name,folderpath,popupinfo,idp_filedate&f=geojson"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// SPC feeds.
	SPCBaseURL         string
	MCDURL             string
	FeedTimeout        time.Duration
	FeedConcurrency    int
	Extended           bool
	DiscussionsEnabled bool

	// Refresh cycles.
	RefreshSchedule string
	Sites           []domain.Site

	// Report publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Options returns the evaluation options used by refresh cycles.
func (c *Config) Options() domain.Options {
	return domain.Options{Extended: c.Extended, Discussions: c.DiscussionsEnabled}
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	feedTimeout, err := parseDuration("FEED_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	feedConcurrency, err := parseFeedConcurrency()
	if err != nil {
		return nil, err
	}

	extended, err := parseBool("OUTLOOK_EXTENDED", false)
	if err != nil {
		return nil, err
	}
	discussions, err := parseBool("DISCUSSIONS_ENABLED", true)
	if err != nil {
		return nil, err
	}

	sites, err := loadSites()
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", len(brokers) > 0)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SPCBaseURL:         strings.TrimRight(envOrDefault("SPC_BASE_URL", "https://www.spc.noaa.gov/products"), "/"),
		MCDURL:             envOrDefault("MCD_URL", DefaultMCDURL),
		FeedTimeout:        feedTimeout,
		FeedConcurrency:    feedConcurrency,
		Extended:           extended,
		DiscussionsEnabled: discussions,

		RefreshSchedule: envOrDefault("REFRESH_SCHEDULE", "@every 1h"),
		Sites:           sites,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "spc-outlooks"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if cfg.SPCBaseURL == "" {
		return nil, errors.New("SPC_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	for _, s := range cfg.Sites {
		if (s.Lat == nil || s.Lon == nil) && s.Place != "" && !cfg.MapboxEnabled {
			return nil, fmt.Errorf("site %q needs coordinates or MAPBOX_TOKEN for geocoding", s.Name)
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseFeedConcurrency() (int, error) {
	n, err := strconv.Atoi(envOrDefault("FEED_CONCURRENCY", "4"))
	if err != nil || n < 1 || n > 16 {
		return 0, errors.New("FEED_CONCURRENCY must be between 1 and 16")
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

// locationsFile is the LOCATIONS_FILE document.
type locationsFile struct {
	Sites []domain.Site `yaml:"sites"`
}

// loadSites reads LOCATIONS_FILE when set, otherwise builds the single site from
// OUTLOOK_NAME, OUTLOOK_LAT and OUTLOOK_LON.
func loadSites() ([]domain.Site, error) {
	if path := os.Getenv("LOCATIONS_FILE"); path != "" {
		return LoadSites(path)
	}

	lat, err := parseCoordinate("OUTLOOK_LAT", "35.22")
	if err != nil {
		return nil, err
	}
	lon, err := parseCoordinate("OUTLOOK_LON", "-97.44")
	if err != nil {
		return nil, err
	}
	if _, err := domain.NewGeoPoint(lat, lon); err != nil {
		return nil, fmt.Errorf("OUTLOOK_LAT/OUTLOOK_LON: %w", err)
	}
	return []domain.Site{{Name: envOrDefault("OUTLOOK_NAME", "default"), Lat: &lat, Lon: &lon}}, nil
}

func parseCoordinate(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(envOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

// LoadSites reads a YAML locations file. Every site needs a unique name and
// either both coordinates or a place.
func LoadSites(path string) ([]domain.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locations file: %w", err)
	}

	var doc locationsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse locations file: %w", err)
	}
	if len(doc.Sites) == 0 {
		return nil, fmt.Errorf("locations file %s has no sites", path)
	}

	seen := make(map[string]bool, len(doc.Sites))
	for i, s := range doc.Sites {
		if s.Name == "" {
			return nil, fmt.Errorf("site %d has no name", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate site %q", s.Name)
		}
		seen[s.Name] = true

		switch {
		case s.Lat != nil && s.Lon != nil:
			if _, err := domain.NewGeoPoint(*s.Lat, *s.Lon); err != nil {
				return nil, fmt.Errorf("site %q: %w", s.Name, err)
			}
		case s.Lat != nil || s.Lon != nil:
			return nil, fmt.Errorf("site %q: lat and lon must be set together", s.Name)
		case s.Place == "":
			return nil, fmt.Errorf("site %q: %w", s.Name, domain.ErrSiteUnresolved)
		}
	}
	return doc.Sites, nil
}
