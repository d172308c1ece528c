package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Env      string
	LogLevel string

	HTTPAddr   string
	APIBaseURL string

	StoreDriver      string
	DatabaseURL      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	ScrapeSource       string
	SourcesPath        string
	ScrapeOnStart      bool
	ScrapeInterval     time.Duration
	ScrapeErrorBackoff time.Duration

	MaxConcurrency  int
	RateLimitMs     int
	MaxRetries      int
	ListingsPerPage int

	CSVOutputPath string
	ChromeBin     string

	Currency string
	City     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr:   getEnv("HTTP_ADDR", ":5000"),
		APIBaseURL: getEnv("API_BASE_URL", ""),

		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "annonces"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "annonces123"),
		PostgresDB:       getEnv("POSTGRES_DB", "annonces_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/annonces.db"),

		ScrapeSource:       strings.ToLower(getEnv("SCRAPE_SOURCE", "generator")),
		SourcesPath:        getEnv("SOURCES_PATH", "sources.yaml"),
		ScrapeOnStart:      getEnvBool("SCRAPE_ON_START", true),
		ScrapeInterval:     getEnvDuration("SCRAPE_INTERVAL", 12*time.Hour),
		ScrapeErrorBackoff: getEnvDuration("SCRAPE_ERROR_BACKOFF", time.Hour),

		MaxConcurrency:  getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 1000),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		ListingsPerPage: getEnvInt("LISTINGS_PER_PAGE", 5),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_annonces.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),

		Currency: getEnv("CURRENCY", "FCFA"),
		City:     getEnv("CITY", "Abidjan"),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = localBaseURL(cfg.HTTPAddr)
	}
	return cfg
}

// DSN returns the PostgreSQL connection string. DATABASE_URL wins over the
// individual POSTGRES_* settings when it is set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// localBaseURL turns a listen address such as ":5000" into a URL the page
// view can use to reach the API served by this same process.
func localBaseURL(addr string) string {
	host, port := "127.0.0.1", addr
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		if h := addr[:i]; h != "" && h != "0.0.0.0" {
			host = h
		}
		port = addr[i+1:]
	}
	return "http://" + host + ":" + port
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
		log.Printf("[config] Invalid %s duration %q, using %v", key, val, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "t", "true", "yes", "y", "on":
		return true
	case "0", "f", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
