package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":5000")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SCRAPE_INTERVAL", "")

	cfg := Load()
	if cfg.StoreDriver != "postgres" {
		t.Errorf("StoreDriver: got %q, want postgres", cfg.StoreDriver)
	}
	if cfg.APIBaseURL != "http://127.0.0.1:5000" {
		t.Errorf("APIBaseURL: got %q", cfg.APIBaseURL)
	}
	if cfg.ScrapeInterval != 12*time.Hour {
		t.Errorf("ScrapeInterval: got %v, want 12h", cfg.ScrapeInterval)
	}
	if cfg.Currency != "FCFA" {
		t.Errorf("Currency: got %q, want FCFA", cfg.Currency)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "localhost:8081")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SCRAPE_ERROR_BACKOFF", "15m")
	t.Setenv("SCRAPE_ON_START", "no")
	t.Setenv("STORE_DRIVER", "SQLite")

	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:8081" {
		t.Errorf("APIBaseURL: got %q", cfg.APIBaseURL)
	}
	if cfg.ScrapeErrorBackoff != 15*time.Minute {
		t.Errorf("ScrapeErrorBackoff: got %v", cfg.ScrapeErrorBackoff)
	}
	if cfg.ScrapeOnStart {
		t.Error("ScrapeOnStart should be false")
	}
	if cfg.StoreDriver != "sqlite" {
		t.Errorf("StoreDriver: got %q, want sqlite", cfg.StoreDriver)
	}
}

func TestDSNPrefersDatabaseURL(t *testing.T) {
	c := &Config{DatabaseURL: "postgres://u:p@db:5432/x", PostgresHost: "ignored"}
	if c.DSN() != "postgres://u:p@db:5432/x" {
		t.Errorf("DSN: got %q", c.DSN())
	}

	c = &Config{PostgresHost: "h", PostgresPort: "1", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=d sslmode=disable"
	if c.DSN() != want {
		t.Errorf("DSN: got %q, want %q", c.DSN(), want)
	}
}
