package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything recommend-service reads from the environment.
type Config struct {
	FrontendURL    string
	CatalogURL     string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration
	EnableScrape   bool
	WarmCache      bool
	NATSURL        string
	ExplainURL     string
	Port           string
}

func Load() Config {
	cfg := Config{
		FrontendURL:    strings.TrimRight(getenv("FRONTEND_URL", "http://frontend"), "/"),
		CatalogURL:     strings.TrimRight(getenv("CATALOG_URL", "http://productcatalogservice:3550"), "/"),
		CacheTTL:       time.Duration(getenvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		RequestTimeout: time.Duration(getenvInt("REQUEST_TIMEOUT_MS", 8000)) * time.Millisecond,
		ProbeTimeout:   time.Duration(getenvInt("PROBE_TIMEOUT_MS", 5000)) * time.Millisecond,
		EnableScrape:   getenvBool("ENABLE_SCRAPE", true),
		WarmCache:      getenvBool("WARM_CACHE", true),
		NATSURL:        os.Getenv("NATS_URL"),
		ExplainURL:     os.Getenv("EXPLAIN_URL"),
		Port:           getenv("PORT", "8080"),
	}

	log.Printf("Config loaded: frontend=%s catalog=%s ttl=%s timeout=%s scrape=%v",
		cfg.FrontendURL, cfg.CatalogURL, cfg.CacheTTL, cfg.RequestTimeout, cfg.EnableScrape)

	return cfg
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.ToLower(v) == "true"
}
