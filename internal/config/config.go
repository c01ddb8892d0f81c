package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DBDSN    string
	HTTPAddr string
	LogLevel string
	RedisDSN string

	// upstream commerce API
	GumroadBaseURL string

	// snapshot archive (S3-compatible). When Endpoint is empty the
	// local simulator is used instead.
	ArchiveEndpoint  string
	ArchiveBucket    string
	ArchiveRegion    string
	ArchivePublicURL string
	ArchiveEnabled   bool

	// raw secrets kept in-memory only; never log these
	AdminSecretKey string
	CORSOrigins    []string
}

func Load() (Config, error) {
	cfg := Config{
		DBDSN:            os.Getenv("DB_DSN"),
		HTTPAddr:         getenvDefault("HTTP_ADDR", ":8080"),
		LogLevel:         getenvDefault("LOG_LEVEL", "info"),
		RedisDSN:         getenvDefault("REDIS_DSN", "redis://localhost:6379/0"),
		GumroadBaseURL:   getenvDefault("GUMROAD_BASE_URL", "https://api.gumroad.com"),
		ArchiveEndpoint:  getenvDefault("ARCHIVE_ENDPOINT", ""),
		ArchiveBucket:    getenvDefault("ARCHIVE_BUCKET", ""),
		ArchiveRegion:    getenvDefault("ARCHIVE_REGION", "auto"),
		ArchivePublicURL: getenvDefault("ARCHIVE_PUBLIC_URL", ""),
		AdminSecretKey:   getenvDefault("ADMIN_SECRET_KEY", ""),
	}

	if cfg.DBDSN == "" {
		return Config{}, errors.New("missing DB_DSN")
	}

	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("ARCHIVE_ENABLED must be a boolean")
		}
		cfg.ArchiveEnabled = enabled
	} else {
		cfg.ArchiveEnabled = true
	}

	// parse CORS origins
	corsOrigins := getenvDefault("CORS_ORIGINS", "")
	if corsOrigins != "" {
		cfg.CORSOrigins = strings.Split(corsOrigins, ",")
		for i := range cfg.CORSOrigins {
			cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
		}
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000"} // default
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
