package infra

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"

	defaultAPIURL        = "http://localhost:8000"
	androidEmulatorHost  = "10.0.2.2"
	defaultLatitude      = 41.0082
	defaultLongitude     = 28.9784
	defaultSearchRadius  = 10
	defaultHTTPTimeout   = 10
	defaultSessionFolder = ".askida"
)

// Config represents the client configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Platform           string
	APIBaseURL         string
	HTTPTimeout        time.Duration
	SearchRadiusKm     float64
	DefaultLatitude    float64
	DefaultLongitude   float64
	LocationSource     string
	LocationLatitude   float64
	LocationLongitude  float64
	LocationPermission bool
	GeoIPDBPath        string
	GeoIPLookupIP      string
	SessionStore       string
	SessionPath        string
	SessionNamespace   string
	DatabaseURL        string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	platform := strings.ToLower(getEnv("PLATFORM", PlatformIOS))
	switch platform {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
	default:
		return nil, fmt.Errorf("PLATFORM must be one of ios, android, web (got %q)", platform)
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Platform:           platform,
		APIBaseURL:         ResolveAPIBaseURL(platform, getEnv("ASKIDA_API_URL", os.Getenv("API_BASE_URL"))),
		HTTPTimeout:        time.Second * time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", defaultHTTPTimeout)),
		SearchRadiusKm:     getEnvFloat("SEARCH_RADIUS_KM", defaultSearchRadius),
		DefaultLatitude:    getEnvFloat("DEFAULT_LATITUDE", defaultLatitude),
		DefaultLongitude:   getEnvFloat("DEFAULT_LONGITUDE", defaultLongitude),
		LocationSource:     strings.ToLower(getEnv("LOCATION_SOURCE", "static")),
		LocationPermission: !strings.EqualFold(getEnv("LOCATION_PERMISSION", "granted"), "denied"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		GeoIPLookupIP:      os.Getenv("GEOIP_LOOKUP_IP"),
		SessionStore:       strings.ToLower(getEnv("SESSION_STORE", "file")),
		SessionPath:        getEnv("SESSION_PATH", defaultSessionPath()),
		SessionNamespace:   getEnv("SESSION_NAMESPACE", "default"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
	}
	cfg.LocationLatitude = getEnvFloat("LOCATION_LATITUDE", cfg.DefaultLatitude)
	cfg.LocationLongitude = getEnvFloat("LOCATION_LONGITUDE", cfg.DefaultLongitude)

	switch cfg.LocationSource {
	case "static", "none":
	case "geoip":
		if cfg.GeoIPDBPath == "" || cfg.GeoIPLookupIP == "" {
			return nil, fmt.Errorf("GEOIP_DB_PATH and GEOIP_LOOKUP_IP are required when LOCATION_SOURCE=geoip")
		}
	default:
		return nil, fmt.Errorf("LOCATION_SOURCE must be one of static, geoip, none (got %q)", cfg.LocationSource)
	}

	switch cfg.SessionStore {
	case "file", "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when SESSION_STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("SESSION_STORE must be one of file, sqlite, postgres (got %q)", cfg.SessionStore)
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout * time.Second
	}
	if cfg.SearchRadiusKm <= 0 {
		cfg.SearchRadiusKm = defaultSearchRadius
	}

	return cfg, nil
}

// ResolveAPIBaseURL picks the API base URL for a platform. The Android emulator reaches the host
// loopback through 10.0.2.2, so localhost URLs are rewritten there.
func ResolveAPIBaseURL(platform, raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		raw = defaultAPIURL
	}
	if platform != PlatformAndroid {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return raw
	}
	if port := u.Port(); port != "" {
		u.Host = androidEmulatorHost + ":" + port
	} else {
		u.Host = androidEmulatorHost
	}
	return strings.TrimRight(u.String(), "/")
}

// ServerConfig configures the in-memory API server.
type ServerConfig struct {
	AppEnv             string
	Port               string
	JWTSecret          string
	TokenTTL           time.Duration
	DefaultRadiusKm    float64
	RateLimitPerMin    int
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadServerConfig loads the API server configuration from environment variables.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           time.Minute * time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 60)),
		DefaultRadiusKm:    getEnvFloat("DEFAULT_RADIUS_KM", 5),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8081,http://localhost:19006")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.JWTSecret == "" {
		if cfg.AppEnv != "development" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = "development-secret"
	}

	return cfg, nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return defaultSessionFolder
	}
	return filepath.Join(home, defaultSessionFolder)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}
