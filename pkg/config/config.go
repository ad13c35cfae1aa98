// ==============================================================================
// CONFIG PACKAGE - pkg/config/config.go
// ==============================================================================
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Providers ProvidersConfig
	Screening ScreeningConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// ProvidersConfig holds credentials and endpoints for external data sources.
// An empty API key means the source runs in "not enabled" mode.
type ProvidersConfig struct {
	EtherscanAPIKey   string
	BscscanAPIKey     string
	PolygonscanAPIKey string
	ChainabuseAPIKey  string
	ChainabuseURL     string
	BlocksecAPIKey    string
	BlocksecURL       string
	SDNListPath       string
	RequestTimeout    time.Duration
}

// ScreeningConfig carries the tunable analysis constants. The hop and holder
// thresholds are heuristic, not empirically calibrated; keep them adjustable.
type ScreeningConfig struct {
	TxSampleSize      int
	OpaqueHopAlert    int           // hop count that emits a MEDIUM finding
	OpaqueHopEscalate int           // hop count that escalates to HIGH
	BurstWindow       time.Duration // max gap between txs inside a burst
	BurstMinStreak    int           // consecutive tight gaps required for a burst
	HolderCountFloor  int           // below this, a suspect token is corroborated fake
	CacheTTL          time.Duration // redis report cache lifetime, 0 disables
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "change-this-secret"),
			Expiration: getDurationEnv("JWT_EXPIRATION", 15*time.Minute),
		},
		Providers: ProvidersConfig{
			EtherscanAPIKey:   getEnv("ETHERSCAN_API_KEY", ""),
			BscscanAPIKey:     getEnv("BSCSCAN_API_KEY", ""),
			PolygonscanAPIKey: getEnv("POLYGONSCAN_API_KEY", ""),
			ChainabuseAPIKey:  getEnv("CHAINABUSE_API_KEY", ""),
			ChainabuseURL:     getEnv("CHAINABUSE_URL", "https://api.chainabuse.com/v0/reports"),
			BlocksecAPIKey:    getEnv("BLOCKSEC_API_KEY", ""),
			BlocksecURL:       getEnv("BLOCKSEC_URL", "https://aml.blocksec.com/api/aml/v2/address"),
			SDNListPath:       getEnv("SDN_LIST_PATH", "./data/sdn_list.json"),
			RequestTimeout:    getDurationEnv("PROVIDER_REQUEST_TIMEOUT", 12*time.Second),
		},
		Screening: ScreeningConfig{
			TxSampleSize:      getIntEnv("SCREENING_TX_SAMPLE_SIZE", 10),
			OpaqueHopAlert:    getIntEnv("SCREENING_OPAQUE_HOP_ALERT", 5),
			OpaqueHopEscalate: getIntEnv("SCREENING_OPAQUE_HOP_ESCALATE", 10),
			BurstWindow:       getDurationEnv("SCREENING_BURST_WINDOW", 5*time.Minute),
			BurstMinStreak:    getIntEnv("SCREENING_BURST_MIN_STREAK", 5),
			HolderCountFloor:  getIntEnv("SCREENING_HOLDER_COUNT_FLOOR", 1000),
			CacheTTL:          getDurationEnv("SCREENING_CACHE_TTL", 10*time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func normalizeRedisURL(url string) string {
	// Strip redis:// or redis+tls:// scheme if present
	if strings.HasPrefix(url, "redis+tls://") {
		return url[len("redis+tls://"):]
	}
	if strings.HasPrefix(url, "redis://") {
		return url[len("redis://"):]
	}
	return url
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
