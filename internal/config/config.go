package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultEnv                 = "development"
	defaultHTTPHost            = "0.0.0.0"
	defaultHTTPPort            = 8080
	defaultDealMakerBaseURL    = "https://api.dealmaker.tech/v1"
	defaultSharePrice          = 2.00
	defaultMinInvestment       = 500.00
	defaultSecurityType        = "Common Stock"
	defaultBonusTiers          = "1000:5,5000:10,10000:15"
	defaultRedisDB             = 0
	defaultCacheTTLSeconds     = 60
	defaultEventsExchange      = "investor.events"
	defaultSessionTTLSeconds   = 1800
	defaultReapIntervalSeconds = 60
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env       string
	HTTP      HTTPConfig
	DealMaker DealMakerConfig
	Offering  OfferingConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RabbitMQ  RabbitMQConfig
	Sessions  SessionConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// DealMakerConfig stores credentials for the external investor-management
// service. Onboarding operations short-circuit when APIToken or DealID is
// empty.
type DealMakerConfig struct {
	BaseURL  string
	APIToken string
	DealID   string
}

// OfferingConfig describes the investment terms presented to investors.
// Values default to the fallback offering so the wizard works without env.
type OfferingConfig struct {
	SharePrice    float64
	MinInvestment float64
	MaxInvestment float64 // 0 means no upper bound
	SecurityType  string
	BonusTiers    string // "threshold:percent,..." pairs
}

// RedisConfig stores Redis connection parameters. An empty Addr disables
// the response cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds int
}

// RabbitMQConfig stores broker parameters for investor events. An empty
// URL disables publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// SessionConfig bounds the in-memory wizard session registry.
type SessionConfig struct {
	TTLSeconds          int
	ReapIntervalSeconds int
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	sharePrice, err := getFloat("OFFERING_SHARE_PRICE", defaultSharePrice)
	if err != nil {
		return nil, fmt.Errorf("parse OFFERING_SHARE_PRICE: %w", err)
	}
	if sharePrice <= 0 {
		return nil, fmt.Errorf("OFFERING_SHARE_PRICE must be positive, got %v", sharePrice)
	}
	minInvestment, err := getFloat("OFFERING_MIN_INVESTMENT", defaultMinInvestment)
	if err != nil {
		return nil, fmt.Errorf("parse OFFERING_MIN_INVESTMENT: %w", err)
	}
	maxInvestment, err := getFloat("OFFERING_MAX_INVESTMENT", 0)
	if err != nil {
		return nil, fmt.Errorf("parse OFFERING_MAX_INVESTMENT: %w", err)
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}
	sessionTTL, err := getInt("SESSION_TTL_SECONDS", defaultSessionTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_TTL_SECONDS: %w", err)
	}
	reapInterval, err := getInt("SESSION_REAP_INTERVAL_SECONDS", defaultReapIntervalSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_REAP_INTERVAL_SECONDS: %w", err)
	}

	return &Config{
		Env: getString("APP_ENV", defaultEnv),
		HTTP: HTTPConfig{
			Host: getString("HTTP_HOST", defaultHTTPHost),
			Port: port,
		},
		DealMaker: DealMakerConfig{
			BaseURL:  getString("DEALMAKER_BASE_URL", defaultDealMakerBaseURL),
			APIToken: strings.TrimSpace(os.Getenv("DEALMAKER_API_TOKEN")),
			DealID:   strings.TrimSpace(os.Getenv("DEALMAKER_DEAL_ID")),
		},
		Offering: OfferingConfig{
			SharePrice:    sharePrice,
			MinInvestment: minInvestment,
			MaxInvestment: maxInvestment,
			SecurityType:  getString("OFFERING_SECURITY_TYPE", defaultSecurityType),
			BonusTiers:    getString("OFFERING_BONUS_TIERS", defaultBonusTiers),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
		},
		RabbitMQ: RabbitMQConfig{
			URL:      strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
			Exchange: getString("RABBITMQ_EVENTS_EXCHANGE", defaultEventsExchange),
		},
		Sessions: SessionConfig{
			TTLSeconds:          sessionTTL,
			ReapIntervalSeconds: reapInterval,
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to float: %w", key, value, err)
	}
	return parsed, nil
}
