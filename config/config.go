// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sensor-dashboard/models"
	"sensor-dashboard/services"
)

type Config struct {
	ListenAddr     string
	BufferCapacity int
	Interval       time.Duration
	Fields         []models.FieldSpec
	TrendField     string
	Source         string
	SourceURL      string
	RandSeed       int64 // 0 seeds from the clock

	RedisHost     string
	RedisPort     string
	RedisPassword string
	HistoryTTL    time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	PostgresDSN string

	LogLevel    string
	Environment string
}

// RedisEnabled reports whether a redis host was given.
func (c *Config) RedisEnabled() bool { return c.RedisHost != "" }

func (c *Config) RedisAddr() string { return c.RedisHost + ":" + c.RedisPort }

func (c *Config) MinioEnabled() bool { return c.MinioEndpoint != "" }

func (c *Config) PostgresEnabled() bool { return c.PostgresDSN != "" }

// Load reads the environment. Storage backends stay disabled unless their
// address is set.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     getenv("LISTEN_ADDR", ":8080"),
		TrendField:     getenv("TREND_FIELD", "temperature"),
		Source:         strings.ToLower(getenv("SOURCE", services.SourceRandom)),
		SourceURL:      os.Getenv("SOURCE_URL"),
		RedisHost:      os.Getenv("REDIS_HOST"),
		RedisPort:      getenv("REDIS_PORT", "6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "sensor-readings"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Environment:    getenv("ENVIRONMENT", "development"),
	}

	var err error
	if cfg.BufferCapacity, err = getEnvInt("BUFFER_CAPACITY", services.DefaultCapacity); err != nil {
		return nil, err
	}
	secs, err := getEnvInt("UPDATE_INTERVAL_SECS", int(services.DefaultInterval/time.Second))
	if err != nil {
		return nil, err
	}
	if secs <= 0 {
		return nil, fmt.Errorf("config: UPDATE_INTERVAL_SECS must be positive, got %d", secs)
	}
	cfg.Interval = time.Duration(secs) * time.Second

	ttl, err := getEnvInt("HISTORY_TTL_SECS", 24*60*60)
	if err != nil {
		return nil, err
	}
	// 0 keeps the history without expiry; negative values mean KEEPTTL to redis
	if ttl < 0 {
		return nil, fmt.Errorf("config: HISTORY_TTL_SECS must not be negative, got %d", ttl)
	}
	cfg.HistoryTTL = time.Duration(ttl) * time.Second

	if v := os.Getenv("RAND_SEED"); v != "" {
		if cfg.RandSeed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("config: RAND_SEED: %w", err)
		}
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if cfg.MinioUseSSL, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("config: MINIO_USE_SSL: %w", err)
		}
	}

	cfg.Fields = services.DefaultFields()
	if v := os.Getenv("SENSOR_FIELDS"); v != "" {
		if cfg.Fields, err = ParseFields(v); err != nil {
			return nil, err
		}
	}

	switch cfg.Source {
	case services.SourceRandom, services.SourceHost:
	case services.SourceHTTP:
		if cfg.SourceURL == "" {
			return nil, fmt.Errorf("config: SOURCE=http requires SOURCE_URL")
		}
	default:
		return nil, fmt.Errorf("config: unknown SOURCE %q", cfg.Source)
	}

	if !cfg.knownField(cfg.TrendField) {
		return nil, fmt.Errorf("config: TREND_FIELD %q is not a configured field", cfg.TrendField)
	}

	return cfg, nil
}

// knownField reports whether readings can carry name. Host mode also samples
// its own probes.
func (c *Config) knownField(name string) bool {
	for _, f := range c.Fields {
		if f.Name == name {
			return true
		}
	}
	if c.Source == services.SourceHost {
		for _, h := range services.HostFields() {
			if h == name {
				return true
			}
		}
	}
	return false
}

// ParseFields reads "name:low:high[:unit]" entries separated by commas.
func ParseFields(s string) ([]models.FieldSpec, error) {
	var fields []models.FieldSpec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bits := strings.SplitN(part, ":", 4)
		if len(bits) < 3 {
			return nil, fmt.Errorf("config: field %q: want name:low:high[:unit]", part)
		}
		low, err := strconv.ParseFloat(bits[1], 64)
		if err != nil {
			return nil, fmt.Errorf("config: field %q low: %w", bits[0], err)
		}
		high, err := strconv.ParseFloat(bits[2], 64)
		if err != nil {
			return nil, fmt.Errorf("config: field %q high: %w", bits[0], err)
		}
		f := models.FieldSpec{Name: strings.TrimSpace(bits[0]), Low: low, High: high}
		if len(bits) == 4 {
			f.Unit = bits[3]
		}
		fields = append(fields, f)
	}
	if err := services.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("config: SENSOR_FIELDS: %w", err)
	}
	return fields, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
