package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	mongodb "docbook/pkg/db/mongo"
	"docbook/pkg/logger"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SlotLockTTL time.Duration
	HorizonDays int
	TimeZone    string
	Location    *time.Location

	KafkaBrokers string
	KafkaTopic   string

	BookingAPIURL     string
	BookingAPITimeout time.Duration

	RedisURL       string
	StoreNamespace string
	// StoreDir holds the file store when RedisURL is empty. Empty means the
	// user config directory.
	StoreDir string

	Log   *logger.Logger
	Mongo *mongo.Client
}

// Load reads the environment (after applying an optional .env file),
// validates it and exits the process when the configuration is unusable.
func Load(serviceName string) *Config {
	cfg, err := FromEnv(serviceName)
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv is Load without the exit; the returned Config always carries a
// usable logger.
func FromEnv(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		SlotLockTTL: getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),
		HorizonDays: getEnvNum(EnvHorizonDays, DefaultHorizonDays),
		TimeZone:    getEnvStr(EnvTimeZone, DefaultTimeZone),

		KafkaBrokers: getEnvStr(EnvKafkaBrokers, ""),
		KafkaTopic:   getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),

		BookingAPIURL:     getEnvStr(EnvBookingAPIURL, DefaultBookingAPIURL),
		BookingAPITimeout: getEnvDuration(EnvBookingAPITimeout, DefaultBookingAPITimeout),

		RedisURL:       getEnvStr(EnvRedisURL, ""),
		StoreNamespace: getEnvStr(EnvStoreNamespace, DefaultStoreNamespace),
		StoreDir:       getEnvStr(EnvStoreDir, ""),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: cfg.LogFormat == logger.JSON,
		Service:   serviceName,
	})

	if loc, err := time.LoadLocation(cfg.TimeZone); err == nil {
		cfg.Location = loc
	}

	return cfg, cfg.Validate()
}

func (cfg *Config) SetMongo() {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB",
			"error", err,
			"uri", redactMongoURI(cfg.MongoURI),
		)
	}
	cfg.Log.Info("Successfully connected to MongoDB")
	cfg.Mongo = client
}

func (cfg *Config) KafkaEnabled() bool {
	return cfg.KafkaBrokers != ""
}

func (cfg *Config) RedisEnabled() bool {
	return cfg.RedisURL != ""
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.LogFormat != logger.JSON && cfg.LogFormat != logger.TEXT {
		errors = append(errors, fmt.Sprintf("LogFormat must be 'json' or 'text', got: %s", cfg.LogFormat))
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"SlotLockTTL", cfg.SlotLockTTL},
		{"BookingAPITimeout", cfg.BookingAPITimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.HorizonDays < 0 {
		errors = append(errors, fmt.Sprintf("HorizonDays cannot be negative, got: %d", cfg.HorizonDays))
	}
	if cfg.Location == nil {
		errors = append(errors, fmt.Sprintf("TimeZone is not a known location, got: %s", cfg.TimeZone))
	}

	if u, err := url.Parse(cfg.BookingAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("BookingAPIURL must be an absolute URL, got: %s", cfg.BookingAPIURL))
	}
	if cfg.RedisURL != "" {
		if u, err := url.Parse(cfg.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errors = append(errors, "RedisURL must start with 'redis://' or 'rediss://'")
		}
	}
	if cfg.StoreNamespace == "" {
		errors = append(errors, "StoreNamespace cannot be empty")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		errors = append(errors, "KafkaTopic cannot be empty when KafkaBrokers is set")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"slot_lock_ttl", cfg.SlotLockTTL,
		"horizon_days", cfg.HorizonDays,
		"time_zone", cfg.TimeZone,
		"kafka_enabled", cfg.KafkaEnabled(),
		"kafka_topic", cfg.KafkaTopic,
		"booking_api_url", cfg.BookingAPIURL,
		"redis_enabled", cfg.RedisEnabled(),
		"store_namespace", cfg.StoreNamespace,
		"store_dir", cfg.StoreDir,
	)
}

func (cfg *Config) GracefulShutdown() {
	if cfg.Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := cfg.Mongo.Disconnect(ctx); err != nil {
		cfg.Log.Error("Failed to disconnect from MongoDB", "error", err)
	}
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
