package config

import "time"

// Each setting is an environment variable and the value used when it is
// unset or unparsable.

// Mongo.
const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "docbook"
	DefaultMongoConnTimeout  = 10 * time.Second
)

// HTTP server.
const (
	EnvPort              = "PORT"
	EnvReadTimeout       = "READ_TIMEOUT"
	EnvWriteTimeout      = "WRITE_TIMEOUT"
	EnvIdleTimeout       = "IDLE_TIMEOUT"
	EnvShutdownTimeout   = "SHUTDOWN_TIMEOUT"
	EnvRequestTimeout    = "REQUEST_TIMEOUT"
	EnvMaxRequestSize    = "MAX_REQUEST_SIZE"
	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvIdempotencyTTL    = "IDEMPOTENCY_TTL"

	DefaultPort              = "8080"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = time.Minute
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultRequestTimeout    = 30 * time.Second
	DefaultMaxRequestSize    = 1 << 20
	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = time.Minute
	DefaultIdempotencyTTL    = 24 * time.Hour
)

// Logging.
const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Booking rules.
const (
	EnvSlotLockTTL = "SLOT_LOCK_TTL"
	EnvHorizonDays = "BOOKING_HORIZON_DAYS"
	EnvTimeZone    = "TIME_ZONE"

	DefaultSlotLockTTL = 30 * time.Second
	// DefaultHorizonDays is how many days past today a booking may be placed.
	DefaultHorizonDays = 10
	DefaultTimeZone    = "Local"
)

// Booking events. Publishing is off while KAFKA_BROKERS is empty.
const (
	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_BOOKING_TOPIC"

	DefaultKafkaTopic = "booking-events"
)

// Patient client.
const (
	EnvBookingAPIURL     = "BOOKING_API_URL"
	EnvBookingAPITimeout = "BOOKING_API_TIMEOUT"
	EnvRedisURL          = "REDIS_URL"
	EnvStoreNamespace    = "STORE_NAMESPACE"
	EnvStoreDir          = "STORE_DIR"

	DefaultBookingAPIURL     = "http://localhost:8080"
	DefaultBookingAPITimeout = 10 * time.Second
	DefaultStoreNamespace    = "docbook"
)
