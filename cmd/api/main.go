package main

import (
	"context"
	"time"

	bookingsevents "docbook/internal/bookings/events"
	bookingshandler "docbook/internal/bookings/handler"
	bookingsrepository "docbook/internal/bookings/repository"
	bookingsservice "docbook/internal/bookings/service"
	bookingsvalidator "docbook/internal/bookings/validator"
	doctorshandler "docbook/internal/doctors/handler"
	doctorsrepository "docbook/internal/doctors/repository"
	doctorsservice "docbook/internal/doctors/service"
	doctorsvalidator "docbook/internal/doctors/validator"
	"docbook/pkg/app"
	"docbook/pkg/config"
	"docbook/pkg/contracts"
	"docbook/pkg/kafka"
	"docbook/pkg/middleware"

	"github.com/redis/go-redis/v9"
)

const ServiceName = "docbook-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting booking API")

	publisher, closePublisher := initPublisher(cfg)
	idempotency, redisCheck, closeIdempotency := initIdempotency(cfg)

	checks := []doctorshandler.Check{doctorshandler.MongoCheck(cfg.Mongo)}
	if redisCheck != nil {
		checks = append(checks, *redisCheck)
	}

	doctorRepo := doctorsrepository.NewMongoDoctorRepository(cfg)
	doctorService := doctorsservice.NewDoctorService(doctorRepo, doctorsvalidator.NewDoctorValidator(), cfg.Log)

	bookingService := bookingsservice.NewBookingService(
		bookingsrepository.NewMongoBookingRepository(cfg),
		bookingsrepository.NewSlotLockRepository(cfg),
		doctorRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg, app.Options{
		Health: doctorshandler.NewHealthHandler(cfg.Log, checks...),
		Handlers: []contracts.Handler{
			doctorshandler.NewDoctorHandler(doctorService, cfg.Log),
			bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		},
		Idempotency: idempotency,
		OnShutdown:  []func(){closePublisher, closeIdempotency},
	})
	serverApp.Run()
}

func initPublisher(cfg *config.Config) (bookingsevents.Publisher, func()) {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return bookingsevents.Noop(), func() {}
	}

	producer, err := kafka.NewProducer(kafka.NewProducerConfig(cfg.KafkaBrokers, cfg.KafkaTopic), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	cfg.Log.Info("Publishing booking events", "topic", producer.Topic())

	return bookingsevents.NewKafkaPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}

// initIdempotency shares replayed responses through Redis when it is
// configured; nil leaves the application on its in-process store.
func initIdempotency(cfg *config.Config) (middleware.IdempotencyStore, *doctorshandler.Check, func()) {
	if !cfg.RedisEnabled() {
		return nil, nil, func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		cfg.Log.Fatal("Invalid Redis URL", "error", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		cfg.Log.Fatal("Failed to connect to Redis", "error", err)
	}
	cfg.Log.Info("Idempotency keys shared through Redis")

	store := middleware.NewRedisIdempotencyStore(client, cfg.StoreNamespace+":idempotency", cfg.IdempotencyTTL, cfg.Log)
	check := &doctorshandler.Check{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
	return store, check, func() {
		if err := client.Close(); err != nil {
			cfg.Log.Error("Failed to close Redis client", "error", err)
		}
	}
}
