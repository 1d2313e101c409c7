package main

import (
	"context"
	"flag"
	"time"

	doctorsrepository "docbook/internal/doctors/repository"
	doctorsservice "docbook/internal/doctors/service"
	doctorsvalidator "docbook/internal/doctors/validator"
	mongoMigration "docbook/internal/migrations/mongo"
	"docbook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	seedPath := flag.String("seed", "", "JSON file of doctors to upsert after migrating")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if *seedPath != "" {
		doctors, err := mongoMigration.ReadSeedFile(*seedPath)
		if err != nil {
			cfg.GracefulShutdown()
			cfg.Log.Fatal("Failed to load seed", "error", err)
		}
		svc := doctorsservice.NewDoctorService(
			doctorsrepository.NewMongoDoctorRepositoryFromDB(cfg, db),
			doctorsvalidator.NewDoctorValidator(),
			cfg.Log,
		)
		if err := mongoMigration.Seed(ctx, doctors, svc, cfg.Log); err != nil {
			cfg.GracefulShutdown()
			cfg.Log.Fatal("Seeding failed", "error", err)
		}
	}

	cfg.Log.Info("Migration completed")
}
