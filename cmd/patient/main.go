package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docbook/internal/portal"
	"docbook/internal/store"
	"docbook/pkg/client"
	"docbook/pkg/config"
)

const ServiceName = "docbook-patient"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(openSession, os.Stdout)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openSession builds a portal over the configured booking API and store.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.FromEnv(ServiceName)
	if err != nil {
		return nil, err
	}

	api := client.NewClient(cfg.BookingAPIURL, cfg.BookingAPITimeout)
	st, err := store.Open(ctx, cfg.RedisURL, cfg.StoreNamespace, cfg.StoreDir)
	if err != nil {
		cfg.Log.Error("Failed to open store", "error", err)
		return nil, err
	}

	loc := cfg.Location
	s := &session{
		portal: portal.New(api.Doctors, api.Bookings, st, portal.Options{
			HorizonDays: cfg.HorizonDays,
			Log:         cfg.Log,
		}),
		now: func() time.Time { return time.Now().In(loc) },
		log: cfg.Log,
	}
	if closer, ok := st.(io.Closer); ok {
		s.close = func() {
			if err := closer.Close(); err != nil {
				cfg.Log.Warn("Failed to close store", "error", err)
			}
		}
	}
	return s, nil
}
