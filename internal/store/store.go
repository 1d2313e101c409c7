// Package store keeps the patient's own booking ids and the "bookings
// changed" flag between CLI runs.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// Store is the client-persisted state the views share.
type Store interface {
	// AddBookingID inserts id if absent and reports whether it was added.
	AddBookingID(ctx context.Context, id string) (bool, error)
	// BookingIDs returns ids in the order they were first added.
	BookingIDs(ctx context.Context) ([]string, error)
	ClearBookingIDs(ctx context.Context) error

	MarkBookingsChanged(ctx context.Context) error
	BookingsChanged(ctx context.Context) (bool, error)
	ClearBookingsChanged(ctx context.Context) error

	// Subscribe delivers one value per change notification. The channel is
	// closed once ctx is done.
	Subscribe(ctx context.Context) (<-chan struct{}, error)
}

// DefaultDir is where the file store lives when no directory is configured.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("store: locate config directory: %w", err)
	}
	return filepath.Join(base, "docbook"), nil
}

// Open returns a Redis-backed store when redisURL is set, otherwise a file
// store in dir, or in DefaultDir when dir is empty.
func Open(ctx context.Context, redisURL, namespace, dir string) (Store, error) {
	if redisURL == "" {
		if dir == "" {
			var err error
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		return NewFileStore(dir, namespace)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: ping redis: %w", err)
	}
	return NewRedisStore(client, namespace), nil
}
