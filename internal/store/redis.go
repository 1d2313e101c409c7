package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	myBookingsKey      = "my_bookings"
	myBookingsSeqKey   = "my_bookings_seq"
	bookingsChangedKey = "bookings_changed"
	eventsChannel      = "events"

	bookingsChangedEvent = "bookings_changed"
)

// RedisStore keeps booking ids in a sorted set scored by insertion sequence,
// the changed flag in a string key, and broadcasts changes on a pub/sub
// channel. All keys are prefixed with the namespace.
type RedisStore struct {
	redis     *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{redis: client, namespace: namespace}
}

func (s *RedisStore) key(name string) string {
	return s.namespace + ":" + name
}

func (s *RedisStore) AddBookingID(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.New("store: booking id required")
	}

	seq, err := s.redis.Incr(ctx, s.key(myBookingsSeqKey)).Result()
	if err != nil {
		return false, fmt.Errorf("store: next sequence: %w", err)
	}

	added, err := s.redis.ZAddNX(ctx, s.key(myBookingsKey), redis.Z{
		Score:  float64(seq),
		Member: id,
	}).Result()
	if err != nil {
		return false, fmt.Errorf("store: add booking id: %w", err)
	}
	return added == 1, nil
}

func (s *RedisStore) BookingIDs(ctx context.Context) ([]string, error) {
	ids, err := s.redis.ZRange(ctx, s.key(myBookingsKey), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("store: list booking ids: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) ClearBookingIDs(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key(myBookingsKey), s.key(myBookingsSeqKey)).Err(); err != nil {
		return fmt.Errorf("store: clear booking ids: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkBookingsChanged(ctx context.Context) error {
	if err := s.redis.Set(ctx, s.key(bookingsChangedKey), "true", 0).Err(); err != nil {
		return fmt.Errorf("store: mark bookings changed: %w", err)
	}
	if err := s.redis.Publish(ctx, s.key(eventsChannel), bookingsChangedEvent).Err(); err != nil {
		return fmt.Errorf("store: publish bookings changed: %w", err)
	}
	return nil
}

func (s *RedisStore) BookingsChanged(ctx context.Context) (bool, error) {
	val, err := s.redis.Get(ctx, s.key(bookingsChangedKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("store: read bookings changed: %w", err)
	}
	return val == "true", nil
}

func (s *RedisStore) ClearBookingsChanged(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key(bookingsChangedKey)).Err(); err != nil {
		return fmt.Errorf("store: clear bookings changed: %w", err)
	}
	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	sub := s.redis.Subscribe(ctx, s.key(eventsChannel))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("store: subscribe: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if msg.Payload != bookingsChangedEvent {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.redis.Close()
}
