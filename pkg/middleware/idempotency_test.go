package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"docbook/pkg/logger"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisIdempotencyStore(t *testing.T, ttl time.Duration) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisIdempotencyStore(client, "test:idempotency", ttl, logger.Discard()), mr
}

func idempotencyBackends(t *testing.T) map[string]IdempotencyStore {
	memory := NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(memory.Stop)
	redisStore, _ := newRedisIdempotencyStore(t, time.Hour)
	return map[string]IdempotencyStore{
		"memory": memory,
		"redis":  redisStore,
	}
}

func bookingHandler(calls *int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"b1"}`))
	})
}

func post(h http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_ReplaysSuccessfulWrite(t *testing.T) {
	for name, store := range idempotencyBackends(t) {
		t.Run(name, func(t *testing.T) {
			var calls int32
			h := Idempotency(store, "Idempotency-Key", logger.Discard())(bookingHandler(&calls))

			for i := 0; i < 2; i++ {
				rec := post(h, "k1", `{"doctorId":"d1"}`)
				if rec.Code != http.StatusCreated || rec.Body.String() != `{"id":"b1"}` {
					t.Fatalf("attempt %d: got %d %q", i, rec.Code, rec.Body.String())
				}
				if i == 1 {
					if rec.Header().Get(ReplayedHeader) != "true" {
						t.Error("second response should be marked as replayed")
					}
					if rec.Header().Get("Content-Type") != "application/json" {
						t.Errorf("replayed content type = %q", rec.Header().Get("Content-Type"))
					}
				}
			}

			if calls != 1 {
				t.Errorf("handler called %d times, want 1", calls)
			}
		})
	}
}

func TestIdempotency_RejectsKeyReuseWithDifferentBody(t *testing.T) {
	for name, store := range idempotencyBackends(t) {
		t.Run(name, func(t *testing.T) {
			var calls int32
			h := Idempotency(store, "", nil)(bookingHandler(&calls))

			if rec := post(h, "k1", `{"start":9}`); rec.Code != http.StatusCreated {
				t.Fatalf("first status = %d", rec.Code)
			}
			rec := post(h, "k1", `{"start":10}`)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("reuse status = %d, want 422", rec.Code)
			}
			if rec.Body.String() != keyReusedMessage {
				t.Errorf("reuse body = %q", rec.Body.String())
			}
			if calls != 1 {
				t.Errorf("handler called %d times, want 1", calls)
			}
		})
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	for name, store := range idempotencyBackends(t) {
		t.Run(name, func(t *testing.T) {
			var calls int32
			h := Idempotency(store, "", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusConflict)
			}))

			for i := 0; i < 2; i++ {
				post(h, "k1", "{}")
			}

			if calls != 2 {
				t.Errorf("handler called %d times, want 2", calls)
			}
		})
	}
}

func TestIdempotency_KeysAreScopedByPath(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, "", nil)(bookingHandler(&calls))

	for _, path := range []string{"/booking/a", "/booking/b"} {
		req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"status":"cancel"}`))
		req.Header.Set("Idempotency-Key", "same")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
}

func TestIdempotency_HandlerStillReadsBody(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var got string
	h := Idempotency(store, "", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.WriteHeader(http.StatusCreated)
	}))

	post(h, "k1", `{"name":"Ann"}`)
	if got != `{"name":"Ann"}` {
		t.Errorf("handler saw body %q", got)
	}
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	defer store.Stop()
	ctx := context.Background()

	store.Set(ctx, "k", &CachedResponse{StatusCode: http.StatusCreated})
	time.Sleep(5 * time.Millisecond)

	if _, ok := store.Get(ctx, "k"); ok {
		t.Error("expired entry should be a miss")
	}
}

func TestRedisIdempotencyStore_TTLAndFirstWriterWins(t *testing.T) {
	store, mr := newRedisIdempotencyStore(t, time.Minute)
	ctx := context.Background()

	store.Set(ctx, "POST /booking k", &CachedResponse{StatusCode: http.StatusCreated, Body: []byte("first")})
	store.Set(ctx, "POST /booking k", &CachedResponse{StatusCode: http.StatusCreated, Body: []byte("second")})

	cached, ok := store.Get(ctx, "POST /booking k")
	if !ok || string(cached.Body) != "first" {
		t.Fatalf("cached = %+v, %v; want the first response", cached, ok)
	}
	if ttl := mr.TTL("test:idempotency:POST /booking k"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := store.Get(ctx, "POST /booking k"); ok {
		t.Error("entry should expire with its ttl")
	}
}

func TestRedisIdempotencyStore_UnavailableIsMiss(t *testing.T) {
	store, mr := newRedisIdempotencyStore(t, time.Minute)
	mr.Close()

	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Error("lookup against a closed server should miss")
	}
	store.Set(context.Background(), "k", &CachedResponse{StatusCode: http.StatusCreated})
}
