package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func storeContract(t *testing.T, store RefreshTokenStorage) {
	ctx := context.Background()

	if ok, err := store.Validate(ctx, "u1", "a"); err != nil || ok {
		t.Fatalf("empty store validated: ok=%v err=%v", ok, err)
	}

	if err := store.Insert(ctx, "u1", "a"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if ok, _ := store.Validate(ctx, "u1", "a"); !ok {
		t.Fatal("expected a to validate")
	}

	// a second insert replaces the first
	if err := store.Insert(ctx, "u1", "b"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if ok, _ := store.Validate(ctx, "u1", "a"); ok {
		t.Fatal("old identifier must not validate")
	}

	if ok, err := store.Consume(ctx, "u1", "a"); err != nil || ok {
		t.Fatalf("stale consume succeeded: ok=%v err=%v", ok, err)
	}
	if ok, _ := store.Validate(ctx, "u1", "b"); !ok {
		t.Fatal("a failed consume must not delete the live entry")
	}
	if ok, err := store.Consume(ctx, "u1", "b"); err != nil || !ok {
		t.Fatalf("consume failed: ok=%v err=%v", ok, err)
	}
	if ok, _ := store.Validate(ctx, "u1", "b"); ok {
		t.Fatal("consumed identifier must not validate")
	}

	if err := store.Insert(ctx, "u1", "c"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if err := store.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("Invalidate twice: %v", err)
	}
	if ok, _ := store.Validate(ctx, "u1", "c"); ok {
		t.Fatal("invalidated identifier must not validate")
	}
}

func concurrentConsume(t *testing.T, store RefreshTokenStorage) {
	ctx := context.Background()
	if err := store.Insert(ctx, "u2", "shared"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Consume(ctx, "u2", "shared")
			if err != nil {
				t.Errorf("Consume: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected one winner, got %d", wins)
	}
}

func TestMemoryRefreshTokenStorage(t *testing.T) {
	storeContract(t, NewMemoryRefreshTokenStorage(time.Hour))
	concurrentConsume(t, NewMemoryRefreshTokenStorage(time.Hour))
}

func TestMemoryRefreshTokenStorageExpires(t *testing.T) {
	store := NewMemoryRefreshTokenStorage(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Insert(context.Background(), "u1", "a"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if ok, _ := store.Validate(context.Background(), "u1", "a"); ok {
		t.Fatal("expired identifier must not validate")
	}
}

func TestRedisRefreshTokenStorage(t *testing.T) {
	_, client := newTestRedis(t)
	storeContract(t, NewRedisRefreshTokenStorage(client, "iam:test:refresh:", time.Hour, time.Second))
	concurrentConsume(t, NewRedisRefreshTokenStorage(client, "iam:test:refresh:", time.Hour, time.Second))
}

func TestRedisRefreshTokenStorageKeyAndTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisRefreshTokenStorage(client, "iam:refresh:", 30*time.Minute, time.Second)

	if err := store.Insert(context.Background(), "user-1", "tid"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := mr.Get("iam:refresh:user-1")
	if err != nil || got != "tid" {
		t.Fatalf("unexpected stored value %q err=%v", got, err)
	}
	if ttl := mr.TTL("iam:refresh:user-1"); ttl != 30*time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	mr.FastForward(31 * time.Minute)
	if ok, _ := store.Validate(context.Background(), "user-1", "tid"); ok {
		t.Fatal("expired key must not validate")
	}
}

func TestRedisRefreshTokenStorageUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisRefreshTokenStorage(client, "iam:refresh:", time.Hour, 200*time.Millisecond)
	mr.Close()

	if err := store.Insert(context.Background(), "u1", "a"); err == nil {
		t.Fatal("expected an error when redis is down")
	}
	if _, err := store.Consume(context.Background(), "u1", "a"); err == nil {
		t.Fatal("expected an error when redis is down")
	}
}
