package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisStore struct {
	values map[string]string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (f *fakeRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Get(ctx context.Context, key string) (string, error) {
	value, exists := f.values[key]
	if !exists {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeRedisStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockAcquireIsExclusive(t *testing.T) {
	t.Parallel()
	store := newFakeRedisStore()

	first, err := NewRedisLock(store, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, err := NewRedisLock(store, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ok, err := first.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second holder should not acquire a held lock")
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	t.Parallel()
	store := newFakeRedisStore()

	holder, err := NewRedisLock(store, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	bystander, err := NewRedisLock(store, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	if ok, err := holder.Acquire(context.Background()); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	if err := bystander.Release(context.Background()); err != nil {
		t.Fatalf("bystander release: %v", err)
	}
	if _, exists := store.values["lock:test"]; !exists {
		t.Fatal("non-owner release dropped the lock")
	}

	if err := holder.Release(context.Background()); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if _, exists := store.values["lock:test"]; exists {
		t.Fatal("owner release left the lock behind")
	}
}

func TestRedisLockReleaseAfterExpiryIsNoop(t *testing.T) {
	t.Parallel()
	store := newFakeRedisStore()

	holder, err := NewRedisLock(store, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	if ok, err := holder.Acquire(context.Background()); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	delete(store.values, "lock:test")

	if err := holder.Release(context.Background()); err != nil {
		t.Fatalf("release after expiry: %v", err)
	}
}
