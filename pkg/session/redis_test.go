package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis"
)

type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failSet error
	closed  bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failSet != nil {
		return redis.NewStatusResult("", f.failSet)
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			n++
		}
		delete(f.values, k)
		delete(f.ttls, k)
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Expire(key string, expiration time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisStore(client)

	if err := store.Save(ctx, "s1", []byte("state"), time.Now().Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, ok := client.values["sputnik:session:s1"]; !ok {
		t.Fatalf("expected prefixed key, got %v", client.values)
	}
	if ttl := client.ttls["sputnik:session:s1"]; ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v", ttl)
	}

	got, err := store.Load(ctx, "s1")
	if err != nil || string(got) != "state" {
		t.Errorf("Load() = %q, %v", got, err)
	}

	if got, err := store.Load(ctx, "missing"); got != nil || err != nil {
		t.Errorf("Load(missing) = %q, %v; want nil, nil", got, err)
	}

	if err := store.Touch(ctx, "missing", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("Touch(missing) = %v", err)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if len(client.values) != 0 {
		t.Errorf("values after Delete = %v", client.values)
	}

	if err := store.Close(); err != nil || !client.closed {
		t.Errorf("Close() = %v, closed = %v", err, client.closed)
	}
}

func TestRedisStoreSaveExpiredDeletes(t *testing.T) {
	client := newFakeRedis()
	client.values["app:s1"] = "old"
	store := NewRedisStore(client, WithRedisPrefix("app:"))

	if err := store.Save(context.Background(), "s1", []byte("new"), time.Now().Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	if _, ok := client.values["app:s1"]; ok {
		t.Error("saving an already expired snapshot should delete the key")
	}
}

func TestRedisStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	client := newFakeRedis()
	client.failSet = boom
	store := NewRedisStore(client)

	err := store.SaveAll(context.Background(), map[string]Data{
		"a": {Bytes: []byte("a"), ExpiresAt: time.Now().Add(time.Minute)},
	})
	if !errors.Is(err, boom) {
		t.Errorf("SaveAll() = %v, want %v", err, boom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Load(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load with cancelled ctx = %v", err)
	}
}
