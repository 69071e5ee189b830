package likes

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-redis/redis"
)

type fakeCounter struct {
	values map[string]int64
}

func (f *fakeCounter) Incr(key string) *redis.IntCmd {
	f.values[key]++
	return redis.NewIntResult(f.values[key], nil)
}

func (f *fakeCounter) Get(key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(fmt.Sprint(v), nil)
}

func TestRedisCounter(t *testing.T) {
	ctx := context.Background()
	client := &fakeCounter{values: map[string]int64{}}
	counter := NewRedisCounter(client)

	if n, err := counter.Count(ctx, "login"); n != 0 || err != nil {
		t.Fatalf("Count(empty) = %d, %v", n, err)
	}

	for i := 0; i < 2; i++ {
		if err := counter.Record(ctx, Event{Widget: "login"}); err != nil {
			t.Fatal(err)
		}
	}
	if client.values["likes:login"] != 2 {
		t.Errorf("stored values = %v", client.values)
	}
	if n, err := counter.Count(ctx, "login"); n != 2 || err != nil {
		t.Errorf("Count() = %d, %v", n, err)
	}

	counter.WithPrefix("app:likes:")
	_ = counter.Record(ctx, Event{Widget: "login"})
	if client.values["app:likes:login"] != 1 {
		t.Errorf("prefix not applied: %v", client.values)
	}
}
