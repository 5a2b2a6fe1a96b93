package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNoopAllows(t *testing.T) {
	for i := 0; i < 100; i++ {
		ok, err := Noop{}.Allow(context.Background(), "k")
		if err != nil || !ok {
			t.Fatalf("noop denied attempt %d", i)
		}
	}
}

func TestLimiterReportsRedisErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := New(client, 5, time.Minute)
	if _, err := l.Allow(context.Background(), "login:a@example.com"); err == nil {
		t.Fatalf("expected an error from an unreachable redis")
	}
}
