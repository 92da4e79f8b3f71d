package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKey(t *testing.T) {
	if got := key("budi-santoso"); got != "invitation:guest:budi-santoso" {
		t.Fatalf("key = %q", got)
	}
}

func TestOpenRejectsBadURL(t *testing.T) {
	if _, err := Open(context.Background(), "http://not-redis"); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}

func TestUnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewGuestCache(client, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, ok, err := c.GetName(ctx, "budi-santoso"); err == nil || ok {
		t.Fatalf("GetName ok=%v err=%v, want error", ok, err)
	}
	if err := c.SetName(ctx, "budi-santoso", "Budi Santoso"); err == nil {
		t.Fatal("expected SetName error")
	}
}
