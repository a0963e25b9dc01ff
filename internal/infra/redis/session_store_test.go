package redis

import (
	"testing"
	"time"

	"geoplay-service/internal/app"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	_ = store.GetOrCreate("s-1", func(id string) *app.Session {
		return app.NewSession(id, app.SessionOptions{})
	})
	if !mr.Exists("geoplay:session:s-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("geoplay:session:s-1"); ttl != time.Minute {
		t.Fatalf("expected liveness ttl of a minute, got %v", ttl)
	}

	store.Delete("s-1")
	if mr.Exists("geoplay:session:s-1") {
		t.Fatalf("expected redis key to be removed")
	}
}
