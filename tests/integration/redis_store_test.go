package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riftwatch/riot-insights/pkg/cache"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func testNamespaces() []cache.Namespace {
	return []cache.Namespace{
		{Name: "short", TTL: 1 * time.Second, MaxEntries: 100},
		{Name: "long", TTL: time.Hour, MaxEntries: 100},
	}
}

func TestRedisStore_SetGet(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	store := cache.NewRedisStore(redisClient, testNamespaces())
	ctx := context.Background()

	store.Set(ctx, "long", "k1", []byte("v1"), 0)

	got, ok := store.Get(ctx, "long", "k1")
	if !ok {
		t.Fatal("Get returned miss for a fresh entry")
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want %q", got, "v1")
	}

	if _, ok := store.Get(ctx, "long", "absent"); ok {
		t.Error("Get returned hit for a key that was never set")
	}
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	store := cache.NewRedisStore(redisClient, testNamespaces())
	ctx := context.Background()

	store.Set(ctx, "short", "k", []byte("v"), 0)

	if _, ok := store.Get(ctx, "short", "k"); !ok {
		t.Fatal("entry missing before TTL elapsed")
	}

	time.Sleep(1500 * time.Millisecond)

	if _, ok := store.Get(ctx, "short", "k"); ok {
		t.Error("Get returned hit after Redis key expiry")
	}
}

func TestRedisStore_NamespaceClear(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	store := cache.NewRedisStore(redisClient, testNamespaces())
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		store.Set(ctx, "long", fmt.Sprintf("k%d", i), []byte("v"), 0)
	}
	store.Set(ctx, "short", "survivor", []byte("v"), time.Hour)

	store.Clear(ctx, "long")

	for i := 0; i < 150; i++ {
		if _, ok := store.Get(ctx, "long", fmt.Sprintf("k%d", i)); ok {
			t.Fatalf("entry k%d survived Clear", i)
		}
	}
	if _, ok := store.Get(ctx, "short", "survivor"); !ok {
		t.Error("Clear leaked into another namespace")
	}
}

func TestRedisStore_ExplicitTTL(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	store := cache.NewRedisStore(redisClient, testNamespaces())
	ctx := context.Background()

	// Explicit TTL beats the hour-long namespace default.
	store.Set(ctx, "long", "k", []byte("v"), 1*time.Second)
	time.Sleep(1500 * time.Millisecond)

	if _, ok := store.Get(ctx, "long", "k"); ok {
		t.Error("entry outlived its explicit TTL")
	}
}
