package identity

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"astroseva/internal/domain"
)

type memoryEntry struct {
	role      domain.Role
	expiresAt time.Time
}

// MemoryRoleCache is a process-local RoleCache.
type MemoryRoleCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRoleCache() *MemoryRoleCache {
	return &MemoryRoleCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryRoleCache) Get(_ context.Context, actorID string) (domain.Role, bool) {
	c.mu.RLock()
	e, ok := c.entries[actorID]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return "", false
	}
	return e.role, true
}

func (c *MemoryRoleCache) Set(_ context.Context, actorID string, role domain.Role, ttl time.Duration) {
	c.mu.Lock()
	c.entries[actorID] = memoryEntry{role: role, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryRoleCache) Delete(_ context.Context, actorID string) {
	c.mu.Lock()
	delete(c.entries, actorID)
	c.mu.Unlock()
}

// RedisRoleCache shares resolved roles between API replicas so an admin role
// change invalidates every instance at once. Redis errors degrade to misses.
type RedisRoleCache struct {
	client *redis.Client
	prefix string
}

func NewRedisRoleCache(client *redis.Client) *RedisRoleCache {
	return &RedisRoleCache{client: client, prefix: "astroseva:role:"}
}

// NewRedisClient pings the server and returns nil when it cannot be reached,
// in which case callers fall back to MemoryRoleCache.
func NewRedisClient(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping %s failed: %v", addr, err)
		_ = client.Close()
		return nil
	}
	return client
}

func (c *RedisRoleCache) key(actorID string) string {
	return c.prefix + actorID
}

func (c *RedisRoleCache) Get(ctx context.Context, actorID string) (domain.Role, bool) {
	v, err := c.client.Get(ctx, c.key(actorID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("redis: get role actor_id=%s: %v", actorID, err)
		}
		return "", false
	}
	role, ok := domain.ParseRole(v)
	return role, ok
}

func (c *RedisRoleCache) Set(ctx context.Context, actorID string, role domain.Role, ttl time.Duration) {
	if err := c.client.Set(ctx, c.key(actorID), string(role), ttl).Err(); err != nil {
		log.Printf("redis: set role actor_id=%s: %v", actorID, err)
	}
}

func (c *RedisRoleCache) Delete(ctx context.Context, actorID string) {
	if err := c.client.Del(ctx, c.key(actorID)).Err(); err != nil {
		log.Printf("redis: del role actor_id=%s: %v", actorID, err)
	}
}
