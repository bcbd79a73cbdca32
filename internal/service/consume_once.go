package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConsumeOnceStore marca jti de tokens de un solo uso como gastados. Es un
// endurecimiento opcional: sin store los tokens intermedios siguen siendo
// reutilizables dentro de su ventana de expiracion, como en el diseño
// original.
type ConsumeOnceStore interface {
	// Consume devuelve false si el jti ya fue gastado.
	Consume(jti string, ttl time.Duration) (bool, error)
}

type memoryConsumeOnceStore struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryConsumeOnceStore() ConsumeOnceStore {
	return &memoryConsumeOnceStore{
		items: make(map[string]time.Time),
	}
}

func (s *memoryConsumeOnceStore) Consume(jti string, ttl time.Duration) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if exp, ok := s.items[jti]; ok && now.Before(exp) {
		return false, nil
	}
	s.items[jti] = now.Add(ttl)
	return true, nil
}

type redisConsumeOnceStore struct {
	client *redis.Client
	prefix string
}

func NewRedisConsumeOnceStore(client *redis.Client) ConsumeOnceStore {
	if client == nil {
		return nil
	}
	return &redisConsumeOnceStore{
		client: client,
		prefix: "auth:used:",
	}
}

func (s *redisConsumeOnceStore) Consume(jti string, ttl time.Duration) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.SetNX(ctx, s.prefix+jti, "1", ttl).Result()
}
