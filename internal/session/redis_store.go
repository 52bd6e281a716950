// Package session provides storage for admin session tokens.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionData holds the data stored for each admin session.
type SessionData struct {
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisStore implements admin session storage using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed session store.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: "admin:",
	}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "admin:",
	}
}

// key generates the Redis key for a session token hash.
func (s *RedisStore) key(tokenHash string) string {
	return s.prefix + tokenHash
}

// SaveAdminSession stores an admin session with expiration.
func (s *RedisStore) SaveAdminSession(ctx context.Context, tokenHash, subject string, expiresAt time.Time) error {
	data := SessionData{
		Subject:   subject,
		CreatedAt: time.Now(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	key := s.key(tokenHash)
	if err := s.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("save admin session: %w", err)
	}

	return nil
}

// LookupAdminSession retrieves a session by token hash.
func (s *RedisStore) LookupAdminSession(ctx context.Context, tokenHash string) (SessionData, error) {
	key := s.key(tokenHash)
	jsonData, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return SessionData{}, fmt.Errorf("session not found or expired")
	}
	if err != nil {
		return SessionData{}, fmt.Errorf("lookup admin session: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return SessionData{}, fmt.Errorf("unmarshal session data: %w", err)
	}

	return data, nil
}

// RevokeAdminSession deletes an admin session.
func (s *RedisStore) RevokeAdminSession(ctx context.Context, tokenHash string) error {
	key := s.key(tokenHash)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("revoke admin session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
