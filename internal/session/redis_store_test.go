package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSaveAndLookupAdminSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "test-token-hash"
	expiresAt := time.Now().Add(24 * time.Hour)

	err := store.SaveAdminSession(ctx, tokenHash, "admin", expiresAt)
	if err != nil {
		t.Fatalf("SaveAdminSession failed: %v", err)
	}

	data, err := store.LookupAdminSession(ctx, tokenHash)
	if err != nil {
		t.Fatalf("LookupAdminSession failed: %v", err)
	}

	if data.Subject != "admin" {
		t.Errorf("expected subject admin, got %s", data.Subject)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "expired-token"

	// Save with very short TTL
	expiresAt := time.Now().Add(1 * time.Millisecond)
	err := store.SaveAdminSession(ctx, tokenHash, "admin", expiresAt)
	if err != nil {
		t.Fatalf("SaveAdminSession failed: %v", err)
	}

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Millisecond)

	_, err = store.LookupAdminSession(ctx, tokenHash)
	if err == nil {
		t.Error("expected error for expired session, got nil")
	}
}

func TestLookupNonExistentSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()

	_, err := store.LookupAdminSession(ctx, "non-existent-token")
	if err == nil {
		t.Error("expected error for non-existent session, got nil")
	}
}

func TestRevokeAdminSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "token-to-revoke"
	expiresAt := time.Now().Add(24 * time.Hour)

	err := store.SaveAdminSession(ctx, tokenHash, "admin", expiresAt)
	if err != nil {
		t.Fatalf("SaveAdminSession failed: %v", err)
	}

	_, err = store.LookupAdminSession(ctx, tokenHash)
	if err != nil {
		t.Fatalf("Lookup before revoke failed: %v", err)
	}

	err = store.RevokeAdminSession(ctx, tokenHash)
	if err != nil {
		t.Fatalf("RevokeAdminSession failed: %v", err)
	}

	_, err = store.LookupAdminSession(ctx, tokenHash)
	if err == nil {
		t.Error("expected error for revoked session, got nil")
	}
}

func TestRevokeNonExistentSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()

	// Revoking a non-existent session should not error
	err := store.RevokeAdminSession(ctx, "non-existent-token")
	if err != nil {
		t.Errorf("RevokeAdminSession for non-existent token failed: %v", err)
	}
}

func TestSessionIsolation(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	expiresAt := time.Now().Add(24 * time.Hour)

	err := store.SaveAdminSession(ctx, "token-1", "admin", expiresAt)
	if err != nil {
		t.Fatalf("SaveAdminSession 1 failed: %v", err)
	}

	err = store.SaveAdminSession(ctx, "token-2", "admin", expiresAt)
	if err != nil {
		t.Fatalf("SaveAdminSession 2 failed: %v", err)
	}

	err = store.RevokeAdminSession(ctx, "token-1")
	if err != nil {
		t.Fatalf("Revoke token-1 failed: %v", err)
	}

	_, err = store.LookupAdminSession(ctx, "token-1")
	if err == nil {
		t.Error("expected error for revoked token-1, got nil")
	}

	_, err = store.LookupAdminSession(ctx, "token-2")
	if err != nil {
		t.Fatalf("Lookup token-2 after revoke failed: %v", err)
	}
}
