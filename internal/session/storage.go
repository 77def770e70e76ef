package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FileTokenStorage keeps the raw token in a single file readable only by the
// current user.
type FileTokenStorage struct {
	path string
}

func NewFileTokenStorage(path string) *FileTokenStorage {
	return &FileTokenStorage{path: path}
}

func (f *FileTokenStorage) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *FileTokenStorage) Save(ctx context.Context, token string) error {
	if token == "" {
		return f.Delete(ctx)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to protect token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

func (f *FileTokenStorage) Delete(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// MemoryTokenStorage is a process-lifetime slot
type MemoryTokenStorage struct {
	mu    sync.Mutex
	token string
}

func NewMemoryTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{}
}

func (m *MemoryTokenStorage) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokenStorage) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStorage) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// RedisTokenStorage keeps the token under one key. JWTs are stored with a TTL
// matching their exp claim so the slot empties itself.
type RedisTokenStorage struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewRedisTokenStorage(client *redis.Client, key string) *RedisTokenStorage {
	return &RedisTokenStorage{client: client, key: key, now: time.Now}
}

func (r *RedisTokenStorage) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token key: %w", err)
	}
	return token, nil
}

func (r *RedisTokenStorage) Save(ctx context.Context, token string) error {
	if token == "" {
		return r.Delete(ctx)
	}

	var ttl time.Duration
	if exp, ok := TokenExpiry(token); ok {
		ttl = exp.Sub(r.now())
		if ttl <= 0 {
			return r.Delete(ctx)
		}
	}

	if err := r.client.Set(ctx, r.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write token key: %w", err)
	}
	return nil
}

func (r *RedisTokenStorage) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete token key: %w", err)
	}
	return nil
}
