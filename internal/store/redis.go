package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Prefix is prepended to every key
	Prefix string
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "netdocs:",
	}
}

// RedisStore keeps page bodies at <prefix>page:<path>. Entries are stored per page
// in the <prefix>entries hash, with page paths listed in first-write order at
// <prefix>entries:order.
type RedisStore struct {
	client *redis.Client
	prefix string

	mu      sync.Mutex
	ordered map[string]bool
}

// NewRedisStore connects to Redis and checks the connection
func NewRedisStore(ctx context.Context, config RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}

	return NewRedisStoreWithClient(client, config.Prefix), nil
}

// NewRedisStoreWithClient creates a store with an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  prefix,
		ordered: make(map[string]bool),
	}
}

func (r *RedisStore) pageKey(path string) string {
	return r.prefix + "page:" + path
}

func (r *RedisStore) entriesKey() string {
	return r.prefix + "entries"
}

func (r *RedisStore) orderKey() string {
	return r.prefix + "entries:order"
}

// Put stores the page body and the page's own entries
func (r *RedisStore) Put(ctx context.Context, page Page) error {
	entries := page.Entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries of %s: %w", page.Path, err)
	}

	r.mu.Lock()
	first := !r.ordered[page.Path]
	r.ordered[page.Path] = true
	r.mu.Unlock()

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.pageKey(page.Path), page.Output, 0)
		pipe.HSet(ctx, r.entriesKey(), page.Path, data)
		if first {
			pipe.RPush(ctx, r.orderKey(), page.Path)
		}
		return nil
	})
	if err != nil {
		r.mu.Lock()
		delete(r.ordered, page.Path)
		r.mu.Unlock()
		return fmt.Errorf("failed to store page %s: %w", page.Path, err)
	}
	return nil
}

// Get returns the page stored at path
func (r *RedisStore) Get(ctx context.Context, path string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.pageKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", path, err)
	}
	return value, nil
}

// Entries returns the stored entries grouped by page in first-write order
func (r *RedisStore) Entries(ctx context.Context) ([]Entry, error) {
	order, err := r.client.LRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load entry order: %w", err)
	}

	// a path is listed again when another store instance rewrote it
	paths := make([]string, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, path := range order {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return []Entry{}, nil
	}

	values, err := r.client.HMGet(ctx, r.entriesKey(), paths...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	all := []Entry{}
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			continue
		}
		var entries []Entry
		if err := json.Unmarshal([]byte(data), &entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries of %s: %w", paths[i], err)
		}
		all = append(all, entries...)
	}
	return all, nil
}

// Close closes the client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
