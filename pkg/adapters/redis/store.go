package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aretw0/trestle/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "trestle:config:"

// Store implements ports.ConfigStore on Redis.
// Each profile is a JSON value under <prefix><profile>; a sorted set <prefix>index scored by
// expiry time (or +inf without TTL) lists the profiles.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix (default "trestle:config:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires profiles after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient creates a store over an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(profile string) string { return s.prefix + profile }

func (s *Store) indexKey() string { return s.prefix + "index" }

// Save replaces the values of profile.
func (s *Store) Save(ctx context.Context, profile string, values map[string]any) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", profile, err)
	}

	score := math.Inf(1)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(profile), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: profile})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile, err)
	}
	return nil
}

// Load retrieves the values of profile.
func (s *Store) Load(ctx context.Context, profile string) (map[string]any, error) {
	data, err := s.client.Get(ctx, s.key(profile)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", profile, err)
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", profile, err)
	}
	return values, nil
}

// Delete removes profile and its index entry.
func (s *Store) Delete(ctx context.Context, profile string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key(profile))
		pipe.ZRem(ctx, s.indexKey(), profile)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", profile, err)
	}
	return nil
}

// List returns the profiles that have not expired. Expired index entries are pruned lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune profile index: %w", err)
	}

	profiles, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
