// Package cache stores corroboration results in Redis. Identical concurrent
// requests in one process share a single computation; across processes the
// first writer of a key wins.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"truthlens/internal/config"
	"truthlens/internal/logger"
	"truthlens/internal/metrics"
)

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

const (
	keyPrefix         = "truthlens:corroborate:"
	connectionTimeout = 5 * time.Second
)

// Lookup results reported to metrics.
const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg config.CacheConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Store is a Redis-backed result cache.
type Store struct {
	client  *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewStore wraps client. Entries expire after ttl.
func NewStore(client *redis.Client, ttl time.Duration, log logger.Logger, m *metrics.Metrics) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{client: client, ttl: ttl, log: log, metrics: m}
}

type computed struct {
	value []byte
}

// Do returns the value stored under key, or runs compute and, when compute
// asks for it, stores the value with SETNX so a concurrent writer in another
// process is never overwritten. Redis failures fall back to compute.
//
// Concurrent callers share one computation, which runs without the
// cancellation of whichever caller started it. A caller whose ctx ends first
// gets ctx.Err() while the others keep waiting.
func (s *Store) Do(ctx context.Context, key string, compute func(context.Context) ([]byte, bool, error)) ([]byte, error) {
	rkey := redisKey(key)
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(rkey, func() (v any, err error) {
		// DoChan runs this on its own goroutine, out of reach of the caller's recover.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("cache compute panicked: %v", r)
			}
		}()
		ctx := shared
		cached, err := s.client.Get(ctx, rkey).Bytes()
		switch {
		case err == nil:
			s.metrics.ObserveCacheLookup(resultHit)
			return computed{value: cached}, nil
		case errors.Is(err, redis.Nil):
			s.metrics.ObserveCacheLookup(resultMiss)
		default:
			s.metrics.ObserveCacheLookup(resultError)
			s.log.Warn("cache read failed", logger.String("key", rkey), logger.Error(err))
		}

		value, store, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if !store {
			return computed{value: value}, nil
		}

		inserted, err := s.client.SetNX(ctx, rkey, value, s.ttl).Result()
		if err != nil {
			s.log.Warn("cache write failed", logger.String("key", rkey), logger.Error(err))
			return computed{value: value}, nil
		}
		if !inserted {
			// Another process got there first; serve its value for consistency.
			if existing, err := s.client.Get(ctx, rkey).Bytes(); err == nil {
				return computed{value: existing}, nil
			}
		}
		return computed{value: value}, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(computed).value, nil
	}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return keyPrefix + hex.EncodeToString(sum[:])
}
