// Package rediscache wraps a store.Store with a Redis read-through cache for
// point reads. Writes go to the underlying store and then evict the key.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/salutdigital/portal/internal/platform/store"
)

const keyPrefix = "doc:"

type Store struct {
	inner  store.Store
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
	cached map[string]bool
}

// New caches GetByID for the listed collections only. Queries are never
// cached.
func New(inner store.Store, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger, collections ...string) *Store {
	cached := make(map[string]bool, len(collections))
	for _, c := range collections {
		cached[c] = true
	}
	return &Store{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "rediscache").Logger(),
		cached: cached,
	}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func key(collection, id string) string {
	return keyPrefix + collection + ":" + id
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) (string, error) {
	return s.inner.Insert(ctx, collection, doc)
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (store.Record, error) {
	if !s.cached[collection] {
		return s.inner.GetByID(ctx, collection, id)
	}

	k := key(collection, id)
	raw, err := s.rdb.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var doc store.Document
		if jerr := json.Unmarshal(raw, &doc); jerr == nil {
			return store.Record{ID: id, Data: doc}, nil
		}
		s.logger.Warn().Str("key", k).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		s.logger.Warn().Err(err).Str("key", k).Msg("cache read failed")
	}

	rec, err := s.inner.GetByID(ctx, collection, id)
	if err != nil {
		return rec, err
	}
	if data, jerr := json.Marshal(rec.Data); jerr == nil {
		if werr := s.rdb.Set(ctx, k, data, s.ttl).Err(); werr != nil {
			s.logger.Warn().Err(werr).Str("key", k).Msg("cache write failed")
		}
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, patch store.Patch, mode store.WriteMode) error {
	if err := s.inner.Update(ctx, collection, id, patch, mode); err != nil {
		return err
	}
	s.evict(ctx, collection, id)
	return nil
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	if err := s.inner.Remove(ctx, collection, id); err != nil {
		return err
	}
	s.evict(ctx, collection, id)
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Record, error) {
	return s.inner.Query(ctx, collection, filters...)
}

func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.inner.(store.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) evict(ctx context.Context, collection, id string) {
	if !s.cached[collection] {
		return
	}
	k := key(collection, id)
	if err := s.rdb.Del(ctx, k).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", k).Msg("cache eviction failed")
	}
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Pinger = (*Store)(nil)
)
