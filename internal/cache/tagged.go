// Package cache provides a process-local, tag-addressable result cache for
// the public read paths.
//
// A Store maps stable keys (function name plus arguments) to previously
// computed results. Each entry carries zero or more tags; Invalidate(tags...)
// drops every entry associated with any of the tags, so the next read
// recomputes from the data store. There is no TTL: entries live until they
// are invalidated.
//
// Reads that race with an invalidation are guarded by per-tag generation
// counters: a result computed while one of its tags was invalidated is still
// returned to its caller but is not stored.
//
// Concurrent misses for the same key each run the loader; there is no
// single-flight.
package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Publisher fans local invalidations out to peer instances.
type Publisher interface {
	Publish(ctx context.Context, tags []string) error
}

type entry struct {
	value any
	tags  []string
}

// Store is a tagged in-memory cache. The zero value is not usable; construct
// with NewStore. A Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	byTag   map[string]map[string]struct{}
	gens    map[string]uint64

	pub    Publisher
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher makes Invalidate publish the tags to peers after applying
// them locally.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.pub = p }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		byTag:   make(map[string]map[string]struct{}),
		gens:    make(map[string]uint64),
		logger:  log.With().Str("component", "cache").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Cached wraps fn so its result is stored under key and associated with
// tags. The returned function serves the stored result when present and
// otherwise runs fn. Errors are returned as-is and never cached.
func Cached[T any](s *Store, key string, tags []string, fn func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		if v, ok := s.lookup(key); ok {
			if t, ok := v.(T); ok {
				cacheHits.Inc()
				return t, nil
			}
		}
		cacheMisses.Inc()

		snap := s.generations(tags)
		v, err := fn(ctx)
		if err != nil {
			return v, err
		}
		s.put(key, v, tags, snap)
		return v, nil
	}
}

// Invalidate removes every entry associated with any of tags and, when a
// Publisher is configured, forwards the tags to peers. Invalidating a tag
// with no entries is a no-op apart from bumping its generation, so repeated
// invalidation is equivalent to a single one.
func (s *Store) Invalidate(tags ...string) {
	if len(tags) == 0 {
		return
	}
	s.InvalidateLocal(tags...)
	if s.pub != nil {
		if err := s.pub.Publish(context.Background(), tags); err != nil {
			s.logger.Warn().Err(err).Strs("tags", tags).Msg("publish invalidation failed")
		}
	}
}

// InvalidateLocal applies an invalidation to this Store only.
func (s *Store) InvalidateLocal(tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tag := range tags {
		s.gens[tag]++
		for key := range s.byTag[tag] {
			s.dropLocked(key)
		}
		delete(s.byTag, tag)
		cacheInvalidations.WithLabelValues(tagFamily(tag)).Inc()
	}
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (s *Store) generations(tags []string) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, len(tags))
	for i, t := range tags {
		out[i] = s.gens[t]
	}
	return out
}

// put stores v unless any tag was invalidated since snap was taken.
func (s *Store) put(key string, v any, tags []string, snap []uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range tags {
		if s.gens[t] != snap[i] {
			s.logger.Debug().Str("key", key).Str("tag", t).Msg("skip store: invalidated while loading")
			return
		}
	}
	if _, ok := s.entries[key]; ok {
		s.dropLocked(key)
	}
	own := append([]string(nil), tags...)
	s.entries[key] = entry{value: v, tags: own}
	for _, t := range own {
		keys := s.byTag[t]
		if keys == nil {
			keys = make(map[string]struct{})
			s.byTag[t] = keys
		}
		keys[key] = struct{}{}
	}
}

// dropLocked removes key and its tag back-references. Caller holds s.mu.
func (s *Store) dropLocked(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	delete(s.entries, key)
	for _, t := range e.tags {
		if keys := s.byTag[t]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.byTag, t)
			}
		}
	}
}
