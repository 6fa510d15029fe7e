// Package cache provides a generic TTL cache with LRU eviction, used by the
// analytics engine to memoize aggregation results per query signature.
package cache

import (
	"strconv"
	"strings"
	"time"
)

// Cache is the generic cache contract.
type Cache[T any] interface {
	// Get retrieves a value, reporting whether a fresh entry existed.
	Get(key string) (T, bool)

	// Set stores a value under key with the cache's TTL.
	Set(key string, data T)

	// Delete removes a single key.
	Delete(key string)

	// Purge drops every entry regardless of age.
	Purge()

	// Size returns the current number of entries.
	Size() int
}

// Key builds a structural cache key from an operation name and its
// parameters, so queries with different bounds never collide. Time
// parameters are reduced to Unix seconds in UTC.
func Key(op string, params ...any) string {
	var b strings.Builder
	b.WriteString(op)
	for _, p := range params {
		b.WriteByte('|')
		switch v := p.(type) {
		case time.Time:
			b.WriteString(strconv.FormatInt(v.UTC().Unix(), 10))
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(strconv.Itoa(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		default:
			b.WriteString("?")
		}
	}
	return b.String()
}

// Cleaner is implemented by caches that support expired-entry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Sweeper periodically sweeps expired entries from registered caches.
type Sweeper struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewSweeper() *Sweeper {
	return &Sweeper{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep set. Not safe to call after Start.
func (s *Sweeper) Register(c Cleaner) {
	s.caches = append(s.caches, c)
}

// Start begins periodic sweeping in a background goroutine.
func (s *Sweeper) Start(interval time.Duration) {
	go s.run(interval)
}

func (s *Sweeper) run(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range s.caches {
				c.CleanExpired()
			}
		case <-s.stop:
			return
		}
	}
}

// Stop halts sweeping and waits for the goroutine to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}
