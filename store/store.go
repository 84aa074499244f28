package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// defaultSaveDelay debounces rapid mutations into one durable write.
const defaultSaveDelay = 2 * time.Second

// Entry is one durable translation memory record.
type Entry struct {
	Source         string `json:"source"` // Normalized source text
	Text           string `json:"text"`
	SourceLanguage string `json:"lang"`
	CachedAt       int64  `json:"cachedAt"`   // Unix milliseconds
	LastUsedAt     int64  `json:"lastUsedAt"` // Unix milliseconds
}

// Config holds the store's durable key names and bounds.
type Config struct {
	// Key is the durable key the store reads and writes.
	Key string
	// LegacyKeys are read-only migration sources, tried in order when Key
	// is empty. They are never written.
	LegacyKeys []string
	// TTL is the maximum entry age; expired entries are treated as absent.
	TTL time.Duration
	// MaxEntries caps the entry count; the lowest-lastUsedAt entries are
	// evicted first.
	MaxEntries int
	// SaveDelay debounces durable writes (default 2s).
	SaveDelay time.Duration
	// Logger receives absorbed storage failures. Defaults to Nop.
	Logger zerolog.Logger
}

// Store is the persistent translation memory. It is loaded lazily at most
// once per process, mutated in memory, and written back through a
// debounced save. Durable-storage failures are absorbed, never surfaced:
// corrupt or unreadable data is treated as empty.
type Store struct {
	storage Storage
	cfg     Config
	log     zerolog.Logger

	mu      sync.Mutex
	entries map[string]Entry
	loaded  bool
	loading chan struct{}

	saveTimer *time.Timer
	closed    bool

	now func() time.Time
}

// New creates a store over the given substrate.
func New(storage Storage, cfg Config) *Store {
	if cfg.SaveDelay <= 0 {
		cfg.SaveDelay = defaultSaveDelay
	}
	return &Store{
		storage: storage,
		cfg:     cfg,
		log:     cfg.Logger,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// SetClock overrides the store's time source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetLimits adjusts TTL and capacity, pruning immediately under the new
// bounds.
func (s *Store) SetLimits(ttl time.Duration, maxEntries int) {
	s.mu.Lock()
	s.cfg.TTL = ttl
	s.cfg.MaxEntries = maxEntries
	s.pruneLocked()
	s.mu.Unlock()
}

// Load reads the durable data once. Concurrent callers share a single
// read; later calls are no-ops. If the current key is empty, each legacy
// key is tried in order and the first that yields entries wins (one-time
// migration; legacy keys are never written back).
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return
	}
	if s.loading != nil {
		ch := s.loading
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
		}
		return
	}
	ch := make(chan struct{})
	s.loading = ch
	s.mu.Unlock()

	entries := s.read(ctx, s.cfg.Key)
	if len(entries) == 0 {
		for _, legacy := range s.cfg.LegacyKeys {
			if entries = s.read(ctx, legacy); len(entries) > 0 {
				s.log.Info().Str("key", legacy).Int("entries", len(entries)).
					Msg("migrated legacy translation memory")
				break
			}
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.pruneLocked()
	s.loaded = true
	s.loading = nil
	s.mu.Unlock()
	close(ch)
}

// read fetches and decodes one durable key, absorbing every failure.
func (s *Store) read(ctx context.Context, key string) map[string]Entry {
	if s.storage == nil || key == "" {
		return map[string]Entry{}
	}
	data, err := s.storage.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(&StorageError{Op: "get", Key: key, Cause: err}).
			Msg("durable read failed, starting empty")
		return map[string]Entry{}
	}
	if len(data) == 0 {
		return map[string]Entry{}
	}
	entries, err := decodeEntries(data)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt translation memory, starting empty")
		return map[string]Entry{}
	}
	return entries
}

// Lookup returns the entry for key if its stored source exactly matches
// normalizedSource. The hash+length key is only a bucket: a mismatch is a
// collision and is rejected. TTL-expired entries are removed as a side
// effect. A hit refreshes lastUsedAt and schedules a debounced save.
func (s *Store) Lookup(ctx context.Context, key, normalizedSource string) (Entry, bool) {
	s.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	if s.expiredLocked(e) {
		delete(s.entries, key)
		s.scheduleSaveLocked()
		return Entry{}, false
	}
	if e.Source != normalizedSource {
		return Entry{}, false
	}

	e.LastUsedAt = s.now().UnixMilli()
	s.entries[key] = e
	s.scheduleSaveLocked()
	return e, true
}

// Remember stores a translation under key, prunes, and schedules a
// debounced save. Timestamps are filled in when zero.
func (s *Store) Remember(ctx context.Context, key string, e Entry) {
	s.Load(ctx)

	now := s.now().UnixMilli()
	if e.CachedAt == 0 {
		e.CachedAt = now
	}
	if e.LastUsedAt == 0 {
		e.LastUsedAt = now
	}

	s.mu.Lock()
	s.entries[key] = e
	s.pruneLocked()
	s.scheduleSaveLocked()
	s.mu.Unlock()
}

// Prune removes TTL-expired entries, then evicts the lowest-lastUsedAt
// entries until the count is within MaxEntries.
func (s *Store) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
}

func (s *Store) pruneLocked() {
	for key, e := range s.entries {
		if s.expiredLocked(e) {
			delete(s.entries, key)
		}
	}

	if s.cfg.MaxEntries <= 0 || len(s.entries) <= s.cfg.MaxEntries {
		return
	}

	type aged struct {
		key  string
		used int64
	}
	byAge := make([]aged, 0, len(s.entries))
	for key, e := range s.entries {
		byAge = append(byAge, aged{key: key, used: e.LastUsedAt})
	}
	sort.Slice(byAge, func(i, j int) bool { return byAge[i].used < byAge[j].used })

	excess := len(s.entries) - s.cfg.MaxEntries
	for _, a := range byAge[:excess] {
		delete(s.entries, a.key)
	}
}

func (s *Store) expiredLocked(e Entry) bool {
	if s.cfg.TTL <= 0 {
		return false
	}
	return s.now().UnixMilli()-e.CachedAt > s.cfg.TTL.Milliseconds()
}

// scheduleSaveLocked debounces multiple rapid mutations into one durable
// write.
func (s *Store) scheduleSaveLocked() {
	if s.closed || s.saveTimer != nil || s.storage == nil {
		return
	}
	s.saveTimer = time.AfterFunc(s.cfg.SaveDelay, func() {
		s.Flush(context.Background())
	})
}

// Flush writes the full current map to durable storage immediately.
// Write failures are absorbed.
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	if s.storage == nil {
		s.mu.Unlock()
		return
	}
	data, err := encodeEntries(s.entries)
	key := s.cfg.Key
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("encoding translation memory failed")
		return
	}
	if err := s.storage.Set(ctx, key, data); err != nil {
		s.log.Warn().Err(&StorageError{Op: "set", Key: key, Cause: err}).
			Msg("durable write failed")
	}
}

// Close cancels the debounced save and forces a final flush. Used on
// shutdown.
func (s *Store) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	loaded := s.loaded
	s.mu.Unlock()

	if loaded {
		s.Flush(ctx)
	}
}

// Len reports the number of in-memory entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of the in-memory map. Used by the exporter.
func (s *Store) Entries() map[string]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// The wire format is a JSON list of [key, entry] pairs, matching the
// durable substrate's contract.

func encodeEntries(entries map[string]Entry) ([]byte, error) {
	pairs := make([][2]any, 0, len(entries))
	for key, e := range entries {
		pairs = append(pairs, [2]any{key, e})
	}
	return json.Marshal(pairs)
}

func decodeEntries(data []byte) (map[string]Entry, error) {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, err
	}
	entries := make(map[string]Entry, len(pairs))
	for _, p := range pairs {
		var key string
		if err := json.Unmarshal(p[0], &key); err != nil {
			return nil, err
		}
		var e Entry
		if err := json.Unmarshal(p[1], &e); err != nil {
			return nil, err
		}
		entries[key] = e
	}
	return entries, nil
}
