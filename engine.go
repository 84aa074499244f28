package lingo

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/daisied/lingo/store"
)

// Durable key names. The current key is versioned; legacy keys are
// read-only migration sources and are never written.
const durableStoreKey = "lingo:translations:v2"

var legacyStoreKeys = []string{"lingo:translations:v1", "translator:cache"}

// TrackedMessage remembers a message's pristine and translated forms
// independently of the host's current UI content, so the original can be
// recovered even after the displayed state drifted.
type TrackedMessage struct {
	ChannelID  string
	Original   string
	Translated string
}

// Engine is the translation request pipeline: request deduplication,
// bounded-concurrency scheduling, a two-tier cache (volatile + durable),
// backend selection with fallback, and batched, activity-aware
// application of results to the consumer's visible state.
//
// All mutable state lives on the instance; create isolated engines freely
// (tests run many side by side) and release one with Close.
type Engine struct {
	mu       sync.Mutex
	settings Settings
	fp       string
	res      *resolver
	tracked  map[string]TrackedMessage
	closed   bool

	factory BackendFactory
	storage store.Storage
	applier Applier
	log     zerolog.Logger

	cache   *stateCache
	sched   *Scheduler
	mem     *store.Store
	batcher *Batcher
	tracker *Tracker

	ctx       context.Context
	cancel    context.CancelFunc
	unsubIdle func()
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithBackendFactory sets the factory building backend adapters from each
// settings snapshot.
func WithBackendFactory(f BackendFactory) Option {
	return func(e *Engine) {
		e.factory = f
	}
}

// WithBackends pins fixed primary and secondary adapters regardless of
// settings. Mostly useful in tests; the primary is still withheld from
// the resolver while no credential is configured.
func WithBackends(primary, secondary Backend) Option {
	return func(e *Engine) {
		e.factory = func(Settings) (Backend, Backend) {
			return primary, secondary
		}
	}
}

// WithStorage sets the durable substrate backing the persistent
// translation memory.
func WithStorage(storage store.Storage) Option {
	return func(e *Engine) {
		e.storage = storage
	}
}

// WithApplier sets the host's write-back mechanism for visible-content
// mutations.
func WithApplier(a Applier) Option {
	return func(e *Engine) {
		e.applier = a
	}
}

// WithLogger sets the engine's logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine for the given settings snapshot.
func New(settings Settings, opts ...Option) *Engine {
	s := settings.withDefaults()
	e := &Engine{
		settings: s,
		tracked:  make(map[string]TrackedMessage),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.cache = newStateCache(defaultVolatileMax)
	e.sched = NewScheduler(s.MaxConcurrentRequests)
	e.tracker = NewTracker()
	e.batcher = NewBatcher(e.applier, e.tracker.ScrollActive, e.log)
	e.unsubIdle = e.tracker.OnScrollIdle(e.batcher.Kick)

	e.mu.Lock()
	e.configureLocked(s)
	e.mu.Unlock()
	return e
}

// configureLocked recomputes everything derived from settings: the
// fingerprint, the resolver with its backends, and the durable store's
// bounds.
func (e *Engine) configureLocked(s Settings) {
	e.fp = Fingerprint(s)

	var primary, secondary Backend
	if e.factory != nil {
		primary, secondary = e.factory(s)
	}
	if !s.PrimaryConfigured() {
		primary = nil
	}
	name := primaryDisplayName(s.PrimaryProvider)
	if primary != nil {
		name = primary.Name()
	}
	e.res = &resolver{
		mode:        s.Mode,
		primary:     primary,
		secondary:   secondary,
		primaryName: name,
		log:         e.log,
	}

	ttl := time.Duration(s.TTLDays) * 24 * time.Hour
	if e.mem == nil && e.storage != nil {
		e.mem = store.New(e.storage, store.Config{
			Key:        durableStoreKey,
			LegacyKeys: legacyStoreKeys,
			TTL:        ttl,
			MaxEntries: s.MaxEntries,
			Logger:     e.log,
		})
	} else if e.mem != nil {
		e.mem.SetLimits(ttl, s.MaxEntries)
	}
}

func primaryDisplayName(provider string) string {
	switch provider {
	case PrimaryOpenAI:
		return "OpenAI"
	default:
		return "Microsoft"
	}
}

// Fingerprint returns the current config fingerprint.
func (e *Engine) Fingerprint() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fp
}

// Tracker exposes the visibility/scroll activity tracker so the host can
// feed it signals.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// Memory exposes the durable translation memory, or nil when no storage
// is configured.
func (e *Engine) Memory() *store.Store {
	return e.mem
}

// Translate resolves the translation state for one message: volatile
// cache, then in-flight dedup, then durable memory, then an
// admission-controlled backend call. Concurrent calls for the same
// (message, text, fingerprint) share a single backend call and observe an
// equal result. A non-translatable message resolves to StateIdle without
// touching any cache.
func (e *Engine) Translate(ctx context.Context, msg Message) (State, error) {
	e.mu.Lock()
	s := e.settings
	fp := e.fp
	res := e.res
	mem := e.mem
	closed := e.closed
	e.mu.Unlock()

	if closed {
		return Errored("engine closed"), nil
	}

	text := PlainText(msg.Content)
	if !Translatable(text) {
		return State{Kind: StateIdle}, nil
	}
	if s.OnlyTranslateVisible && !e.tracker.Visible(msg.ID) {
		return State{Kind: StateIdle}, nil
	}

	key := VolatileKey(msg.ID, msg.Content, fp)
	return e.cache.request(ctx, key, func() State {
		return e.produce(s, res, mem, text, fp)
	})
}

// produce runs outside the engine lock, on the engine's lifetime context:
// a caller abandoning its subscription never cancels the shared work.
func (e *Engine) produce(s Settings, res *resolver, mem *store.Store, text, fp string) State {
	ctx := e.ctx
	persist := mem != nil && s.PersistentCacheEnabled

	if persist {
		if entry, ok := mem.Lookup(ctx, DurableKey(text, fp), Normalize(text)); ok {
			return Ready(entry.SourceLanguage, entry.Text)
		}
	}

	if err := e.sched.Acquire(ctx); err != nil {
		return Errored("translation aborted")
	}
	defer e.sched.Release()

	result, err := res.fetch(ctx, text, s.TargetLanguage)
	if err != nil {
		return Errored(err.Error())
	}

	if persist {
		mem.Remember(ctx, DurableKey(text, fp), store.Entry{
			Source:         Normalize(text),
			Text:           result.Text,
			SourceLanguage: result.SourceLanguage,
		})
	}
	return Ready(result.SourceLanguage, result.Text)
}

// TranslateAndApply translates msg and, on success, queues the translated
// content for batched application to the host.
func (e *Engine) TranslateAndApply(ctx context.Context, msg Message) (State, error) {
	st, err := e.Translate(ctx, msg)
	if err != nil || st.Kind != StateReady {
		return st, err
	}

	e.mu.Lock()
	e.tracked[msg.ID] = TrackedMessage{
		ChannelID:  msg.ChannelID,
		Original:   msg.Content,
		Translated: st.Text,
	}
	e.mu.Unlock()

	e.batcher.Enqueue(msg.ID, Mutation{
		ChannelID:  msg.ChannelID,
		Content:    st.Text,
		Original:   msg.Content,
		Translated: st.Text,
	})
	return st, nil
}

// Restore queues the message's original content for batched application
// and forgets its tracked state.
func (e *Engine) Restore(messageID string) {
	e.mu.Lock()
	tm, ok := e.tracked[messageID]
	delete(e.tracked, messageID)
	e.mu.Unlock()
	if !ok {
		return
	}
	e.batcher.Enqueue(messageID, Mutation{
		ChannelID:  tm.ChannelID,
		Content:    tm.Original,
		Original:   tm.Original,
		Translated: tm.Translated,
	})
}

// Translated reports whether the message currently shows its translation.
func (e *Engine) Translated(messageID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.tracked[messageID]
	return ok
}

// Toggle flips one message between original and translated content. The
// change is applied immediately, bypassing the batcher's scroll deferral:
// a manual user action must always land.
func (e *Engine) Toggle(ctx context.Context, msg Message) (State, error) {
	e.mu.Lock()
	tm, translated := e.tracked[msg.ID]
	if translated {
		delete(e.tracked, msg.ID)
	}
	e.mu.Unlock()

	if translated {
		e.batcher.ApplyNow(msg.ID, Mutation{
			ChannelID:  tm.ChannelID,
			Content:    tm.Original,
			Original:   tm.Original,
			Translated: tm.Translated,
		})
		return State{Kind: StateIdle}, nil
	}

	st, err := e.Translate(ctx, msg)
	if err != nil || st.Kind != StateReady {
		return st, err
	}

	e.mu.Lock()
	e.tracked[msg.ID] = TrackedMessage{
		ChannelID:  msg.ChannelID,
		Original:   msg.Content,
		Translated: st.Text,
	}
	e.mu.Unlock()

	e.batcher.ApplyNow(msg.ID, Mutation{
		ChannelID:  msg.ChannelID,
		Content:    st.Text,
		Original:   msg.Content,
		Translated: st.Text,
	})
	return st, nil
}

// ApplySettings installs a new settings snapshot. The fingerprint is
// recomputed (logically orphaning every prior cache entry), backends are
// rebuilt, the scheduler and store bounds are adjusted, and all
// currently-translated messages are restored to their original content.
func (e *Engine) ApplySettings(settings Settings) {
	s := settings.withDefaults()
	e.mu.Lock()
	e.settings = s
	e.configureLocked(s)
	e.mu.Unlock()

	e.sched.SetLimit(s.MaxConcurrentRequests)
	e.Invalidate()
}

// Invalidate drops the volatile cache and all pending mutations, and
// immediately restores every tracked message to its original content.
// The durable store is left alone: entries from older fingerprints simply
// stop matching and age out.
func (e *Engine) Invalidate() {
	e.cache.clear()
	e.batcher.Clear()

	e.mu.Lock()
	tracked := e.tracked
	e.tracked = make(map[string]TrackedMessage)
	e.mu.Unlock()

	for id, tm := range tracked {
		e.batcher.ApplyNow(id, Mutation{
			ChannelID:  tm.ChannelID,
			Content:    tm.Original,
			Original:   tm.Original,
			Translated: tm.Translated,
		})
	}
}

// Close tears the engine down: in-flight work is cancelled, timers are
// stopped, and the durable store is flushed synchronously.
func (e *Engine) Close(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.unsubIdle()
	e.tracker.Close()
	e.batcher.Close()
	if e.mem != nil {
		e.mem.Close(ctx)
	}
}
