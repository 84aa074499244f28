package lingo

// StateKind identifies the phase of a translation's lifecycle.
type StateKind int

const (
	// StateIdle means no translation has been requested or the text is not
	// worth translating.
	StateIdle StateKind = iota
	// StatePending means a request has been dispatched but not resolved.
	StatePending
	// StateReady means a translation is available.
	StateReady
	// StateError means the request resolved with a failure.
	StateError
)

// State is the resolved (or in-progress) translation of one message.
// Only terminal states (StateReady, StateError) are ever cached.
type State struct {
	Kind           StateKind
	SourceLanguage string // Detected source language (StateReady only)
	Text           string // Translated text (StateReady only)
	Err            string // Failure message (StateError only)
}

// Ready constructs a ready state.
func Ready(sourceLanguage, text string) State {
	return State{Kind: StateReady, SourceLanguage: sourceLanguage, Text: text}
}

// Errored constructs an error state.
func Errored(message string) State {
	return State{Kind: StateError, Err: message}
}

// Terminal reports whether the state is a cacheable end state.
func (s State) Terminal() bool {
	return s.Kind == StateReady || s.Kind == StateError
}

// BackendMode selects which backend adapters the resolver may call.
type BackendMode string

const (
	// ModePrimaryOnly calls only the credentialed primary backend.
	ModePrimaryOnly BackendMode = "primary"
	// ModeSecondaryOnly calls only the keyless secondary backend.
	ModeSecondaryOnly BackendMode = "secondary"
	// ModePrimaryWithFallback tries the primary first and falls back to the
	// secondary on any primary failure. This is the default.
	ModePrimaryWithFallback BackendMode = "fallback"
)

// Message is one item of the consumer's stream, as handed over by the host
// per visible item.
type Message struct {
	ID        string
	ChannelID string
	Content   string
	AuthorID  string
}

// Settings is a read-only snapshot of the configuration store. Any field
// that affects translation output participates in the config fingerprint.
type Settings struct {
	TargetLanguage         string
	Mode                   BackendMode
	PrimaryProvider        string // Adapter kind for the primary slot (default "microsoft")
	PrimaryCredential      string
	PrimaryRegion          string
	PrimaryEndpoint        string
	OnlyTranslateVisible   bool
	MaxConcurrentRequests  int
	PersistentCacheEnabled bool
	TTLDays                int
	MaxEntries             int
}

// Primary backend adapter kinds.
const (
	// PrimaryMicrosoft selects the Microsoft Translator adapter.
	PrimaryMicrosoft = "microsoft"
	// PrimaryOpenAI selects the OpenAI-compatible adapter.
	PrimaryOpenAI = "openai"
)

const (
	defaultMaxConcurrent = 4
	defaultTTLDays       = 30
	defaultMaxEntries    = 10000
)

// withDefaults fills zero-valued knobs with their documented defaults.
func (s Settings) withDefaults() Settings {
	if s.Mode == "" {
		s.Mode = ModePrimaryWithFallback
	}
	if s.PrimaryProvider == "" {
		s.PrimaryProvider = PrimaryMicrosoft
	}
	if s.MaxConcurrentRequests <= 0 {
		s.MaxConcurrentRequests = defaultMaxConcurrent
	}
	if s.TTLDays <= 0 {
		s.TTLDays = defaultTTLDays
	}
	if s.MaxEntries <= 0 {
		s.MaxEntries = defaultMaxEntries
	}
	return s
}

// PrimaryConfigured reports whether the primary backend has a credential.
func (s Settings) PrimaryConfigured() bool {
	return s.PrimaryCredential != ""
}

// Result is a successful backend response.
type Result struct {
	SourceLanguage string
	Text           string
}
