// Package backend defines the translation backend interface and the
// concrete adapters: Microsoft Translator (credentialed primary), Google
// web translate (keyless secondary), and an OpenAI-compatible alternative
// for the primary slot.
package backend

import (
	"net/http"
	"time"

	"github.com/daisied/lingo"
)

// Backend is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Backend = lingo.Backend

// Result is an alias to the main package type.
type Result = lingo.Result

// defaultHTTPClient bounds wire calls so a dead backend cannot hold a
// scheduler slot forever.
var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Factory returns a lingo.BackendFactory building adapters from a
// settings snapshot. The primary slot is nil when no credential is
// configured; the secondary is always the keyless Google adapter.
func Factory() lingo.BackendFactory {
	return func(s lingo.Settings) (primary, secondary Backend) {
		if s.PrimaryConfigured() {
			switch s.PrimaryProvider {
			case lingo.PrimaryOpenAI:
				primary = NewOpenAIBackend(OpenAIConfig{
					APIKey:  s.PrimaryCredential,
					BaseURL: s.PrimaryEndpoint,
				})
			default:
				primary = NewMicrosoftBackend(MicrosoftConfig{
					Key:      s.PrimaryCredential,
					Region:   s.PrimaryRegion,
					Endpoint: s.PrimaryEndpoint,
				})
			}
		}
		return primary, NewGoogleBackend(GoogleConfig{})
	}
}
