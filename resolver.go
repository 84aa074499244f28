package lingo

import (
	"context"

	"github.com/rs/zerolog"
)

// Backend is the interface for translation backend adapters.
type Backend interface {
	// Name identifies the adapter in error messages ("Microsoft", "Google").
	Name() string
	// Translate translates text into the target language. Failures must be
	// returned as *BackendError with a classified status.
	Translate(ctx context.Context, text, targetLang string) (Result, error)
}

// BackendFactory builds the primary and secondary adapters for a settings
// snapshot. A nil primary means the credentialed backend is unconfigured.
type BackendFactory func(s Settings) (primary, secondary Backend)

// resolver picks and calls one of the two backends according to the
// configured mode, with fallback and error classification.
type resolver struct {
	mode        BackendMode
	primary     Backend // nil when unconfigured
	secondary   Backend
	primaryName string
	log         zerolog.Logger
}

// fetch executes the selection policy:
//
//   - ModeSecondaryOnly: always the secondary; failure degrades to the
//     generic ErrUnavailable.
//   - ModePrimaryOnly: configuration error without any network call when
//     the primary is unconfigured; otherwise the primary's failure is
//     surfaced verbatim as the authoritative error.
//   - ModePrimaryWithFallback: primary first when configured, its failure
//     silently absorbed and the secondary tried; only if the secondary
//     also fails does the generic ErrUnavailable come back.
func (r *resolver) fetch(ctx context.Context, text, targetLang string) (Result, error) {
	switch r.mode {
	case ModeSecondaryOnly:
		return r.fetchSecondary(ctx, text, targetLang)

	case ModePrimaryOnly:
		if r.primary == nil {
			return Result{}, &ConfigError{Message: "set " + r.primaryName + " key in plugin settings"}
		}
		res, err := r.primary.Translate(ctx, text, targetLang)
		if err != nil {
			return Result{}, err
		}
		return res, nil

	default: // ModePrimaryWithFallback
		if r.primary != nil {
			res, err := r.primary.Translate(ctx, text, targetLang)
			if err == nil {
				return res, nil
			}
			r.log.Debug().Err(err).Str("backend", r.primary.Name()).
				Msg("primary backend failed, falling back")
		}
		return r.fetchSecondary(ctx, text, targetLang)
	}
}

func (r *resolver) fetchSecondary(ctx context.Context, text, targetLang string) (Result, error) {
	if r.secondary == nil {
		return Result{}, ErrUnavailable
	}
	res, err := r.secondary.Translate(ctx, text, targetLang)
	if err != nil {
		r.log.Debug().Err(err).Str("backend", r.secondary.Name()).
			Msg("secondary backend failed")
		return Result{}, ErrUnavailable
	}
	return res, nil
}
