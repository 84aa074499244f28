package lingo

import "strings"

// Fingerprint derives a stable identity for "what configuration produced
// this translation" from the settings fields that affect output. Changing
// any of them changes the fingerprint, which logically orphans every prior
// cache entry: old entries simply stop matching new keys, no purge needed.
//
// The field order is fixed; never reorder it, or every user's translation
// memory goes cold on upgrade.
func Fingerprint(s Settings) string {
	s = s.withDefaults()
	hasCredential := "no-key"
	if s.PrimaryConfigured() {
		hasCredential = "key"
	}
	parts := []string{
		NormalizeLang(s.TargetLanguage),
		string(s.Mode),
		s.PrimaryProvider,
		normalizeConfigValue(s.PrimaryEndpoint),
		normalizeConfigValue(s.PrimaryRegion),
		hasCredential,
	}
	return strings.Join(parts, "|")
}

// normalizeConfigValue canonicalizes an endpoint or region so that
// cosmetic edits in the settings UI do not invalidate the cache.
func normalizeConfigValue(v string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(v), "/"))
}
