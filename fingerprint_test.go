package lingo

import "testing"

func baseSettings() Settings {
	return Settings{
		TargetLanguage:    "es",
		Mode:              ModePrimaryWithFallback,
		PrimaryCredential: "secret",
		PrimaryRegion:     "westeurope",
	}
}

func TestFingerprint_Stable(t *testing.T) {
	if Fingerprint(baseSettings()) != Fingerprint(baseSettings()) {
		t.Error("fingerprint should be stable for identical settings")
	}
}

func TestFingerprint_ChangesWithInputs(t *testing.T) {
	base := Fingerprint(baseSettings())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"target language", func(s *Settings) { s.TargetLanguage = "fr" }},
		{"backend mode", func(s *Settings) { s.Mode = ModeSecondaryOnly }},
		{"primary provider", func(s *Settings) { s.PrimaryProvider = PrimaryOpenAI }},
		{"endpoint", func(s *Settings) { s.PrimaryEndpoint = "https://example.test" }},
		{"region", func(s *Settings) { s.PrimaryRegion = "eastus" }},
		{"credential presence", func(s *Settings) { s.PrimaryCredential = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSettings()
			tt.mutate(&s)
			if Fingerprint(s) == base {
				t.Errorf("changing %s should change the fingerprint", tt.name)
			}
		})
	}
}

func TestFingerprint_IgnoresCosmeticEdits(t *testing.T) {
	base := Fingerprint(baseSettings())

	s := baseSettings()
	s.TargetLanguage = " ES "
	s.PrimaryRegion = "WestEurope "
	if Fingerprint(s) != base {
		t.Error("whitespace and case edits should not change the fingerprint")
	}

	s = baseSettings()
	s.PrimaryCredential = "a different secret"
	if Fingerprint(s) != base {
		t.Error("fingerprint should track credential presence, not its value")
	}
}
