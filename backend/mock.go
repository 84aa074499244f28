package backend

import (
	"context"
)

// MockBackend is a mock translation backend for testing.
type MockBackend struct {
	BackendName  string            // Name reported to the resolver (default "Mock")
	Translations map[string]string // Map of source text to translation
	SourceLang   string            // Detected source language to report (default "en")
	Err          error             // When set, every call fails with this error
	CallCount    int               // Number of times Translate was called
	LastText     string            // Last text received
}

// NewMockBackend creates a mock backend with default translations.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
		},
	}
}

// Name implements Backend.
func (m *MockBackend) Name() string {
	if m.BackendName == "" {
		return "Mock"
	}
	return m.BackendName
}

// Translate returns mock translations, or bracketed text for unknown
// inputs.
func (m *MockBackend) Translate(ctx context.Context, text, targetLang string) (Result, error) {
	m.CallCount++
	m.LastText = text

	if m.Err != nil {
		return Result{}, m.Err
	}

	lang := m.SourceLang
	if lang == "" {
		lang = "en"
	}
	if translation, ok := m.Translations[text]; ok {
		return Result{SourceLanguage: lang, Text: translation}, nil
	}
	return Result{SourceLanguage: lang, Text: "[" + text + "]"}, nil
}

// Reset resets the call count and last text.
func (m *MockBackend) Reset() {
	m.CallCount = 0
	m.LastText = ""
}

// Verify MockBackend implements Backend
var _ Backend = (*MockBackend)(nil)
