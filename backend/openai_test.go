package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daisied/lingo"
	"github.com/sashabaranov/go-openai"
)

func TestOpenAIBackend_Defaults(t *testing.T) {
	b := NewOpenAIBackend(OpenAIConfig{APIKey: "sk-test"})
	if b.model != "gpt-4o-mini" {
		t.Errorf("model = %q", b.model)
	}
	if b.temperature != 0.3 {
		t.Errorf("temperature = %v", b.temperature)
	}
	if b.Name() != "OpenAI" {
		t.Errorf("Name = %q", b.Name())
	}
}

func TestOpenAIBackend_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant",` +
			`"content":"{\"source_language\":\"en\",\"text\":\"hola mundo\"}"}}]}`))
	}))
	defer srv.Close()

	b := NewOpenAIBackend(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	res, err := b.Translate(context.Background(), "hello world", "es")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "hola mundo" || res.SourceLanguage != "en" {
		t.Errorf("result = %+v", res)
	}
}

func TestOpenAIBackend_NonJSONCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hola mundo"}}]}`))
	}))
	defer srv.Close()

	b := NewOpenAIBackend(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	_, err := b.Translate(context.Background(), "hello world", "es")

	var be *lingo.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want BackendError", err)
	}
	if be.Message != "invalid response format" {
		t.Errorf("Message = %q", be.Message)
	}
}

func TestClassifyOpenAIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "api error keeps status",
			err:        &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"},
			wantStatus: 429,
		},
		{
			name:       "request error keeps status",
			err:        &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")},
			wantStatus: 502,
		},
		{
			name:       "plain error is network-level",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: lingo.StatusNetwork,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var be *lingo.BackendError
			if !errors.As(classifyOpenAIError(tc.err), &be) {
				t.Fatal("classified error is not a BackendError")
			}
			if be.Status != tc.wantStatus {
				t.Errorf("Status = %d, want %d", be.Status, tc.wantStatus)
			}
			if be.Backend != "OpenAI" {
				t.Errorf("Backend = %q", be.Backend)
			}
		})
	}
}

func TestMockBackend(t *testing.T) {
	m := NewMockBackend()

	res, err := m.Translate(context.Background(), "Hello", "es")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Hola" || res.SourceLanguage != "en" {
		t.Errorf("result = %+v", res)
	}

	res, _ = m.Translate(context.Background(), "unknown text", "es")
	if res.Text != "[unknown text]" {
		t.Errorf("unknown input = %q", res.Text)
	}

	if m.CallCount != 2 || m.LastText != "unknown text" {
		t.Errorf("CallCount/LastText = %d/%q", m.CallCount, m.LastText)
	}
	m.Reset()
	if m.CallCount != 0 || m.LastText != "" {
		t.Error("Reset did not clear state")
	}
}

func TestFactory(t *testing.T) {
	f := Factory()

	primary, secondary := f(lingo.Settings{TargetLanguage: "es"})
	if primary != nil {
		t.Error("primary built without a credential")
	}
	if _, ok := secondary.(*GoogleBackend); !ok {
		t.Errorf("secondary = %T, want GoogleBackend", secondary)
	}

	primary, _ = f(lingo.Settings{TargetLanguage: "es", PrimaryCredential: "key"})
	if _, ok := primary.(*MicrosoftBackend); !ok {
		t.Errorf("primary = %T, want MicrosoftBackend", primary)
	}

	primary, _ = f(lingo.Settings{
		TargetLanguage:    "es",
		PrimaryProvider:   lingo.PrimaryOpenAI,
		PrimaryCredential: "sk-test",
	})
	if _, ok := primary.(*OpenAIBackend); !ok {
		t.Errorf("primary = %T, want OpenAIBackend", primary)
	}
}
