package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/daisied/lingo"
)

// microsoftName tags the adapter in classified errors.
const microsoftName = "Microsoft"

// defaultMicrosoftEndpoint is the global Translator endpoint; sovereign
// clouds override it via MicrosoftConfig.Endpoint.
const defaultMicrosoftEndpoint = "https://api.cognitive.microsofttranslator.com"

// MicrosoftBackend calls the Microsoft Translator v3 API. It is the
// credentialed primary: key required, region and endpoint configurable.
type MicrosoftBackend struct {
	key      string
	region   string
	endpoint string
	client   *http.Client
}

// MicrosoftConfig holds configuration for the Microsoft adapter.
type MicrosoftConfig struct {
	Key      string // Subscription key (required)
	Region   string // Resource region (optional)
	Endpoint string // Override endpoint (optional)
	Client   *http.Client
}

// NewMicrosoftBackend creates a Microsoft Translator adapter.
func NewMicrosoftBackend(cfg MicrosoftConfig) *MicrosoftBackend {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultMicrosoftEndpoint
	}
	client := cfg.Client
	if client == nil {
		client = defaultHTTPClient
	}
	return &MicrosoftBackend{
		key:      cfg.Key,
		region:   cfg.Region,
		endpoint: endpoint,
		client:   client,
	}
}

// Name implements Backend.
func (b *MicrosoftBackend) Name() string {
	return microsoftName
}

// translateResponse is the wire shape of a successful v3 /translate call.
type translateResponse struct {
	DetectedLanguage struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage"`
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// errorResponse is the wire shape of a v3 error body.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Translate translates one text. Failures are classified: network errors
// carry the StatusNetwork sentinel, HTTP errors embed the status and any
// backend-supplied message, malformed bodies are parse failures.
func (b *MicrosoftBackend) Translate(ctx context.Context, text, targetLang string) (Result, error) {
	endpoint := b.endpoint + "/translate?api-version=3.0&to=" +
		url.QueryEscape(lingo.NormalizeLang(targetLang))

	payload, err := json.Marshal([]map[string]string{{"Text": text}})
	if err != nil {
		return Result{}, &lingo.BackendError{
			Backend: microsoftName, Status: lingo.StatusNetwork,
			Message: "encoding request", Cause: err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, &lingo.BackendError{
			Backend: microsoftName, Status: lingo.StatusNetwork,
			Message: err.Error(), Cause: err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", b.key)
	if b.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", b.region)
	}
	req.Header.Set("User-Agent", lingo.UserAgent())

	resp, err := b.client.Do(req)
	if err != nil {
		return Result{}, &lingo.BackendError{
			Backend: microsoftName, Status: lingo.StatusNetwork,
			Message: err.Error(), Cause: err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &lingo.BackendError{
			Backend: microsoftName, Status: lingo.StatusNetwork,
			Message: err.Error(), Cause: err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := http.StatusText(resp.StatusCode)
		var wire errorResponse
		if json.Unmarshal(body, &wire) == nil && wire.Error.Message != "" {
			message = wire.Error.Message
		}
		return Result{}, &lingo.BackendError{
			Backend: microsoftName, Status: resp.StatusCode, Message: message,
		}
	}

	var results []translateResponse
	if err := json.Unmarshal(body, &results); err != nil {
		return Result{}, &lingo.BackendError{
			Backend: microsoftName, Status: resp.StatusCode,
			Message: "invalid response format", Cause: err,
		}
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return Result{}, &lingo.BackendError{
			Backend: microsoftName, Status: resp.StatusCode,
			Message: "response missing translations",
		}
	}

	return Result{
		SourceLanguage: results[0].DetectedLanguage.Language,
		Text:           results[0].Translations[0].Text,
	}, nil
}

// Verify MicrosoftBackend implements Backend
var _ Backend = (*MicrosoftBackend)(nil)
