package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/daisied/lingo"
)

// googleName tags the adapter in classified errors.
const googleName = "Google"

// defaultGoogleEndpoint is the keyless web translate endpoint.
const defaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleBackend calls the keyless Google web translate endpoint. It is
// the best-effort secondary: no credential, no SLA.
type GoogleBackend struct {
	endpoint string
	client   *http.Client
}

// GoogleConfig holds configuration for the Google adapter.
type GoogleConfig struct {
	Endpoint string // Override endpoint (tests)
	Client   *http.Client
}

// NewGoogleBackend creates a Google web translate adapter.
func NewGoogleBackend(cfg GoogleConfig) *GoogleBackend {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}
	client := cfg.Client
	if client == nil {
		client = defaultHTTPClient
	}
	return &GoogleBackend{endpoint: endpoint, client: client}
}

// Name implements Backend.
func (b *GoogleBackend) Name() string {
	return googleName
}

// Translate translates one text. The endpoint answers with nested JSON
// arrays: element 0 is a list of translated segments, element 2 the
// detected source language.
func (b *GoogleBackend) Translate(ctx context.Context, text, targetLang string) (Result, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", lingo.BaseLang(targetLang))
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Result{}, &lingo.BackendError{
			Backend: googleName, Status: lingo.StatusNetwork,
			Message: err.Error(), Cause: err,
		}
	}
	req.Header.Set("User-Agent", lingo.UserAgent())

	resp, err := b.client.Do(req)
	if err != nil {
		return Result{}, &lingo.BackendError{
			Backend: googleName, Status: lingo.StatusNetwork,
			Message: err.Error(), Cause: err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &lingo.BackendError{
			Backend: googleName, Status: lingo.StatusNetwork,
			Message: err.Error(), Cause: err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &lingo.BackendError{
			Backend: googleName, Status: resp.StatusCode,
			Message: http.StatusText(resp.StatusCode),
		}
	}

	return parseGoogleResponse(body, resp.StatusCode)
}

func parseGoogleResponse(body []byte, status int) (Result, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil || len(outer) == 0 {
		return Result{}, &lingo.BackendError{
			Backend: googleName, Status: status,
			Message: "invalid response format", Cause: err,
		}
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return Result{}, &lingo.BackendError{
			Backend: googleName, Status: status,
			Message: "invalid response format", Cause: err,
		}
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var chunk string
		if err := json.Unmarshal(seg[0], &chunk); err == nil {
			sb.WriteString(chunk)
		}
	}
	if sb.Len() == 0 {
		return Result{}, &lingo.BackendError{
			Backend: googleName, Status: status,
			Message: "response missing translations",
		}
	}

	source := ""
	if len(outer) > 2 {
		_ = json.Unmarshal(outer[2], &source)
	}

	return Result{SourceLanguage: source, Text: sb.String()}, nil
}

// Verify GoogleBackend implements Backend
var _ Backend = (*GoogleBackend)(nil)
