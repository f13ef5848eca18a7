// Package googletrans implements the Translator interface against the Google
// web translation endpoint.
//
// The endpoint is the unauthenticated "gtx" surface used by browser
// extensions: a GET request returning a nested JSON array whose first element
// holds one [translated, original, ...] segment per sentence.
package googletrans

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// Translator calls the Google web translation endpoint.
type Translator struct {
	endpoint string
	client   *http.Client
}

// New creates a translator. An empty endpoint selects the default.
func New(endpoint string) *Translator {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Translator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Translate renders text from sourceLocale into targetLocale.
func (t *Translator) Translate(ctx context.Context, text, sourceLocale, targetLocale string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sourceLocale)
	q.Set("tl", targetLocale)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating translate request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("translate failed (status %d): %s", resp.StatusCode, body)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading translate response: %w", err)
	}

	out, err := parseSegments(raw)
	if err != nil {
		return "", err
	}

	slog.Debug("translation complete", "source", sourceLocale, "target", targetLocale, "chars", len(out))
	return out, nil
}

// Close is a no-op for the web translator.
func (t *Translator) Close() error { return nil }

// parseSegments joins the translated sentence segments from the nested-array
// response: [[["segment", "original", ...], ...], ...].
func parseSegments(raw []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil || len(outer) == 0 {
		return "", fmt.Errorf("unexpected translate response: %.200s", raw)
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", fmt.Errorf("unexpected translate segments: %.200s", outer[0])
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(seg[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("translate response carried no segments")
	}
	return sb.String(), nil
}
