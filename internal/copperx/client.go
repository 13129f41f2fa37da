// Package copperx is an HTTP client for the Copperx payments API.
package copperx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"copperx-bot/internal/log"
)

const (
	defaultBaseURL = "https://income-api.copperx.io"
	defaultTimeout = 15 * time.Second
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// ErrNotFound is returned by single-record lookups that come back empty.
var ErrNotFound = errors.New("copperx: not found")

// APIError is a non-2xx response from the Copperx API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// Message returns the user-facing text for err: the API message when err is an *APIError.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// Client calls the Copperx REST API. Methods that take a token send it as a bearer credential.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL with an OTel-instrumented transport. Empty values take defaults.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// do sends a JSON request and decodes a 2xx JSON response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("copperx: encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("copperx: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn(ctx).Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("copperx: request failed")
		return fmt.Errorf("copperx: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	log.Debug(ctx).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("copperx: response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Message: errorMessage(b)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("copperx: decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls "message" out of an error body. The API sends either a string or a list of strings.
func errorMessage(body []byte) string {
	var env struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(env.Message, &s); err == nil && s != "" {
		return s
	}
	var list []string
	if err := json.Unmarshal(env.Message, &list); err == nil && len(list) > 0 {
		return strings.Join(list, "; ")
	}
	return env.Error
}

// decodeList accepts a bare JSON array or a {"data": [...]} page envelope.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var page struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *Client) getList(ctx context.Context, path, token string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, token, query, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
