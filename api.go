package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// apiClient handles HTTP communication with the Semantle model endpoint.
type apiClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// newAPIClient creates a new API client with the given configuration.
func newAPIClient(cfg appConfig) (*apiClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base_url: %q", cfg.BaseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSecs * time.Second
	}

	c := &apiClient{
		baseURL:   u.String(),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
	}
	if c.userAgent == "" {
		c.userAgent = defaultUA
	}
	return c, nil
}

// apiError represents an HTTP error response from the API.
type apiError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %d", e.StatusCode)
}

// errEmptyBody is returned when a 2xx response carries no payload.
var errEmptyBody = errors.New("empty response body")

// errNullBody is returned when the payload is the JSON literal null.
var errNullBody = errors.New("null response body")

// transportError marks failures before a response was read.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// getJSON performs a GET request and decodes the JSON response into out.
func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.baseURL+"/")

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	const maxResponseSize = 10 * 1024 * 1024 // 10MB limit
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &transportError{err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		var m map[string]any
		if json.Unmarshal(b, &m) == nil {
			if s, ok := m["message"].(string); ok && s != "" {
				msg = s
			} else if s, ok := m["error"].(string); ok && s != "" {
				msg = s
			}
		}
		return &apiError{StatusCode: resp.StatusCode, Message: msg, Body: b}
	}

	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" {
		return errEmptyBody
	}
	if trimmed == "null" {
		return errNullBody
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// modelResponse is the payload of /model2/{secret}/{word}.
type modelResponse struct {
	Vec        []float64 `json:"vec"`
	Percentile *int      `json:"percentile,omitempty"`
}

// model fetches the vector (and percentile, when the word is close enough)
// of word relative to secret.
func (c *apiClient) model(ctx context.Context, secret, word string) (*modelResponse, error) {
	var out modelResponse
	path := "/model2/" + url.PathEscape(secret) + "/" + url.PathEscape(word)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// classifyGuessError maps a client error onto one of the guess failure kinds.
func classifyGuessError(err error) error {
	var te *transportError
	if errors.As(err, &te) {
		return errNetwork
	}
	var ae *apiError
	if errors.As(err, &ae) {
		if ae.StatusCode == http.StatusNotFound {
			return errUnknownWord
		}
		return errNetwork
	}
	if errors.Is(err, errEmptyBody) || errors.Is(err, errNullBody) {
		return errUnknownWord
	}
	return errMalformed
}
