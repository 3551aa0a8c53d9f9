// Package f1api is a thin client for the public Formula 1 statistics REST API.
package f1api

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
)

const (
	// DefaultBaseURL is the public F1 Connect API.
	DefaultBaseURL = "https://f1connectapi.vercel.app/api"
	// DefaultTimeout is the transport timeout used unless configured otherwise.
	DefaultTimeout = 30 * time.Second

	maxErrorBodyBytes = 4 << 10
)

// Config configures a Client. BaseURL defaults to DefaultBaseURL.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the pooled client; tests inject stub transports here.
	HTTPClient *http.Client
}

// Client issues GET requests against a fixed base URL.
type Client struct {
	baseURL   *url.URL
	userAgent string
	client    *http.Client
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("f1api: parse base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("f1api: base url %q must be http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("f1api: base url %q has no host", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = pooledClient(timeout)
	}

	return &Client{
		baseURL:   base,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		client:    client,
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// URL resolves q against the base URL.
func (c *Client) URL(q Query) (string, error) {
	path := strings.TrimSpace(q.Path)
	if path == "" {
		return "", errors.New("f1api: query path is empty")
	}
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("f1api: query path %q must start with /", path)
	}
	if strings.Contains(path, "://") || strings.Contains(path, "?") {
		return "", fmt.Errorf("f1api: query path %q must be a relative path", path)
	}
	u := c.baseURL.String() + path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u, nil
}

// Fetch performs one GET for q and returns the decoded JSON body. Numbers are
// decoded as json.Number so the payload re-encodes exactly as received.
func (c *Client) Fetch(ctx context.Context, q Query) (any, error) {
	if c == nil {
		return nil, errors.New("f1api: client is nil")
	}
	endpoint, err := c.URL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("f1api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, URL: endpoint, Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &Error{
			Kind:    KindRemoteStatus,
			Status:  resp.StatusCode,
			URL:     endpoint,
			Message: statusMessage(resp.StatusCode, body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetworkFailure, URL: endpoint, Message: "read response: " + err.Error(), Cause: err}
	}
	return decodeBody(endpoint, body)
}

// Probe performs a minimal request to check the API is reachable.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.Fetch(ctx, Query{Path: "/drivers"}.Add("limit", "1"))
	return err
}

func decodeBody(endpoint string, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &Error{Kind: KindDecodeFailure, URL: endpoint, Message: "empty response body"}
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, &Error{Kind: KindDecodeFailure, URL: endpoint, Message: "decode response: " + err.Error(), Cause: err}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &Error{Kind: KindDecodeFailure, URL: endpoint, Message: "decode response: trailing data after JSON value"}
	}
	return payload, nil
}

func statusMessage(status int, body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Message != "":
			return envelope.Message
		case envelope.Error != "":
			return envelope.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}
