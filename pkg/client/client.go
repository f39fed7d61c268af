// Package client is a Go client for the chat hub admin API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	ProductionBaseURL = "https://api.aichathub.io/api/v1"
	LocalBaseURL      = "http://localhost:8080/api/v1"
)

// BaseURLFor picks the API root for an environment name.
func BaseURLFor(env string) string {
	if strings.EqualFold(env, "production") {
		return ProductionBaseURL
	}
	return LocalBaseURL
}

type Config struct {
	// BaseURL overrides the environment default.
	BaseURL     string
	Environment string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Tokens      TokenStore
	// OnUnauthorized runs after a 401 clears the stored token.
	OnUnauthorized func()
	Logger         *slog.Logger
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenStore
	onUnauthorized func()
	logger         *slog.Logger
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURLFor(cfg.Environment)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	lg := cfg.Logger
	if lg == nil {
		lg = slog.Default()
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           httpClient,
		tokens:         tokens,
		onUnauthorized: cfg.OnUnauthorized,
		logger:         lg,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Tokens() TokenStore { return c.tokens }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Meta    *Meta           `json:"meta"`
	Error   *struct {
		Type    string          `json:"type"`
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

type ListOptions struct {
	Page    int
	PerPage int
	Query   string
	Filters map[string]string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	for k, val := range o.Filters {
		v.Set(k, val)
	}
	return v
}

// Do sends a JSON request and decodes the envelope's data into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	_, err := c.do(ctx, method, path, nil, body, out)
	return err
}

// List fetches a paginated collection into out and returns its pagination meta.
func (c *Client) List(ctx context.Context, path string, opts ListOptions, out interface{}) (*Meta, error) {
	env, err := c.do(ctx, http.MethodGet, path, opts.values(), nil, out)
	if err != nil {
		return nil, err
	}
	return env.Meta, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	resp, err := c.send(ctx, method, path, query, reader, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		if resp.StatusCode >= 400 {
			return nil, c.failure(resp.StatusCode, nil)
		}
		return nil, fmt.Errorf("client: decode response: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return nil, c.failure(resp.StatusCode, &env)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("client: decode data: %w", err)
		}
	}
	return &env, nil
}

// raw performs a request whose successful body is not an envelope, like a file download.
func (c *Client) raw(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	resp, err := c.send(ctx, method, path, nil, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, c.failure(resp.StatusCode, nil)
		}
		return nil, c.failure(resp.StatusCode, &env)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}
	return data, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode)
	return resp, nil
}

func (c *Client) failure(status int, env *envelope) error {
	apiErr := &APIError{StatusCode: status, kind: kindFor(status)}
	if env != nil {
		apiErr.Message = env.Message
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			if apiErr.Message == "" {
				apiErr.Message = env.Error.Message
			}
			apiErr.Details = env.Error.Details
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	if status == http.StatusUnauthorized {
		c.tokens.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
	return apiErr
}

func decodeData(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("client: decode data: %w", err)
	}
	return nil
}
