// Package backend talks to the assistant chat service over HTTP
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	registerPath = "/users/register"
	loginPath    = "/users/login"
	chatPath     = "/chat"

	// UsernameHeader identifies the logged in user on chat calls
	UsernameHeader = "X-Username"
)

// Client calls the register, login and chat endpoints. Each call is a single
// attempt; there are no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The client passed in is
// never modified; a nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type chatRequest struct {
	Message string `json:"message"`
	Topic   string `json:"topic"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// NewClient creates a client for the service at baseURL. A bare host:port
// is treated as http.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// BaseURL returns the normalized service address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates an account. The response body is ignored on success.
func (c *Client) Register(ctx context.Context, username, password string) error {
	_, err := c.post(ctx, registerPath, credentials{Username: username, Password: password}, nil)
	return err
}

// Login checks the credentials. The response body is ignored on success.
func (c *Client) Login(ctx context.Context, username, password string) error {
	_, err := c.post(ctx, loginPath, credentials{Username: username, Password: password}, nil)
	return err
}

// Chat sends a message for username and returns the assistant's reply
func (c *Client) Chat(ctx context.Context, username, message, topic string) (string, error) {
	header := http.Header{}
	header.Set(UsernameHeader, username)

	body, err := c.post(ctx, chatPath, chatRequest{Message: message, Topic: topic}, header)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &DecodeError{Path: chatPath, Body: string(body), Err: err}
	}
	return resp.Response, nil
}

// post sends payload as JSON and returns the body of a 200 response
func (c *Client) post(ctx context.Context, path string, payload any, header http.Header) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty backend address")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse backend address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("backend address %q has no host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
