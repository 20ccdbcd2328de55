// Package api is the storefront HTTP client. Every call attaches the stored
// Credential as a bearer token and returns the decoded response envelope.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"
	maxErrorBody    = 4 << 10
)

// TokenSource yields the stored Credential, "" when none is stored.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the storefront API rooted at a base URL.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRootCAs trusts pool for HTTPS instead of the system roots.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) {
		c.http = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
			},
		}
	}
}

// New returns a Client for baseURL. tokens may be nil, in which case every
// request is sent unauthenticated.
func New(baseURL string, tokens TokenSource, log *zap.Logger, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET for path with params encoded as the query string.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Envelope, error) {
	env, err := c.do(ctx, http.MethodGet, path, params, nil, "")
	if err != nil {
		c.log.Error("GET error", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return env, nil
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	env, err := c.post(ctx, path, body)
	if err != nil {
		c.log.Error("POST error", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return env, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*Envelope, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(b), contentTypeJSON)
}

// PostWithMedia sends form as multipart/form-data.
func (c *Client) PostWithMedia(ctx context.Context, path string, form *Form) (*Envelope, error) {
	env, err := c.postWithMedia(ctx, path, form)
	if err != nil {
		c.log.Error("POST with media error", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return env, nil
}

func (c *Client) postWithMedia(ctx context.Context, path string, form *Form) (*Envelope, error) {
	if form == nil {
		form = NewForm()
	}
	var buf bytes.Buffer
	contentType, err := form.writeTo(&buf)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, &buf, contentType)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string) (*Envelope, error) {
	endpoint, err := c.resolve(path, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType == "" {
		contentType = contentTypeJSON
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentTypeJSON)
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Method: method, URL: endpoint, Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return &env, nil
}

// authorize snapshots the Credential once for this request.
func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token(req.Context())
	if err != nil {
		c.log.Warn("credential read failed, sending unauthenticated", zap.Error(err))
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) resolve(path string, params url.Values) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return "", fmt.Errorf("join %q onto base URL: %w", path, err)
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return endpoint, nil
}
