package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tweetlite/tweetlite/internal/debug"
	"github.com/tweetlite/tweetlite/internal/oauth1"
)

const (
	DefaultSubdomain = "api"
	DefaultVersion   = "1.1"
	DefaultTimeout   = 30 * time.Second

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Config is the immutable client configuration. Zero values fall back to the
// defaults; credentials are never validated locally.
type Config struct {
	Subdomain         string `json:"subdomain,omitempty"`
	Version           string `json:"version,omitempty"`
	ConsumerKey       string `json:"consumer_key,omitempty"`
	ConsumerSecret    string `json:"consumer_secret,omitempty"`
	AccessTokenKey    string `json:"access_token_key,omitempty"`
	AccessTokenSecret string `json:"access_token_secret,omitempty"`
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Subdomain) == "" {
		c.Subdomain = DefaultSubdomain
	}
	if strings.TrimSpace(c.Version) == "" {
		c.Version = DefaultVersion
	}
	return c
}

func (c Config) credentials() oauth1.Credentials {
	return oauth1.Credentials{
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		Token:          c.AccessTokenKey,
		TokenSecret:    c.AccessTokenSecret,
	}
}

// Client is a Twitter REST client that signs every call with OAuth 1.0a.
//
// Apart from the last observed rate-limit snapshot the client holds no
// mutable state, so one instance may serve concurrent callers.
type Client struct {
	cfg         Config
	root        string
	http        *http.Client
	signer      *oauth1.Signer
	signerOpts  []oauth1.SignerOption
	userAgent   string
	rateLimitMu sync.Mutex
	lastRate    *RateLimitInfo
}

// Option configures a Client during New.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the http.Client timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithBaseURL points the client at a different scheme+host, e.g. an
// httptest server or a proxy. The version segment is still appended.
func WithBaseURL(root string) Option {
	return func(c *Client) {
		c.root = strings.TrimSuffix(strings.TrimSpace(root), "/")
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithSignerOptions forwards options to the OAuth signer (fixed nonce or
// clock in tests).
func WithSignerOptions(opts ...oauth1.SignerOption) Option {
	return func(c *Client) {
		c.signerOpts = append(c.signerOpts, opts...)
	}
}

// New creates a client. It never fails: a client without credentials is
// valid and will be rejected by the remote API instead.
func New(cfg Config, opts ...Option) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	c := &Client{
		cfg: cfg.withDefaults(),
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.signer = oauth1.NewSigner(c.cfg.credentials(), c.signerOpts...)
	return c
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// URL returns the versioned API root, https://{subdomain}.twitter.com/{version}.
func (c *Client) URL() string {
	root := c.root
	if root == "" {
		root = "https://" + c.cfg.Subdomain + ".twitter.com"
	}
	return root + "/" + c.cfg.Version
}

// resourceURL maps "account/verify_credentials" to the full .json endpoint.
func (c *Client) resourceURL(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "/")
	if !strings.HasSuffix(path, ".json") {
		path += ".json"
	}
	return c.URL() + "/" + path
}

// Endpoint returns the URL a GET of path with params is sent to.
func (c *Client) Endpoint(path string, params Params) (string, error) {
	values, err := params.Values()
	if err != nil {
		return "", err
	}
	r := request{endpoint: c.resourceURL(path), query: values}
	return r.target(), nil
}

// Get performs a signed GET. API-level rejections come back inside the
// Result; only a *TransportError is returned as err.
func (c *Client) Get(ctx context.Context, path string, params Params) (*Result, error) {
	req, err := c.newRequest(http.MethodGet, path, nil, params)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, req)
}

// Post performs a signed POST. With a nil body the params travel as a
// form-encoded body and are signed. A typed nil body (nil map, nil slice,
// nil json.RawMessage) is treated the same way. Any other body is sent as
// JSON and is not part of the signature; params then go to the query string.
func (c *Client) Post(ctx context.Context, path string, body any, params Params) (*Result, error) {
	req, err := c.newRequest(http.MethodPost, path, body, params)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, req)
}

// PreparedRequest describes a request as Get or Post would send it.
type PreparedRequest struct {
	Method      string     `json:"method"`
	URL         string     `json:"url"`
	Signed      url.Values `json:"signed_params,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Body        string     `json:"body,omitempty"`
}

// Prepare builds a request without signing or sending it.
func (c *Client) Prepare(method, path string, body any, params Params) (*PreparedRequest, error) {
	req, err := c.newRequest(method, path, body, params)
	if err != nil {
		return nil, err
	}
	out := &PreparedRequest{Method: req.method, URL: req.target(), Signed: req.signedParams()}
	switch {
	case req.body != nil:
		out.ContentType = contentTypeJSON
		out.Body = string(req.body)
	case req.form != nil:
		out.ContentType = contentTypeForm
		out.Body = encodeValues(req.form)
	}
	return out, nil
}

func (c *Client) newRequest(method, path string, body any, params Params) (*request, error) {
	endpoint := c.resourceURL(path)
	values, err := params.Values()
	if err != nil {
		return nil, &TransportError{Kind: KindEncode, Method: method, URL: endpoint, Err: err}
	}

	req := &request{method: method, endpoint: endpoint}
	if method != http.MethodPost {
		req.query = values
		return req, nil
	}
	data, err := encodeBody(body)
	if err != nil {
		return nil, &TransportError{Kind: KindEncode, Method: method, URL: endpoint, Err: err}
	}
	if data == nil {
		req.form = values
	} else {
		req.query = values
		req.body = data
	}
	return req, nil
}

// encodeBody marshals a JSON request body. A body that encodes to null, such
// as a nil map or a nil json.RawMessage, counts as no body.
func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	return data, nil
}

type request struct {
	method   string
	endpoint string
	query    url.Values
	form     url.Values
	body     []byte
}

// signedParams returns the parameters covered by the OAuth signature.
func (r *request) signedParams() url.Values {
	out := make(url.Values, len(r.query)+len(r.form))
	for k, v := range r.query {
		out[k] = append(out[k], v...)
	}
	for k, v := range r.form {
		out[k] = append(out[k], v...)
	}
	return out
}

func (r *request) target() string {
	if len(r.query) == 0 {
		return r.endpoint
	}
	return r.endpoint + "?" + encodeValues(r.query)
}

func (c *Client) send(ctx context.Context, r *request) (*Result, error) {
	auth, err := c.signer.Authorization(r.method, r.endpoint, r.signedParams())
	if err != nil {
		return nil, &TransportError{Kind: KindEncode, Method: r.method, URL: r.endpoint, Err: err}
	}

	var bodyReader io.Reader
	contentType := ""
	switch {
	case r.body != nil:
		bodyReader = bytes.NewReader(r.body)
		contentType = contentTypeJSON
	case r.form != nil:
		bodyReader = strings.NewReader(encodeValues(r.form))
		contentType = contentTypeForm
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.target(), bodyReader)
	if err != nil {
		return nil, &TransportError{Kind: KindEncode, Method: r.method, URL: r.endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", r.method, "url", r.endpoint, "error", err)
		}
		return nil, &TransportError{Kind: KindNetwork, Method: r.method, URL: r.endpoint, Err: err}
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Kind: KindNetwork, Method: r.method, URL: r.endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	rate := parseRateLimitInfo(resp.Header)
	c.recordRateLimit(rate)
	if debug.IsEnabled(ctx) {
		attrs := []any{"method", r.method, "url", r.endpoint, "status", resp.StatusCode, "duration", time.Since(start)}
		if rate != nil {
			attrs = append(attrs, "rate_remaining", rate.Remaining)
		}
		slog.Debug("request complete", attrs...)
	}

	result, err := decodeResponse(resp.StatusCode, respBody)
	if err != nil {
		return nil, &TransportError{Kind: KindDecode, Method: r.method, URL: r.endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	result.RateLimit = rate
	return result, nil
}
