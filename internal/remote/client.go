package remote

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/baton-remote/baton/internal/errors"
)

// DefaultTimeout bounds every request to the server.
const DefaultTimeout = 8 * time.Second

// Client talks to an Apple Music Remote server over HTTP.
// All endpoints except /ping require the bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client for the server at address (host:port or URL).
func New(address, token string, opts ...Option) (*Client, error) {
	// A bare host:port does not survive url.Parse: "192.168.1.20:5005"
	// is a parse error and "studio.local:5005" parses as a scheme with
	// no host. Retry those with an explicit http scheme.
	u, err := url.Parse(address)
	if err != nil || u.Scheme == "" || u.Host == "" {
		u, err = url.Parse("http://" + address)
		if err != nil {
			return nil, fmt.Errorf("invalid server address: %w", err)
		}
	}
	if u.Host == "" {
		return nil, stderrors.New("server address must include a host")
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request against the server.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request against the server.
func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPost, path, body, result)
}

// Delete performs a DELETE request against the server.
func (c *Client) Delete(ctx context.Context, path string, result interface{}) error {
	return c.request(ctx, http.MethodDelete, path, nil, result)
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	// /ping is the only endpoint served without auth.
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("request", zap.String("method", method), zap.String("url", fullURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformed, err)
	}

	c.log.Debug("response", zap.String("url", fullURL), zap.Int("status", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &errors.ServerError{Status: resp.StatusCode, Message: errResp.Error}
		}
		return &errors.ServerError{Status: resp.StatusCode}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrMalformed, err)
		}
	}

	return nil
}

// GetRaw fetches a path and returns the raw body, used for artwork.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return nil, &errors.ServerError{Status: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

// wrapTransportError maps a transport failure onto the error taxonomy.
func (c *Client) wrapTransportError(err error) error {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", errors.ErrTimeout, err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", errors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", errors.ErrUnreachable, err)
}
