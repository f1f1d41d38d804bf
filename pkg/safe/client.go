package safe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetries   = 2
	defaultUserAgent = "safe-signature-processor/1.0"
	maxErrorBody     = 512
)

// ConfirmationAPI is the part of the Safe Transaction Service used to decide
// whether a message has collected enough owner approvals.
type ConfirmationAPI interface {
	GetSafeInfo(ctx context.Context, address string) (*SafeInfo, error)
	GetMessage(ctx context.Context, messageHash string) (*Message, error)
}

// Client talks to a single chain's Safe Transaction Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	apiKey     string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRetries sets how many times a retryable failure is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithAPIKey sends the key as a bearer token on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		retries:    defaultRetries,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Make sure we conform to the interface
var _ ConfirmationAPI = (*Client)(nil)

// GetSafeInfo fetches the safe's owners and approval threshold.
// The service only accepts checksummed addresses.
func (c *Client) GetSafeInfo(ctx context.Context, address string) (*SafeInfo, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	checksummed := common.HexToAddress(address).Hex()

	var info SafeInfo
	if err := c.getJSON(ctx, "/api/v1/safes/"+checksummed+"/", &info); err != nil {
		return nil, fmt.Errorf("failed to get safe info for %s: %w", checksummed, err)
	}
	return &info, nil
}

// GetMessage fetches a Safe message and its confirmations by message hash.
func (c *Client) GetMessage(ctx context.Context, messageHash string) (*Message, error) {
	var msg Message
	if err := c.getJSON(ctx, "/api/v1/messages/"+url.PathEscape(messageHash)+"/", &msg); err != nil {
		return nil, fmt.Errorf("failed to get safe message %s: %w", messageHash, err)
	}
	return &msg, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		err := c.doGet(ctx, path, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &APIError{StatusCode: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrRateLimited)
}

func backoff(attempt int) time.Duration {
	base := 200 * time.Millisecond
	d := base * time.Duration(1<<uint(attempt-1))
	if d > 3*time.Second {
		d = 3 * time.Second
	}
	jitter := time.Duration(rand.Intn(100)) * time.Millisecond
	return d + jitter
}
