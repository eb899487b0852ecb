// Package couchview queries CouchDB view endpoints over HTTP and serves them
// to viewpager as a ViewExecutor.
package couchview

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

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

type Options struct {
	// BaseURL of the server, e.g. http://localhost:5984.
	BaseURL string
	// Username and Password enable basic authentication when Username is set.
	Username string
	Password string
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	Logger     *zap.Logger
	// Breaker enables a circuit breaker around requests. By default only
	// transport failures and 5xx responses count as breaker failures.
	Breaker *gobreaker.Settings
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status    int
	ErrorCode string `json:"error"`
	Reason    string `json:"reason"`
}

func (e *StatusError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("couchdb: status %d", e.Status)
	}

	return fmt.Sprintf("couchdb: status %d: %s: %s", e.Status, e.ErrorCode, e.Reason)
}

// StatusCode returns the HTTP status of the response.
func (e *StatusError) StatusCode() int {
	return e.Status
}

type Client struct {
	baseURL    *url.URL
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(opts Options) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("couchview: invalid base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("couchview: base url must be absolute: '%s'", opts.BaseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		username:   opts.Username,
		password:   opts.Password,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	if opts.Breaker != nil {
		settings := *opts.Breaker
		if settings.IsSuccessful == nil {
			settings.IsSuccessful = isBreakerSuccess
		}
		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}

	return c, nil
}

// get performs a GET request and returns the response body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	if c.breaker == nil {
		return c.doGet(ctx, path, values)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doGet(ctx, path, values)
	})
	if err != nil {
		return nil, err
	}

	return body.([]byte), nil
}

func (c *Client) doGet(ctx context.Context, path string, values url.Values) ([]byte, error) {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("couchdb request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read couchdb response: %w", err)
	}

	c.logger.Debug("couchdb request",
		zap.String("path", u.Path),
		zap.String("query", u.RawQuery),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Status: resp.StatusCode}
		// Error bodies are best effort; the status alone is enough.
		_ = json.Unmarshal(body, statusErr)
		statusErr.Status = resp.StatusCode

		return nil, statusErr
	}

	return body, nil
}

func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status < http.StatusInternalServerError
	}

	// Caller side cancellation says nothing about server health.
	return errors.Is(err, context.Canceled)
}
