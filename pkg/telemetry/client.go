/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL      = "api-user.e2ro.com"
	apiVersionPath     = "/2.2"
	defaultMaxAttempts = 3
	defaultRetryWait   = time.Second
	maxRetryWait       = 30 * time.Second
	deviceTimeout      = 15 * time.Second
	infoTimeout        = 10 * time.Second
	defaultRateLimit   = 5
	defaultRateBurst   = 5
	maxErrorBody       = 512
)

var (
	ErrRequestFailed     = errors.New("telemetry request failed")
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrDecodeFailed      = errors.New("failed to decode telemetry response")
	ErrAllAttemptsFailed = errors.New("all fetch attempts failed")
)

// ClientOption customizes a Client.
type ClientOption func(*Client)

// Client implements Source over the vendor's HTTPS API. Device fetches go
// through a retrying client; node and info fetches make a single attempt.
type Client struct {
	baseURL   string
	userAgent string
	tokens    TokenProvider
	transport http.RoundTripper
	limiter   *rate.Limiter

	maxAttempts  int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	devices *retryablehttp.Client
	single  *retryablehttp.Client
}

var _ Source = (*Client)(nil)

// NewClient creates a client for apiURL, which is either a bare host name or
// a full base URL.
func NewClient(apiURL string, tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      baseURL(apiURL),
		userAgent:    "meshradar",
		tokens:       tokens,
		transport:    http.DefaultTransport,
		limiter:      rate.NewLimiter(defaultRateLimit, defaultRateBurst),
		maxAttempts:  defaultMaxAttempts,
		retryWaitMin: defaultRetryWait,
		retryWaitMax: maxRetryWait,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.devices = c.newRetryClient(c.maxAttempts-1, deviceTimeout)
	c.single = c.newRetryClient(0, infoTimeout)

	return c
}

// newRetryClient builds a client that retries up to retries times, waiting
// retryWaitMin, then twice as long after each failure. Every attempt is
// rate limited and bounded by timeout.
func (c *Client) newRetryClient(retries int, timeout time.Duration) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Transport: &limitedTransport{base: c.transport, limiter: c.limiter},
		Timeout:   timeout,
	}
	rc.Logger = nil
	rc.RetryMax = retries
	rc.RetryWaitMin = c.retryWaitMin
	rc.RetryWaitMax = c.retryWaitMax
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.CheckRetry = retryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Printf("Retrying %s (attempt %d)", req.URL.Path, attempt+1)
		}
	}

	return rc
}

// retryPolicy retries timeouts, connection errors and every non-2xx answer.
// Errors that cannot succeed on retry, such as a bad scheme, are final.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return resp.StatusCode < 200 || resp.StatusCode >= 300, nil
}

// limitedTransport waits on a shared limiter before every attempt.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	return t.base.RoundTrip(req)
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// WithRateLimit bounds the request rate across every network.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)

			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMaxAttempts sets how many times a device fetch is tried.
func WithMaxAttempts(attempts int) ClientOption {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithRetryWait sets the first retry delay and the cap on later ones.
func WithRetryWait(minWait, maxWait time.Duration) ClientOption {
	return func(c *Client) {
		c.retryWaitMin = minWait
		c.retryWaitMax = maxWait
	}
}

// WithVersion sets the version reported in the User-Agent header.
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.userAgent = "meshradar/" + version
	}
}

func baseURL(apiURL string) string {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
		apiURL = "https://" + apiURL
	}

	return apiURL + apiVersionPath
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// FetchDevices retries transient failures with exponential backoff. A response
// without data yields an empty list.
func (c *Client) FetchDevices(ctx context.Context, networkID string) ([]RawDevice, error) {
	data, err := c.get(ctx, c.devices, networkID, "/networks/"+url.PathEscape(networkID)+"/devices")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("%w for network %s: %w", ErrAllAttemptsFailed, networkID, err)
	}

	devices, err := decodeDevices(data)
	if err != nil {
		return nil, err
	}

	log.Printf("Retrieved %d devices from network %s", len(devices), networkID)

	return devices, nil
}

// decodeDevices accepts data as a list or as an object holding a devices list.
// Elements are decoded one at a time so a malformed device is dropped alone.
func decodeDevices(data json.RawMessage) ([]RawDevice, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []RawDevice{}, nil
	}

	var elems []json.RawMessage

	if data[0] == '{' {
		var wrapped struct {
			Devices []json.RawMessage `json:"devices"`
		}

		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}

		elems = wrapped.Devices
	} else if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	devices := make([]RawDevice, 0, len(elems))

	for i, elem := range elems {
		var d RawDevice

		if err := json.Unmarshal(elem, &d); err != nil {
			log.Printf("Dropping malformed device %d of %d: %v", i+1, len(elems), err)

			continue
		}

		devices = append(devices, d)
	}

	return devices, nil
}

// FetchNodes makes a single attempt.
func (c *Client) FetchNodes(ctx context.Context, networkID string) ([]RawNode, error) {
	data, err := c.get(ctx, c.single, networkID, "/networks/"+url.PathEscape(networkID)+"/eeros")
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return []RawNode{}, nil
	}

	var nodes []RawNode

	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	return nodes, nil
}

// FetchNetworkInfo makes a single attempt. A response without data yields
// an empty document.
func (c *Client) FetchNetworkInfo(ctx context.Context, networkID string) (*NetworkInfo, error) {
	data, err := c.get(ctx, c.single, networkID, "/networks/"+url.PathEscape(networkID))
	if err != nil {
		return nil, err
	}

	info := &NetworkInfo{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return info, nil
	}

	if err := json.Unmarshal(data, info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	return info, nil
}

// get requests path through rc and returns the data member of the response
// envelope.
func (c *Client) get(
	ctx context.Context, rc *retryablehttp.Client, networkID, path string) (json.RawMessage, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.tokens != nil {
		if token := c.tokens.Token(networkID); token != "" {
			req.Header.Set("X-User-Token", token)
		}
	}

	resp, err := rc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, fmt.Errorf("%w: %s %d: %s", ErrUnexpectedStatus, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope

	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}

	return env.Data, nil
}
