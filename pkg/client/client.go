// Package client is the Go SDK for the PrintShop customizer HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

const Version = "0.1.0"

// apiPrefix is prepended to every resource path.
const apiPrefix = "/api/v1"

// Logger receives the SDK's diagnostic lines.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client calls the customizer API.  It is safe for concurrent use.  Failed
// connections and 5xx responses are retried with capped exponential backoff;
// 429 is retried only when the server sends Retry-After.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	catalog     *CatalogClient
	catalogOnce sync.Once
	designs     *DesignsClient
	designsOnce sync.Once
}

// APIError is a non-2xx response, decoded from the server's error body when
// it has one.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("printshop: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient returns a client for the API rooted at baseURL, which must be an
// absolute http or https URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("baseURL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid baseURL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.InvalidParam("baseURL scheme must be http or https").WithDetail("baseURL=" + baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    "printshop-go-sdk/" + Version,
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) Catalog() *CatalogClient {
	c.catalogOnce.Do(func() { c.catalog = &CatalogClient{client: c} })
	return c.catalog
}

func (c *Client) Designs() *DesignsClient {
	c.designsOnce.Do(func() { c.designs = &DesignsClient{client: c} })
	return c.designs
}

// rawResponse receives a successful body undecoded, for texture bytes.
type rawResponse struct {
	Header http.Header
	Body   []byte
}

// outcome is the result of one attempt.  retry is set for failures worth
// another attempt; wait overrides the backoff when the server asked for one.
type outcome struct {
	err   error
	retry bool
	wait  time.Duration
}

// do sends the request, retrying per the client's policy.  result may be nil,
// a *rawResponse, or a value to decode the JSON body into.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal request body")
		}
		payload = b
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var last outcome
	for attempt := 0; ; attempt++ {
		last = c.attempt(ctx, method, path, payload, result)
		if last.err == nil || !last.retry || attempt >= c.retryMax {
			return last.err
		}
		wait := last.wait
		if wait == 0 {
			wait = c.calculateBackoff(attempt + 1)
		}
		c.logger.Debugf("Retry attempt %d after %v", attempt+1, wait)
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, result interface{}) outcome {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, rd)
	if err != nil {
		return outcome{err: errors.Wrap(err, errors.ErrCodeBadRequest, "failed to create request")}
	}
	requestID := uuid.NewString()
	c.decorate(req, requestID, payload != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Request failed: %v", err)
		if ctx.Err() != nil {
			return outcome{err: ctx.Err()}
		}
		return outcome{err: err, retry: true}
	}
	defer resp.Body.Close()
	c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome{err: errors.Wrap(err, errors.ErrCodeExternalService, "failed to read response body")}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeAPIError(resp.StatusCode, requestID, data)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After"))
			if convErr != nil {
				return outcome{err: apiErr}
			}
			c.logger.Infof("Rate limited, retrying after %d seconds", secs)
			return outcome{err: apiErr, retry: true, wait: time.Duration(secs) * time.Second}
		case apiErr.IsServerError():
			return outcome{err: apiErr, retry: true}
		default:
			return outcome{err: apiErr}
		}
	}
	return outcome{err: deliver(resp.Header, data, result)}
}

func (c *Client) decorate(req *http.Request, requestID string, hasBody bool) {
	h := req.Header
	if c.apiKey != "" {
		h.Set("Authorization", "Bearer "+c.apiKey)
	}
	if hasBody {
		h.Set("Content-Type", "application/json")
	}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", c.userAgent)
	h.Set("X-Request-ID", requestID)
}

// decodeAPIError falls back to the raw body as the message when the server
// did not answer with its JSON error shape.
func decodeAPIError(status int, requestID string, body []byte) *APIError {
	e := &APIError{StatusCode: status, RequestID: requestID}
	if len(body) == 0 {
		return e
	}
	var wire struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &wire) != nil {
		e.Message = string(body)
		return e
	}
	e.Code, e.Message, e.Detail = wire.Code, wire.Message, wire.Detail
	return e
}

func deliver(header http.Header, body []byte, result interface{}) error {
	switch out := result.(type) {
	case nil:
	case *rawResponse:
		out.Header, out.Body = header, body
	default:
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, result); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal response")
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// calculateBackoff doubles retryWaitMin per attempt up to retryWaitMax, then
// adds up to 25% jitter.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	d := c.retryWaitMax
	if shift := attempt - 1; shift < 30 {
		d = min(c.retryWaitMin<<shift, c.retryWaitMax)
	}
	if q := int64(d / 4); q > 0 {
		d += time.Duration(rand.Int64N(q))
	}
	return d
}

//Personal.AI order the ending
