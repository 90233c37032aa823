package client

import (
	"net/http"
	"time"
)

// Option configures a Client.  Invalid values leave the default in place.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each attempt, not the whole retried call; use a context
// deadline for that.  Applied to the current HTTP client, so order it after
// WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithAPIKey is sent as a bearer token, for deployments behind an
// authenticating gateway.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetryMax is the number of retries after the first attempt; 0 disables
// retrying.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retryMax = n
		}
	}
}

// WithRetryWait sets the first backoff and its cap.  A cap below floor is
// ignored.
func WithRetryWait(floor, ceiling time.Duration) Option {
	return func(c *Client) {
		if floor <= 0 {
			return
		}
		c.retryWaitMin = floor
		if ceiling >= floor {
			c.retryWaitMax = ceiling
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

//Personal.AI order the ending
