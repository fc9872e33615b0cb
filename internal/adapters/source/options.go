package source

import (
	"net/http"
	"time"

	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request, including rate limiter waits.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRequestsPerMinute enables client-side rate limiting.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		c.requestsPerMinute = n
	}
}

// WithActionParam sets the query parameter carrying the endpoint name.
func WithActionParam(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.actionParam = name
		}
	}
}

// WithEventIDParam sets the query parameter carrying the event id.
func WithEventIDParam(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.eventIDParam = name
		}
	}
}

// WithEventsAction sets the endpoint name of the events list.
func WithEventsAction(action string) Option {
	return func(c *Client) {
		if action != "" {
			c.eventsAction = action
		}
	}
}

// WithTabActions maps tabs to endpoint names. Entries replace the defaults
// one by one.
func WithTabActions(actions map[model.Tab]string) Option {
	return func(c *Client) {
		for tab, action := range actions {
			if action != "" {
				c.tabActions[tab] = action
			}
		}
	}
}

// WithWholePayloadFallback controls what happens when an envelope has no data
// field: when enabled the whole payload is returned and flagged, otherwise the
// response is malformed.
func WithWholePayloadFallback(enabled bool) Option {
	return func(c *Client) {
		c.wholePayloadFallback = enabled
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
