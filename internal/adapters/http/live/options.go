package live

import (
	"net/http"
	"slices"
	"time"

	"github.com/okian/bassboard/pkg/logger"
)

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithAllowedOrigins restricts the browser origins that may connect. An
// empty list accepts any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Hub) {
		allowed := append([]string(nil), origins...)
		if len(allowed) == 0 {
			h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
			return
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowed, origin)
		}
	}
}

// WithSendBuffer sets how many messages may queue per client before the
// client is dropped.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithPingInterval sets the keepalive ping period.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

// WithLogger sets a custom logger for the hub.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}
