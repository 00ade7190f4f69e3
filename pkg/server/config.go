package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures the inspector server.
type Config struct {
	// Address is the listen address for ListenAndServe (e.g., ":7070").
	Address string

	// Logger is the structured logger.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Gatherer serves /metrics. If nil, the route is not registered.
	Gatherer prometheus.Gatherer

	// MaxBodyBytes limits PUT bodies.
	// Default: 1MB.
	MaxBodyBytes int64

	// WatchBuffer is the number of frames queued per watch connection before
	// frames are dropped.
	// Default: 16.
	WatchBuffer int

	// WriteTimeout bounds each WebSocket write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is how often watch connections are pinged.
	// Default: 30 seconds.
	PingInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown in ListenAndServe.
	// Default: 5 seconds.
	ShutdownTimeout time.Duration

	// CheckOrigin validates the Origin of WebSocket upgrades.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":7070",
		MaxBodyBytes:    1 << 20,
		WatchBuffer:     16,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		CheckOrigin:     SameOriginCheck,
	}
}

// withDefaults fills zero fields from DefaultConfig. It never modifies c.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.MaxBodyBytes <= 0 {
		out.MaxBodyBytes = d.MaxBodyBytes
	}
	if out.WatchBuffer <= 0 {
		out.WatchBuffer = d.WatchBuffer
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.PingInterval <= 0 {
		out.PingInterval = d.PingInterval
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// SameOriginCheck accepts WebSocket upgrades whose Origin host matches the
// request host, and requests without an Origin header (non-browser clients).
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}
	return originURL.Host == host
}
