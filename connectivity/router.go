// Package connectivity provides a service router that dispatches calls
// either locally (in-memory function call) or remotely (HTTP transport
// plugged in by the host) based on a SQLite routes table reloaded at
// runtime.
//
// Capture services code as a monolith and deploy either way: the routes
// table decides per service, and a row update takes effect on the next
// Call without a restart.
//
//	router := connectivity.New()
//	router.RegisterLocal("styledriver", driver.Handle)
//	go router.Watch(ctx, db, 200*time.Millisecond)
//
//	// The caller never knows whether this is local or remote:
//	resp, err := router.Call(ctx, "styledriver", payload)
package connectivity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Handler is a transport-agnostic service function: bytes in, bytes out.
// Both local Go functions and remote RPC clients implement this signature.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

// TransportFactory creates a Handler for a remote endpoint. It receives
// the endpoint URL and any per-route config JSON. The returned close
// function is called when the route is removed or replaced during
// hot-reload; it may be nil when no cleanup is needed.
type TransportFactory func(endpoint string, config json.RawMessage) (handler Handler, close func(), err error)

// route mirrors one row of the routes table.
type route struct {
	ServiceName string
	Strategy    string
	Endpoint    string
	Config      json.RawMessage
}

// fingerprint changes whenever the route's dispatch config changes.
func (rt route) fingerprint() string {
	return rt.Strategy + "|" + rt.Endpoint + "|" + string(rt.Config)
}

// remoteEntry holds a built handler and its optional cleanup.
type remoteEntry struct {
	handler Handler
	close   func()
}

// Router dispatches service calls based on SQLite configuration.
// Thread-safe: reads use RLock, reloads take the full lock.
type Router struct {
	mu            sync.RWMutex
	localHandlers map[string]Handler
	remoteEntries map[string]remoteEntry
	routeSnap     map[string]route // last loaded snapshot for diffing
	factories     map[string]TransportFactory
	logger        *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets a custom logger for the router.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New creates a Router with no routes. Register transports and local
// handlers, then call Watch to start hot-reloading from SQLite.
func New(opts ...Option) *Router {
	r := &Router{
		localHandlers: make(map[string]Handler),
		remoteEntries: make(map[string]remoteEntry),
		routeSnap:     make(map[string]route),
		factories:     make(map[string]TransportFactory),
		logger:        slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RegisterLocal registers an in-memory handler for a service. If the
// routes table says strategy="local" for this service, or carries no row
// at all, Call dispatches here with zero network overhead.
func (r *Router) RegisterLocal(service string, h Handler) {
	r.mu.Lock()
	r.localHandlers[service] = h
	r.mu.Unlock()
}

// RegisterTransport registers a factory for a transport protocol, e.g.
// "http". The factory is invoked during Reload for routes that use it.
func (r *Router) RegisterTransport(protocol string, f TransportFactory) {
	r.mu.Lock()
	r.factories[protocol] = f
	r.mu.Unlock()
}

// Call dispatches a service call. Resolution order:
//  1. Noop route — silently succeeds (feature flag / service disabled).
//  2. Explicit remote route from SQLite.
//  3. Local handler.
//  4. Error — service not routable.
func (r *Router) Call(ctx context.Context, service string, payload []byte) ([]byte, error) {
	r.mu.RLock()
	entry, hasRemote := r.remoteEntries[service]
	localH := r.localHandlers[service]
	snap, hasRoute := r.routeSnap[service]
	r.mu.RUnlock()

	if hasRoute && snap.Strategy == "noop" {
		r.logger.DebugContext(ctx, "routing noop", "service", service)
		return nil, nil
	}

	if hasRemote {
		r.logger.DebugContext(ctx, "routing remote",
			"service", service, "strategy", snap.Strategy, "endpoint", snap.Endpoint)
		return entry.handler(ctx, payload)
	}

	if localH != nil {
		r.logger.DebugContext(ctx, "routing local", "service", service)
		return localH(ctx, payload)
	}

	return nil, &ErrServiceNotFound{Service: service}
}

// Has reports whether a call to service could dispatch anywhere. The
// capture engine uses it to skip optional services without paying for a
// failed Call.
func (r *Router) Has(service string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.remoteEntries[service]; ok {
		return true
	}
	if _, ok := r.routeSnap[service]; ok {
		return true
	}
	return r.localHandlers[service] != nil
}

// Reload reads the routes table and rebuilds the remote handler map.
// Routes with strategy "local" or "noop" create no remote handler. Only
// routes whose (strategy, endpoint, config) changed are rebuilt, so
// unchanged routes keep their live connections.
func (r *Router) Reload(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx,
		`SELECT service_name, strategy, COALESCE(endpoint, ''), COALESCE(config, '{}') FROM routes`)
	if err != nil {
		return fmt.Errorf("connectivity: query routes: %w", err)
	}
	defer rows.Close()

	newRoutes := make(map[string]route)
	for rows.Next() {
		var rt route
		var cfgStr string
		if err := rows.Scan(&rt.ServiceName, &rt.Strategy, &rt.Endpoint, &cfgStr); err != nil {
			return fmt.Errorf("connectivity: scan route: %w", err)
		}
		rt.Config = json.RawMessage(cfgStr)
		newRoutes[rt.ServiceName] = rt
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("connectivity: rows: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	newEntries := make(map[string]remoteEntry, len(newRoutes))

	for name, rt := range newRoutes {
		switch rt.Strategy {
		case "local", "noop":
			continue
		default:
			// Unchanged route: reuse the existing handler.
			if old, ok := r.routeSnap[name]; ok && old.fingerprint() == rt.fingerprint() {
				if existing, exists := r.remoteEntries[name]; exists {
					newEntries[name] = existing
					continue
				}
			}

			factory, ok := r.factories[rt.Strategy]
			if !ok {
				r.logger.Warn("no transport factory for strategy",
					"service", name, "strategy", rt.Strategy)
				continue
			}

			h, closeFn, err := factory(rt.Endpoint, rt.Config)
			if err != nil {
				r.logger.Error("factory failed",
					"service", name, "strategy", rt.Strategy,
					"endpoint", rt.Endpoint, "error", err)
				continue
			}
			newEntries[name] = remoteEntry{handler: h, close: closeFn}
			r.logger.Info("route built",
				"service", name, "strategy", rt.Strategy, "endpoint", rt.Endpoint)
		}
	}

	// Close handlers that were removed or rebuilt with a new fingerprint.
	for name, old := range r.remoteEntries {
		if old.close == nil {
			continue
		}
		if _, stillExists := newEntries[name]; !stillExists {
			old.close()
			continue
		}
		if r.routeSnap[name].fingerprint() != newRoutes[name].fingerprint() {
			old.close()
		}
	}

	r.remoteEntries = newEntries
	r.routeSnap = newRoutes

	r.logger.Info("routes reloaded",
		"total", len(newRoutes),
		"remote", len(newEntries),
		"local", countLocal(newRoutes))

	return nil
}

// Close shuts down all remote handlers.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.remoteEntries {
		if entry.close != nil {
			entry.close()
		}
	}
	r.remoteEntries = make(map[string]remoteEntry)
	r.routeSnap = make(map[string]route)
	return nil
}

func countLocal(routes map[string]route) int {
	n := 0
	for _, rt := range routes {
		if rt.Strategy == "local" {
			n++
		}
	}
	return n
}
