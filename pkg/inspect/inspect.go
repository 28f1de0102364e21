// Package inspect serves a live view of registered variables over HTTP:
// a JSON snapshot API, a WebSocket stream of value changes, and Prometheus
// metrics. It is a development and operations aid for applications built
// on the astal reactive core; nothing in the core depends on it.
package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/marleypowell/astal/pkg/variable"
)

// defaultTracerName identifies inspector spans.
const defaultTracerName = "astal/inspect"

// Config configures the inspector server.
type Config struct {
	// Namespace is the Prometheus metrics namespace (default: "astal").
	Namespace string

	// Registry receives the inspector metrics and backs the /metrics
	// endpoint (default: a private registry).
	Registry *prometheus.Registry

	// Logger for connection events (default: slog.Default with the
	// inspect component attribute).
	Logger *slog.Logger

	// TracerName names the otel tracer (default: "astal/inspect").
	TracerName string
}

// Option configures the inspector server.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) { c.Registry = registry }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithTracerName sets the otel tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) { c.TracerName = name }
}

// entry is one registered variable.
type entry struct {
	src    variable.Observable
	cancel func()
}

// Server exposes registered variables for inspection.
type Server struct {
	mu      sync.Mutex
	vars    map[string]*entry
	order   []string
	clients map[*wsClient]struct{}

	logger   *slog.Logger
	metrics  *metrics
	tracer   trace.Tracer
	registry *prometheus.Registry

	httpSrv *http.Server
}

// NewServer creates an inspector with no variables registered.
func NewServer(opts ...Option) *Server {
	cfg := Config{
		Namespace:  "astal",
		TracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "inspect")
	}

	return &Server{
		vars:     make(map[string]*entry),
		clients:  make(map[*wsClient]struct{}),
		logger:   cfg.Logger,
		metrics:  newMetrics(cfg.Namespace, cfg.Registry),
		tracer:   otel.Tracer(cfg.TracerName),
		registry: cfg.Registry,
	}
}

// Register exposes src under name. A change of the variable bumps the
// update counter and is streamed to connected WebSocket clients.
// Re-registering a name replaces the previous registration.
func (s *Server) Register(name string, src variable.Observable) {
	cancel := src.OnChange(func() {
		s.metrics.updatesTotal.WithLabelValues(name).Inc()
		s.broadcast(name, src.Value())
	})

	s.mu.Lock()
	if old, ok := s.vars[name]; ok {
		old.cancel()
	} else {
		s.order = append(s.order, name)
		s.metrics.registered.Inc()
	}
	s.vars[name] = &entry{src: src, cancel: cancel}
	s.mu.Unlock()
}

// Unregister removes the named variable and releases its subscription.
// Unknown names are ignored.
func (s *Server) Unregister(name string) {
	s.mu.Lock()
	e, ok := s.vars[name]
	if ok {
		delete(s.vars, name)
		for i, n := range s.order {
			if n == name {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		s.metrics.registered.Dec()
	}
	s.mu.Unlock()

	if ok {
		e.cancel()
	}
}

// ErrorHandler returns a function suitable for Variable.OnError that logs
// the failure and counts it under the given variable name.
func (s *Server) ErrorHandler(name string) func(error) {
	return func(err error) {
		s.metrics.driverErrors.WithLabelValues(name).Inc()
		s.logger.Error("driver error", "variable", name, "error", err)
	}
}

// varState is the JSON shape of one variable.
type varState struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Handler returns the inspector's HTTP handler:
//
//	GET /vars         JSON array of all registered variables
//	GET /vars/{name}  one variable
//	GET /ws           WebSocket stream of value changes
//	GET /metrics      Prometheus metrics
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/vars", s.handleVars)
	r.Get("/vars/{name}", s.handleVar)
	r.Get("/ws", s.handleWS)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) handleVars(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.Start(r.Context(), "inspect.vars")
	defer span.End()

	states := s.snapshot()
	span.SetAttributes(attribute.Int("inspect.variable_count", len(states)))

	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleVar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	_, span := s.tracer.Start(r.Context(), "inspect.var",
		trace.WithAttributes(attribute.String("inspect.variable", name)))
	defer span.End()

	s.mu.Lock()
	e, ok := s.vars[name]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown variable: " + name})
		return
	}
	writeJSON(w, http.StatusOK, varState{Name: name, Value: renderValue(e.src.Value())})
}

// snapshot returns the current state of every variable in registration
// order.
func (s *Server) snapshot() []varState {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]varState, 0, len(s.order))
	for _, name := range s.order {
		states = append(states, varState{Name: name, Value: renderValue(s.vars[name].src.Value())})
	}
	return states
}

// renderValue makes an arbitrary value JSON-safe, falling back to its
// string rendering when it cannot be marshaled directly.
func renderValue(v any) any {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe runs the inspector on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.httpSrv = &http.Server{Addr: addr, Handler: s.Handler()}
	srv := s.httpSrv
	s.mu.Unlock()

	s.logger.Info("inspector listening", "addr", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server and closes all WebSocket
// clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	dropped := len(s.clients)
	for c := range s.clients {
		delete(s.clients, c)
		c.close()
	}
	s.mu.Unlock()

	for range dropped {
		s.metrics.wsClients.Dec()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
