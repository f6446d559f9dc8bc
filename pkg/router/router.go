// Package router registers route descriptors one HTTP method at a time,
// compiling each into its apidoc annotation block as it is declared.
//
// Compiled routes can be read back with Routes, concatenated with Apidoc or
// mounted on a gorilla/mux router with Mount.
package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/renderers/apidoc"
)

// ErrMethodRequired is returned by Handle when the method is blank.
var ErrMethodRequired = errors.New("router: method is required")

// ReadyFunc receives every route right after it compiles.
type ReadyFunc func(model.RenderedRoute)

// Option configures a Router.
type Option func(*Router)

// OnRouteReady registers a callback invoked after each route compiles.
func OnRouteReady(fn ReadyFunc) Option {
	return func(r *Router) {
		r.onReady = fn
	}
}

// WithCompiler overrides the annotation compiler, e.g. to pick a locale.
func WithCompiler(compiler *apidoc.Compiler) Option {
	return func(r *Router) {
		if compiler != nil {
			r.compiler = compiler
		}
	}
}

// WithLogger sets the logger used to trace registrations.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Router accumulates compiled routes in declaration order. It is safe for
// concurrent use; the ready callback runs outside the lock.
type Router struct {
	mu       sync.Mutex
	compiler *apidoc.Compiler
	onReady  ReadyFunc
	logger   *slog.Logger
	routes   []model.RenderedRoute
}

// New constructs a Router.
func New(options ...Option) *Router {
	r := &Router{
		compiler: apidoc.NewCompiler(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Router) GET(path string, route model.RouteDescriptor) (model.RenderedRoute, error) {
	return r.Handle(http.MethodGet, path, route)
}

func (r *Router) POST(path string, route model.RouteDescriptor) (model.RenderedRoute, error) {
	return r.Handle(http.MethodPost, path, route)
}

func (r *Router) PUT(path string, route model.RouteDescriptor) (model.RenderedRoute, error) {
	return r.Handle(http.MethodPut, path, route)
}

func (r *Router) DELETE(path string, route model.RouteDescriptor) (model.RenderedRoute, error) {
	return r.Handle(http.MethodDelete, path, route)
}

// Handle overrides the method and path of route, compiles it and stores the
// result. The caller's descriptor is not modified.
func (r *Router) Handle(method, path string, route model.RouteDescriptor) (model.RenderedRoute, error) {
	if strings.TrimSpace(method) == "" {
		return model.RenderedRoute{}, ErrMethodRequired
	}
	route.Method = method
	route.Path = path

	rendered, err := r.compiler.Compile(route)
	if err != nil {
		return model.RenderedRoute{}, fmt.Errorf("router: %w", err)
	}

	r.mu.Lock()
	r.routes = append(r.routes, rendered)
	onReady := r.onReady
	r.mu.Unlock()

	r.logger.Debug("route compiled", "method", rendered.Route.Method, "path", rendered.Route.Path)
	if onReady != nil {
		onReady(rendered)
	}
	return rendered, nil
}

// Routes returns a copy of the compiled routes in declaration order.
func (r *Router) Routes() []model.RenderedRoute {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.routes)
}

// Apidoc concatenates the annotation blocks of every compiled route.
func (r *Router) Apidoc() string {
	var b strings.Builder
	for _, route := range r.Routes() {
		b.WriteString(route.Apidoc)
	}
	return b.String()
}

// Document returns a model.Document holding the normalized routes.
func (r *Router) Document() model.Document {
	routes := r.Routes()
	out := model.Document{Routes: make([]model.RouteDescriptor, 0, len(routes))}
	for _, route := range routes {
		out.Routes = append(out.Routes, route.Route)
	}
	return out
}
