package router

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-docgen/pkg/model"
)

var expressParam = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// MuxPath rewrites express style parameters (`/libros/:id`) to gorilla/mux
// variables (`/libros/{id}`).
func MuxPath(path string) string {
	return expressParam.ReplaceAllString(path, "{$1}")
}

// Mount registers the controller of every compiled route on target. Routes
// without a controller are skipped. It returns the number of routes mounted.
func (r *Router) Mount(target *mux.Router) (int, error) {
	return Mount(target, r.Routes())
}

// Mount registers the controllers of routes on target.
func Mount(target *mux.Router, routes []model.RenderedRoute) (int, error) {
	if target == nil {
		return 0, errors.New("router: mux router is nil")
	}

	mounted := 0
	for _, rendered := range routes {
		route := rendered.Route
		if route.Controller == nil {
			continue
		}
		target.Handle(MuxPath(route.Path), route.Controller).
			Methods(strings.ToUpper(route.Method)).
			Name(route.Name)
		mounted++
	}
	return mounted, nil
}
