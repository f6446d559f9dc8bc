package router_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"

	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/render"
	"github.com/goliatone/go-docgen/pkg/renderers/apidoc"
	"github.com/goliatone/go-docgen/pkg/router"
)

func TestRouter_MethodHelpersSetMethodAndPath(t *testing.T) {
	var ready []string
	r := router.New(router.OnRouteReady(func(route model.RenderedRoute) {
		ready = append(ready, route.Route.Method+" "+route.Route.Path)
	}))

	register := []struct {
		fn   func(string, model.RouteDescriptor) (model.RenderedRoute, error)
		path string
	}{
		{r.GET, "/libros"},
		{r.POST, "/libros"},
		{r.PUT, "/libros/:id"},
		{r.DELETE, "/libros/:id"},
	}
	for _, reg := range register {
		if _, err := reg.fn(reg.path, model.RouteDescriptor{Method: "PATCH", Path: "/ignored"}); err != nil {
			t.Fatalf("register %s: %v", reg.path, err)
		}
	}

	want := []string{"get /libros", "post /libros", "put /libros/:id", "delete /libros/:id"}
	if diff := cmp.Diff(want, ready); diff != "" {
		t.Fatalf("ready callbacks mismatch (-want +got):\n%s", diff)
	}
	if got := len(r.Routes()); got != 4 {
		t.Fatalf("expected 4 routes, got %d", got)
	}
}

func TestRouter_AttachesApidoc(t *testing.T) {
	r := router.New()
	descriptor := model.RouteDescriptor{
		Name:  "Crear libro",
		Group: "Libros",
		Input: model.Input{Body: model.Object{
			model.Prop("titulo", model.FieldDescriptor{Kind: model.KindString, Nullable: model.Bool(false)}),
		}},
	}

	rendered, err := r.POST("/libros", descriptor)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !strings.Contains(rendered.Apidoc, "* @api {post} /libros Crear libro\n") {
		t.Fatalf("unexpected annotation:\n%s", rendered.Apidoc)
	}
	if !strings.Contains(rendered.Apidoc, "* @apiParam (Input - body) {String} titulo Titulo\n") {
		t.Fatalf("missing body param:\n%s", rendered.Apidoc)
	}
	if descriptor.Method != "" || descriptor.Path != "" {
		t.Fatalf("caller descriptor was modified: %+v", descriptor)
	}
	if r.Apidoc() != rendered.Apidoc {
		t.Fatalf("Apidoc() should concatenate compiled blocks")
	}

	doc := r.Document()
	if len(doc.Routes) != 1 || doc.Routes[0].Group != "Libros" || doc.Routes[0].Version != 1 {
		t.Fatalf("unexpected document routes: %+v", doc.Routes)
	}
}

func TestRouter_HandleRequiresMethod(t *testing.T) {
	r := router.New()
	if _, err := r.Handle("  ", "/x", model.RouteDescriptor{}); !errors.Is(err, router.ErrMethodRequired) {
		t.Fatalf("expected ErrMethodRequired, got %v", err)
	}
	if len(r.Routes()) != 0 {
		t.Fatalf("failed registrations must not be stored")
	}
}

func TestRouter_CompileErrorIsReturned(t *testing.T) {
	called := false
	r := router.New(router.OnRouteReady(func(model.RenderedRoute) { called = true }))

	_, err := r.GET("/stream", model.RouteDescriptor{
		OutputExamples: []model.Example{{Title: "bad", Data: func() {}}},
	})
	if err == nil || !strings.HasPrefix(err.Error(), "router: apidoc: ") {
		t.Fatalf("expected compile error, got %v", err)
	}
	if called || len(r.Routes()) != 0 {
		t.Fatalf("failed routes must not reach the callback or the store")
	}
}

func TestRouter_WithCompilerLocale(t *testing.T) {
	compiler := apidoc.NewCompiler(apidoc.WithRenderOptions(render.RenderOptions{Locale: "es"}))
	r := router.New(router.WithCompiler(compiler))

	rendered, err := r.POST("/libros", model.RouteDescriptor{Permissions: []string{"admin"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !strings.Contains(rendered.Apidoc, "* @apiDefine admin Rol admin\n") {
		t.Fatalf("expected spanish permission text:\n%s", rendered.Apidoc)
	}
}

func TestRouter_ConcurrentRegistration(t *testing.T) {
	r := router.New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.GET("/health", model.RouteDescriptor{}); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(r.Routes()); got != 16 {
		t.Fatalf("expected 16 routes, got %d", got)
	}
}

func TestMuxPath(t *testing.T) {
	cases := map[string]string{
		"/libros":                       "/libros",
		"/libros/:id":                   "/libros/{id}",
		"/autores/:autor_id/libros/:id": "/autores/{autor_id}/libros/{id}",
	}
	for in, want := range cases {
		if got := router.MuxPath(in); got != want {
			t.Fatalf("MuxPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRouter_Mount(t *testing.T) {
	r := router.New()
	show := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = io.WriteString(w, "libro "+mux.Vars(req)["id"])
	})

	if _, err := r.GET("/libros/:id", model.RouteDescriptor{Controller: show}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := r.POST("/libros", model.RouteDescriptor{}); err != nil {
		t.Fatalf("post: %v", err)
	}

	target := mux.NewRouter()
	mounted, err := r.Mount(target)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if mounted != 1 {
		t.Fatalf("expected only routes with controllers to mount, got %d", mounted)
	}

	rec := httptest.NewRecorder()
	target.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/libros/7", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "libro 7" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	target.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/libros/7", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for unregistered method, got %d", rec.Code)
	}
}

func TestMount_NilTarget(t *testing.T) {
	if _, err := router.Mount(nil, nil); err == nil {
		t.Fatalf("expected error for nil mux router")
	}
}
