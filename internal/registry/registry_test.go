package registry_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docgen/internal/registry"
)

type plugin string

func (p plugin) Name() string { return string(p) }

type namer interface{ Name() string }

func TestSet_OrderAndLookup(t *testing.T) {
	set := registry.New[plugin]("plugin", true)
	for _, p := range []plugin{"Zeta", "alpha", "Mid"} {
		if err := set.Add(p); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}

	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, set.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]plugin{"Zeta", "alpha", "Mid"}, set.Ordered()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if got, ok := set.Lookup(" ZETA "); !ok || got != "Zeta" {
		t.Fatalf("Lookup = %q, %v", got, ok)
	}
}

func TestSet_Errors(t *testing.T) {
	set := registry.New[namer]("widget", false)

	tests := []struct {
		name string
		item namer
		want string
	}{
		{name: "nil", item: nil, want: "widget is required"},
		{name: "unnamed", item: plugin(""), want: "widget name is required"},
		{name: "duplicate", item: plugin("a"), want: `widget "a" already registered`},
	}
	if err := set.Add(plugin("a")); err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := set.Add(tt.item)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("Add error = %v, want %q", err, tt.want)
			}
		})
	}
	if _, ok := set.Lookup("A"); ok {
		t.Fatalf("case-sensitive set matched a different case")
	}
}
