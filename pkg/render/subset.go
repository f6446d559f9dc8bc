package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-docgen/pkg/model"
)

// DocumentSubset narrows the models and routes handed to a renderer. Each
// list holds tokens matched case-insensitively; entries may also be comma
// separated or a JSON array string. Empty lists do not filter.
type DocumentSubset struct {
	// Models keeps models whose name matches.
	Models []string
	// Routes keeps routes whose name or path matches.
	Routes []string
	// Groups keeps routes whose group matches. Routes without a group belong
	// to "API".
	Groups []string
	// Methods keeps routes whose method matches. Routes without a method are
	// GET routes.
	Methods []string
}

// IsEmpty reports whether the subset filters nothing.
func (s DocumentSubset) IsEmpty() bool {
	return newSubsetMatcher(s).empty()
}

// ApplySubset removes models and routes that do not match subset. Route
// filters combine: a route must match every non-empty route filter. When the
// subset is empty or doc is nil, the document is left unchanged.
func ApplySubset(doc *model.Document, subset DocumentSubset) {
	if doc == nil {
		return
	}

	matcher := newSubsetMatcher(subset)
	if matcher.empty() {
		return
	}

	if len(matcher.models) > 0 {
		filtered := make([]model.ModelDescriptor, 0, len(doc.Models))
		for _, m := range doc.Models {
			if matcher.matchesModel(m) {
				filtered = append(filtered, m)
			}
		}
		doc.Models = filtered
		if len(doc.Models) == 0 {
			doc.Models = nil
		}
	}

	if matcher.filtersRoutes() {
		filtered := make([]model.RouteDescriptor, 0, len(doc.Routes))
		for _, route := range doc.Routes {
			if matcher.matchesRoute(route) {
				filtered = append(filtered, route)
			}
		}
		doc.Routes = filtered
		if len(doc.Routes) == 0 {
			doc.Routes = nil
		}
	}
}

type subsetMatcher struct {
	models  map[string]struct{}
	routes  map[string]struct{}
	groups  map[string]struct{}
	methods map[string]struct{}
}

func newSubsetMatcher(subset DocumentSubset) subsetMatcher {
	return subsetMatcher{
		models:  normaliseTokens(subset.Models),
		routes:  normaliseTokens(subset.Routes),
		groups:  normaliseTokens(subset.Groups),
		methods: normaliseTokens(subset.Methods),
	}
}

func (m subsetMatcher) empty() bool {
	return len(m.models) == 0 && !m.filtersRoutes()
}

func (m subsetMatcher) filtersRoutes() bool {
	return len(m.routes) > 0 || len(m.groups) > 0 || len(m.methods) > 0
}

func (m subsetMatcher) matchesModel(desc model.ModelDescriptor) bool {
	_, ok := m.models[normaliseToken(desc.Name)]
	return ok
}

func (m subsetMatcher) matchesRoute(route model.RouteDescriptor) bool {
	if len(m.routes) > 0 && !hasAny(m.routes, route.Name, route.Path) {
		return false
	}
	if len(m.groups) > 0 && !hasAny(m.groups, withDefault(route.Group, "API")) {
		return false
	}
	if len(m.methods) > 0 && !hasAny(m.methods, withDefault(route.Method, "get")) {
		return false
	}
	return true
}

func hasAny(tokens map[string]struct{}, candidates ...string) bool {
	for _, candidate := range candidates {
		token := normaliseToken(candidate)
		if token == "" {
			continue
		}
		if _, ok := tokens[token]; ok {
			return true
		}
	}
	return false
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		for _, token := range parseTokenList(value) {
			result[token] = struct{}{}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// parseTokenList splits a raw token string. JSON arrays and comma separated
// lists are both accepted.
func parseTokenList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var parsed []any
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			tokens := make([]string, 0, len(parsed))
			for _, entry := range parsed {
				token := normaliseToken(anyToString(entry))
				if token != "" {
					tokens = append(tokens, token)
				}
			}
			return dedupe(tokens)
		}
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' })
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := normaliseToken(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return dedupe(tokens)
}

func anyToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
