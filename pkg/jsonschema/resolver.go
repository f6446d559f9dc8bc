package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-docgen/pkg/schema"
)

const (
	defaultMaxDocumentBytes = int64(5 << 20)
	defaultMaxDocuments     = 128
	defaultMaxRefDepth      = 64
)

var (
	// ErrRefCycle reports a $ref chain that points back at itself.
	ErrRefCycle = errors.New("jsonschema resolver: ref cycle")
	// ErrRefNotFound reports a pointer or anchor without a target.
	ErrRefNotFound = errors.New("jsonschema resolver: ref target not found")
)

// ResolveOptions configures $ref resolution. Zero limits use the defaults.
type ResolveOptions struct {
	// AllowHTTPRefs permits refs to http(s) documents.
	AllowHTTPRefs bool
	// AllowPathTraversal permits relative refs outside the root document's
	// directory.
	AllowPathTraversal bool
	// MaxDocumentBytes caps the size of each document, the root included.
	MaxDocumentBytes int64
	// MaxDocuments caps the number of documents, the root included.
	MaxDocuments int
	// MaxRefDepth caps the length of a $ref chain.
	MaxRefDepth int
}

// Resolver inlines $ref values. Referenced documents are fetched through the
// loader, parsed once per Resolve call and indexed for $anchor lookups.
type Resolver struct {
	loader schema.Loader
	opts   ResolveOptions
}

// NewResolver constructs a resolver. loader may be nil when only local refs
// are expected.
func NewResolver(loader schema.Loader, opts ResolveOptions) *Resolver {
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = defaultMaxDocuments
	}
	if opts.MaxRefDepth <= 0 {
		opts.MaxRefDepth = defaultMaxRefDepth
	}
	return &Resolver{loader: loader, opts: opts}
}

// refDoc is a parsed document taking part in one resolution.
type refDoc struct {
	id      string
	src     schema.Source
	dir     string
	tree    map[string]any
	anchors map[string]string
}

// resolution holds the per-call state: loaded documents by id and the chain
// of refs being expanded.
type resolution struct {
	*Resolver
	docs    map[string]*refDoc
	rootDir string
	chain   []string
}

// Resolve returns a copy of payload with every $ref replaced by its target.
// Siblings of a $ref are laid over the target when they are annotations.
func (r *Resolver) Resolve(ctx context.Context, doc schema.Document, payload map[string]any) (map[string]any, error) {
	if r == nil {
		return nil, errors.New("jsonschema resolver: resolver is nil")
	}
	if doc.Source() == nil {
		return nil, errors.New("jsonschema resolver: source is nil")
	}
	if payload == nil {
		return nil, errors.New("jsonschema resolver: payload is nil")
	}
	if err := r.checkSize(doc); err != nil {
		return nil, err
	}

	res := &resolution{Resolver: r, docs: make(map[string]*refDoc)}
	root, err := res.register(doc.Source(), payload)
	if err != nil {
		return nil, err
	}
	res.rootDir = root.dir

	out, err := res.walk(ctx, root, root.tree)
	if err != nil {
		return nil, err
	}
	resolved, ok := out.(map[string]any)
	if !ok {
		return nil, errors.New("jsonschema resolver: resolved root is not an object")
	}
	return resolved, nil
}

func (r *Resolver) checkSize(doc schema.Document) error {
	if size := int64(len(doc.Raw())); size > r.opts.MaxDocumentBytes {
		return fmt.Errorf("jsonschema resolver: %s is %d bytes, limit %d", doc.Location(), size, r.opts.MaxDocumentBytes)
	}
	return nil
}

func (res *resolution) register(src schema.Source, tree map[string]any) (*refDoc, error) {
	id, dir, err := documentID(src)
	if err != nil {
		return nil, err
	}
	anchors := make(map[string]string)
	if err := collectAnchors(tree, "", anchors); err != nil {
		return nil, err
	}
	d := &refDoc{id: id, src: src, dir: dir, tree: tree, anchors: anchors}
	res.docs[id] = d
	return d, nil
}

func (res *resolution) walk(ctx context.Context, d *refDoc, node any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case map[string]any:
		if ref := strings.TrimSpace(readString(n, "$ref")); ref != "" {
			return res.follow(ctx, d, ref, n)
		}
		out := make(map[string]any, len(n))
		for key, value := range n {
			var err error
			switch key {
			case "$defs", "definitions", "properties":
				out[key], err = res.walkMembers(ctx, d, value)
			case "items", "oneOf", "anyOf", "allOf":
				out[key], err = res.walk(ctx, d, value)
			default:
				out[key] = value
			}
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, value := range n {
			resolved, err := res.walk(ctx, d, value)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	}
	return node, nil
}

// walkMembers resolves every schema of a name -> schema mapping.
func (res *resolution) walkMembers(ctx context.Context, d *refDoc, value any) (any, error) {
	members, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	out := make(map[string]any, len(members))
	for name, member := range members {
		resolved, err := res.walk(ctx, d, member)
		if err != nil {
			return nil, err
		}
		out[name] = resolved
	}
	return out, nil
}

func (res *resolution) follow(ctx context.Context, d *refDoc, ref string, siblings map[string]any) (any, error) {
	target, value, id, err := res.locate(ctx, d, ref)
	if err != nil {
		return nil, err
	}
	if len(res.chain) >= res.opts.MaxRefDepth {
		return nil, fmt.Errorf("jsonschema resolver: ref depth exceeds %d", res.opts.MaxRefDepth)
	}
	if slices.Contains(res.chain, id) {
		return nil, fmt.Errorf("%w at %s", ErrRefCycle, ref)
	}
	merged, err := overlay(value, siblings)
	if err != nil {
		return nil, err
	}

	res.chain = append(res.chain, id)
	defer func() { res.chain = res.chain[:len(res.chain)-1] }()
	return res.walk(ctx, target, merged)
}

// locate returns the document a ref points into, a copy of the target value
// and the id used for cycle detection.
func (res *resolution) locate(ctx context.Context, d *refDoc, ref string) (*refDoc, any, string, error) {
	location, fragment, _ := strings.Cut(ref, "#")
	target := d
	if location != "" {
		src, err := res.sourceFor(d, ref, location)
		if err != nil {
			return nil, nil, "", err
		}
		if target, err = res.load(ctx, src); err != nil {
			return nil, nil, "", err
		}
	}
	value, err := target.lookup(fragment)
	return target, value, target.id + "#" + fragment, err
}

func (res *resolution) sourceFor(d *refDoc, ref, location string) (schema.Source, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: invalid ref %q", ref)
	}

	switch u.Scheme {
	case "http", "https":
		if !res.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", ref)
		}
		return schema.SourceFromURL(u.String()), nil
	case "file":
		return schema.SourceFromFile(u.Path), nil
	case "":
		return res.relativeTo(d, u.Path)
	}
	return nil, fmt.Errorf("jsonschema resolver: unsupported ref scheme %q", u.Scheme)
}

func (res *resolution) relativeTo(d *refDoc, ref string) (schema.Source, error) {
	escapes := fmt.Errorf("jsonschema resolver: ref path escapes root (%s)", ref)

	switch d.src.Kind() {
	case schema.SourceKindFile:
		candidate := ref
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(d.dir, ref)
		}
		candidate = filepath.Clean(candidate)
		if !res.opts.AllowPathTraversal {
			rel, err := filepath.Rel(res.rootDir, candidate)
			if err != nil {
				return nil, err
			}
			if strings.HasPrefix(rel, "..") {
				return nil, escapes
			}
		}
		return schema.SourceFromFile(candidate), nil
	case schema.SourceKindFS:
		candidate := strings.TrimPrefix(path.Clean(path.Join(d.dir, ref)), "/")
		if !res.opts.AllowPathTraversal && !withinFSRoot(res.rootDir, candidate) {
			return nil, escapes
		}
		return schema.SourceFromFS(candidate), nil
	case schema.SourceKindURL:
		if !res.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema resolver: http refs disabled (%s)", ref)
		}
		base, err := url.Parse(d.src.Location())
		if err != nil {
			return nil, err
		}
		rel, err := url.Parse(ref)
		if err != nil {
			return nil, err
		}
		return schema.SourceFromURL(base.ResolveReference(rel).String()), nil
	}
	return nil, fmt.Errorf("jsonschema resolver: relative ref %q needs a file, fs or url source", ref)
}

func withinFSRoot(root, candidate string) bool {
	root = strings.TrimPrefix(path.Clean(root), "/")
	if root == "." || root == "" {
		return !strings.HasPrefix(candidate, "..")
	}
	return candidate == root || strings.HasPrefix(candidate, root+"/")
}

func (res *resolution) load(ctx context.Context, src schema.Source) (*refDoc, error) {
	id, _, err := documentID(src)
	if err != nil {
		return nil, err
	}
	if d, ok := res.docs[id]; ok {
		return d, nil
	}
	if res.loader == nil {
		return nil, fmt.Errorf("jsonschema resolver: no loader for %s", src.Location())
	}
	if len(res.docs) >= res.opts.MaxDocuments {
		return nil, fmt.Errorf("jsonschema resolver: more than %d documents", res.opts.MaxDocuments)
	}

	doc, err := res.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: load %s: %w", src.Location(), err)
	}
	if err := res.checkSize(doc); err != nil {
		return nil, err
	}
	tree, err := parsePayload(doc.Raw())
	if err == nil {
		err = validateDialect(tree)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonschema resolver: %s: %w", src.Location(), err)
	}
	return res.register(src, tree)
}

// documentID returns a key identifying src across source kinds and the
// directory relative refs inside it resolve against.
func documentID(src schema.Source) (id, dir string, err error) {
	if src == nil {
		return "", "", errors.New("jsonschema resolver: source is nil")
	}
	location := src.Location()

	switch src.Kind() {
	case schema.SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", err
		}
		return "file:" + abs, filepath.Dir(abs), nil
	case schema.SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		return "fs:" + cleaned, path.Dir(cleaned), nil
	case schema.SourceKindURL:
		return "url:" + location, path.Dir(location), nil
	case schema.SourceKindInline:
		return "inline:" + location, "", nil
	}
	return "", "", fmt.Errorf("jsonschema resolver: unsupported source kind %q", src.Kind())
}

// lookup resolves a fragment: empty for the whole document, a JSON pointer
// or an $anchor name.
func (d *refDoc) lookup(fragment string) (any, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	pointer := fragment
	if fragment != "" && !strings.HasPrefix(fragment, "/") {
		var ok bool
		if pointer, ok = d.anchors[fragment]; !ok {
			return nil, fmt.Errorf("%w: anchor %q", ErrRefNotFound, fragment)
		}
	}

	current := any(d.tree)
	if pointer == "" {
		return cloneAny(current), nil
	}
	for _, token := range strings.Split(pointer, "/")[1:] {
		token, err := unescapePointerToken(token)
		if err != nil {
			return nil, err
		}
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, fmt.Errorf("%w: pointer %q", ErrRefNotFound, pointer)
			}
			current = next
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("%w: pointer %q out of range", ErrRefNotFound, pointer)
			}
			current = node[i]
		default:
			return nil, fmt.Errorf("%w: pointer %q", ErrRefNotFound, pointer)
		}
	}
	return cloneAny(current), nil
}

func unescapePointerToken(token string) (string, error) {
	decoded, err := url.PathUnescape(token)
	if err != nil {
		return "", err
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(decoded), nil
}

func escapeJSONPointer(value string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(value)
}

// collectAnchors maps $anchor names to the JSON pointer of their schema.
func collectAnchors(node any, pointer string, anchors map[string]string) error {
	switch n := node.(type) {
	case map[string]any:
		if name := strings.TrimSpace(readString(n, "$anchor")); name != "" {
			if _, dup := anchors[name]; dup {
				return fmt.Errorf("jsonschema resolver: duplicate anchor %q", name)
			}
			anchors[name] = pointer
		}
		for key, value := range n {
			if isVendorExtension(key) {
				continue
			}
			if err := collectAnchors(value, pointer+"/"+escapeJSONPointer(key), anchors); err != nil {
				return err
			}
		}
	case []any:
		for i, value := range n {
			if err := collectAnchors(value, pointer+"/"+strconv.Itoa(i), anchors); err != nil {
				return err
			}
		}
	}
	return nil
}

// overlay lays the annotation siblings of a $ref over its target. Any other
// sibling keyword is an error.
func overlay(target any, siblings map[string]any) (any, error) {
	obj, isObject := target.(map[string]any)
	for key, value := range siblings {
		if key == "$ref" {
			continue
		}
		if !isObject {
			return nil, errors.New("jsonschema resolver: $ref target is not an object")
		}
		if !annotationKeyword(key) {
			return nil, fmt.Errorf("jsonschema resolver: unsupported $ref sibling %q", key)
		}
		obj[key] = value
	}
	return target, nil
}

func annotationKeyword(key string) bool {
	switch key {
	case "title", "description", "default", "examples", "nullable", "readOnly", "writeOnly", "deprecated", "$comment":
		return true
	}
	return isVendorExtension(key)
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func cloneAny(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneAny(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneAny(item)
		}
		return out
	}
	return value
}
