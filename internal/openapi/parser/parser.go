package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-docgen/pkg/model"
	pkgopenapi "github.com/goliatone/go-docgen/pkg/openapi"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

// Ensure the implementation satisfies the public interface.
var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) pkgopenapi.Parser {
	return &Parser{options: options}
}

var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE"}

// Parse loads the payload and converts operations into routes (sorted by path
// then method) and components.schemas into models. Models and their
// properties keep declaration order.
func (p *Parser) Parse(ctx context.Context, raw []byte) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	if len(raw) == 0 {
		return model.Document{}, errors.New("openapi parser: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(recordOrder(raw))
	if err != nil {
		return model.Document{}, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if (spec.Paths == nil || spec.Paths.Len() == 0) && !p.options.AllowPartialDocuments {
		return model.Document{}, errors.New("openapi parser: document does not contain any paths")
	}
	if p.options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return model.Document{}, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	var doc model.Document
	if spec.Info != nil {
		doc.Title = spec.Info.Title
		doc.Description = spec.Info.Description
		doc.Version = spec.Info.Version
	}

	conv := newConverter()
	doc.Models = conv.models(spec)

	if spec.Paths != nil {
		paths := spec.Paths.Map()
		keys := make([]string, 0, len(paths))
		for path := range paths {
			keys = append(keys, path)
		}
		sort.Strings(keys)

		for _, path := range keys {
			item := paths[path]
			if item == nil {
				continue
			}
			for _, method := range methodOrder {
				op := item.GetOperation(method)
				if op == nil {
					continue
				}
				if err := ctx.Err(); err != nil {
					return model.Document{}, err
				}
				doc.Routes = append(doc.Routes, conv.route(spec, method, path, item, op))
			}
		}
	}
	return doc, nil
}

func (c *converter) route(spec *openapi3.T, method, path string, item *openapi3.PathItem, op *openapi3.Operation) model.RouteDescriptor {
	r := model.RouteDescriptor{
		Method:      method,
		Path:        expressPath(path),
		Name:        op.Summary,
		Description: op.Description,
	}
	if r.Name == "" {
		r.Name = op.OperationID
	}
	if len(op.Tags) > 0 {
		r.Group = op.Tags[0]
	}

	security := spec.Security
	if op.Security != nil {
		security = *op.Security
	}
	r.Permissions = permissions(security)

	r.Input = c.parameters(append(append(openapi3.Parameters{}, item.Parameters...), op.Parameters...))

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if mt := pickMediaType(op.RequestBody.Value.Content); mt != nil {
			r.Input.Body = c.node(mt.Schema, false)
			r.InputExamples = examples(mt)
		}
	}

	if mt := successMediaType(op.Responses); mt != nil {
		r.Output = c.node(mt.Schema, false)
		r.OutputExamples = examples(mt)
	}
	return r
}

// parameters groups parameters by location. A later declaration with the
// same name and location replaces an earlier one, so operation parameters
// override path item parameters.
func (c *converter) parameters(params openapi3.Parameters) model.Input {
	sections := map[string]model.Object{}
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		param := ref.Value

		var node model.FieldNode = model.FieldDescriptor{Kind: model.KindString}
		if param.Schema != nil {
			node = c.node(param.Schema, param.Required)
		}
		if field, ok := node.(model.FieldDescriptor); ok {
			if param.Required {
				field.Nullable = model.Bool(false)
			}
			if field.Comment == "" {
				field.Comment = param.Description
			}
			if field.Example == nil {
				field.Example = param.Example
			}
			node = field
		}

		obj := sections[param.In]
		replaced := false
		for i := range obj {
			if obj[i].Name == param.Name {
				obj[i].Node = node
				replaced = true
			}
		}
		if !replaced {
			obj = append(obj, model.Prop(param.Name, node))
		}
		sections[param.In] = obj
	}

	var in model.Input
	if obj, ok := sections[openapi3.ParameterInHeader]; ok {
		in.Headers = obj
	}
	if obj, ok := sections[openapi3.ParameterInPath]; ok {
		in.Params = obj
	}
	if obj, ok := sections[openapi3.ParameterInQuery]; ok {
		in.Query = obj
	}
	return in
}

func pickMediaType(content openapi3.Content) *openapi3.MediaType {
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil {
			return mt
		}
	}
	return nil
}

// successMediaType returns the media type of the lowest 2xx response that
// declares content.
func successMediaType(responses *openapi3.Responses) *openapi3.MediaType {
	if responses == nil || responses.Len() == 0 {
		return nil
	}
	all := responses.Map()
	codes := make([]string, 0, len(all))
	for code := range all {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	for _, code := range codes {
		ref := all[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		if mt := pickMediaType(ref.Value.Content); mt != nil {
			return mt
		}
	}
	return nil
}

func examples(mt *openapi3.MediaType) []model.Example {
	var out []model.Example
	if mt.Example != nil {
		out = append(out, model.Example{Data: mt.Example})
	}
	names := make([]string, 0, len(mt.Examples))
	for name := range mt.Examples {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ref := mt.Examples[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		title := ref.Value.Summary
		if title == "" {
			title = name
		}
		out = append(out, model.Example{Title: title, Data: ref.Value.Value})
	}
	return out
}

// permissions flattens security requirements into role names: OAuth scopes
// when declared, otherwise the scheme name.
func permissions(reqs openapi3.SecurityRequirements) []string {
	var out []string
	seen := map[string]bool{}
	add := func(role string) {
		if role != "" && !seen[role] {
			seen[role] = true
			out = append(out, role)
		}
	}
	for _, req := range reqs {
		schemes := make([]string, 0, len(req))
		for scheme := range req {
			schemes = append(schemes, scheme)
		}
		sort.Strings(schemes)
		for _, scheme := range schemes {
			if len(req[scheme]) == 0 {
				add(scheme)
				continue
			}
			for _, scope := range req[scheme] {
				add(scope)
			}
		}
	}
	return out
}

// expressPath rewrites {param} segments as :param.
func expressPath(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		if path[i] != '{' {
			b.WriteByte(path[i])
			continue
		}
		end := strings.IndexByte(path[i:], '}')
		if end < 0 {
			b.WriteString(path[i:])
			break
		}
		b.WriteByte(':')
		b.WriteString(path[i+1 : i+end])
		i += end
	}
	return b.String()
}
