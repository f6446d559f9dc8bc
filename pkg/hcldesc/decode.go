package hcldesc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/goliatone/go-docgen/pkg/model"
)

// ErrUnresolvedRef is returned when a ref names no model attribute.
var ErrUnresolvedRef = errors.New("unresolved ref")

// Decode parses an HCL descriptor. filename is used in diagnostics.
func Decode(filename string, raw []byte) (model.Document, error) {
	body, err := parseBody(filename, raw)
	if err != nil {
		return model.Document{}, err
	}
	doc, err := decodeDocument(body)
	if err != nil {
		return model.Document{}, fmt.Errorf("hcldesc: %w", err)
	}
	return doc, nil
}

func parseBody(filename string, raw []byte) (*hclsyntax.Body, error) {
	file, diags := hclparse.NewParser().ParseHCL(raw, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("hcldesc: parse: %w", diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.New("hcldesc: unexpected body type")
	}
	return body, nil
}

func decodeDocument(body *hclsyntax.Body) (model.Document, error) {
	var doc model.Document
	for name, attr := range body.Attributes {
		var err error
		switch name {
		case "title":
			doc.Title, err = stringAttr(attr)
		case "description":
			doc.Description, err = stringAttr(attr)
		case "version":
			doc.Version, err = stringAttr(attr)
		default:
			err = rangeError(attr.SrcRange, "unknown attribute %q", name)
		}
		if err != nil {
			return doc, err
		}
	}

	// models first so routes can reference them regardless of order
	for _, block := range body.Blocks {
		switch block.Type {
		case "model":
			m, err := decodeModel(block, doc.Models)
			if err != nil {
				return doc, err
			}
			doc.Models = append(doc.Models, m)
		case "route":
		default:
			return doc, rangeError(block.TypeRange, "unknown block %q", block.Type)
		}
	}
	for _, block := range body.Blocks {
		if block.Type != "route" {
			continue
		}
		r, err := decodeRoute(block, doc.Models)
		if err != nil {
			return doc, err
		}
		doc.Routes = append(doc.Routes, r)
	}
	return doc, nil
}

func decodeModel(block *hclsyntax.Block, known []model.ModelDescriptor) (model.ModelDescriptor, error) {
	if err := wantLabels(block, 1); err != nil {
		return model.ModelDescriptor{}, err
	}
	m := model.ModelDescriptor{Name: block.Labels[0]}
	for name, attr := range block.Body.Attributes {
		if name != "comment" {
			return m, rangeError(attr.SrcRange, "unknown model attribute %q", name)
		}
		comment, err := stringAttr(attr)
		if err != nil {
			return m, err
		}
		m.Comment = comment
	}

	attrs, err := decodeObject(block.Body, known)
	if err != nil {
		return m, fmt.Errorf("model %q: %w", m.Name, err)
	}
	m.Attributes = attrs
	return m, nil
}

func decodeRoute(block *hclsyntax.Block, models []model.ModelDescriptor) (model.RouteDescriptor, error) {
	if err := wantLabels(block, 2); err != nil {
		return model.RouteDescriptor{}, err
	}
	r := model.RouteDescriptor{Method: block.Labels[0], Path: block.Labels[1]}

	for name, attr := range block.Body.Attributes {
		var err error
		switch name {
		case "name":
			r.Name, err = stringAttr(attr)
		case "group":
			r.Group, err = stringAttr(attr)
		case "description":
			r.Description, err = stringAttr(attr)
		case "version":
			r.Version, err = intAttr(attr)
		case "permissions":
			r.Permissions, err = stringsAttr(attr)
		default:
			err = rangeError(attr.SrcRange, "unknown route attribute %q", name)
		}
		if err != nil {
			return r, err
		}
	}

	for _, child := range block.Body.Blocks {
		var err error
		switch child.Type {
		case "input":
			err = decodeInput(child, &r.Input, models)
		case "output":
			if err = wantLabels(child, 0); err == nil {
				r.Output, err = decodeTree(child.Body, models)
			}
		case "input_example":
			var ex model.Example
			ex, err = decodeExample(child)
			r.InputExamples = append(r.InputExamples, ex)
		case "output_example":
			var ex model.Example
			ex, err = decodeExample(child)
			r.OutputExamples = append(r.OutputExamples, ex)
		default:
			err = rangeError(child.TypeRange, "unknown route block %q", child.Type)
		}
		if err != nil {
			return r, fmt.Errorf("route %s %s: %w", r.Method, r.Path, err)
		}
	}
	return r, nil
}

func decodeInput(block *hclsyntax.Block, in *model.Input, models []model.ModelDescriptor) error {
	if err := wantLabels(block, 1); err != nil {
		return err
	}
	tree, err := decodeTree(block.Body, models)
	if err != nil {
		return err
	}
	switch block.Labels[0] {
	case "headers":
		in.Headers = tree
	case "params":
		in.Params = tree
	case "query":
		in.Query = tree
	case "body":
		in.Body = tree
	default:
		return rangeError(block.LabelRanges[0], "unknown input section %q", block.Labels[0])
	}
	return nil
}

// decodeTree reads a section body. A body holding a single unlabeled list
// block is a list at the root.
func decodeTree(body *hclsyntax.Body, models []model.ModelDescriptor) (model.FieldNode, error) {
	if len(body.Blocks) == 1 && body.Blocks[0].Type == "list" && len(body.Blocks[0].Labels) == 0 {
		elem, err := decodeObject(body.Blocks[0].Body, models)
		if err != nil {
			return nil, err
		}
		return model.ArrayOf{Element: elem}, nil
	}
	return decodeObject(body, models)
}

func decodeObject(body *hclsyntax.Body, models []model.ModelDescriptor) (model.Object, error) {
	obj := model.Object{}
	for _, block := range body.Blocks {
		if err := wantLabels(block, 1); err != nil {
			return nil, err
		}
		name := block.Labels[0]

		var (
			node model.FieldNode
			err  error
		)
		switch block.Type {
		case "field", "attribute":
			node, err = decodeField(block.Body, models)
		case "object":
			node, err = decodeObject(block.Body, models)
		case "list":
			var elem model.Object
			elem, err = decodeObject(block.Body, models)
			node = model.ArrayOf{Element: elem}
		default:
			err = rangeError(block.TypeRange, "unknown block %q", block.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		obj = append(obj, model.Prop(name, node))
	}
	return obj, nil
}

func decodeField(body *hclsyntax.Body, models []model.ModelDescriptor) (model.FieldDescriptor, error) {
	var f model.FieldDescriptor
	if attr, ok := body.Attributes["ref"]; ok {
		ref, err := stringAttr(attr)
		if err != nil {
			return f, err
		}
		base, err := resolveRef(ref, models)
		if err != nil {
			return f, fmt.Errorf("%s: %w", attr.SrcRange.String(), err)
		}
		f = base
	}

	for name, attr := range body.Attributes {
		var err error
		switch name {
		case "ref":
		case "type":
			var raw string
			raw, err = stringAttr(attr)
			kind, elem := parseType(raw)
			f.Kind = kind
			if elem != "" {
				f.ElementKind = elem
			}
		case "element_type":
			var raw string
			raw, err = stringAttr(attr)
			f.ElementKind = model.ParseKind(raw)
		case "allow_null":
			var b bool
			b, err = boolAttr(attr)
			f.Nullable = model.Bool(b)
		case "default":
			f.Default, err = exprValue(attr.Expr)
		case "example":
			f.Example, err = exprValue(attr.Expr)
		case "comment":
			f.Comment, err = stringAttr(attr)
		case "label":
			f.Label, err = stringAttr(attr)
		case "values":
			f.EnumValues, err = stringsAttr(attr)
		case "validate":
			f.Validate, err = decodeRules(attr)
		case "primary_key":
			f.PrimaryKey, err = boolAttr(attr)
		case "foreign_key":
			f.ForeignKey, err = boolAttr(attr)
		default:
			err = rangeError(attr.SrcRange, "unknown field attribute %q", name)
		}
		if err != nil {
			return f, err
		}
	}
	if len(body.Blocks) > 0 {
		return f, rangeError(body.Blocks[0].TypeRange, "fields cannot contain blocks")
	}
	return f, nil
}

// resolveRef looks up "model.attr[.nested...]" among the decoded models.
func resolveRef(ref string, models []model.ModelDescriptor) (model.FieldDescriptor, error) {
	parts := strings.Split(ref, ".")
	if len(parts) < 2 {
		return model.FieldDescriptor{}, fmt.Errorf("%w: %q", ErrUnresolvedRef, ref)
	}
	for _, m := range models {
		if m.Name != parts[0] {
			continue
		}
		var node model.FieldNode = m.Attributes
		for _, part := range parts[1:] {
			if arr, ok := node.(model.ArrayOf); ok {
				node = arr.Element
			}
			obj, ok := node.(model.Object)
			if !ok {
				node = nil
				break
			}
			node, _ = obj.Get(part)
		}
		if field, ok := node.(model.FieldDescriptor); ok {
			return field, nil
		}
	}
	return model.FieldDescriptor{}, fmt.Errorf("%w: %q", ErrUnresolvedRef, ref)
}

func decodeRules(attr *hclsyntax.Attribute) ([]model.ValidationRule, error) {
	cons, ok := attr.Expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		names, err := stringsAttr(attr)
		if err != nil {
			return nil, rangeError(attr.SrcRange, "validate must be an object or a list of names")
		}
		out := make([]model.ValidationRule, 0, len(names))
		for _, name := range names {
			out = append(out, model.NormalizeRule(name, true))
		}
		return out, nil
	}

	out := make([]model.ValidationRule, 0, len(cons.Items))
	for _, item := range cons.Items {
		name, err := keyString(item.KeyExpr)
		if err != nil {
			return nil, err
		}
		value, err := exprValue(item.ValueExpr)
		if err != nil {
			return nil, err
		}
		if om, ok := value.(*orderedmap.OrderedMap[string, any]); ok {
			if args, present := om.Get("args"); present {
				value = args
			}
		}
		out = append(out, model.NormalizeRule(name, value))
	}
	return out, nil
}

func decodeExample(block *hclsyntax.Block) (model.Example, error) {
	var ex model.Example
	if err := wantLabels(block, 0); err != nil {
		return ex, err
	}
	for name, attr := range block.Body.Attributes {
		var err error
		switch name {
		case "title":
			ex.Title, err = stringAttr(attr)
		case "data":
			ex.Data, err = exprValue(attr.Expr)
		default:
			err = rangeError(attr.SrcRange, "unknown example attribute %q", name)
		}
		if err != nil {
			return ex, err
		}
	}
	return ex, nil
}

func parseType(raw string) (model.FieldKind, model.FieldKind) {
	head, rest, ok := strings.Cut(raw, "(")
	if !ok {
		return model.ParseKind(raw), ""
	}
	return model.ParseKind(head), model.ParseKind(strings.TrimSuffix(strings.TrimSpace(rest), ")"))
}

func wantLabels(block *hclsyntax.Block, n int) error {
	if len(block.Labels) != n {
		return rangeError(block.TypeRange, "%s block takes %d label(s), got %d", block.Type, n, len(block.Labels))
	}
	return nil
}

func rangeError(rng hcl.Range, format string, args ...any) error {
	return fmt.Errorf("%s: %s", rng.String(), fmt.Sprintf(format, args...))
}

func value(expr hclsyntax.Expression) (cty.Value, error) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return v, nil
}
