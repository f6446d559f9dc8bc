package apidoc

import (
	"fmt"
	"strconv"
	"strings"

	internalmodel "github.com/goliatone/go-docgen/internal/model"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/render"
)

// Annotation tags and section labels. These are part of the apidoc syntax and
// are never translated.
const (
	TagHeader         = "@apiHeader"
	TagParam          = "@apiParam"
	TagSuccess        = "@apiSuccess"
	TagParamExample   = "@apiParamExample"
	TagSuccessExample = "@apiSuccessExample"

	SectionHeaders = "Input - headers"
	SectionParams  = "Input - params"
	SectionQuery   = "Input - query"
	SectionBody    = "Input - body"
	SectionOutput  = "Output - body"

	successStatus = "200 OK"
)

type section struct {
	tag    string
	label  string
	output bool
}

var (
	headersSection = section{tag: TagHeader, label: SectionHeaders}
	paramsSection  = section{tag: TagParam, label: SectionParams}
	querySection   = section{tag: TagParam, label: SectionQuery}
	bodySection    = section{tag: TagParam, label: SectionBody}
	outputSection  = section{tag: TagSuccess, label: SectionOutput, output: true}
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLabeler overrides how property names are turned into descriptions when
// a field declares neither comment nor label.
func WithLabeler(labeler func(string) string) Option {
	return func(c *Compiler) {
		if labeler != nil {
			c.labeler = labeler
		}
	}
}

// WithRenderOptions sets the locale, translator and missing handler used for
// generated prose.
func WithRenderOptions(opts render.RenderOptions) Option {
	return func(c *Compiler) {
		c.messages = opts
	}
}

// Compiler turns route descriptors into apidoc annotation blocks. A Compiler
// holds no mutable state and may be shared across goroutines.
type Compiler struct {
	labeler  internalmodel.Labeler
	messages render.RenderOptions
}

// NewCompiler constructs a Compiler applying options in order.
func NewCompiler(options ...Option) *Compiler {
	c := &Compiler{labeler: internalmodel.SentenceLabeler}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var defaultCompiler = NewCompiler()

// Compile normalizes route and renders its annotation block with the default
// English compiler.
func Compile(route model.RouteDescriptor) (model.RenderedRoute, error) {
	return defaultCompiler.Compile(route)
}

// Compile normalizes route and renders its annotation block. The only failure
// is example data that cannot be encoded as JSON.
func (c *Compiler) Compile(route model.RouteDescriptor) (model.RenderedRoute, error) {
	normalized := internalmodel.NormalizeRoute(route)

	var b strings.Builder
	for _, role := range normalized.Permissions {
		c.writePermission(&b, role)
	}
	c.writeHeader(&b, normalized)

	c.writeFields(&b, "", normalized.Input.Headers, headersSection)
	c.writeFields(&b, "", normalized.Input.Params, paramsSection)
	c.writeFields(&b, "", normalized.Input.Query, querySection)
	c.writeFields(&b, "", normalized.Input.Body, bodySection)
	if err := c.writeInputExamples(&b, normalized); err != nil {
		return model.RenderedRoute{}, fmt.Errorf("apidoc: %s: %w", normalized.Name, err)
	}

	c.writeFields(&b, "", normalized.Output, outputSection)
	if err := c.writeOutputExamples(&b, normalized); err != nil {
		return model.RenderedRoute{}, fmt.Errorf("apidoc: %s: %w", normalized.Name, err)
	}
	b.WriteString("*/\n")

	return model.RenderedRoute{Route: normalized, Apidoc: b.String()}, nil
}

func (c *Compiler) writePermission(b *strings.Builder, role string) {
	b.WriteString("\n/**\n")
	fmt.Fprintf(b, "* @apiDefine %s %s\n", role, c.messages.Message(render.MsgPermissionTitle, role))
	fmt.Fprintf(b, "* %s\n", c.messages.Message(render.MsgPermissionRule, role))
	b.WriteString("*/\n")
}

func (c *Compiler) writeHeader(b *strings.Builder, route model.RouteDescriptor) {
	b.WriteString("\n/**\n")
	fmt.Fprintf(b, "* @api {%s} %s %s\n", route.Method, route.Path, route.Name)
	fmt.Fprintf(b, "* @apiName %s\n", route.Name)
	fmt.Fprintf(b, "* @apiGroup %s\n", route.Group)
	fmt.Fprintf(b, "* @apiDescription %s\n", route.Description)
	fmt.Fprintf(b, "* @apiVersion %s.0.0\n", strconv.Itoa(route.Version))
	for _, role := range route.Permissions {
		fmt.Fprintf(b, "* @apiPermission %s\n", role)
	}
}

// writeFields emits one line per node in pre-order. Arrays and objects below
// the root announce themselves before their children; arrays share their
// path with their element.
func (c *Compiler) writeFields(b *strings.Builder, prefix string, node model.FieldNode, s section) {
	switch n := node.(type) {
	case model.ArrayOf:
		if prefix != "" {
			c.writeLine(b, s, internalmodel.TypeObject+"[]", prefix, c.messages.Message(render.MsgListOfObjects, prefix))
		}
		c.writeFields(b, prefix, n.Element, s)
	case model.Object:
		if prefix != "" {
			c.writeLine(b, s, internalmodel.TypeObject, prefix, c.messages.Message(render.MsgObjectData, prefix))
		}
		for _, prop := range n {
			path := model.JoinPath(prefix, prop.Name)
			switch child := prop.Node.(type) {
			case nil:
				continue
			case model.FieldDescriptor:
				description := internalmodel.DescribeWith(child, prop.Name, c.labeler) +
					internalmodel.RenderValidation(child, s.output)
				c.writeLine(b, s,
					internalmodel.MapType(child, s.output),
					internalmodel.FieldName(child, path, s.output),
					description,
				)
			default:
				c.writeFields(b, path, child, s)
			}
		}
	}
}

// emitsFields reports whether writeFields prints anything for a section root.
// Examples are only written for sections that do, so a bare leaf or an empty
// list at the root yields neither lines nor an example.
func emitsFields(node model.FieldNode) bool {
	switch n := node.(type) {
	case model.ArrayOf:
		return emitsFields(n.Element)
	case model.Object:
		for _, prop := range n {
			if prop.Node != nil {
				return true
			}
		}
	}
	return false
}

func (c *Compiler) writeLine(b *strings.Builder, s section, typ, name, description string) {
	fmt.Fprintf(b, "* %s (%s) {%s} %s %s\n", s.tag, s.label, typ, name, description)
}

func (c *Compiler) writeInputExamples(b *strings.Builder, route model.RouteDescriptor) error {
	if len(route.InputExamples) > 0 {
		for _, example := range route.InputExamples {
			title := example.Title
			if title == "" {
				title = c.messages.Message(render.MsgExampleAllFields)
			}
			if err := writeExample(b, TagParamExample, title, "", example.Data); err != nil {
				return fmt.Errorf("input example %q: %w", title, err)
			}
		}
		return nil
	}

	if !emitsFields(route.Input.Body) {
		return nil
	}

	all, err := internalmodel.FormatExample(internalmodel.SynthesizeExample(route.Input.Body, false))
	if err != nil {
		return fmt.Errorf("body example: %w", err)
	}
	fmt.Fprintf(b, "* %s {json} %s\n", TagParamExample, c.messages.Message(render.MsgExampleAllFields))
	b.WriteString(all)

	required := internalmodel.SynthesizeExample(route.Input.Body, true)
	if internalmodel.IsEmptyExample(required) {
		return nil
	}
	requiredText, err := internalmodel.FormatExample(required)
	if err != nil {
		return fmt.Errorf("required body example: %w", err)
	}
	if requiredText != all {
		fmt.Fprintf(b, "* %s {json} %s\n", TagParamExample, c.messages.Message(render.MsgExampleRequired))
		b.WriteString(requiredText)
	}
	return nil
}

func (c *Compiler) writeOutputExamples(b *strings.Builder, route model.RouteDescriptor) error {
	status := "* HTTP/1.1 " + successStatus + "\n"

	if len(route.OutputExamples) > 0 {
		for _, example := range route.OutputExamples {
			title := example.Title
			if title == "" {
				title = c.messages.Message(render.MsgExampleSuccess)
			}
			if err := writeExample(b, TagSuccessExample, title+": "+successStatus, status, example.Data); err != nil {
				return fmt.Errorf("output example %q: %w", title, err)
			}
		}
		return nil
	}

	if !emitsFields(route.Output) {
		return nil
	}
	title := c.messages.Message(render.MsgExampleSuccess) + ": " + successStatus
	return writeExample(b, TagSuccessExample, title, status, internalmodel.SynthesizeExample(route.Output, false))
}

func writeExample(b *strings.Builder, tag, title, preamble string, data any) error {
	text, err := internalmodel.FormatExample(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "* %s {json} %s\n", tag, title)
	b.WriteString(preamble)
	b.WriteString(text)
	return nil
}
