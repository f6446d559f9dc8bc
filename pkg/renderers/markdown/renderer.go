// Package markdown renders data models as markdown tables.
package markdown

import (
	"context"
	"fmt"
	"strings"

	internalmodel "github.com/goliatone/go-docgen/internal/model"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/render"
)

// Column widths of the model table.
const (
	AttributeWidth   = 18
	TypeWidth        = 38
	DescriptionWidth = 30
)

const (
	primaryKeyMarker = " [ PK ]"
	foreignKeyMarker = " [ FK ]"
)

// RenderModel renders m with English column headers.
func RenderModel(m model.ModelDescriptor) string {
	return RenderModelWith(m, render.RenderOptions{})
}

// RenderModelWith renders m as a level-3 heading, the optional comment and a
// table with one row per top-level leaf attribute, in declaration order.
// Nested attributes are skipped. Column headers follow opts.Locale.
func RenderModelWith(m model.ModelDescriptor, opts render.RenderOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n### **%s**\n\n", m.Name)
	if m.Comment != "" {
		fmt.Fprintf(&b, "%s\n\n", m.Comment)
	}

	writeRow(&b,
		opts.Message(render.MsgColumnAttribute),
		opts.Message(render.MsgColumnType),
		opts.Message(render.MsgColumnDescription),
	)
	fmt.Fprintf(&b, "|%s|%s|%s|\n",
		strings.Repeat("-", AttributeWidth+2),
		strings.Repeat("-", TypeWidth+2),
		strings.Repeat("-", DescriptionWidth+2),
	)

	for _, prop := range m.Attributes {
		field, ok := prop.Node.(model.FieldDescriptor)
		if !ok {
			continue
		}
		writeRow(&b,
			attributeCell(prop.Name, field),
			"`"+internalmodel.MapType(field, false)+"`",
			internalmodel.DescribeWith(field, prop.Name, nil),
		)
	}
	return b.String()
}

func attributeCell(name string, field model.FieldDescriptor) string {
	cell := "`" + name + "`"
	if field.PrimaryKey {
		cell += primaryKeyMarker
	}
	if field.ForeignKey {
		cell += foreignKeyMarker
	}
	return cell
}

func writeRow(b *strings.Builder, attribute, typ, description string) {
	fmt.Fprintf(b, "| %-*s | %-*s | %-*s |\n",
		AttributeWidth, attribute,
		TypeWidth, typ,
		DescriptionWidth, description,
	)
}

// Renderer emits every model of a document, preceded by the document title
// and description when present.
type Renderer struct{}

// New constructs the markdown renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string {
	return "markdown"
}

func (r *Renderer) ContentType() string {
	return "text/markdown; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, doc model.Document, options render.RenderOptions) ([]byte, error) {
	var b strings.Builder
	if doc.Title != "" {
		fmt.Fprintf(&b, "# %s\n", doc.Title)
		if doc.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", doc.Description)
		}
		if len(doc.Models) > 0 {
			fmt.Fprintf(&b, "\n## %s\n", options.Message(render.MsgModelsHeading))
		}
	}

	for _, m := range doc.Models {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("markdown renderer: %w", err)
		}
		b.WriteString(RenderModelWith(m, options))
	}
	return []byte(b.String()), nil
}
