package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/internal/config"
	"github.com/goliatone/go-docgen/internal/loader"
	internalmodel "github.com/goliatone/go-docgen/internal/model"
	"github.com/goliatone/go-docgen/pkg/model"
	"github.com/goliatone/go-docgen/pkg/orchestrator"
	"github.com/goliatone/go-docgen/pkg/render"
	"github.com/goliatone/go-docgen/pkg/renderers/apidoc"
	"github.com/goliatone/go-docgen/pkg/renderers/markdown"
	doctemplate "github.com/goliatone/go-docgen/pkg/renderers/template"
	"github.com/goliatone/go-docgen/pkg/schema"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <source>",
		Short: "Render a descriptor, HCL, JSON Schema or OpenAPI document",
		Long: "Render a descriptor document. The source is a file path, an http(s) URL " +
			"(requires --http-timeout) or - for stdin.",
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}
	flags := cmd.Flags()
	flags.StringP("format", "f", "", "input format (descriptor, hcl, jsonschema, openapi); detected when empty")
	flags.StringP("renderer", "r", "apidoc", "renderer (apidoc, markdown, template)")
	flags.String("templates", "", "directory overriding the template renderer's templates")
	flags.String("template", doctemplate.DefaultTemplate, "template name used by the template renderer")
	flags.String("preset", "", "YAML or JSON file with documentation overrides")
	flags.StringSlice("models", nil, "only render these models")
	flags.StringSlice("routes", nil, "only render routes with these names or paths")
	flags.StringSlice("groups", nil, "only render routes in these groups")
	flags.StringSlice("methods", nil, "only render routes with these methods")
	flags.Bool("sanitize", false, "strip HTML from comments, labels and descriptions")
	flags.String("labeler", "sentence", "fallback description style for unlabelled fields (sentence, title)")
	flags.Int("http-timeout", 0, "enable http(s) sources with this timeout in seconds")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()

	templateName, _ := flags.GetString("template")
	registry, err := rendererRegistry(cfg, templateName)
	if err != nil {
		return err
	}

	options := []orchestrator.Option{
		orchestrator.WithLoader(newLoader(cfg)),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(cfg.Renderer),
		orchestrator.WithLogger(logger),
		orchestrator.WithDecorators(unknownKinds(logger)),
	}
	if preset, _ := flags.GetString("preset"); preset != "" {
		data, err := os.ReadFile(preset)
		if err != nil {
			return fmt.Errorf("read preset: %w", err)
		}
		transformer, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return err
		}
		options = append(options, orchestrator.WithTransformer(transformer))
	}
	orch := orchestrator.New(options...)

	req := orchestrator.Request{
		Format:   cfg.Format,
		Renderer: cfg.Renderer,
		RenderOptions: render.RenderOptions{
			Locale:   cfg.Locale,
			Sanitize: cfg.Sanitize,
			Subset:   subsetFromFlags(cmd),
		},
	}
	if args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		doc, err := schema.NewDocument(schema.SourceInline("stdin"), raw)
		if err != nil {
			return err
		}
		req.SchemaDocument = &doc
	} else {
		req.Source = parseSource(args[0])
	}

	out, err := orch.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}
	return writeOutput(cmd, cfg.Output, out)
}

func rendererRegistry(cfg *config.Config, templateName string) (*render.Registry, error) {
	labeler := apidoc.WithLabeler(internalmodel.Labelers[cfg.Labeler])
	options := []doctemplate.Option{
		doctemplate.WithTemplateName(templateName),
		doctemplate.WithApidocOptions(labeler),
	}
	if cfg.TemplatesDir != "" {
		options = append(options, doctemplate.WithTemplatesDir(cfg.TemplatesDir))
	}
	tpl, err := doctemplate.New(options...)
	if err != nil {
		return nil, err
	}

	registry := render.NewRegistry()
	registry.MustRegister(apidoc.New(labeler))
	registry.MustRegister(markdown.New())
	registry.MustRegister(tpl)
	return registry, nil
}

func newLoader(cfg *config.Config) schema.Loader {
	var options []schema.LoaderOption
	if timeout := cfg.HTTPTimeout(); timeout > 0 {
		options = append(options, schema.WithHTTPFallback(timeout))
	}
	return loader.New(schema.NewLoaderOptions(options...))
}

func parseSource(raw string) schema.Source {
	path := strings.TrimSpace(raw)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return schema.SourceFromURL(path)
	}
	return schema.SourceFromFile(path)
}

func subsetFromFlags(cmd *cobra.Command) render.DocumentSubset {
	flags := cmd.Flags()
	models, _ := flags.GetStringSlice("models")
	routes, _ := flags.GetStringSlice("routes")
	groups, _ := flags.GetStringSlice("groups")
	methods, _ := flags.GetStringSlice("methods")
	return render.DocumentSubset{Models: models, Routes: routes, Groups: groups, Methods: methods}
}

// unknownKinds warns about fields whose kind is outside the known set. They
// still render, as strings.
func unknownKinds(logger *slog.Logger) model.Decorator {
	return model.DecoratorFunc(func(doc *model.Document) error {
		warn := func(scope string) func(string, model.FieldDescriptor) {
			return func(path string, f model.FieldDescriptor) {
				if !f.Kind.Known() {
					logger.Warn("unknown field kind", "in", scope, "field", path, "kind", string(f.Kind))
				}
			}
		}
		for _, m := range doc.Models {
			model.Walk(m.Attributes, warn("model "+m.Name))
		}
		for _, r := range doc.Routes {
			scope := strings.ToLower(r.Method) + " " + r.Path
			for _, node := range []model.FieldNode{r.Input.Headers, r.Input.Params, r.Input.Query, r.Input.Body, r.Output} {
				model.Walk(node, warn(scope))
			}
		}
		return nil
	})
}
