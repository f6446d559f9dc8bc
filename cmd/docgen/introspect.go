package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/pkg/descriptor"
	"github.com/goliatone/go-docgen/pkg/introspect"
	"github.com/goliatone/go-docgen/pkg/introspect/postgres"
	"github.com/goliatone/go-docgen/pkg/introspect/sqlite"
	"github.com/goliatone/go-docgen/pkg/render"
	"github.com/goliatone/go-docgen/pkg/renderers/markdown"
)

func newIntrospectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Describe the tables of a live database",
	}
	cmd.PersistentFlags().String("emit", "markdown", "output format (markdown, yaml)")
	cmd.PersistentFlags().String("title", "", "document title")

	sqliteCmd := &cobra.Command{
		Use:   "sqlite <dsn>",
		Short: "Introspect a SQLite database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, _ := cmd.Flags().GetStringSlice("tables")
			db, err := sqlite.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()
			return runIntrospect(cmd, sqlite.New(db, sqlite.WithTables(tables...)))
		},
	}
	sqliteCmd.Flags().StringSlice("tables", nil, "only describe these tables")

	postgresCmd := &cobra.Command{
		Use:   "postgres <database-url>",
		Short: "Introspect a PostgreSQL schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaName, _ := cmd.Flags().GetString("schema")
			pool, err := postgres.Connect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer pool.Close()
			return runIntrospect(cmd, postgres.New(postgres.FromPgx(pool), postgres.WithSchema(schemaName)))
		},
	}
	postgresCmd.Flags().String("schema", postgres.DefaultSchema, "schema to describe")

	cmd.AddCommand(sqliteCmd, postgresCmd)
	return cmd
}

func runIntrospect(cmd *cobra.Command, in introspect.Introspector) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	emit, _ := cmd.Flags().GetString("emit")
	title, _ := cmd.Flags().GetString("title")

	ctx := cmd.Context()
	doc, err := introspect.Document(ctx, in, title)
	if err != nil {
		return err
	}
	logger.Debug("introspected database", "models", len(doc.Models))

	var out []byte
	switch emit {
	case "markdown":
		out, err = markdown.New().Render(ctx, doc, render.RenderOptions{Locale: cfg.Locale})
	case "yaml":
		out, err = descriptor.Encode(doc)
	default:
		return fmt.Errorf("unknown --emit value %q (markdown, yaml)", emit)
	}
	if err != nil {
		return err
	}
	return writeOutput(cmd, cfg.Output, out)
}
