package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/pkg/descriptor"
	"github.com/goliatone/go-docgen/pkg/scaffold"
)

func newScaffoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Create descriptor documents interactively",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "model",
		Short: "Prompt for models and print them as a descriptor document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			builder, err := scaffold.New(scaffold.WithPromptDriver(scaffold.NewSurveyDriver(cmd.ErrOrStderr())))
			if err != nil {
				return err
			}
			doc, err := builder.Document(cmd.Context())
			if err != nil {
				return err
			}
			out, err := descriptor.Encode(doc)
			if err != nil {
				return err
			}
			return writeOutput(cmd, cfg.Output, out)
		},
	})
	return cmd
}
