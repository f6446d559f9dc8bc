package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-docgen/pkg/orchestrator"
)

func newRenderersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "renderers",
		Short: "List available renderers and input formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch := orchestrator.New()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RENDERER\tCONTENT TYPE")
			for _, pair := range orch.Renderers().Describe() {
				fmt.Fprintf(w, "%s\t%s\n", pair[0], pair[1])
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "FORMAT")
			for _, name := range orch.Adapters().List() {
				fmt.Fprintln(w, name)
			}
			return w.Flush()
		},
	}
}
