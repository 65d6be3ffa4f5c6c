package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/parcel-cli/internal/pipeline"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version, context version and stage graph",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "parcel-cli %s\n", version)
		_, _ = fmt.Fprintf(out, "context version %s, readiness engine %s\n", cfg.Pipeline.Version, cfg.Readiness.Engine)
		_, _ = fmt.Fprintln(out, "stages:")
		_, _ = fmt.Fprint(out, pipeline.DefaultGraph.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
