package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/parcel-cli/internal/pipeline"
	"github.com/sells-group/parcel-cli/internal/source"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir|glob>",
	Short: "Run the full pipeline for every case file in a directory or glob",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		jsonOut, _ := cmd.Flags().GetBool("json")
		noStore, _ := cmd.Flags().GetBool("no-store")
		limit, _ := cmd.Flags().GetInt("limit")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrency
		}

		applyEngineFlag(cmd)

		cases, err := source.LoadCases(args[0])
		if err != nil {
			return err
		}
		if limit > 0 && len(cases) > limit {
			cases = cases[:limit]
		}

		inputs := make([]pipeline.Input, 0, len(cases))
		for _, c := range cases {
			in, err := c.Input()
			if err != nil {
				return err
			}
			if err := applyInputFlags(cmd, &in); err != nil {
				return err
			}
			inputs = append(inputs, in)
		}

		st, err := initStore(ctx, noStore)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		p, err := pipeline.New(cfg, st)
		if err != nil {
			return err
		}
		m, flush := runMetrics(cmd)
		defer flush()
		p.WithMetrics(m)

		summary, err := p.RunBatch(ctx, inputs, concurrency)
		if err != nil {
			return err
		}

		if jsonOut {
			if err := writeJSON(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
		} else {
			formatBatch(cmd.OutOrStdout(), summary)
		}
		if summary.Failed > 0 {
			return eris.Errorf("batch: %d of %d cases failed", summary.Failed, len(inputs))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Int("limit", 0, "max number of cases to process (0 = all)")
	batchCmd.Flags().Int("concurrency", 0, "max cases in flight; defaults to batch.max_concurrency")
	batchCmd.Flags().String("engine", "", "readiness engine version (v1, v42); defaults to readiness.engine")
	batchCmd.Flags().String("housing-type", "", "housing program applied to every case")
	batchCmd.Flags().Int("target-units", 0, "target unit count applied to every case")
	batchCmd.Flags().Bool("json", false, "print the batch summary as JSON")
	batchCmd.Flags().Bool("no-store", false, "do not persist analysis contexts")
	batchCmd.Flags().String("metrics-file", "", "write run metrics to this node_exporter textfile")
	rootCmd.AddCommand(batchCmd)
}
