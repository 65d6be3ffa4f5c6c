package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/pipeline"
	"github.com/sells-group/parcel-cli/internal/source"
)

var readinessCmd = &cobra.Command{
	Use:   "readiness <case.yaml>",
	Short: "Run the full pipeline for one case and score its readiness",
	Long: "Appraises the parcel, locks the appraisal, runs diagnosis, capacity, risk and " +
		"scenario stages, checks cross-stage consistency and scores readiness. The " +
		"finished analysis context is saved to the configured store.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		jsonOut, _ := cmd.Flags().GetBool("json")
		noStore, _ := cmd.Flags().GetBool("no-store")

		applyEngineFlag(cmd)

		c, err := source.LoadCase(args[0])
		if err != nil {
			return err
		}
		in, err := c.Input()
		if err != nil {
			return err
		}
		if err := applyInputFlags(cmd, &in); err != nil {
			return err
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

		res, err := p.Run(ctx, in)
		if err != nil {
			return eris.Wrapf(err, "readiness %s", in.Name)
		}

		out := cmd.OutOrStdout()
		if jsonOut {
			return writeJSON(out, res)
		}
		_, _ = fmt.Fprintf(out, "Context: %s\n\n", res.Context.ID)
		formatAppraisal(out, &res.Context.Appraisal.Result)
		_, _ = fmt.Fprintln(out)
		formatConsistency(out, res.Consistency)
		_, _ = fmt.Fprintln(out)
		formatReadiness(out, res.Context.Readiness)
		return nil
	},
}

// applyEngineFlag overrides the configured readiness engine. pipeline.New
// rejects unknown versions.
func applyEngineFlag(cmd *cobra.Command) {
	if cmd.Flags().Changed("engine") {
		engine, _ := cmd.Flags().GetString("engine")
		cfg.Readiness.Engine = engine
	}
}

// applyInputFlags overrides the case's housing type and target units.
func applyInputFlags(cmd *cobra.Command, in *pipeline.Input) error {
	if cmd.Flags().Changed("housing-type") {
		raw, _ := cmd.Flags().GetString("housing-type")
		ht, err := model.ParseHousingType(raw)
		if err != nil {
			return err
		}
		in.HousingType = ht
	}
	if cmd.Flags().Changed("target-units") {
		n, _ := cmd.Flags().GetInt("target-units")
		if n < 0 {
			return &model.InvalidInputError{Field: "target_units", Reason: "must be >= 0"}
		}
		in.TargetUnits = n
	}
	return nil
}

func init() {
	readinessCmd.Flags().String("engine", "", "readiness engine version (v1, v42); defaults to readiness.engine")
	readinessCmd.Flags().String("housing-type", "", "housing program (youth, newlywed, elderly, general)")
	readinessCmd.Flags().Int("target-units", 0, "target unit count; 0 uses the capacity estimate")
	readinessCmd.Flags().Bool("json", false, "print the full result as JSON")
	readinessCmd.Flags().Bool("no-store", false, "do not persist the analysis context")
	readinessCmd.Flags().String("metrics-file", "", "write run metrics to this node_exporter textfile")
	rootCmd.AddCommand(readinessCmd)
}
