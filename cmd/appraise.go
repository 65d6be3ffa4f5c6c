package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/parcel-cli/internal/appraisal"
	"github.com/sells-group/parcel-cli/internal/comparable"
	"github.com/sells-group/parcel-cli/internal/config"
	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/pipeline"
	"github.com/sells-group/parcel-cli/internal/source"
)

var appraiseCmd = &cobra.Command{
	Use:   "appraise <case.yaml>",
	Short: "Rank comparables and reconcile a land value for one case",
	Long: "Runs the comparable ranker and the appraisal reconciler only. Nothing is stored; " +
		"use `readiness` to run and persist the full pipeline.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")

		c, err := source.LoadCase(args[0])
		if err != nil {
			return err
		}

		result, err := appraise(cfg.Ranker, cfg.Appraisal, c)
		if err != nil {
			return err
		}

		ac := &model.AnalysisContext{Appraisal: &model.AppraisalEntry{Result: *result}}
		if err := pipeline.ValidateAppraisalComplete(ac, cfg.Pipeline.MinTransactions); err != nil {
			zap.L().Warn("appraisal not ready for downstream stages", zap.String("case", c.Name), zap.Error(err))
		}

		if jsonOut {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		formatAppraisal(cmd.OutOrStdout(), result)
		return nil
	},
}

func appraise(rankCfg config.RankerConfig, appCfg config.AppraisalConfig, c *source.Case) (*model.AppraisalResult, error) {
	txs := comparable.FillDistances(c.Subject, c.Transactions)
	ranked := comparable.NewRanker(rankCfg).Rank(c.Subject.Area, txs)
	result, err := appraisal.NewReconciler(appCfg).Reconcile(c.Subject, ranked, c.Premium)
	if err != nil {
		return nil, eris.Wrapf(err, "appraise %s", c.Name)
	}
	return result, nil
}

func init() {
	appraiseCmd.Flags().Bool("json", false, "print the appraisal as JSON")
	rootCmd.AddCommand(appraiseCmd)
}
