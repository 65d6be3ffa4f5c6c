package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/parcel-cli/internal/pipeline"
	"github.com/sells-group/parcel-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored analysis contexts",
	Long:  "Commands for listing, viewing, and checking persisted analysis contexts.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis contexts, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, false)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		parcel, _ := cmd.Flags().GetString("parcel")
		ver, _ := cmd.Flags().GetString("version")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		list, err := st.ListContexts(ctx, store.ContextFilter{
			ParcelID: parcel,
			Version:  ver,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No contexts found.")
			return nil
		}

		formatContextList(cmd.OutOrStdout(), list)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <context-id>",
	Short: "Show a stored analysis context as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, false)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ac, err := st.GetContext(ctx, args[0])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return eris.Errorf("runs show: no context %s", args[0])
			}
			return eris.Wrap(err, "runs show")
		}

		return writeJSON(cmd.OutOrStdout(), ac)
	},
}

// -- runs check --

var runsCheckCmd = &cobra.Command{
	Use:   "check <context-id>",
	Short: "Check a stored context's structure and cross-stage consistency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, false)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ac, err := st.GetContext(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs check")
		}

		out := cmd.OutOrStdout()
		issues := pipeline.ValidateContextStructure(ac)
		if len(issues) == 0 {
			_, _ = fmt.Fprintln(out, "Structure: OK")
		} else {
			_, _ = fmt.Fprintln(out, "Structure:")
			for _, issue := range issues {
				_, _ = fmt.Fprintf(out, "  - %s\n", issue)
			}
		}
		formatConsistency(out, pipeline.CheckDataConsistency(ac))

		if len(issues) > 0 {
			return eris.Errorf("runs check: %d structural issues", len(issues))
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("parcel", "", "filter by parcel ID")
	runsListCmd.Flags().String("version", "", "filter by context version")
	runsListCmd.Flags().Int("limit", 50, "max number of contexts to display")
	runsListCmd.Flags().Int("offset", 0, "number of contexts to skip")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsCheckCmd)
	rootCmd.AddCommand(runsCmd)
}
