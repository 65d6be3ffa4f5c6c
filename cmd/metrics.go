package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/parcel-cli/internal/metrics"
)

// runMetrics returns collectors and a flush func when --metrics-file is set.
// Without the flag both are no-ops.
func runMetrics(cmd *cobra.Command) (*metrics.Metrics, func()) {
	path, _ := cmd.Flags().GetString("metrics-file")
	if path == "" {
		return nil, func() {}
	}
	m := metrics.New()
	return m, func() {
		if err := m.WriteTextfile(path); err != nil {
			zap.L().Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}
}
