package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// setupEnv points the store at a temp SQLite file and quiets logging.
func setupEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "parcel.db")
	t.Setenv("PARCEL_STORE_DRIVER", "sqlite")
	t.Setenv("PARCEL_STORE_DATABASE_URL", dbPath)
	t.Setenv("PARCEL_LOG_LEVEL", "error")
	return dbPath
}

// resetFlags restores every flag in the command tree to its default so
// executions do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeCase writes a commercial-zone case file with n comparables.
func writeCase(t *testing.T, dir, name string, area float64, n int) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", name)
	fmt.Fprintf(&b, "subject:\n  parcel_id: %q\n  region: seoul-gangnam\n  area: %g\n  official_price: 27200000\n  zone_type: commercial\n", "p-"+name, area)
	b.WriteString("premium:\n  percentage: 25\n  factors: [subway station]\n")
	b.WriteString("housing_type: youth\n")
	b.WriteString("transactions:\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  - address: comp-%02d\n    area: %d\n    price_per_area: 45000000\n    distance_km: 0.3\n    age_days: 60\n", i, 350+i*10)
	}

	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}
