package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/parcel-cli/internal/model"
)

func TestAppraiseCommand_JSON(t *testing.T) {
	setupEnv(t)
	path := writeCase(t, t.TempDir(), "gangnam", 400, 12)

	out, err := executeCommand(t, "appraise", path, "--json")
	require.NoError(t, err)

	var r model.AppraisalResult
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Greater(t, r.FinalValue, 0.0)
	assert.Equal(t, model.ConfidenceHigh, r.Confidence)
	assert.Equal(t, 25.0, r.AppliedPremiumPct)
	assert.Len(t, r.Transactions, 10)
}

func TestAppraiseCommand_Table(t *testing.T) {
	setupEnv(t)
	path := writeCase(t, t.TempDir(), "gangnam", 400, 6)

	out, err := executeCommand(t, "appraise", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Final value:")
	assert.Contains(t, out, "APPROACH")
	assert.Contains(t, out, "medium (6 comparables)")
}

func TestReadinessCommand_NoStoreJSON(t *testing.T) {
	setupEnv(t)
	path := writeCase(t, t.TempDir(), "gangnam", 400, 12)

	out, err := executeCommand(t, "readiness", path, "--json", "--no-store", "--engine", "v1", "--target-units", "40")
	require.NoError(t, err)

	var res struct {
		Context     model.AnalysisContext `json:"context"`
		Consistency struct {
			Status string `json:"status"`
		} `json:"consistency"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Context.Readiness)
	assert.Equal(t, "v1", res.Context.Readiness.EngineVersion)
	assert.Equal(t, 40, res.Context.Readiness.TargetUnits)
	assert.Equal(t, model.HousingYouth, res.Context.Readiness.HousingType)
	assert.True(t, res.Context.Appraisal.Protected)
	assert.Equal(t, "ALL_CONSISTENT", res.Consistency.Status)
}

func TestReadinessCommand_BadHousingType(t *testing.T) {
	setupEnv(t)
	path := writeCase(t, t.TempDir(), "gangnam", 400, 12)

	_, err := executeCommand(t, "readiness", path, "--no-store", "--housing-type", "student")
	require.Error(t, err)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))
}

func TestReadinessCommand_UnknownEngine(t *testing.T) {
	setupEnv(t)
	path := writeCase(t, t.TempDir(), "gangnam", 400, 12)

	_, err := executeCommand(t, "readiness", path, "--no-store", "--engine", "v9")
	require.Error(t, err)
}

func TestReadinessAndRunsCommands(t *testing.T) {
	setupEnv(t)
	path := writeCase(t, t.TempDir(), "gangnam", 400, 12)

	out, err := executeCommand(t, "readiness", path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Context: "))
	id := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(out, "\n", 2)[0], "Context: "))
	assert.Contains(t, out, "Predicted score:")
	assert.Contains(t, out, "Consistency: ALL_CONSISTENT")
	assert.Contains(t, out, "recommended")

	out, err = executeCommand(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id[:8])
	assert.Contains(t, out, "p-gangnam")

	out, err = executeCommand(t, "runs", "show", id)
	require.NoError(t, err)
	var ac model.AnalysisContext
	require.NoError(t, json.Unmarshal([]byte(out), &ac))
	assert.Equal(t, id, ac.ID)
	assert.True(t, ac.HasStage(model.StageReadiness))

	out, err = executeCommand(t, "runs", "check", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Structure: OK")

	_, err = executeCommand(t, "runs", "show", "missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no context missing-id")
}

func TestBatchCommand(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	writeCase(t, dir, "a-good", 400, 12)
	writeCase(t, dir, "b-thin", 400, 2)
	writeCase(t, dir, "c-good", 650, 8)

	out, err := executeCommand(t, "batch", dir, "--no-store", "--concurrency", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 cases failed")
	assert.Contains(t, out, "a-good")
	assert.Contains(t, out, "IncompletePipelineError")
	assert.Contains(t, out, "Succeeded: 2  Failed: 1")
}

func TestBatchCommand_Limit(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	writeCase(t, dir, "a", 400, 12)
	writeCase(t, dir, "b", 400, 12)

	out, err := executeCommand(t, "batch", filepath.Join(dir, "*.yaml"), "--no-store", "--limit", "1", "--json")
	require.NoError(t, err)

	var summary struct {
		Items     []map[string]any `json:"items"`
		Succeeded int              `json:"succeeded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Succeeded)
}

func TestBatchCommand_MetricsFile(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	writeCase(t, dir, "a-good", 400, 12)
	writeCase(t, dir, "b-thin", 400, 2)
	promPath := filepath.Join(t.TempDir(), "parcel.prom")

	_, err := executeCommand(t, "batch", dir, "--no-store", "--metrics-file", promPath)
	require.Error(t, err)

	data, err := os.ReadFile(promPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `parcel_pipeline_runs_total{engine="v42",outcome="ok"} 1`)
	assert.Contains(t, text, `parcel_pipeline_runs_total{engine="v42",outcome="IncompletePipelineError"} 1`)
	assert.Contains(t, text, "parcel_pipeline_stage_duration_seconds")
}
