package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/parcel-cli/internal/model"
)

func TestDefaultGraph(t *testing.T) {
	t.Parallel()

	deps, ok := DefaultGraph.Requires(model.StageReadiness)
	require.True(t, ok)
	assert.Equal(t, []model.Stage{model.StageAppraisal, model.StageDiagnosis, model.StageCapacity, model.StageScenario}, deps)

	deps, ok = DefaultGraph.Requires(model.StageDiagnosis)
	require.True(t, ok)
	assert.Equal(t, []model.Stage{model.StageAppraisal}, deps)

	deps, ok = DefaultGraph.Requires(model.StageAppraisal)
	require.True(t, ok)
	assert.Empty(t, deps)

	_, ok = DefaultGraph.Requires("report")
	assert.False(t, ok)

	assert.ElementsMatch(t, model.AllStages, DefaultGraph.Stages())
}

func TestDefaultGraphOrderRespectsDependencies(t *testing.T) {
	t.Parallel()

	order := DefaultGraph.Order()
	require.Len(t, order, len(model.AllStages))
	assert.Equal(t, model.StageAppraisal, order[0])
	assert.Equal(t, model.StageReadiness, order[len(order)-1])

	pos := map[model.Stage]int{}
	for i, s := range order {
		pos[s] = i
	}
	for _, s := range order {
		deps, _ := DefaultGraph.Requires(s)
		for _, d := range deps {
			assert.Less(t, pos[d], pos[s], "%s must come before %s", d, s)
		}
	}
}

func TestGraphRequiresReturnsCopy(t *testing.T) {
	t.Parallel()

	deps, _ := DefaultGraph.Requires(model.StageReadiness)
	deps[0] = "tampered"
	again, _ := DefaultGraph.Requires(model.StageReadiness)
	assert.Equal(t, model.StageAppraisal, again[0])
}

func TestNewGraphRejectsInvalidEdges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edges   []Edge
		wantMsg string
	}{
		{
			"unknown stage",
			[]Edge{{Stage: "a", Requires: []model.Stage{"ghost"}}},
			"requires unknown stage ghost",
		},
		{
			"self loop",
			[]Edge{{Stage: "a", Requires: []model.Stage{"a"}}},
			"requires itself",
		},
		{
			"cycle",
			[]Edge{
				{Stage: "a", Requires: []model.Stage{"c"}},
				{Stage: "b", Requires: []model.Stage{"a"}},
				{Stage: "c", Requires: []model.Stage{"b"}},
			},
			"cycle",
		},
		{
			"duplicate",
			[]Edge{{Stage: "a"}, {Stage: "a"}},
			"declared twice",
		},
		{
			"empty name",
			[]Edge{{Stage: ""}},
			"empty stage name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewGraph(tt.edges)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestMustGraphPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustGraph([]Edge{{Stage: "a", Requires: []model.Stage{"a"}}})
	})
}

func TestGraphString(t *testing.T) {
	t.Parallel()

	s := DefaultGraph.String()
	assert.Contains(t, s, "appraisal <- []")
	assert.Contains(t, s, "scenario <- [appraisal diagnosis capacity]")
}
