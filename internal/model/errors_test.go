package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"invalid input",
			&InvalidInputError{Field: "area", Reason: "must be > 0"},
			"invalid input: area must be > 0",
		},
		{
			"incomplete with missing",
			&IncompletePipelineError{Reason: "appraisal lacks required data", Missing: []string{"final_value", "confidence_level"}},
			"incomplete pipeline: appraisal lacks required data: missing final_value, confidence_level",
		},
		{
			"incomplete bare",
			&IncompletePipelineError{},
			"incomplete pipeline",
		},
		{
			"dependency missing",
			&DependencyMissingError{Stage: StageReadiness, Missing: []Stage{StageCapacity, StageScenario}},
			"stage readiness: missing dependencies: capacity, scenario",
		},
		{
			"missing prerequisite",
			&MissingPrerequisiteError{Stage: StageReadiness, Prerequisite: StageAppraisal},
			"stage readiness: missing prerequisite appraisal",
		},
		{
			"consistency warning",
			ConsistencyWarning{Field: "zone_type", Stage: StageCapacity, Expected: "commercial", Actual: "residential"},
			"consistency: zone_type differs in capacity (expected commercial, got residential)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), KindInternal},
		{"invalid", &InvalidInputError{}, KindInvalidInput},
		{"incomplete", &IncompletePipelineError{}, KindIncompletePipeline},
		{"dependency", &DependencyMissingError{}, KindDependencyMissing},
		{"prerequisite", &MissingPrerequisiteError{}, KindMissingPrerequisite},
		{"warning", ConsistencyWarning{}, KindConsistencyWarning},
		{"fmt wrapped", fmt.Errorf("run: %w", &DependencyMissingError{}), KindDependencyMissing},
		{"eris wrapped", eris.Wrap(&InvalidInputError{}, "runner: reconcile"), KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
