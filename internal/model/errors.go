package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced to callers as structured rejections.
const (
	KindInvalidInput        = "InvalidInputError"
	KindIncompletePipeline  = "IncompletePipelineError"
	KindDependencyMissing   = "DependencyMissingError"
	KindMissingPrerequisite = "MissingPrerequisiteError"
	KindConsistencyWarning  = "ConsistencyWarning"
	KindInternal            = "InternalError"
)

// InvalidInputError rejects a malformed subject or argument. Fatal to the
// current stage; never retried.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Kind returns KindInvalidInput.
func (e *InvalidInputError) Kind() string { return KindInvalidInput }

// IncompletePipelineError means the appraisal sub-document is missing or
// lacks required data. The caller recovers by re-running the appraisal.
type IncompletePipelineError struct {
	Missing []string
	Reason  string
}

func (e *IncompletePipelineError) Error() string {
	var b strings.Builder
	b.WriteString("incomplete pipeline")
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Missing) > 0 {
		b.WriteString(": missing ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	return b.String()
}

// Kind returns KindIncompletePipeline.
func (e *IncompletePipelineError) Kind() string { return KindIncompletePipeline }

// DependencyMissingError names every predecessor a stage is missing.
type DependencyMissingError struct {
	Stage   Stage
	Missing []Stage
}

func (e *DependencyMissingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, s := range e.Missing {
		names[i] = string(s)
	}
	return fmt.Sprintf("stage %s: missing dependencies: %s", e.Stage, strings.Join(names, ", "))
}

// Kind returns KindDependencyMissing.
func (e *DependencyMissingError) Kind() string { return KindDependencyMissing }

// MissingPrerequisiteError means a scoring stage was invoked without the
// data it cannot default.
type MissingPrerequisiteError struct {
	Stage        Stage
	Prerequisite Stage
}

func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("stage %s: missing prerequisite %s", e.Stage, e.Prerequisite)
}

// Kind returns KindMissingPrerequisite.
func (e *MissingPrerequisiteError) Kind() string { return KindMissingPrerequisite }

// ConsistencyWarning records a field whose value differs between the
// appraisal and a derived sub-document. It is reported, never raised.
type ConsistencyWarning struct {
	Field    string `json:"field"`
	Stage    Stage  `json:"stage"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (w ConsistencyWarning) Error() string {
	return fmt.Sprintf("consistency: %s differs in %s (expected %s, got %s)", w.Field, w.Stage, w.Expected, w.Actual)
}

// Kind returns KindConsistencyWarning.
func (w ConsistencyWarning) Kind() string { return KindConsistencyWarning }

type kinded interface {
	Kind() string
}

// KindOf classifies err by the first typed error in its chain.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}
