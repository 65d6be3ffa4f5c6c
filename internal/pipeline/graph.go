package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/parcel-cli/internal/model"
)

// Edge declares that Stage requires every stage in Requires.
type Edge struct {
	Stage    model.Stage
	Requires []model.Stage
}

// Graph is a validated stage dependency DAG. It is immutable once built.
type Graph struct {
	stages []model.Stage
	deps   map[model.Stage][]model.Stage
	order  []model.Stage
}

// DefaultEdges is the analysis stage dependency list. diagnosis and capacity
// only need the appraisal; scenario and readiness fan in.
var DefaultEdges = []Edge{
	{Stage: model.StageAppraisal},
	{Stage: model.StageDiagnosis, Requires: []model.Stage{model.StageAppraisal}},
	{Stage: model.StageCapacity, Requires: []model.Stage{model.StageAppraisal}},
	{Stage: model.StageRisk, Requires: []model.Stage{model.StageAppraisal, model.StageDiagnosis}},
	{Stage: model.StageScenario, Requires: []model.Stage{model.StageAppraisal, model.StageDiagnosis, model.StageCapacity}},
	{Stage: model.StageReadiness, Requires: []model.Stage{model.StageAppraisal, model.StageDiagnosis, model.StageCapacity, model.StageScenario}},
}

// DefaultGraph is built from DefaultEdges at startup.
var DefaultGraph = MustGraph(DefaultEdges)

// NewGraph validates edges and builds a Graph. Every referenced stage must be
// declared, no stage may be declared twice, and the edges must not form a
// cycle.
func NewGraph(edges []Edge) (*Graph, error) {
	g := &Graph{deps: make(map[model.Stage][]model.Stage, len(edges))}
	for _, e := range edges {
		if e.Stage == "" {
			return nil, eris.New("pipeline: graph: empty stage name")
		}
		if _, dup := g.deps[e.Stage]; dup {
			return nil, eris.Errorf("pipeline: graph: stage %s declared twice", e.Stage)
		}
		g.stages = append(g.stages, e.Stage)
		g.deps[e.Stage] = slices.Clone(e.Requires)
		if g.deps[e.Stage] == nil {
			g.deps[e.Stage] = []model.Stage{}
		}
	}

	for _, s := range g.stages {
		for _, dep := range g.deps[s] {
			if _, ok := g.deps[dep]; !ok {
				return nil, eris.Errorf("pipeline: graph: stage %s requires unknown stage %s", s, dep)
			}
			if dep == s {
				return nil, eris.Errorf("pipeline: graph: stage %s requires itself", s)
			}
		}
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.order = order
	return g, nil
}

// MustGraph is NewGraph that panics on an invalid edge list.
func MustGraph(edges []Edge) *Graph {
	g, err := NewGraph(edges)
	if err != nil {
		panic(err)
	}
	return g
}

// topoSort orders stages so each follows all of its requirements. Among
// ready stages, declaration order wins.
func (g *Graph) topoSort() ([]model.Stage, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[model.Stage]int, len(g.stages))
	order := make([]model.Stage, 0, len(g.stages))

	var visit func(s model.Stage, path []model.Stage) error
	visit = func(s model.Stage, path []model.Stage) error {
		switch state[s] {
		case done:
			return nil
		case visiting:
			cycle := append(path, s)
			names := make([]string, len(cycle))
			for i, c := range cycle {
				names[i] = string(c)
			}
			return eris.Errorf("pipeline: graph: cycle %s", strings.Join(names, " -> "))
		}
		state[s] = visiting
		for _, dep := range g.deps[s] {
			if err := visit(dep, append(path, s)); err != nil {
				return err
			}
		}
		state[s] = done
		order = append(order, s)
		return nil
	}

	for _, s := range g.stages {
		if err := visit(s, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Requires returns the predecessors of stage. ok is false for an unknown stage.
func (g *Graph) Requires(stage model.Stage) (deps []model.Stage, ok bool) {
	deps, ok = g.deps[stage]
	return slices.Clone(deps), ok
}

// Order returns every stage in dependency order.
func (g *Graph) Order() []model.Stage {
	return slices.Clone(g.order)
}

// Stages returns the declared stages in declaration order.
func (g *Graph) Stages() []model.Stage {
	return slices.Clone(g.stages)
}

// String renders the edge list, one stage per line.
func (g *Graph) String() string {
	var b strings.Builder
	for _, s := range g.order {
		fmt.Fprintf(&b, "%s <- %v\n", s, g.deps[s])
	}
	return b.String()
}
