package etl

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Stage is one load step. Table is where the stage writes; it is probed when
// a dependent stage runs without this one.
type Stage struct {
	Name      string
	DependsOn []string
	Table     string
	Optional  bool
	Run       func(ctx context.Context) (Result, error)
}

// PreconditionError reports a dependency that neither ran nor has data.
type PreconditionError struct {
	Stage      string
	Dependency string
	Table      string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("stage %s requires %s: it was not run and table %s is empty", e.Stage, e.Dependency, e.Table)
}

// Graph is a validated, acyclic set of stages.
type Graph struct {
	stages []Stage
	index  map[string]int
	order  []int
}

// NewGraph checks names and dependencies and fixes the execution order.
func NewGraph(stages ...Stage) (*Graph, error) {
	g := &Graph{stages: stages, index: make(map[string]int, len(stages))}
	for i, s := range stages {
		if s.Name == "" {
			return nil, errors.Errorf("stage %d has no name", i)
		}
		if _, dup := g.index[s.Name]; dup {
			return nil, errors.Errorf("duplicate stage %q", s.Name)
		}
		g.index[s.Name] = i
	}
	for _, s := range stages {
		for _, d := range s.DependsOn {
			if _, ok := g.index[d]; !ok {
				return nil, errors.Errorf("stage %q depends on unknown stage %q", s.Name, d)
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

// topoSort emits, at each step, the earliest-declared stage whose
// dependencies are all emitted.
func (g *Graph) topoSort() ([]int, error) {
	emitted := make([]bool, len(g.stages))
	order := make([]int, 0, len(g.stages))
	for len(order) < len(g.stages) {
		next := -1
		for i, s := range g.stages {
			if emitted[i] {
				continue
			}
			ready := true
			for _, d := range s.DependsOn {
				if !emitted[g.index[d]] {
					ready = false
					break
				}
			}
			if ready {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, s := range g.stages {
				if !emitted[i] {
					stuck = append(stuck, s.Name)
				}
			}
			return nil, errors.Errorf("dependency cycle among stages: %s", strings.Join(stuck, ", "))
		}
		emitted[next] = true
		order = append(order, next)
	}
	return order, nil
}

// Order returns every stage in execution order.
func (g *Graph) Order() []Stage {
	out := make([]Stage, len(g.order))
	for i, idx := range g.order {
		out[i] = g.stages[idx]
	}
	return out
}

// Names returns the stage names in execution order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	for i, idx := range g.order {
		out[i] = g.stages[idx].Name
	}
	return out
}

// Stage looks a stage up by name.
func (g *Graph) Stage(name string) (Stage, bool) {
	i, ok := g.index[name]
	if !ok {
		return Stage{}, false
	}
	return g.stages[i], true
}

// Select returns the named stages in execution order. No names selects all.
func (g *Graph) Select(names []string) ([]Stage, error) {
	if len(names) == 0 {
		return g.Order(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := g.index[n]; !ok {
			return nil, errors.Errorf("unknown stage %q (known: %s)", n, strings.Join(g.Names(), ", "))
		}
		want[n] = true
	}
	var out []Stage
	for _, s := range g.Order() {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out, nil
}
