package etl

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/pkg/logger"
)

// Counter reports how many rows a table holds.
type Counter interface {
	Count(ctx context.Context, table string) (int64, error)
}

// Gate decides whether an optional stage runs.
type Gate func(ctx context.Context, s Stage) (bool, error)

type Pipeline struct {
	Graph    *Graph
	Counter  Counter
	Reporter Reporter
	Gate     Gate
	Driver   string
}

func NewPipeline(g *Graph, counter Counter, reporter Reporter, gate Gate) *Pipeline {
	return &Pipeline{Graph: g, Counter: counter, Reporter: reporter, Gate: gate}
}

// Run executes the selected stages (all when selected is empty) in graph
// order. The first stage error stops the run; the report is returned either
// way.
func (p *Pipeline) Run(ctx context.Context, selected []string) (*RunReport, error) {
	stages, err := p.Graph.Select(selected)
	if err != nil {
		return nil, err
	}

	report := NewRunReport(p.Driver, selected)
	startTime := time.Now()
	logger.Infof("Starting load of %d stages.", len(stages))

	err = p.run(ctx, stages, report)
	report.Finish(err)

	elapsed := time.Since(startTime).Seconds()
	if err != nil {
		logger.Errorf("Load failed: %v", err)
	} else {
		logger.Info("Load completed successfully.")
	}
	logger.Infof("Total time: %.2f seconds (%.2f minutes)", elapsed, elapsed/60)

	if p.Reporter != nil {
		if rerr := p.Reporter.Report(ctx, report); rerr != nil {
			logger.Warnf("Could not write run report: %v", rerr)
		}
	}
	return report, err
}

func (p *Pipeline) run(ctx context.Context, stages []Stage, report *RunReport) error {
	done := make(map[string]bool, len(stages))
	for i, s := range stages {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "load interrupted")
		}
		if err := p.checkDeps(ctx, s, done); err != nil {
			return err
		}

		if s.Optional {
			ok, err := p.allow(ctx, s)
			if err != nil {
				return err
			}
			if !ok {
				logger.Infof("Skipping optional stage %s.", s.Name)
				report.Declined = append(report.Declined, s.Name)
				continue
			}
		}

		logger.Infof("[%d/%d] Loading %s...", i+1, len(stages), s.Name)
		res, err := s.Run(ctx)
		if res.Stage == "" {
			res.Stage = s.Name
		}
		if err != nil {
			res.Error = err.Error()
			report.Add(res)
			return errors.WithMessagef(err, "stage %s", s.Name)
		}
		report.Add(res)
		done[s.Name] = true
		logger.Infof("  Loaded %d %s (%d skipped) in %.2fs", res.Loaded, s.Name, res.Skipped, res.Duration.Seconds())
	}
	return nil
}

// checkDeps accepts a dependency that ran in this run or whose table already
// has rows.
func (p *Pipeline) checkDeps(ctx context.Context, s Stage, done map[string]bool) error {
	for _, name := range s.DependsOn {
		if done[name] {
			continue
		}
		dep, _ := p.Graph.Stage(name)
		n, err := p.Counter.Count(ctx, dep.Table)
		if err != nil {
			return errors.WithMessagef(err, "stage %s: probe %s", s.Name, dep.Table)
		}
		if n == 0 {
			return errors.WithStack(&PreconditionError{Stage: s.Name, Dependency: name, Table: dep.Table})
		}
		logger.Debugf("%s: dependency %s satisfied by %d existing rows", s.Name, name, n)
	}
	return nil
}

func (p *Pipeline) allow(ctx context.Context, s Stage) (bool, error) {
	if p.Gate == nil {
		return false, nil
	}
	return p.Gate(ctx, s)
}
