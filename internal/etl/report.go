package etl

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BartekS5/bookclub/pkg/logger"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// RunReport is the per-run manifest: one Result per executed stage.
type RunReport struct {
	RunID      string        `bson:"_id"`
	Driver     string        `bson:"driver"`
	Selected   []string      `bson:"selected,omitempty"`
	StartedAt  time.Time     `bson:"started_at"`
	FinishedAt time.Time     `bson:"finished_at"`
	Elapsed    time.Duration `bson:"elapsed_ns"`
	Status     string        `bson:"status"`
	Stages     []Result      `bson:"stages"`
	Declined   []string      `bson:"declined,omitempty"`
	Error      string        `bson:"error,omitempty"`
}

func NewRunReport(driver string, selected []string) *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		Driver:    driver,
		Selected:  selected,
		StartedAt: time.Now().UTC(),
		Status:    StatusRunning,
	}
}

func (r *RunReport) Add(res Result) {
	r.Stages = append(r.Stages, res)
}

// Stage returns the result recorded for name.
func (r *RunReport) Stage(name string) (Result, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return Result{}, false
}

// Finish stamps the end time and status.
func (r *RunReport) Finish(err error) {
	r.FinishedAt = time.Now().UTC()
	r.Elapsed = r.FinishedAt.Sub(r.StartedAt)
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusSucceeded
}

// LogReporter writes the report summary to the application log.
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, r *RunReport) error {
	logger.Infof("Run %s %s", r.RunID, r.Status)
	for _, s := range r.Stages {
		line := "  %-13s attempted %d, loaded %d, skipped %d in %s"
		args := []any{s.Stage, s.Attempted, s.Loaded, s.Skipped, s.Duration.Round(time.Millisecond)}
		if len(s.SkipReasons) > 0 {
			line += " (%s)"
			args = append(args, formatReasons(s.SkipReasons))
		}
		logger.Infof(line, args...)
	}
	for _, d := range r.Declined {
		logger.Infof("  %-13s declined", d)
	}
	return nil
}

func formatReasons(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + strconv.Itoa(m[k])
	}
	return strings.Join(parts, ", ")
}

// MultiReporter fans a report out, stopping at the first error.
type MultiReporter []Reporter

func (m MultiReporter) Report(ctx context.Context, r *RunReport) error {
	for _, rep := range m {
		if err := rep.Report(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
