package etl

import (
	"context"
	"iter"
	"time"

	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/pkg/database"
	"github.com/BartekS5/bookclub/pkg/logger"
)

const reasonTransform = "transform error"

// Result summarizes one stage. On success Loaded+Skipped == Attempted.
type Result struct {
	Stage       string         `bson:"stage"`
	Attempted   int            `bson:"attempted"`
	Loaded      int            `bson:"loaded"`
	Skipped     int            `bson:"skipped"`
	Inserted    int64          `bson:"inserted"`
	Batches     int            `bson:"batches"`
	Malformed   int            `bson:"malformed,omitempty"`
	SkipReasons map[string]int `bson:"skip_reasons,omitempty"`
	Duration    time.Duration  `bson:"duration_ns"`
	Error       string         `bson:"error,omitempty"`
}

func (r *Result) skip(err error) {
	r.Skipped++
	reason := reasonTransform
	var se *SkipError
	if errors.As(err, &se) {
		reason = se.Reason
	}
	if r.SkipReasons == nil {
		r.SkipReasons = make(map[string]int)
	}
	r.SkipReasons[reason]++
}

// Merge folds the counts of a pre-load filter pass into r.
func (r *Result) Merge(o Result) {
	r.Attempted += o.Attempted
	r.Loaded += o.Loaded
	for reason, n := range o.SkipReasons {
		r.Skipped += n
		if r.SkipReasons == nil {
			r.SkipReasons = make(map[string]int)
		}
		r.SkipReasons[reason] += n
	}
}

// BatchLoader buffers transformed records and flushes them every BatchSize
// records. Transform errors skip the record; a flush error ends the load.
type BatchLoader struct {
	Writer        Writer
	BatchSize     int
	ProgressEvery int
}

func NewBatchLoader(w Writer, batchSize int) *BatchLoader {
	return &BatchLoader{Writer: w, BatchSize: batchSize}
}

// Load is a function rather than a method because methods cannot take type
// parameters.
func Load[T any](
	ctx context.Context,
	l *BatchLoader,
	stage string,
	records iter.Seq2[T, error],
	spec database.InsertSpec,
	transform func(T) ([]any, error),
) (Result, error) {
	size := l.BatchSize
	if size < 1 {
		size = 1
	}

	res := Result{Stage: stage}
	start := time.Now()

	batch := make([][]any, 0, size)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := l.Writer.InsertBatch(ctx, spec, batch)
		if err != nil {
			return errors.Wrapf(err, "%s: flush of %d rows failed after %d loaded", stage, len(batch), res.Loaded)
		}
		res.Loaded += len(batch)
		res.Inserted += n
		res.Batches++
		batch = batch[:0]

		rate := 0.0
		if d := time.Since(start).Seconds(); d > 0 {
			rate = float64(res.Loaded) / d
		}
		logger.Debugf("%s: batch done. Total: %d. Rate: %.2f rows/sec", stage, res.Loaded, rate)
		return nil
	}

	for rec, err := range records {
		if err != nil {
			res.Duration = time.Since(start)
			return res, errors.Wrapf(err, "%s: read failed", stage)
		}
		res.Attempted++

		row, terr := transform(rec)
		if terr != nil {
			res.skip(terr)
		} else {
			batch = append(batch, row)
			if len(batch) >= size {
				if err := flush(); err != nil {
					res.Duration = time.Since(start)
					return res, err
				}
			}
		}

		if l.ProgressEvery > 0 && res.Attempted%l.ProgressEvery == 0 {
			logger.Infof("  %s: chunk %d processed (%d loaded, %d skipped so far)",
				stage, res.Attempted/l.ProgressEvery, res.Loaded, res.Skipped)
		}
	}

	if err := flush(); err != nil {
		res.Duration = time.Since(start)
		return res, err
	}
	res.Duration = time.Since(start)
	return res, nil
}

// Slice adapts a slice to the record stream Load consumes.
func Slice[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
	}
}
