package etl

import (
	"context"

	"github.com/BartekS5/bookclub/pkg/database"
)

// Writer persists one flush of rows as a single transaction.
type Writer interface {
	InsertBatch(ctx context.Context, spec database.InsertSpec, rows [][]any) (int64, error)
}

// Reporter receives the summary of a finished run.
type Reporter interface {
	Report(ctx context.Context, r *RunReport) error
}
