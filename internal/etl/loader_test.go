package etl

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/bookclub/pkg/database"
)

type fakeWriter struct {
	flushes [][][]any
	failOn  int // 1-based flush that fails, 0 never
}

func (w *fakeWriter) InsertBatch(_ context.Context, _ database.InsertSpec, rows [][]any) (int64, error) {
	if w.failOn > 0 && len(w.flushes)+1 == w.failOn {
		return 0, errors.New("disk full")
	}
	cp := make([][]any, len(rows))
	copy(cp, rows)
	w.flushes = append(w.flushes, cp)
	return int64(len(rows)), nil
}

// evenOnly skips odd numbers.
func evenOnly(n int) ([]any, error) {
	if n%2 != 0 {
		return nil, skip("odd", strconv.Itoa(n))
	}
	return []any{n}, nil
}

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestLoadCountsAddUpForEveryBatchSize(t *testing.T) {
	items := numbers(11)
	for _, size := range []int{1, 2, 3, len(items), len(items) + 1} {
		t.Run(strconv.Itoa(size), func(t *testing.T) {
			w := &fakeWriter{}
			res, err := Load(context.Background(), NewBatchLoader(w, size), "numbers", Slice(items), database.InsertSpec{}, evenOnly)
			require.NoError(t, err)

			assert.Equal(t, 11, res.Attempted)
			assert.Equal(t, 6, res.Loaded)
			assert.Equal(t, 5, res.Skipped)
			assert.Equal(t, res.Attempted, res.Loaded+res.Skipped)
			assert.EqualValues(t, 6, res.Inserted)
			assert.Equal(t, map[string]int{"odd": 5}, res.SkipReasons)
			assert.Len(t, w.flushes, res.Batches)
			for _, f := range w.flushes {
				assert.LessOrEqual(t, len(f), size)
			}
		})
	}
}

func TestLoadFlushErrorIsFatal(t *testing.T) {
	w := &fakeWriter{failOn: 2}
	res, err := Load(context.Background(), NewBatchLoader(w, 2), "numbers", Slice(numbers(10)), database.InsertSpec{}, evenOnly)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), "after 2 loaded")
	assert.Equal(t, 2, res.Loaded)
	assert.Len(t, w.flushes, 1)
}

func TestLoadUntypedTransformError(t *testing.T) {
	res, err := Load(context.Background(), NewBatchLoader(&fakeWriter{}, 5), "numbers", Slice([]int{1}), database.InsertSpec{},
		func(int) ([]any, error) { return nil, errors.New("boom") })
	require.NoError(t, err)
	assert.Equal(t, map[string]int{reasonTransform: 1}, res.SkipReasons)
}

func TestLoadReadErrorStops(t *testing.T) {
	records := func(yield func(int, error) bool) {
		if !yield(2, nil) {
			return
		}
		yield(0, errors.New("truncated file"))
	}
	w := &fakeWriter{}
	res, err := Load(context.Background(), NewBatchLoader(w, 10), "numbers", records, database.InsertSpec{}, evenOnly)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated file")
	assert.Equal(t, 1, res.Attempted)
	assert.Empty(t, w.flushes)
}

func TestResultMerge(t *testing.T) {
	r := Result{Attempted: 2, Loaded: 2}
	r.Merge(Result{Attempted: 3, SkipReasons: map[string]int{ReasonDuplicate: 1, ReasonInvalidISBN: 2}})
	assert.Equal(t, 5, r.Attempted)
	assert.Equal(t, 3, r.Skipped)
	assert.Equal(t, r.Attempted, r.Loaded+r.Skipped)
	assert.Equal(t, 2, r.SkipReasons[ReasonInvalidISBN])
}

func TestDistinctKeepsFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, distinct([]string{"b", "a", "b", "c", "a"}))

	s := make(stringSet)
	assert.True(t, s.Add("Acme"))
	assert.True(t, s.Add("ACME"))
	assert.False(t, s.Add("Acme"))

	h := make(hashSet)
	assert.True(t, h.Add("0345402881\x001"))
	assert.True(t, h.Add("0345402881\x002"))
	assert.False(t, h.Add("0345402881\x001"))
}
