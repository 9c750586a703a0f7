package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/pkg/utils"
)

// maxRowsPerStatement caps one VALUES list; SQL Server refuses more.
const maxRowsPerStatement = 1000

// Store is a dialect-aware handle over a database/sql pool.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d}
}

func (s *Store) DB() *sql.DB            { return s.db }
func (s *Store) Dialect() Dialect       { return s.dialect }
func (s *Store) Close() error           { return s.db.Close() }
func (s *Store) rebind(q string) string { return Rebind(s.dialect, q) }

// Tx wraps one open transaction.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

// WithTx runs fn in a transaction, committing on nil and rolling back on
// error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(&Tx{tx: sqlTx, dialect: s.dialect}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// InsertBatch writes rows with one transaction per call and reports the
// number of rows the database actually inserted.
func (s *Store) InsertBatch(ctx context.Context, spec InsertSpec, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var n int64
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		n, err = tx.Insert(ctx, spec, rows)
		return err
	})
	return n, err
}

func rowsPerStatement(d Dialect, cols int) int {
	if cols < 1 {
		return 1
	}
	n := d.MaxParams() / cols
	if n > maxRowsPerStatement {
		n = maxRowsPerStatement
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Insert splits rows into statements that fit the bind-parameter limit.
func (t *Tx) Insert(ctx context.Context, spec InsertSpec, rows [][]any) (int64, error) {
	width := len(spec.Columns)
	per := rowsPerStatement(t.dialect, width)
	var total int64
	for start := 0; start < len(rows); start += per {
		chunk := rows[start:min(start+per, len(rows))]
		args := make([]any, 0, len(chunk)*width)
		for _, r := range chunk {
			if len(r) != width {
				return total, errors.Errorf("insert into %s: row has %d values, want %d", spec.Table, len(r), width)
			}
			args = append(args, r...)
		}
		res, err := t.tx.ExecContext(ctx, t.dialect.BuildInsert(spec, len(chunk)), args...)
		if err != nil {
			return total, errors.Wrapf(err, "insert into %s", spec.Table)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// Exec runs a '?'-style statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := t.tx.ExecContext(ctx, Rebind(t.dialect, query), args...)
	return res, errors.WithStack(err)
}

// InsertID inserts one row and returns its generated id.
func (t *Tx) InsertID(ctx context.Context, table string, cols []string, idCol string, args ...any) (int64, error) {
	colList := strings.Join(cols, ", ")
	values := valuesList(t.dialect, len(cols), 1)

	var id int64
	switch t.dialect.Returning() {
	case ReturnClause:
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s RETURNING %s", table, colList, values, idCol)
		if err := t.tx.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
			return 0, errors.Wrapf(err, "insert into %s", table)
		}
	case ReturnOutput:
		q := fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.%s VALUES %s", table, colList, idCol, values)
		if err := t.tx.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
			return 0, errors.Wrapf(err, "insert into %s", table)
		}
	default:
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, colList, values)
		res, err := t.tx.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, errors.Wrapf(err, "insert into %s", table)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, errors.Wrapf(err, "read id from %s", table)
		}
	}
	return id, nil
}

// ReadNameIDs loads a whole reference table as name -> id.
func (s *Store) ReadNameIDs(ctx context.Context, table, idCol, nameCol string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s, %s FROM %s", idCol, nameCol, table))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", table)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, errors.Wrapf(err, "scan %s", table)
		}
		out[name] = id
	}
	return out, errors.Wrapf(rows.Err(), "read %s", table)
}

// LookupID returns the id of the row whose nameCol equals name.
func (s *Store) LookupID(ctx context.Context, table, idCol, nameCol, name string) (int64, bool, error) {
	q := s.rebind(fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", idCol, table, nameCol))
	var id int64
	err := s.db.QueryRowContext(ctx, q, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "lookup %s", table)
	}
	return id, true, nil
}

// ReadInt64Set loads every value of an integer column.
func (s *Store) ReadInt64Set(ctx context.Context, table, col string) (map[int64]struct{}, error) {
	out := make(map[int64]struct{})
	err := s.scanColumn(ctx, fmt.Sprintf("SELECT %s FROM %s", col, table), func(rows *sql.Rows) error {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out[v] = struct{}{}
		return nil
	})
	return out, errors.Wrapf(err, "read %s.%s", table, col)
}

// ReadStringSet loads every value of a text column.
func (s *Store) ReadStringSet(ctx context.Context, table, col string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	err := s.scanColumn(ctx, fmt.Sprintf("SELECT %s FROM %s", col, table), func(rows *sql.Rows) error {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out[v] = struct{}{}
		return nil
	})
	return out, errors.Wrapf(err, "read %s.%s", table, col)
}

// SampleInt64 returns up to n values of col in random order.
func (s *Store) SampleInt64(ctx context.Context, table, col string, n int) ([]int64, error) {
	var out []int64
	err := s.scanColumn(ctx, s.sampleQuery(table, col, n), func(rows *sql.Rows) error {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, errors.Wrapf(err, "sample %s", table)
}

// SampleStrings returns up to n values of col in random order.
func (s *Store) SampleStrings(ctx context.Context, table, col string, n int) ([]string, error) {
	var out []string
	err := s.scanColumn(ctx, s.sampleQuery(table, col, n), func(rows *sql.Rows) error {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, errors.Wrapf(err, "sample %s", table)
}

func (s *Store) sampleQuery(table, col string, n int) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s%s", col, table, s.dialect.RandomOrder(), s.dialect.Limit(n))
}

// Count returns the number of rows in table. Drivers disagree on the type
// of COUNT(*), so the value is scanned untyped.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	var raw any
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&raw); err != nil {
		return 0, errors.Wrapf(err, "count %s", table)
	}
	n, err := utils.ConvertToInt64(raw)
	return n, errors.Wrapf(err, "count %s", table)
}

func (s *Store) scanColumn(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
