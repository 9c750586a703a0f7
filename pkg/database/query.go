package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/pkg/models"
	"github.com/BartekS5/bookclub/pkg/utils"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 1000
)

// BookFilter holds optional search predicates. Nil fields are ignored;
// text fields match case-insensitive substrings, ISBN and Year match exactly.
type BookFilter struct {
	Title     *string
	Author    *string
	ISBN      *string
	Publisher *string
	Year      *int
	Limit     int
}

// likeEscaper makes user input match literally. '!' needs no quoting in any
// dialect's string literals; '[' is a wildcard on SQL Server.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")

// likeClause is the predicate for a literal, case-insensitive substring
// match on expr.
func likeClause(expr string) string {
	return "LOWER(" + expr + ") LIKE ? ESCAPE '!'"
}

func like(v string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
}

// BuildBookQuery composes the search statement for d. Every value is bound
// as a parameter.
func BuildBookQuery(d Dialect, f BookFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Title != nil {
		where = append(where, likeClause("b.title"))
		args = append(args, like(*f.Title))
	}
	if f.Author != nil {
		where = append(where, "EXISTS (SELECT 1 FROM "+TableBookAuthors+" ba JOIN "+TableAuthors+
			" a ON a.author_id = ba.author_id WHERE ba.ISBN = b.ISBN AND "+likeClause("a.name")+")")
		args = append(args, like(*f.Author))
	}
	if f.ISBN != nil {
		where = append(where, "b.ISBN = ?")
		args = append(args, utils.NormalizeISBN(*f.ISBN))
	}
	if f.Publisher != nil {
		where = append(where, likeClause("p.name"))
		args = append(args, like(*f.Publisher))
	}
	if f.Year != nil {
		where = append(where, "b.year_of_publication = ?")
		args = append(args, *f.Year)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	var b strings.Builder
	b.WriteString("SELECT b.ISBN, b.title, b.year_of_publication, p.name FROM ")
	b.WriteString(TableBooks)
	b.WriteString(" b LEFT JOIN ")
	b.WriteString(TablePublishers)
	b.WriteString(" p ON p.publisher_id = b.publisher_id")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY b.title, b.ISBN")
	b.WriteString(d.Limit(limit))
	return Rebind(d, b.String()), args
}

// SearchBooks runs a BookFilter against the store.
func (s *Store) SearchBooks(ctx context.Context, f BookFilter) ([]models.BookSummary, error) {
	q, args := BuildBookQuery(s.dialect, f)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search books")
	}
	defer rows.Close()

	var out []models.BookSummary
	for rows.Next() {
		var (
			bs        models.BookSummary
			year      sql.NullInt64
			publisher sql.NullString
		)
		if err := rows.Scan(&bs.ISBN, &bs.Title, &year, &publisher); err != nil {
			return nil, errors.Wrap(err, "scan book")
		}
		if year.Valid {
			y := int(year.Int64)
			bs.Year = &y
		}
		if publisher.Valid {
			bs.Publisher = &publisher.String
		}
		out = append(out, bs)
	}
	return out, errors.Wrap(rows.Err(), "search books")
}
