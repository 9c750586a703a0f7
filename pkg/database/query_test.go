package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/bookclub/pkg/utils"
)

func TestBuildBookQueryBindsEveryValue(t *testing.T) {
	q, args := BuildBookQuery(mustDialect(t, "postgres"), BookFilter{
		Title:  utils.Ptr("'; DROP TABLE Books; --"),
		Author: utils.Ptr("Tolkien"),
		Year:   utils.Ptr(1954),
	})

	assert.NotContains(t, q, "DROP")
	assert.Contains(t, q, "LOWER(b.title) LIKE $1")
	assert.Contains(t, q, "EXISTS (SELECT 1 FROM Book_Authors ba")
	assert.Contains(t, q, "LOWER(a.name) LIKE $2")
	assert.Contains(t, q, "b.year_of_publication = $3")
	assert.Contains(t, q, " LIMIT 50")
	assert.Equal(t, []any{"%'; drop table books; --%", "%tolkien%", 1954}, args)
}

func TestBuildBookQueryEscapesWildcards(t *testing.T) {
	q, args := BuildBookQuery(mustDialect(t, "mysql"), BookFilter{Title: utils.Ptr("50%_off [!]")})
	assert.Contains(t, q, "LOWER(b.title) LIKE ? ESCAPE '!'")
	assert.Equal(t, []any{"%50!%!_off ![!!]%"}, args)
}

func TestBuildBookQueryWithoutFilters(t *testing.T) {
	q, args := BuildBookQuery(mustDialect(t, "sqlserver"), BookFilter{Limit: 5000})
	assert.NotContains(t, q, "WHERE")
	assert.Empty(t, args)
	assert.Contains(t, q, "ORDER BY b.title, b.ISBN OFFSET 0 ROWS FETCH NEXT 1000 ROWS ONLY")
}

func TestSearchBooks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedCatalog(t, s)

	got, err := s.SearchBooks(ctx, BookFilter{Author: utils.Ptr("tolk")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "The Hobbit", got[0].Title)
	assert.Equal(t, "The Return of the King", got[1].Title)
	require.NotNil(t, got[0].Publisher)
	assert.Equal(t, "Allen & Unwin", *got[0].Publisher)

	got, err = s.SearchBooks(ctx, BookFilter{ISBN: utils.Ptr("0-345-40288-1")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Year)
	assert.Nil(t, got[0].Publisher)

	got, err = s.SearchBooks(ctx, BookFilter{Publisher: utils.Ptr("unwin"), Year: utils.Ptr(1937)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0261102214", got[0].ISBN)

	got, err = s.SearchBooks(ctx, BookFilter{Title: utils.Ptr("the_")})
	require.NoError(t, err)
	assert.Empty(t, got, "_ matches only itself")

	got, err = s.SearchBooks(ctx, BookFilter{Title: utils.Ptr("100%")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100% Tolerance", got[0].Title)

	got, err = s.SearchBooks(ctx, BookFilter{Title: utils.Ptr("missing")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func seedCatalog(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.InsertBatch(ctx, publisherSpec, [][]any{{"Allen & Unwin"}})
	require.NoError(t, err)
	pub, ok, err := s.LookupID(ctx, TablePublishers, "publisher_id", "name", "Allen & Unwin")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.InsertBatch(ctx, InsertSpec{
		Table:   TableBooks,
		Columns: []string{"ISBN", "title", "year_of_publication", "publisher_id", "image_url"},
	}, [][]any{
		{"0261102214", "The Hobbit", 1937, pub, nil},
		{"0261102370", "The Return of the King", 1955, pub, nil},
		{"0345402881", "Dune Messiah", nil, nil, nil},
		{"0140449132", "100% Tolerance", nil, nil, nil},
		{"0140449140", "1000 Tolerances", nil, nil, nil},
	})
	require.NoError(t, err)

	_, err = s.InsertBatch(ctx, InsertSpec{Table: TableAuthors, Columns: []string{"name"}}, [][]any{{"J. R. R. Tolkien"}, {"Frank Herbert"}})
	require.NoError(t, err)
	authors, err := s.ReadNameIDs(ctx, TableAuthors, "author_id", "name")
	require.NoError(t, err)

	_, err = s.InsertBatch(ctx, InsertSpec{Table: TableBookAuthors, Columns: []string{"ISBN", "author_id"}}, [][]any{
		{"0261102214", authors["J. R. R. Tolkien"]},
		{"0261102370", authors["J. R. R. Tolkien"]},
		{"0345402881", authors["Frank Herbert"]},
	})
	require.NoError(t, err)
}
