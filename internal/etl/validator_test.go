package etl

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/bookclub/internal/config"
	"github.com/BartekS5/bookclub/pkg/models"
)

var (
	bookHeader   = []string{ColISBN, ColTitle, ColAuthor, ColYear, ColPublisher, "Image-URL-S", ColImageURL, "Image-URL-L"}
	userHeader   = []string{ColUserID, ColLocation, ColAge}
	ratingHeader = []string{ColUserID, ColISBN, ColRating}
)

func testValidator() *Validator {
	v := NewValidator(config.Rules{MinYear: 1800, MaxYear: 2025, MinAge: 6, MaxAge: 120})
	v.Now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return v
}

func bookRecord(isbn, title, author, year, publisher string) Record {
	return NewRecord(2, bookHeader, []string{isbn, title, author, year, publisher, "", "http://img/m.jpg", ""})
}

func skipReason(t *testing.T, err error) string {
	t.Helper()
	var se *SkipError
	require.ErrorAs(t, err, &se)
	return se.Reason
}

func TestBookRow(t *testing.T) {
	v := testValidator()

	row, err := v.BookRow(bookRecord("0-345-40288-1", " Foo ", "Jane Doe", "1999", "Acme"))
	require.NoError(t, err)
	assert.Equal(t, "0345402881", row.ISBN)
	assert.Equal(t, "Foo", row.Title)
	assert.Equal(t, "Jane Doe", row.Author)
	assert.Equal(t, "Acme", row.Publisher)
	require.NotNil(t, row.Year)
	assert.Equal(t, 1999, *row.Year)
	require.NotNil(t, row.ImageURL)
	assert.Equal(t, "http://img/m.jpg", *row.ImageURL)
}

func TestBookRowNullableFields(t *testing.T) {
	row, err := testValidator().BookRow(bookRecord("0345402881", "Foo", "Jane Doe", "Gallimard", ""))
	require.NoError(t, err)
	assert.Nil(t, row.Year)
	assert.Empty(t, row.Publisher)
}

func TestBookRowSkips(t *testing.T) {
	long := strings.Repeat("x", 256)
	tests := []struct {
		name   string
		rec    Record
		reason string
	}{
		{"missing isbn", bookRecord(" ", "Foo", "Jane", "1999", "Acme"), ReasonMissingISBN},
		{"short isbn", bookRecord("12345", "Foo", "Jane", "1999", "Acme"), ReasonInvalidISBN},
		{"missing title", bookRecord("0345402881", "", "Jane", "1999", "Acme"), ReasonMissingTitle},
		{"missing author", bookRecord("0345402881", "Foo", "", "1999", "Acme"), ReasonMissingAuthor},
		{"unknown author", bookRecord("0345402881", "Foo", "Unknown", "1999", "Acme"), ReasonUnknownAuthor},
		{"future year", bookRecord("0345402881", "Foo", "Jane", "2050", "Acme"), ReasonYearOutOfRange},
		{"zero year", bookRecord("0345402881", "Foo", "Jane", "0", "Acme"), ReasonYearOutOfRange},
		{"long title", bookRecord("0345402881", long, "Jane", "1999", "Acme"), ReasonTooLong},
	}
	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.BookRow(tt.rec)
			assert.Equal(t, tt.reason, skipReason(t, err))
		})
	}
}

func TestUser(t *testing.T) {
	v := testValidator()

	u, err := v.User(NewRecord(2, userHeader, []string{"8", "Timmins, Ontario, Canada", "30"}))
	require.NoError(t, err)
	assert.Equal(t, models.User{
		ID:        8,
		Username:  "user8",
		Password:  "password123",
		Location:  "timmins, ontario, canada",
		BirthYear: 1994,
	}, u)

	tests := []struct {
		name   string
		values []string
		reason string
	}{
		{"zero id", []string{"0", "a, b", "30"}, ReasonInvalidUserID},
		{"bad id", []string{"x", "a, b", "30"}, ReasonInvalidUserID},
		{"one part location", []string{"9", "toronto", "30"}, ReasonInvalidLocation},
		{"null location", []string{"9", "n/a", "30"}, ReasonInvalidLocation},
		{"null age", []string{"9", "a, b", "NULL"}, ReasonInvalidAge},
		{"age too high", []string{"9", "a, b", "200"}, ReasonInvalidAge},
		{"age too low", []string{"9", "a, b", "2"}, ReasonInvalidAge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.User(NewRecord(2, userHeader, tt.values))
			assert.Equal(t, tt.reason, skipReason(t, err))
		})
	}
}

func TestRating(t *testing.T) {
	v := testValidator()

	r, err := v.Rating(NewRecord(2, ratingHeader, []string{"276725", "034545104X", "5"}))
	require.NoError(t, err)
	assert.Equal(t, models.Rating{UserID: 276725, ISBN: "034545104X", Rating: 5}, r)

	r, err = v.Rating(NewRecord(2, ratingHeader, []string{"1", "0-345-40288-1", "10"}))
	require.NoError(t, err)
	assert.Equal(t, "0345402881", r.ISBN)

	for _, score := range []string{"0", "11", "abc"} {
		_, err := v.Rating(NewRecord(2, ratingHeader, []string{"1", "0345402881", score}))
		assert.Equal(t, ReasonInvalidRating, skipReason(t, err), score)
	}
}

func TestRatingFilter(t *testing.T) {
	f := RatingFilter{
		Users: map[int64]struct{}{1: {}},
		Books: map[string]struct{}{"0345402881": {}},
	}
	assert.NoError(t, f.Check(models.Rating{UserID: 1, ISBN: "0345402881", Rating: 5}))
	assert.Equal(t, ReasonUnknownUser, skipReason(t, f.Check(models.Rating{UserID: 2, ISBN: "0345402881"})))
	assert.Equal(t, ReasonUnknownBook, skipReason(t, f.Check(models.Rating{UserID: 1, ISBN: "0000000000"})))
}
