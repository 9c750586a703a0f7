package etl

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BartekS5/bookclub/internal/config"
	"github.com/BartekS5/bookclub/pkg/database"
	"github.com/BartekS5/bookclub/pkg/models"
	"github.com/BartekS5/bookclub/pkg/utils"
)

// Dataset column names.
const (
	ColISBN      = "ISBN"
	ColTitle     = "Book-Title"
	ColAuthor    = "Book-Author"
	ColYear      = "Year-Of-Publication"
	ColPublisher = "Publisher"
	ColImageURL  = "Image-URL-M"
	ColUserID    = "User-ID"
	ColLocation  = "Location"
	ColAge       = "Age"
	ColRating    = "Book-Rating"
)

// Skip reasons reported in stage results.
const (
	ReasonMissingISBN     = "missing isbn"
	ReasonInvalidISBN     = "invalid isbn"
	ReasonMissingTitle    = "missing title"
	ReasonMissingAuthor   = "missing author"
	ReasonUnknownAuthor   = "unknown author"
	ReasonYearOutOfRange  = "year out of range"
	ReasonTooLong         = "value too long"
	ReasonDuplicate       = "duplicate"
	ReasonUnresolved      = "unresolved reference"
	ReasonInvalidUserID   = "invalid user id"
	ReasonInvalidLocation = "invalid location"
	ReasonInvalidAge      = "invalid age"
	ReasonInvalidRating   = "invalid rating"
	ReasonUnknownUser     = "user not loaded"
	ReasonUnknownBook     = "book not loaded"
)

const (
	placeholderPassword = "password123"
	unknownAuthor       = "unknown"
)

// SkipError excludes one record from a load without failing the stage.
type SkipError struct {
	Reason string
	Value  string
}

func (e *SkipError) Error() string {
	if e.Value == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Value)
}

func skip(reason, value string) error {
	return &SkipError{Reason: reason, Value: value}
}

// Validator turns raw dataset records into cleaned rows.
type Validator struct {
	Rules config.Rules
	Now   func() time.Time
}

func NewValidator(rules config.Rules) *Validator {
	return &Validator{Rules: rules, Now: time.Now}
}

func (v *Validator) currentYear() int {
	if v.Now == nil {
		return time.Now().Year()
	}
	return v.Now().Year()
}

func tooLong(s string) bool {
	return utf8.RuneCountInString(s) > database.NameSize
}

// BookRow validates a books dataset record. A missing or unparseable year
// loads as null; a parsed year outside the configured range drops the row.
func (v *Validator) BookRow(rec Record) (models.BookRow, error) {
	raw, ok := CleanField(rec.Get(ColISBN))
	if !ok {
		return models.BookRow{}, skip(ReasonMissingISBN, "")
	}
	isbn, ok := CleanISBN(raw)
	if !ok {
		return models.BookRow{}, skip(ReasonInvalidISBN, raw)
	}
	title, ok := CleanField(rec.Get(ColTitle))
	if !ok {
		return models.BookRow{}, skip(ReasonMissingTitle, isbn)
	}
	author, ok := CleanField(rec.Get(ColAuthor))
	if !ok {
		return models.BookRow{}, skip(ReasonMissingAuthor, isbn)
	}
	if strings.ToLower(author) == unknownAuthor {
		return models.BookRow{}, skip(ReasonUnknownAuthor, isbn)
	}
	publisher, _ := CleanField(rec.Get(ColPublisher))
	if tooLong(title) || tooLong(author) || tooLong(publisher) {
		return models.BookRow{}, skip(ReasonTooLong, isbn)
	}

	row := models.BookRow{ISBN: isbn, Title: title, Author: author, Publisher: publisher}
	if y, ok := ParseYear(rec.Get(ColYear)); ok {
		if y < v.Rules.MinYear || y > v.Rules.MaxYear {
			return models.BookRow{}, skip(ReasonYearOutOfRange, strconv.Itoa(y))
		}
		row.Year = utils.Ptr(y)
	}
	if url, ok := CleanField(rec.Get(ColImageURL)); ok {
		row.ImageURL = utils.Ptr(url)
	}
	return row, nil
}

// User validates a users dataset record.
func (v *Validator) User(rec Record) (models.User, error) {
	rawID := rec.Get(ColUserID)
	id, err := utils.ParseInt(strings.TrimSpace(rawID))
	if err != nil || id <= 0 {
		return models.User{}, skip(ReasonInvalidUserID, rawID)
	}
	loc, ok := CleanLocation(rec.Get(ColLocation))
	if !ok || tooLong(loc) {
		return models.User{}, skip(ReasonInvalidLocation, rec.Get(ColLocation))
	}
	age, err := utils.ParseInt(strings.TrimSpace(rec.Get(ColAge)))
	if err != nil {
		return models.User{}, skip(ReasonInvalidAge, rec.Get(ColAge))
	}
	birth, ok := BirthYear(age, v.currentYear(), v.Rules.MinAge, v.Rules.MaxAge)
	if !ok {
		return models.User{}, skip(ReasonInvalidAge, rec.Get(ColAge))
	}
	return models.User{
		ID:        int64(id),
		Username:  "user" + strconv.Itoa(id),
		Password:  placeholderPassword,
		Location:  loc,
		BirthYear: birth,
	}, nil
}

// Rating validates a ratings dataset record. The ISBN is normalized the same
// way book ISBNs are before storage.
func (v *Validator) Rating(rec Record) (models.Rating, error) {
	rawID := rec.Get(ColUserID)
	id, err := utils.ParseInt(strings.TrimSpace(rawID))
	if err != nil {
		return models.Rating{}, skip(ReasonInvalidUserID, rawID)
	}
	isbn := utils.NormalizeISBN(rec.Get(ColISBN))
	if isbn == "" {
		return models.Rating{}, skip(ReasonMissingISBN, "")
	}
	rawRating := rec.Get(ColRating)
	score, err := utils.ParseInt(strings.TrimSpace(rawRating))
	if err != nil || score < 1 || score > 10 {
		return models.Rating{}, skip(ReasonInvalidRating, rawRating)
	}
	return models.Rating{UserID: int64(id), ISBN: isbn, Rating: score}, nil
}

// RatingFilter keeps ratings whose user and book are already stored.
type RatingFilter struct {
	Users map[int64]struct{}
	Books map[string]struct{}
}

func (f RatingFilter) Check(r models.Rating) error {
	if _, ok := f.Users[r.UserID]; !ok {
		return skip(ReasonUnknownUser, strconv.FormatInt(r.UserID, 10))
	}
	if _, ok := f.Books[r.ISBN]; !ok {
		return skip(ReasonUnknownBook, r.ISBN)
	}
	return nil
}
