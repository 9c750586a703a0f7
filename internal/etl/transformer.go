package etl

import (
	"github.com/BartekS5/bookclub/pkg/database"
	"github.com/BartekS5/bookclub/pkg/models"
	"github.com/BartekS5/bookclub/pkg/utils"
)

// Insert specs for the loaded tables. Reference and book tables use
// insert-if-absent; users and ratings are plain inserts and fail on rerun.
var (
	PublisherSpec = database.InsertSpec{
		Table:    database.TablePublishers,
		Columns:  []string{"name"},
		Key:      []string{"name"},
		Conflict: database.ConflictIgnore,
	}
	AuthorSpec = database.InsertSpec{
		Table:    database.TableAuthors,
		Columns:  []string{"name"},
		Key:      []string{"name"},
		Conflict: database.ConflictIgnore,
	}
	BookSpec = database.InsertSpec{
		Table:    database.TableBooks,
		Columns:  []string{"ISBN", "title", "year_of_publication", "publisher_id", "image_url"},
		Key:      []string{"ISBN"},
		Conflict: database.ConflictIgnore,
	}
	BookAuthorSpec = database.InsertSpec{
		Table:    database.TableBookAuthors,
		Columns:  []string{"ISBN", "author_id"},
		Key:      []string{"ISBN", "author_id"},
		Conflict: database.ConflictIgnore,
	}
	UserSpec = database.InsertSpec{
		Table:    database.TableUsers,
		Columns:  []string{"user_id", "username", "password", "location", "birth_year"},
		Conflict: database.ConflictFail,
	}
	RatingSpec = database.InsertSpec{
		Table:    database.TableRatings,
		Columns:  []string{"user_id", "ISBN", "rating"},
		Conflict: database.ConflictFail,
	}
)

func nameTuple(name string) []any { return []any{name} }

func BookTuple(b models.Book) []any {
	return []any{b.ISBN, b.Title, utils.Nullable(b.Year), utils.Nullable(b.PublisherID), utils.Nullable(b.ImageURL)}
}

func BookAuthorTuple(l models.BookAuthor) []any {
	return []any{l.ISBN, l.AuthorID}
}

func UserTuple(u models.User) []any {
	return []any{u.ID, u.Username, u.Password, u.Location, u.BirthYear}
}

func RatingTuple(r models.Rating) []any {
	return []any{r.UserID, r.ISBN, r.Rating}
}
