package database

import (
	"context"

	"github.com/pkg/errors"
)

// ColumnType is a portable column type; each dialect maps it to SQL.
type ColumnType int

const (
	TypeSerial ColumnType = iota // generated integer primary key
	TypeInt
	TypeBigInt
	TypeString // bounded by Column.Size
	TypeText   // unbounded
	TypeBool
	TypeDate
	TypeTimestamp
)

// Column is one column of a Table. CaseSensitive asks dialects whose default
// collation folds case to compare the column byte-for-byte instead.
type Column struct {
	Name          string
	Type          ColumnType
	Size          int
	Nullable      bool
	Unique        bool
	CaseSensitive bool
	Default       string
}

// ForeignKey references a single column of another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
	Cascade   bool
}

type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// Table names used by the loader.
const (
	TablePublishers         = "Publishers"
	TableAuthors            = "Authors"
	TableBooks              = "Books"
	TableBookAuthors        = "Book_Authors"
	TableUsers              = "Users"
	TableRatings            = "Ratings"
	TableClubs              = "Book_Clubs"
	TableClubMembers        = "Club_Members"
	TableReadingQueue       = "Reading_Queue"
	TableReadingHistory     = "Reading_History"
	TableGeneralDiscussions = "General_Discussions"
	TableChapterDiscussions = "Chapter_Discussions"
)

// NameSize bounds titles and reference names.
const NameSize = 255

// Schema lists the tables in creation order, parents first.
func Schema() []Table {
	return []Table{
		{
			Name: TablePublishers,
			Columns: []Column{
				{Name: "publisher_id", Type: TypeSerial},
				{Name: "name", Type: TypeString, Size: NameSize, Unique: true, CaseSensitive: true},
			},
		},
		{
			Name: TableAuthors,
			Columns: []Column{
				{Name: "author_id", Type: TypeSerial},
				{Name: "name", Type: TypeString, Size: NameSize, Unique: true, CaseSensitive: true},
			},
		},
		{
			Name: TableBooks,
			Columns: []Column{
				{Name: "ISBN", Type: TypeString, Size: 13},
				{Name: "title", Type: TypeString, Size: NameSize},
				{Name: "year_of_publication", Type: TypeInt, Nullable: true},
				{Name: "publisher_id", Type: TypeInt, Nullable: true},
				{Name: "image_url", Type: TypeText, Nullable: true},
			},
			PrimaryKey: []string{"ISBN"},
			ForeignKeys: []ForeignKey{
				{Column: "publisher_id", RefTable: TablePublishers, RefColumn: "publisher_id"},
			},
		},
		{
			Name: TableBookAuthors,
			Columns: []Column{
				{Name: "ISBN", Type: TypeString, Size: 13},
				{Name: "author_id", Type: TypeInt},
			},
			PrimaryKey: []string{"ISBN", "author_id"},
			ForeignKeys: []ForeignKey{
				{Column: "ISBN", RefTable: TableBooks, RefColumn: "ISBN", Cascade: true},
				{Column: "author_id", RefTable: TableAuthors, RefColumn: "author_id", Cascade: true},
			},
		},
		{
			Name: TableUsers,
			Columns: []Column{
				{Name: "user_id", Type: TypeInt},
				{Name: "username", Type: TypeString, Size: 50, Unique: true},
				{Name: "password", Type: TypeString, Size: NameSize},
				{Name: "location", Type: TypeString, Size: NameSize, Nullable: true},
				{Name: "birth_year", Type: TypeInt, Nullable: true},
			},
			PrimaryKey: []string{"user_id"},
		},
		{
			Name: TableRatings,
			Columns: []Column{
				{Name: "rating_id", Type: TypeSerial},
				{Name: "user_id", Type: TypeInt},
				{Name: "ISBN", Type: TypeString, Size: 13},
				{Name: "rating", Type: TypeInt},
			},
			ForeignKeys: []ForeignKey{
				{Column: "user_id", RefTable: TableUsers, RefColumn: "user_id", Cascade: true},
				{Column: "ISBN", RefTable: TableBooks, RefColumn: "ISBN", Cascade: true},
			},
		},
		{
			Name: TableClubs,
			Columns: []Column{
				{Name: "club_id", Type: TypeSerial},
				{Name: "name", Type: TypeString, Size: NameSize},
				{Name: "description", Type: TypeText, Nullable: true},
				{Name: "is_public", Type: TypeBool},
				{Name: "created_by", Type: TypeInt},
				{Name: "max_members", Type: TypeInt, Default: "50"},
				{Name: "created_at", Type: TypeTimestamp, Default: "CURRENT_TIMESTAMP"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "created_by", RefTable: TableUsers, RefColumn: "user_id"},
			},
		},
		{
			Name: TableClubMembers,
			Columns: []Column{
				{Name: "club_id", Type: TypeInt},
				{Name: "user_id", Type: TypeInt},
				{Name: "role", Type: TypeString, Size: 20, Default: "'member'"},
				{Name: "joined_at", Type: TypeTimestamp, Default: "CURRENT_TIMESTAMP"},
			},
			PrimaryKey: []string{"club_id", "user_id"},
			ForeignKeys: []ForeignKey{
				{Column: "club_id", RefTable: TableClubs, RefColumn: "club_id", Cascade: true},
				{Column: "user_id", RefTable: TableUsers, RefColumn: "user_id"},
			},
		},
		{
			Name: TableReadingQueue,
			Columns: []Column{
				{Name: "queue_id", Type: TypeSerial},
				{Name: "club_id", Type: TypeInt},
				{Name: "ISBN", Type: TypeString, Size: 13},
				{Name: "queue_position", Type: TypeInt},
				{Name: "added_by", Type: TypeInt},
			},
			ForeignKeys: []ForeignKey{
				{Column: "club_id", RefTable: TableClubs, RefColumn: "club_id", Cascade: true},
				{Column: "ISBN", RefTable: TableBooks, RefColumn: "ISBN", Cascade: true},
				{Column: "added_by", RefTable: TableUsers, RefColumn: "user_id"},
			},
		},
		{
			Name: TableReadingHistory,
			Columns: []Column{
				{Name: "history_id", Type: TypeSerial},
				{Name: "club_id", Type: TypeInt},
				{Name: "ISBN", Type: TypeString, Size: 13},
				{Name: "start_date", Type: TypeDate},
				{Name: "end_date", Type: TypeDate, Nullable: true},
			},
			ForeignKeys: []ForeignKey{
				{Column: "club_id", RefTable: TableClubs, RefColumn: "club_id", Cascade: true},
				{Column: "ISBN", RefTable: TableBooks, RefColumn: "ISBN", Cascade: true},
			},
		},
		{
			Name: TableGeneralDiscussions,
			Columns: []Column{
				{Name: "discussion_id", Type: TypeSerial},
				{Name: "club_id", Type: TypeInt},
				{Name: "user_id", Type: TypeInt},
				{Name: "title", Type: TypeString, Size: NameSize},
				{Name: "content", Type: TypeText},
				{Name: "created_at", Type: TypeTimestamp, Default: "CURRENT_TIMESTAMP"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "club_id", RefTable: TableClubs, RefColumn: "club_id", Cascade: true},
				{Column: "user_id", RefTable: TableUsers, RefColumn: "user_id"},
			},
		},
		{
			Name: TableChapterDiscussions,
			Columns: []Column{
				{Name: "discussion_id", Type: TypeSerial},
				{Name: "club_id", Type: TypeInt},
				{Name: "ISBN", Type: TypeString, Size: 13},
				{Name: "chapter_number", Type: TypeInt},
				{Name: "user_id", Type: TypeInt},
				{Name: "title", Type: TypeString, Size: NameSize},
				{Name: "content", Type: TypeText},
				{Name: "created_at", Type: TypeTimestamp, Default: "CURRENT_TIMESTAMP"},
			},
			ForeignKeys: []ForeignKey{
				{Column: "club_id", RefTable: TableClubs, RefColumn: "club_id", Cascade: true},
				{Column: "ISBN", RefTable: TableBooks, RefColumn: "ISBN", Cascade: true},
				{Column: "user_id", RefTable: TableUsers, RefColumn: "user_id"},
			},
		},
	}
}

// CreateSchema creates every table that does not exist yet.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, t := range Schema() {
		if _, err := s.db.ExecContext(ctx, s.dialect.CreateTable(t)); err != nil {
			return errors.Wrapf(err, "create table %s", t.Name)
		}
	}
	return nil
}
