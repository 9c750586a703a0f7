// Package models holds the rows persisted by the loader and the sample
// club generator.
package models

import "time"

// Publisher is a reference row keyed by its unique name.
type Publisher struct {
	ID   int64
	Name string
}

// Author is a reference row keyed by its unique name.
type Author struct {
	ID   int64
	Name string
}

// Book is identified by its normalized ISBN. Year, PublisherID and ImageURL
// are nil when the source value was missing.
type Book struct {
	ISBN        string
	Title       string
	Year        *int
	PublisherID *int64
	ImageURL    *string
}

// BookRow is a cleaned line of the books dataset, before reference ids are
// resolved.
type BookRow struct {
	ISBN      string
	Title     string
	Author    string
	Publisher string // empty when the dataset had none
	Year      *int
	ImageURL  *string
}

// BookAuthor links a book to one of its authors.
type BookAuthor struct {
	ISBN     string
	AuthorID int64
}

// User carries the explicit id from the users dataset.
type User struct {
	ID        int64
	Username  string
	Password  string
	Location  string
	BirthYear int
}

// Rating is a 1..10 score given by a user to a book.
type Rating struct {
	UserID int64
	ISBN   string
	Rating int
}

// Club roles.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// Club is a book club created by a user.
type Club struct {
	ID          int64
	Name        string
	Description string
	IsPublic    bool
	CreatedBy   int64
	MaxMembers  int
}

// ClubMember assigns a role to a user inside a club.
type ClubMember struct {
	ClubID int64
	UserID int64
	Role   string
}

// QueueEntry is a book waiting in a club's reading queue.
type QueueEntry struct {
	ClubID   int64
	ISBN     string
	Position int
	AddedBy  int64
}

// HistoryEntry records a book a club has read. A nil End marks the book the
// club is currently reading.
type HistoryEntry struct {
	ClubID int64
	ISBN   string
	Start  time.Time
	End    *time.Time
}

// Discussion is a general club discussion, or a chapter discussion when
// ISBN and Chapter are set.
type Discussion struct {
	ClubID  int64
	UserID  int64
	ISBN    string
	Chapter int
	Title   string
	Content string
}

// BookSummary is a row returned by the book search.
type BookSummary struct {
	ISBN      string
	Title     string
	Year      *int
	Publisher *string
}
