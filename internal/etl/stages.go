package etl

import (
	"context"
	"strconv"

	"github.com/BartekS5/bookclub/internal/config"
	"github.com/BartekS5/bookclub/pkg/database"
	"github.com/BartekS5/bookclub/pkg/logger"
	"github.com/BartekS5/bookclub/pkg/models"
)

// Stage names.
const (
	StagePublishers  = "publishers"
	StageAuthors     = "authors"
	StageBooks       = "books"
	StageBookAuthors = "book-authors"
	StageUsers       = "users"
	StageRatings     = "ratings"
	StageClubs       = "clubs"
)

// Store is the store surface the load stages use. *database.Store
// satisfies it.
type Store interface {
	RefStore
	ReadInt64Set(ctx context.Context, table, col string) (map[int64]struct{}, error)
	ReadStringSet(ctx context.Context, table, col string) (map[string]struct{}, error)
	Count(ctx context.Context, table string) (int64, error)
}

// Job wires the datasets, validator and store into the load stages.
type Job struct {
	Store     Store
	Validator *Validator
	Files     config.Files
	BatchSize int
	ChunkSize int

	// Clubs and ClubCount are only needed when the clubs stage runs.
	Clubs     *ClubGenerator
	ClubCount func(ctx context.Context) (int, error)

	publishers *Resolver
	authors    *Resolver

	books      []models.BookRow
	booksRead  bool
	bookFilter Result
}

func NewJob(store Store, cfg *config.Config) *Job {
	return &Job{
		Store:      store,
		Validator:  NewValidator(cfg.Rules),
		Files:      cfg.Files,
		BatchSize:  cfg.BatchSize,
		ChunkSize:  cfg.ChunkSize,
		publishers: NewResolver(store, PublisherRefs, cfg.BatchSize),
		authors:    NewResolver(store, AuthorRefs, cfg.BatchSize),
	}
}

// Stages declares the load graph in the order the stages traditionally run.
func (j *Job) Stages() []Stage {
	return []Stage{
		{Name: StagePublishers, Table: database.TablePublishers, Run: j.loadPublishers},
		{Name: StageAuthors, Table: database.TableAuthors, Run: j.loadAuthors},
		{Name: StageBooks, DependsOn: []string{StagePublishers}, Table: database.TableBooks, Run: j.loadBooks},
		{Name: StageBookAuthors, DependsOn: []string{StageBooks, StageAuthors}, Table: database.TableBookAuthors, Run: j.loadBookAuthors},
		{Name: StageUsers, Table: database.TableUsers, Run: j.loadUsers},
		{Name: StageRatings, DependsOn: []string{StageUsers, StageBooks}, Table: database.TableRatings, Run: j.loadRatings},
		{Name: StageClubs, DependsOn: []string{StageUsers, StageBooks}, Table: database.TableClubs, Optional: true, Run: j.generateClubs},
	}
}

func (j *Job) loader() *BatchLoader {
	return NewBatchLoader(j.Store, j.BatchSize)
}

func (j *Job) source(path string) *CSVSource {
	return NewCSVSource(path, j.Files.Encoding, j.Files.Delimiter)
}

// bookRows reads and filters the books dataset once per job. Rows sharing an
// ISBN are all kept so each one's author is linked; loadBooks writes the
// first.
func (j *Job) bookRows(ctx context.Context) ([]models.BookRow, error) {
	if j.booksRead {
		return j.books, nil
	}
	logger.Infof("  Reading %s...", j.Files.Books)
	src := j.source(j.Files.Books)
	res := Result{Stage: StageBooks}
	var rows []models.BookRow
	for rec, err := range src.Records(ctx) {
		if err != nil {
			return nil, err
		}
		res.Attempted++
		row, err := j.Validator.BookRow(rec)
		if err != nil {
			res.skip(err)
			continue
		}
		rows = append(rows, row)
	}
	res.Malformed = src.Malformed
	logger.Infof("  Read %d rows, filtered to %d valid books", res.Attempted, len(rows))

	j.books, j.booksRead, j.bookFilter = rows, true, res
	return rows, nil
}

func (j *Job) loadPublishers(ctx context.Context) (Result, error) {
	rows, err := j.bookRows(ctx)
	if err != nil {
		return Result{}, err
	}
	var names []string
	for _, r := range rows {
		if r.Publisher != "" {
			names = append(names, r.Publisher)
		}
	}
	names = distinct(names)
	logger.Infof("  Found %d unique publishers", len(names))
	return j.publishers.Prime(ctx, names)
}

func (j *Job) loadAuthors(ctx context.Context) (Result, error) {
	rows, err := j.bookRows(ctx)
	if err != nil {
		return Result{}, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Author)
	}
	names = distinct(names)
	logger.Infof("  Found %d unique authors", len(names))
	return j.authors.Prime(ctx, names)
}

// ensureRefs loads a resolver's cache from the table when its stage did not
// run in this process.
func ensureRefs(ctx context.Context, r *Resolver) error {
	if r.Len() > 0 {
		return nil
	}
	return r.Refresh(ctx)
}

// loadBooks writes the first filtered row of each ISBN. A publisher that does
// not resolve leaves publisher_id null rather than dropping the book.
func (j *Job) loadBooks(ctx context.Context) (Result, error) {
	rows, err := j.bookRows(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := ensureRefs(ctx, j.publishers); err != nil {
		return Result{}, err
	}

	seen := make(stringSet, len(rows))
	res, err := Load(ctx, j.loader(), StageBooks, Slice(rows), BookSpec, func(r models.BookRow) ([]any, error) {
		if !seen.Add(r.ISBN) {
			return nil, skip(ReasonDuplicate, r.ISBN)
		}
		b := models.Book{ISBN: r.ISBN, Title: r.Title, Year: r.Year, ImageURL: r.ImageURL}
		if r.Publisher != "" {
			if id, ok := j.publishers.Resolve(r.Publisher); ok {
				b.PublisherID = &id
			} else {
				logger.Debugf("books: publisher %q not resolved for %s", r.Publisher, r.ISBN)
			}
		}
		return BookTuple(b), nil
	})
	filtered := j.bookFilter
	filtered.Attempted -= len(rows)
	res.Merge(filtered)
	res.Malformed = filtered.Malformed
	return res, err
}

func (j *Job) loadBookAuthors(ctx context.Context) (Result, error) {
	rows, err := j.bookRows(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := ensureRefs(ctx, j.authors); err != nil {
		return Result{}, err
	}

	links := make(hashSet, len(rows))
	return Load(ctx, j.loader(), StageBookAuthors, Slice(rows), BookAuthorSpec, func(r models.BookRow) ([]any, error) {
		id, ok := j.authors.Resolve(r.Author)
		if !ok {
			return nil, skip(ReasonUnresolved, r.Author)
		}
		if !links.Add(r.ISBN + "\x00" + strconv.FormatInt(id, 10)) {
			return nil, skip(ReasonDuplicate, r.ISBN)
		}
		return BookAuthorTuple(models.BookAuthor{ISBN: r.ISBN, AuthorID: id}), nil
	})
}

// loadUsers is a plain insert: it fails against a store that already holds
// any of the dataset's users.
func (j *Job) loadUsers(ctx context.Context) (Result, error) {
	logger.Infof("  Reading %s...", j.Files.Users)
	src := j.source(j.Files.Users)
	seen := make(map[int64]struct{})
	res, err := Load(ctx, j.loader(), StageUsers, src.Records(ctx), UserSpec, func(rec Record) ([]any, error) {
		u, err := j.Validator.User(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[u.ID]; dup {
			return nil, skip(ReasonDuplicate, strconv.FormatInt(u.ID, 10))
		}
		seen[u.ID] = struct{}{}
		return UserTuple(u), nil
	})
	res.Malformed = src.Malformed
	return res, err
}

// loadRatings keeps ratings whose user and book exist, checked against sets
// read once before the pass.
func (j *Job) loadRatings(ctx context.Context) (Result, error) {
	logger.Info("  Loading valid user IDs...")
	users, err := j.Store.ReadInt64Set(ctx, database.TableUsers, "user_id")
	if err != nil {
		return Result{}, err
	}
	logger.Infof("    Found %d valid users", len(users))

	logger.Info("  Loading valid ISBNs...")
	books, err := j.Store.ReadStringSet(ctx, database.TableBooks, "ISBN")
	if err != nil {
		return Result{}, err
	}
	logger.Infof("    Found %d valid books", len(books))

	filter := RatingFilter{Users: users, Books: books}
	l := j.loader()
	l.ProgressEvery = j.ChunkSize

	logger.Infof("  Reading %s...", j.Files.Ratings)
	src := j.source(j.Files.Ratings)
	res, err := Load(ctx, l, StageRatings, src.Records(ctx), RatingSpec, func(rec Record) ([]any, error) {
		r, err := j.Validator.Rating(rec)
		if err != nil {
			return nil, err
		}
		if err := filter.Check(r); err != nil {
			return nil, err
		}
		return RatingTuple(r), nil
	})
	res.Malformed = src.Malformed
	return res, err
}

func (j *Job) generateClubs(ctx context.Context) (Result, error) {
	if j.Clubs == nil || j.ClubCount == nil {
		return Result{Stage: StageClubs}, nil
	}
	n, err := j.ClubCount(ctx)
	if err != nil {
		return Result{Stage: StageClubs}, err
	}
	return j.Clubs.Generate(ctx, n)
}
