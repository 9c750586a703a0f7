package etl

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/pkg/database"
	"github.com/BartekS5/bookclub/pkg/logger"
	"github.com/BartekS5/bookclub/pkg/models"
	"github.com/BartekS5/bookclub/pkg/utils"
)

const (
	usersPerClub   = 20
	booksPerClub   = 10
	maxModerators  = 3
	moderatorOdds  = 0.2
	clubBlurb      = "A wonderful book club for passionate readers!"
	generalContent = "This is an interesting topic for discussion!"
)

var (
	clubSpec = database.InsertSpec{
		Table:   database.TableClubs,
		Columns: []string{"name", "description", "is_public", "created_by"},
	}
	memberSpec = database.InsertSpec{
		Table:    database.TableClubMembers,
		Columns:  []string{"club_id", "user_id", "role"},
		Key:      []string{"club_id", "user_id"},
		Conflict: database.ConflictIgnore,
	}
	queueSpec = database.InsertSpec{
		Table:   database.TableReadingQueue,
		Columns: []string{"club_id", "ISBN", "queue_position", "added_by"},
	}
	historySpec = database.InsertSpec{
		Table:   database.TableReadingHistory,
		Columns: []string{"club_id", "ISBN", "start_date", "end_date"},
	}
	generalSpec = database.InsertSpec{
		Table:   database.TableGeneralDiscussions,
		Columns: []string{"club_id", "user_id", "title", "content"},
	}
	chapterSpec = database.InsertSpec{
		Table:   database.TableChapterDiscussions,
		Columns: []string{"club_id", "ISBN", "chapter_number", "user_id", "title", "content"},
	}
)

// ClubStore is what the generator needs from the store.
type ClubStore interface {
	SampleInt64(ctx context.Context, table, col string, n int) ([]int64, error)
	SampleStrings(ctx context.Context, table, col string, n int) ([]string, error)
	WithTx(ctx context.Context, fn func(*database.Tx) error) error
}

// ClubGenerator builds synthetic clubs from already loaded users and books.
type ClubGenerator struct {
	Store ClubStore
	Rand  *rand.Rand
	Now   func() time.Time
}

// NewClubGenerator seeds the generator; the same seed and store contents
// give the same clubs.
func NewClubGenerator(store ClubStore, seed uint64) *ClubGenerator {
	return &ClubGenerator{
		Store: store,
		Rand:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Now:   time.Now,
	}
}

// between returns a random int in [lo, hi].
func (g *ClubGenerator) between(lo, hi int) int {
	return lo + g.Rand.IntN(hi-lo+1)
}

// ClubPlan is everything written for one club.
type ClubPlan struct {
	Club        models.Club
	Members     []models.ClubMember
	Queue       []models.QueueEntry
	History     []models.HistoryEntry
	General     []models.Discussion
	Chapters    []models.Discussion
	CurrentISBN string
}

// Plan draws club number i (1-based) from the sampled pools.
func (g *ClubGenerator) Plan(i int, users []int64, books []string) ClubPlan {
	creator := users[(i-1)%len(users)]
	p := ClubPlan{
		Club: models.Club{
			Name:        fmt.Sprintf("Book Club %d", i),
			Description: clubBlurb,
			IsPublic:    g.Rand.IntN(2) == 0,
			CreatedBy:   creator,
		},
	}

	p.Members = append(p.Members, models.ClubMember{UserID: creator, Role: models.RoleAdmin})
	joined := map[int64]bool{creator: true}
	n := min(g.between(5, 15), len(users))
	var posters []int64
	moderators := 0
	for _, idx := range g.Rand.Perm(len(users))[:n] {
		uid := users[idx]
		posters = append(posters, uid)
		if joined[uid] {
			continue
		}
		joined[uid] = true
		role := models.RoleMember
		if moderators < maxModerators && g.Rand.Float64() < moderatorOdds {
			role = models.RoleModerator
			moderators++
		}
		p.Members = append(p.Members, models.ClubMember{UserID: uid, Role: role})
	}

	today := truncateDay(g.Now())
	p.CurrentISBN = books[g.Rand.IntN(len(books))]
	p.History = append(p.History, models.HistoryEntry{ISBN: p.CurrentISBN, Start: today})

	queued := map[string]bool{}
	for pos, size := 1, g.between(2, 5); pos <= size; pos++ {
		isbn := books[g.Rand.IntN(len(books))]
		if queued[isbn] {
			continue
		}
		queued[isbn] = true
		p.Queue = append(p.Queue, models.QueueEntry{ISBN: isbn, Position: len(p.Queue) + 1, AddedBy: creator})
	}

	for range g.between(1, 3) {
		endAgo := g.between(10, 90)
		startAgo := endAgo + g.between(14, 44)
		p.History = append(p.History, models.HistoryEntry{
			ISBN:  books[g.Rand.IntN(len(books))],
			Start: today.AddDate(0, 0, -startAgo),
			End:   utils.Ptr(today.AddDate(0, 0, -endAgo)),
		})
	}

	for j := range g.between(1, 3) {
		p.General = append(p.General, models.Discussion{
			UserID:  posters[g.Rand.IntN(len(posters))],
			Title:   fmt.Sprintf("General Discussion Topic %d", j+1),
			Content: generalContent,
		})
	}
	for range g.between(2, 4) {
		ch := g.between(1, 10)
		p.Chapters = append(p.Chapters, models.Discussion{
			UserID:  posters[g.Rand.IntN(len(posters))],
			ISBN:    p.CurrentISBN,
			Chapter: ch,
			Title:   fmt.Sprintf("Chapter %d Discussion", ch),
			Content: fmt.Sprintf("What did everyone think about chapter %d?", ch),
		})
	}
	return p
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Generate writes n clubs, one transaction each.
func (g *ClubGenerator) Generate(ctx context.Context, n int) (Result, error) {
	start := time.Now()
	res := Result{Stage: StageClubs}
	if n <= 0 {
		return res, nil
	}

	logger.Infof("  Generating %d sample book clubs...", n)
	users, err := g.Store.SampleInt64(ctx, database.TableUsers, "user_id", n*usersPerClub)
	if err != nil {
		return res, err
	}
	books, err := g.Store.SampleStrings(ctx, database.TableBooks, "ISBN", n*booksPerClub)
	if err != nil {
		return res, err
	}
	if len(users) == 0 || len(books) == 0 {
		return res, errors.Errorf("sample clubs need loaded users and books (have %d users, %d books)", len(users), len(books))
	}

	for i := 1; i <= n; i++ {
		res.Attempted++
		plan := g.Plan(i, users, books)
		if err := g.write(ctx, &plan); err != nil {
			res.Duration = time.Since(start)
			return res, errors.Wrapf(err, "club %d", i)
		}
		res.Loaded++
		res.Batches++
		logger.Infof("    Created club %d/%d: %s", i, n, plan.Club.Name)
	}
	res.Duration = time.Since(start)
	return res, nil
}

func (g *ClubGenerator) write(ctx context.Context, p *ClubPlan) error {
	return g.Store.WithTx(ctx, func(tx *database.Tx) error {
		c := p.Club
		id, err := tx.InsertID(ctx, clubSpec.Table, clubSpec.Columns, "club_id", c.Name, c.Description, c.IsPublic, c.CreatedBy)
		if err != nil {
			return err
		}
		p.Club.ID = id

		var members, queue, history, general, chapters [][]any
		for _, m := range p.Members {
			members = append(members, []any{id, m.UserID, m.Role})
		}
		for _, q := range p.Queue {
			queue = append(queue, []any{id, q.ISBN, q.Position, q.AddedBy})
		}
		for _, h := range p.History {
			history = append(history, []any{id, h.ISBN, h.Start, utils.Nullable(h.End)})
		}
		for _, d := range p.General {
			general = append(general, []any{id, d.UserID, d.Title, d.Content})
		}
		for _, d := range p.Chapters {
			chapters = append(chapters, []any{id, d.ISBN, d.Chapter, d.UserID, d.Title, d.Content})
		}

		writes := []struct {
			spec database.InsertSpec
			rows [][]any
		}{
			{memberSpec, members},
			{queueSpec, queue},
			{historySpec, history},
			{generalSpec, general},
			{chapterSpec, chapters},
		}
		for _, w := range writes {
			if len(w.rows) == 0 {
				continue
			}
			if _, err := tx.Insert(ctx, w.spec, w.rows); err != nil {
				return err
			}
		}
		return nil
	})
}
