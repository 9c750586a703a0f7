package etl

import (
	"context"

	"github.com/pkg/errors"

	"github.com/BartekS5/bookclub/pkg/database"
	"github.com/BartekS5/bookclub/pkg/logger"
)

// RefTable describes a name-keyed reference table.
type RefTable struct {
	Kind       string
	Table      string
	IDColumn   string
	NameColumn string
	Spec       database.InsertSpec
}

var (
	PublisherRefs = RefTable{Kind: "publishers", Table: database.TablePublishers, IDColumn: "publisher_id", NameColumn: "name", Spec: PublisherSpec}
	AuthorRefs    = RefTable{Kind: "authors", Table: database.TableAuthors, IDColumn: "author_id", NameColumn: "name", Spec: AuthorSpec}
)

// RefStore is the part of the store a Resolver needs.
type RefStore interface {
	Writer
	ReadNameIDs(ctx context.Context, table, idCol, nameCol string) (map[string]int64, error)
	LookupID(ctx context.Context, table, idCol, nameCol, name string) (int64, bool, error)
}

// Resolver maps reference names to surrogate ids. Names are compared
// byte-for-byte.
type Resolver struct {
	store  RefStore
	ref    RefTable
	loader *BatchLoader
	ids    map[string]int64
}

func NewResolver(store RefStore, ref RefTable, batchSize int) *Resolver {
	return &Resolver{
		store:  store,
		ref:    ref,
		loader: NewBatchLoader(store, batchSize),
		ids:    make(map[string]int64),
	}
}

// Prime inserts every name that is not stored yet, then reads the whole
// table back into the cache.
func (r *Resolver) Prime(ctx context.Context, names []string) (Result, error) {
	res, err := Load(ctx, r.loader, r.ref.Kind, Slice(names), r.ref.Spec, func(name string) ([]any, error) {
		return nameTuple(name), nil
	})
	if err != nil {
		return res, err
	}
	if err := r.Refresh(ctx); err != nil {
		return res, err
	}
	logger.Infof("    Total unique %s loaded: %d", r.ref.Kind, len(r.ids))
	return res, nil
}

// Refresh replaces the cache with the current table contents.
func (r *Resolver) Refresh(ctx context.Context) error {
	ids, err := r.store.ReadNameIDs(ctx, r.ref.Table, r.ref.IDColumn, r.ref.NameColumn)
	if err != nil {
		return err
	}
	r.ids = ids
	return nil
}

// Resolve is a cache lookup only.
func (r *Resolver) Resolve(name string) (int64, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// ResolveOrCreate returns the id for name, inserting the row when absent.
// An existing row is returned unchanged, so repeated calls agree.
func (r *Resolver) ResolveOrCreate(ctx context.Context, name string) (int64, error) {
	if id, ok := r.ids[name]; ok {
		return id, nil
	}
	if _, err := r.store.InsertBatch(ctx, r.ref.Spec, [][]any{nameTuple(name)}); err != nil {
		return 0, errors.Wrapf(err, "create %s %q", r.ref.Kind, name)
	}
	id, ok, err := r.store.LookupID(ctx, r.ref.Table, r.ref.IDColumn, r.ref.NameColumn, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Errorf("%s %q missing after insert", r.ref.Kind, name)
	}
	r.ids[name] = id
	return id, nil
}

// Len reports the number of cached names.
func (r *Resolver) Len() int { return len(r.ids) }
