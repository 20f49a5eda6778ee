// Package detail resolves an entity together with the entities its
// relation list points at.
package detail

import (
	"context"
	"fmt"

	"github.com/meur/dattebayo/internal/catalog"
	"github.com/meur/dattebayo/internal/models"
	"golang.org/x/sync/errgroup"
)

// Fetcher looks up single entities.
type Fetcher interface {
	FetchByID(ctx context.Context, collection string, id int) (models.Entity, error)
}

// Detail is a parent entity and its resolved relation list.
type Detail struct {
	Collection models.Collection
	Parent     models.Entity
	Related    []models.Entity
}

// Resolver builds detail views straight from the catalog, independent of any
// list state.
type Resolver struct {
	fetcher Fetcher
}

// New creates a Resolver.
func New(f Fetcher) *Resolver {
	return &Resolver{fetcher: f}
}

// ResolveDetail fetches the parent entity.
func (r *Resolver) ResolveDetail(ctx context.Context, collection string, id int) (models.Entity, error) {
	e, err := r.fetcher.FetchByID(ctx, collection, id)
	if err != nil {
		return models.Entity{}, err
	}
	if e.ID == 0 && e.Name == "" {
		return models.Entity{}, &catalog.NotFoundError{Collection: collection, ID: id}
	}
	return e, nil
}

// ResolveRelations fetches every id concurrently and returns the entities in
// input order. The first failure cancels the rest and fails the whole call.
func (r *Resolver) ResolveRelations(ctx context.Context, collection string, ids []int) ([]models.Entity, error) {
	out := make([]models.Entity, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			e, err := r.fetcher.FetchByID(gctx, collection, id)
			if err != nil {
				return fmt.Errorf("resolve %s %d: %w", collection, id, err)
			}
			out[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve fetches the parent and, when the collection has a relation list,
// every entity on it.
func (r *Resolver) Resolve(ctx context.Context, c models.Collection, id int) (Detail, error) {
	parent, err := r.ResolveDetail(ctx, c.Slug, id)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Collection: c, Parent: parent}
	if c.Relation == nil {
		return d, nil
	}
	related, err := r.ResolveRelations(ctx, c.Relation.Target, parent.Relation(c.Relation.Key))
	if err != nil {
		return Detail{}, err
	}
	d.Related = related
	return d, nil
}
