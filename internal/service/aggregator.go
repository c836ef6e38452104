package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxDetailFetches bounds the per-page fan-out of catalog detail requests
const maxDetailFetches = 16

var ErrInvalidPageSize = errors.New("page size must be positive")

// Aggregator merges the user-created entries from the store with pages of the
// canonical catalog. It keeps no state; CatalogService owns the cached list.
type Aggregator struct {
	catalog repository.CatalogSource
	store   repository.MutableStore
	logger  *zap.Logger
}

func NewAggregator(catalog repository.CatalogSource, store repository.MutableStore, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		catalog: catalog,
		store:   store,
		logger:  logger,
	}
}

// LoadFirstPage returns every user-created entry followed by the first
// pageSize catalog entries. Both sources are queried concurrently and the
// page fails as a whole if either does.
func (a *Aggregator) LoadFirstPage(ctx context.Context, pageSize int) ([]domain.Entry, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}

	var userCreated, canonical []domain.Entry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userCreated, err = a.fetchUserCreated(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		canonical, err = a.fetchCanonicalPage(gctx, pageSize, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		a.logger.Warn("first page failed", zap.Int("pageSize", pageSize), zap.Error(err))
		return nil, err
	}

	list := make([]domain.Entry, 0, len(userCreated)+len(canonical))
	list = append(list, userCreated...)
	list = appendUnique(list, canonical)

	a.logger.Debug("first page loaded",
		zap.Int("userCreated", len(userCreated)),
		zap.Int("canonical", len(canonical)))
	return list, nil
}

// LoadNextPage appends the next pageSize catalog entries to existing.
//
// The offset is len(existing), which counts the user-created entries at the
// head of the list too. Every user-created entry therefore shifts the next
// catalog page forward by one.
func (a *Aggregator) LoadNextPage(ctx context.Context, existing []domain.Entry, pageSize int) ([]domain.Entry, error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}

	offset := len(existing)
	page, err := a.fetchCanonicalPage(ctx, pageSize, offset)
	if err != nil {
		a.logger.Warn("next page failed", zap.Int("offset", offset), zap.Error(err))
		return nil, err
	}

	next := make([]domain.Entry, len(existing), len(existing)+len(page))
	copy(next, existing)
	next = appendUnique(next, page)

	a.logger.Debug("next page loaded", zap.Int("offset", offset), zap.Int("count", len(page)))
	return next, nil
}

func (a *Aggregator) fetchUserCreated(ctx context.Context) ([]domain.Entry, error) {
	keyed, err := a.store.List(ctx)
	if err != nil {
		return nil, fetchFailed(err)
	}

	entries := make([]domain.Entry, 0, len(keyed))
	for _, k := range keyed {
		e := domain.Normalize(k.Raw, domain.OriginUserCreated)
		e.ID = k.ID
		entries = append(entries, e)
	}
	return entries, nil
}

// fetchCanonicalPage lists one page of names, then fetches every detail
// concurrently. Results keep the catalog's order. The first failed detail
// cancels the rest and fails the page.
func (a *Aggregator) fetchCanonicalPage(ctx context.Context, limit, offset int) ([]domain.Entry, error) {
	names, err := a.catalog.ListNames(ctx, limit, offset)
	if err != nil {
		return nil, fetchFailed(err)
	}

	entries := make([]domain.Entry, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDetailFetches)
	for i, name := range names {
		g.Go(func() error {
			raw, err := a.catalog.GetDetail(gctx, name)
			if err != nil {
				return fetchFailed(fmt.Errorf("detail %s: %w", name, err))
			}
			entries[i] = domain.Normalize(raw, domain.OriginCanonical)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// appendUnique appends page to list, skipping ids already present
func appendUnique(list, page []domain.Entry) []domain.Entry {
	seen := make(map[string]struct{}, len(list)+len(page))
	for _, e := range list {
		seen[e.ID] = struct{}{}
	}
	for _, e := range page {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		list = append(list, e)
	}
	return list
}

// fetchFailed classifies any read error as ErrFetchFailed, keeping the cause
func fetchFailed(err error) error {
	if errors.Is(err, domain.ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
}
