package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dom/pokedex/internal/domain"
	"github.com/dom/pokedex/internal/repository"
	"go.uber.org/zap"
)

// CatalogService serves the merged list and single entries through the
// query cache.
type CatalogService struct {
	aggregator *Aggregator
	catalog    repository.CatalogSource
	store      repository.MutableStore
	cache      *QueryCache
	notifier   Notifier
	pageSize   int
	logger     *zap.Logger

	// pagesIssued counts LoadMore and Refresh requests, pagesApplied the
	// pages that reached the cache
	pagesIssued  atomic.Uint64
	pagesApplied atomic.Uint64
}

func NewCatalogService(
	aggregator *Aggregator,
	repos *repository.Repositories,
	queryCache *QueryCache,
	notifier Notifier,
	pageSize int,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		aggregator: aggregator,
		catalog:    repos.Catalog,
		store:      repos.Store,
		cache:      queryCache,
		notifier:   notifier,
		pageSize:   pageSize,
		logger:     logger,
	}
}

func (s *CatalogService) PageSize() int {
	return s.pageSize
}

// FirstPage returns the cached merged list while it is fresh, and reloads the
// first page otherwise.
func (s *CatalogService) FirstPage(ctx context.Context) ([]domain.Entry, error) {
	snap := s.cache.Lists.Snapshot(ListKey)
	if snap.Present && snap.Fresh {
		return snap.Value, nil
	}

	list, err := s.aggregator.LoadFirstPage(ctx, s.pageSize)
	if err != nil {
		return nil, err
	}
	return s.commitList(snap.Version, list), nil
}

// Refresh drops the cached list and loads the first page again
func (s *CatalogService) Refresh(ctx context.Context) ([]domain.Entry, error) {
	s.pagesIssued.Add(1)
	s.cache.Lists.Invalidate(ListKey)
	return s.FirstPage(ctx)
}

// LoadMore appends the next catalog page to the cached list.
//
// A page is dropped, and the current list returned, when a later LoadMore or
// Refresh was issued or another page landed first, so pages are applied in
// issue order. If only entries were edited in the meantime the page is
// appended to the edited list. If the list was replaced or resized by
// anything else, ErrListChanged is returned.
func (s *CatalogService) LoadMore(ctx context.Context) ([]domain.Entry, error) {
	seq := s.pagesIssued.Add(1)
	applied := s.pagesApplied.Load()

	snap := s.cache.Lists.Snapshot(ListKey)
	if !snap.Present {
		return s.FirstPage(ctx)
	}

	next, err := s.aggregator.LoadNextPage(ctx, snap.Value, s.pageSize)
	if err != nil {
		return nil, err
	}

	if _, ok := s.cache.Lists.CompareAndSwap(ListKey, snap.Version, next); ok {
		s.pageApplied(next)
		return next, nil
	}
	return s.rebasePage(seq, applied, len(snap.Value), next)
}

func (s *CatalogService) rebasePage(seq, applied uint64, issuedLen int, next []domain.Entry) ([]domain.Entry, error) {
	var (
		merged     []domain.Entry
		superseded bool
	)
	_, ok := s.cache.Lists.Update(ListKey, func(current []domain.Entry, present bool) ([]domain.Entry, bool) {
		if s.pagesIssued.Load() != seq || s.pagesApplied.Load() != applied {
			superseded = true
			merged = current
			return nil, false
		}
		if !present || len(current) != issuedLen {
			return nil, false
		}
		merged = make([]domain.Entry, 0, len(next))
		merged = append(merged, current...)
		merged = append(merged, next[issuedLen:]...)
		return merged, true
	})

	switch {
	case ok:
		s.pageApplied(merged)
		return merged, nil
	case superseded && merged != nil:
		s.logger.Debug("discarding superseded page", zap.Uint64("request", seq), zap.Int("length", len(next)))
		return merged, nil
	default:
		s.logger.Warn("list changed while loading page", zap.Uint64("request", seq), zap.Int("issuedLength", issuedLen))
		return nil, fmt.Errorf("%w: offset %d no longer matches the cached list", domain.ErrListChanged, issuedLen)
	}
}

func (s *CatalogService) pageApplied(list []domain.Entry) {
	s.pagesApplied.Add(1)
	s.notifier.Publish(domain.Event{Type: domain.EventPageLoaded, Count: len(list)})
}

func (s *CatalogService) commitList(version uint64, list []domain.Entry) []domain.Entry {
	if _, ok := s.cache.Lists.CompareAndSwap(ListKey, version, list); !ok {
		s.logger.Debug("discarding stale first page", zap.Uint64("version", version), zap.Int("length", len(list)))
		if current, present := s.cache.Lists.Get(ListKey); present {
			return current
		}
		return list
	}

	s.pageApplied(list)
	return list
}

// GetEntry reads one entry. Numeric ids come from the catalog, everything
// else from the store.
func (s *CatalogService) GetEntry(ctx context.Context, id string) (domain.Entry, error) {
	key := EntryKey(id)
	if snap := s.cache.Entries.Snapshot(key); snap.Present && snap.Fresh {
		return snap.Value, nil
	}

	var (
		e   domain.Entry
		err error
	)
	origin := domain.OriginForID(id)
	switch origin {
	case domain.OriginCanonical:
		var raw domain.RawEntry
		raw, err = s.catalog.GetDetail(ctx, id)
		e = domain.Normalize(raw, origin)
	default:
		var raw domain.RawEntry
		raw, err = s.store.Get(ctx, id)
		e = domain.Normalize(raw, origin)
		e.ID = id
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Entry{}, err
		}
		s.logger.Warn("get entry failed", zap.String("id", id), zap.Error(err))
		return domain.Entry{}, fetchFailed(err)
	}
	if e.Name == "" {
		return domain.Entry{}, fmt.Errorf("%w: %s has no name", domain.ErrNotFound, id)
	}

	s.cache.Entries.Set(key, e)
	return e, nil
}
