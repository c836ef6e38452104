package service

import (
	"context"

	"github.com/dom/pokedex/internal/cache"
	"github.com/dom/pokedex/internal/domain"
)

// ListKey holds the merged list shown on the home view
const ListKey = "pokemons"

// EntryKey holds one entry as shown on its detail view
func EntryKey(id string) string {
	return "pokemon/" + id
}

type (
	ListSnapshot  = cache.Snapshot[[]domain.Entry]
	EntrySnapshot = cache.Snapshot[domain.Entry]
)

// QueryCache is owned jointly by CatalogService and MutationCoordinator.
// Both replace values; neither edits a cached slice in place.
type QueryCache struct {
	Lists   *cache.Cache[[]domain.Entry]
	Entries *cache.Cache[domain.Entry]
}

func NewQueryCache(opts ...cache.Option) *QueryCache {
	return &QueryCache{
		Lists:   cache.New[[]domain.Entry](opts...),
		Entries: cache.New[domain.Entry](opts...),
	}
}

// RunEviction drops keys idle past the GC time until ctx is done
func (q *QueryCache) RunEviction(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Lists.RunUntil(ctx)
	}()
	q.Entries.RunUntil(ctx)
	<-done
}

// replaceEntry returns a copy of list with the entry sharing e's id swapped
// for e. The second result is false when no entry matched.
func replaceEntry(list []domain.Entry, e domain.Entry) ([]domain.Entry, bool) {
	for i := range list {
		if list[i].ID == e.ID {
			next := make([]domain.Entry, len(list))
			copy(next, list)
			next[i] = e
			return next, true
		}
	}
	return list, false
}

func findEntry(list []domain.Entry, id string) (domain.Entry, bool) {
	for _, e := range list {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Entry{}, false
}
