package service

import (
	"github.com/dom/pokedex/internal/cache"
	"github.com/dom/pokedex/internal/config"
	"github.com/dom/pokedex/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Catalog   *CatalogService
	Mutations *MutationCoordinator
	Cache     *QueryCache
}

func NewServices(repos *repository.Repositories, cfg *config.Config, notifier Notifier, logger *zap.Logger) *Services {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	queryCache := NewQueryCache(
		cache.WithStaleTime(cfg.CacheStaleTime),
		cache.WithGCTime(cfg.CacheGCTime),
	)
	aggregator := NewAggregator(repos.Catalog, repos.Store, logger.Named("aggregator"))

	return &Services{
		Catalog:   NewCatalogService(aggregator, repos, queryCache, notifier, cfg.PageSize, logger.Named("catalog")),
		Mutations: NewMutationCoordinator(repos.Store, queryCache, notifier, logger.Named("mutations")),
		Cache:     queryCache,
	}
}
