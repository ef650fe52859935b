package main

import (
	"maps"

	"go.uber.org/zap"

	"github.com/codyseavey/jeeves/internal/config"
	"github.com/codyseavey/jeeves/internal/services"
)

// core is the lookup pipeline shared by serve and lookup.
type core struct {
	store    *services.CatalogStore
	catalog  *services.CatalogService
	resolver *services.Resolver
	lookup   *services.LookupService
}

func newCore(cfg *config.Config, recorder services.LookupRecorder, logger *zap.Logger) (*core, error) {
	store := services.NewCatalogStore()
	fetcher := services.NewNetrunnerDBService(cfg.Catalog.APIBaseURL, cfg.Catalog.FetchTimeout.Duration)
	catalog := services.NewCatalogService(store, fetcher, logger.Named("catalog"))

	resolver, err := services.NewResolver(store, cfg.Search.CacheSize)
	if err != nil {
		return nil, err
	}

	symbols := services.DefaultSymbols()
	maps.Copy(symbols, cfg.Symbols)
	renderer := services.NewRenderer(symbols)
	builder := services.NewDocumentBuilder(renderer, cfg.Catalog.CardURLBase, cfg.Catalog.ImageURLBase)

	lookup := services.NewLookupService(resolver, builder, recorder, logger.Named("lookup"))

	c := &core{
		store:    store,
		catalog:  catalog,
		resolver: resolver,
		lookup:   lookup,
	}
	c.apply(cfg)
	return c, nil
}

// apply pushes the settings that may change at runtime.
func (c *core) apply(cfg *config.Config) {
	c.resolver.SetAliases(cfg.Aliases)
	c.lookup.SetMaxSearches(cfg.Search.MaxSearches)
}
