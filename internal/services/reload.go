package services

import (
	"context"
	"fmt"
)

// OperatorReloader is the explicit reload trigger: it re-reads settings
// (aliases, search cap) and then refetches the catalog.
type OperatorReloader struct {
	reloadSettings func() error
	catalog        CatalogReloader
}

func NewOperatorReloader(reloadSettings func() error, catalog CatalogReloader) *OperatorReloader {
	return &OperatorReloader{reloadSettings: reloadSettings, catalog: catalog}
}

// Reload returns the number of cards loaded. A settings failure stops the
// reload before the catalog is fetched; either failure keeps the old state.
func (r *OperatorReloader) Reload(ctx context.Context) (int, error) {
	if r.reloadSettings != nil {
		if err := r.reloadSettings(); err != nil {
			return 0, fmt.Errorf("failed to reload settings: %w", err)
		}
	}
	return r.catalog.Reload(ctx)
}
