package app

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/pkg/health"
)

// catalogIntegrityCheck fails while the stored category forest contains a
// parent cycle. Dangling parents and duplicates only degrade matching, so
// they do not take the instance out of rotation.
func catalogIntegrityCheck(categories catalog.Repository) health.CheckFunc {
	return func(ctx context.Context) error {
		nodes, err := categories.ListCategories(ctx)
		if err != nil {
			return errors.Wrap(err, "list categories")
		}
		var cycles []string
		for _, f := range catalog.BuildIndex(nodes).Faults() {
			if f.Kind == catalog.FaultCycle {
				cycles = append(cycles, f.CategoryID)
			}
		}
		if len(cycles) > 0 {
			return errors.Errorf("category cycle at %s", strings.Join(cycles, ", "))
		}
		return nil
	}
}
