package app

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/catalog"
)

type stubCategories struct {
	nodes []catalog.CategoryNode
	err   error
}

func (s stubCategories) ListCategories(context.Context) ([]catalog.CategoryNode, error) {
	return s.nodes, s.err
}

func strp(s string) *string { return &s }

func TestCatalogIntegrityCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy forest", func(t *testing.T) {
		check := catalogIntegrityCheck(stubCategories{nodes: []catalog.CategoryNode{
			{ID: "apparel"},
			{ID: "shoes", ParentID: strp("apparel")},
		}})
		assert.NoError(t, check(ctx))
	})

	t.Run("dangling parent is tolerated", func(t *testing.T) {
		check := catalogIntegrityCheck(stubCategories{nodes: []catalog.CategoryNode{
			{ID: "shoes", ParentID: strp("gone")},
		}})
		assert.NoError(t, check(ctx))
	})

	t.Run("cycle", func(t *testing.T) {
		check := catalogIntegrityCheck(stubCategories{nodes: []catalog.CategoryNode{
			{ID: "a", ParentID: strp("b")},
			{ID: "b", ParentID: strp("a")},
		}})
		err := check(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "category cycle at")
	})

	t.Run("repository error", func(t *testing.T) {
		check := catalogIntegrityCheck(stubCategories{err: errors.New("db down")})
		assert.ErrorContains(t, check(ctx), "list categories: db down")
	})
}
