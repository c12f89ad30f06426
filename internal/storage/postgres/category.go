package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/catalog"
)

const (
	listCategoriesSQL = `SELECT id, name, parent_id FROM categories ORDER BY id`

	upsertCategorySQL = `INSERT INTO categories (id, name, parent_id) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, parent_id = EXCLUDED.parent_id`
)

var _ catalog.Repository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.Repository backed by PostgreSQL.
// Parent ids are not foreign keys, so malformed forests can be stored and
// are detected when the index is built.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// ListCategories returns every category ordered by id.
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]catalog.CategoryNode, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.CategoryNode, error) {
		var n catalog.CategoryNode
		err := row.Scan(&n.ID, &n.Name, &n.ParentID)
		return n, err
	})
}

// Upsert inserts or replaces categories in one batch.
func (r *CategoryRepository) Upsert(ctx context.Context, nodes []catalog.CategoryNode) error {
	batch := &pgx.Batch{}
	for _, n := range nodes {
		batch.Queue(upsertCategorySQL, n.ID, n.Name, n.ParentID)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert categories")
	}
	return nil
}
