package repository

import (
	"context"
	"fmt"

	"factorio/wiki/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ItemRepository mirrors the catalog into an external database. The JSON
// cache stays the source of truth; the mirror is write-only.
type ItemRepository interface {
	SaveItems(ctx context.Context, catalog domain.Catalog) error
}

// executor is the subset of *pgxpool.Pool the mirror uses.
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var _ executor = (*pgxpool.Pool)(nil)

type itemRepository struct {
	db executor
}

func NewItemRepository(db *pgxpool.Pool) ItemRepository {
	return &itemRepository{
		db: db,
	}
}

const upsertItemQuery = `
	INSERT INTO items (name, ref, data)
	VALUES ($1, $2, $3)
	ON CONFLICT (name)
	DO UPDATE SET ref = $2, data = $3`

func buildUpsertBatch(catalog domain.Catalog) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, item := range catalog {
		batch.Queue(upsertItemQuery, item.Name, item.Ref, item)
	}
	return batch
}

func (r *itemRepository) SaveItems(ctx context.Context, catalog domain.Catalog) error {
	results := r.db.SendBatch(ctx, buildUpsertBatch(catalog))
	defer results.Close()

	for _, item := range catalog {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save item %s: %w", item.Name, err)
		}
	}

	return nil
}

const createItemsTableQuery = `
	CREATE TABLE IF NOT EXISTS items (
		name TEXT PRIMARY KEY,
		ref  TEXT NOT NULL,
		data JSONB NOT NULL
	)`

// EnsureSchema creates the items table when missing.
func EnsureSchema(ctx context.Context, db executor) error {
	_, err := db.Exec(ctx, createItemsTableQuery)
	if err != nil {
		return fmt.Errorf("failed to create items table: %w", err)
	}
	return nil
}
