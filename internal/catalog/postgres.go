// Package catalog provides the product, inventory and review rows a ranking pass reads.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kosarica/offer-service/internal/ranking"
)

// Schema creates the catalog tables. Serial ids preserve insertion order.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id          BIGSERIAL PRIMARY KEY,
	sku         TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	description TEXT,
	image_ref   TEXT,
	category_id TEXT
);

CREATE TABLE IF NOT EXISTS inventory (
	id            BIGSERIAL PRIMARY KEY,
	sku           TEXT NOT NULL,
	store_id      TEXT NOT NULL,
	price         NUMERIC(12, 2) NOT NULL CHECK (price >= 0 AND price <> 'NaN'),
	quantity      INTEGER NOT NULL DEFAULT 0,
	store_address TEXT,
	store_name    TEXT NOT NULL,
	UNIQUE (sku, store_id)
);

CREATE INDEX IF NOT EXISTS idx_inventory_sku ON inventory (sku);

CREATE TABLE IF NOT EXISTS reviews (
	id     BIGSERIAL PRIMARY KEY,
	sku    TEXT NOT NULL,
	rating REAL NOT NULL CHECK (rating >= 0 AND rating <= 5)
);

CREATE INDEX IF NOT EXISTS idx_reviews_sku ON reviews (sku);
`

// PostgresSource loads the catalog from Postgres.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresSource creates a Postgres-backed catalog source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{
		pool:   pool,
		logger: log.With().Str("component", "catalog_postgres").Logger(),
	}
}

// EnsureSchema creates the catalog tables if they do not exist.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// Load implements ranking.CatalogSource. The three tables are read concurrently.
func (s *PostgresSource) Load(ctx context.Context) (*ranking.CatalogSnapshot, error) {
	snapshot := &ranking.CatalogSnapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.loadProducts(gctx)
		snapshot.Products = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.loadInventory(gctx)
		snapshot.Inventory = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.loadReviews(gctx)
		snapshot.Reviews = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ranking.ErrSourceData, err)
	}

	s.logger.Debug().
		Int("products", len(snapshot.Products)).
		Int("inventory", len(snapshot.Inventory)).
		Int("reviews", len(snapshot.Reviews)).
		Msg("Catalog loaded")

	return snapshot, nil
}

func (s *PostgresSource) loadProducts(ctx context.Context) ([]ranking.ProductRow, error) {
	query := `
		SELECT sku, name, COALESCE(description, ''), COALESCE(image_ref, ''), COALESCE(category_id, '')
		FROM products
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ranking.ProductRow, error) {
		var p ranking.ProductRow
		err := row.Scan(&p.SKU, &p.Name, &p.Description, &p.ImageRef, &p.CategoryID)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	return result, nil
}

func (s *PostgresSource) loadInventory(ctx context.Context) ([]ranking.InventoryRow, error) {
	query := `
		SELECT sku, store_id, price::float8, quantity, COALESCE(store_address, ''), store_name
		FROM inventory
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ranking.InventoryRow, error) {
		var inv ranking.InventoryRow
		err := row.Scan(&inv.SKU, &inv.StoreID, &inv.Price, &inv.Quantity, &inv.StoreAddress, &inv.StoreName)
		return inv, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan inventory: %w", err)
	}
	return result, nil
}

func (s *PostgresSource) loadReviews(ctx context.Context) ([]ranking.ReviewRow, error) {
	query := `
		SELECT sku, rating::float8
		FROM reviews
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ranking.ReviewRow, error) {
		var r ranking.ReviewRow
		err := row.Scan(&r.SKU, &r.Rating)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan reviews: %w", err)
	}
	return result, nil
}

// Import replaces the catalog with snapshot inside one transaction using COPY.
func (s *PostgresSource) Import(ctx context.Context, snapshot *ranking.CatalogSnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE products, inventory, reviews RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate catalog: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"sku", "name", "description", "image_ref", "category_id"},
		pgx.CopyFromSlice(len(snapshot.Products), func(i int) ([]any, error) {
			p := snapshot.Products[i]
			return []any{p.SKU, p.Name, p.Description, p.ImageRef, p.CategoryID}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy products: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"inventory"},
		[]string{"sku", "store_id", "price", "quantity", "store_address", "store_name"},
		pgx.CopyFromSlice(len(snapshot.Inventory), func(i int) ([]any, error) {
			inv := snapshot.Inventory[i]
			return []any{inv.SKU, inv.StoreID, inv.Price, inv.Quantity, inv.StoreAddress, inv.StoreName}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy inventory: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"reviews"},
		[]string{"sku", "rating"},
		pgx.CopyFromSlice(len(snapshot.Reviews), func(i int) ([]any, error) {
			r := snapshot.Reviews[i]
			return []any{r.SKU, float32(r.Rating)}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy reviews: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	s.logger.Info().
		Int("products", len(snapshot.Products)).
		Int("inventory", len(snapshot.Inventory)).
		Int("reviews", len(snapshot.Reviews)).
		Msg("Catalog imported")
	return nil
}
