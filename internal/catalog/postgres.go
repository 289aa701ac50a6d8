package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the price_items table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS price_items (
    id          BIGSERIAL PRIMARY KEY,
    company_id  BIGINT NOT NULL,
    name        TEXT NOT NULL,
    unit        TEXT NOT NULL,
    price       NUMERIC(10,2) NOT NULL CHECK (price >= 0),
    synonyms    TEXT NOT NULL DEFAULT '',
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    is_custom   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_price_items_company_active ON price_items(company_id, is_active);
CREATE INDEX IF NOT EXISTS idx_price_items_name ON price_items(name);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("catalog: migrate: %w", err)
	}
	return nil
}

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, item *PriceItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	const query = `
		INSERT INTO price_items (company_id, name, unit, price, synonyms, is_active, is_custom)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		item.CompanyID, item.Name, string(item.Unit), item.Price, item.Synonyms,
		item.IsActive, item.IsCustom,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: create: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*PriceItem, error) {
	const query = `
		SELECT id, company_id, name, unit, price, synonyms, is_active, is_custom, created_at, updated_at
		FROM price_items
		WHERE id = $1`

	var item PriceItem
	err := s.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.CompanyID, &item.Name, &item.Unit, &item.Price,
		&item.Synonyms, &item.IsActive, &item.IsCustom, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("catalog: get %d: %w", id, err)
	}
	return &item, nil
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, item *PriceItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	const query = `
		UPDATE price_items SET
			name = $2, unit = $3, price = $4, synonyms = $5,
			is_active = $6, is_custom = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := s.db.QueryRow(ctx, query,
		item.ID, item.Name, string(item.Unit), item.Price, item.Synonyms,
		item.IsActive, item.IsCustom,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("catalog: update %d: %w", item.ID, err)
	}
	return nil
}

// Deactivate implements Store.
func (s *PostgresStore) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE price_items SET is_active = FALSE, updated_at = now() WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("catalog: deactivate %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive implements Store.
func (s *PostgresStore) ListActive(ctx context.Context, companyID int64) ([]PriceItem, error) {
	const query = `
		SELECT id, company_id, name, unit, price, synonyms, is_active, is_custom, created_at, updated_at
		FROM price_items
		WHERE company_id = $1 AND is_active
		ORDER BY name`

	rows, err := s.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list active: %w", err)
	}
	defer rows.Close()

	var items []PriceItem
	for rows.Next() {
		var item PriceItem
		if err := rows.Scan(
			&item.ID, &item.CompanyID, &item.Name, &item.Unit, &item.Price,
			&item.Synonyms, &item.IsActive, &item.IsCustom, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("catalog: list active scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list active: %w", err)
	}
	return items, nil
}
