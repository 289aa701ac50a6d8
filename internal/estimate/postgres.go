package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
)

// Schema is the SQL DDL for the estimates table. The room and item breakdown
// is stored as a JSONB document; it is read and written whole, never queried
// into.
const Schema = `
CREATE TABLE IF NOT EXISTS estimates (
    id           UUID PRIMARY KEY,
    company_id   BIGINT NOT NULL,
    client_name  TEXT NOT NULL DEFAULT '',
    client_phone TEXT NOT NULL DEFAULT '',
    address      TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL,
    rooms        JSONB NOT NULL,
    total_area   DOUBLE PRECISION NOT NULL,
    total_sum    NUMERIC(12,2) NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_estimates_company_created ON estimates(company_id, created_at DESC);
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

// NewPostgresStore creates a new [PostgresStore] over the given connection or
// pool.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("estimate: migrate: %w", err)
	}
	return nil
}

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, e *Estimate) error {
	rooms, err := json.Marshal(e.Rooms)
	if err != nil {
		return fmt.Errorf("estimate: marshal rooms: %w", err)
	}

	const query = `
		INSERT INTO estimates (id, company_id, client_name, client_phone, address, status, rooms, total_area, total_sum)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`

	err = s.db.QueryRow(ctx, query,
		e.ID, e.CompanyID, e.ClientName, e.ClientPhone, e.Address,
		string(e.Status), rooms, e.TotalArea, e.TotalSum,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("estimate: create: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Estimate, error) {
	const query = `
		SELECT id, company_id, client_name, client_phone, address, status, rooms, total_area, total_sum, created_at, updated_at
		FROM estimates
		WHERE id = $1`

	e, err := scanEstimate(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("estimate: get %s: %w", id, err)
	}
	return e, nil
}

// ListByCompany implements Store.
func (s *PostgresStore) ListByCompany(ctx context.Context, companyID int64) ([]Estimate, error) {
	const query = `
		SELECT id, company_id, client_name, client_phone, address, status, rooms, total_area, total_sum, created_at, updated_at
		FROM estimates
		WHERE company_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("estimate: list: %w", err)
	}
	defer rows.Close()

	var out []Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("estimate: list scan: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("estimate: list: %w", err)
	}
	return out, nil
}

// UpdateStatus implements Store.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	const query = `UPDATE estimates SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("estimate: update status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEstimate(row pgx.Row) (*Estimate, error) {
	var (
		e     Estimate
		rooms []byte
	)
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.ClientName, &e.ClientPhone, &e.Address, &e.Status,
		&rooms, &e.TotalArea, &e.TotalSum, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rooms, &e.Rooms); err != nil {
		return nil, fmt.Errorf("unmarshal rooms: %w", err)
	}
	if e.Rooms == nil {
		e.Rooms = []parse.Room{}
	}
	return &e, nil
}
