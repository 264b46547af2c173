package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/storage-catalog/pkg/catalog"
)

// DefaultSchema is the Postgres schema holding the catalog tables.
const DefaultSchema = "catalog"

const tableName = "storage_service_entity"

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements catalog.Repository using PostgreSQL. Each entity is
// kept as a JSON document next to its id and name columns.
type Repository struct {
	db    DBTX
	table string
}

// New creates a new PostgreSQL repository using the given schema
func New(db DBTX, schema string) catalog.Repository {
	return newRepository(db, schema)
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) catalog.Repository {
	return newRepository(pool, DefaultSchema)
}

func newRepository(db DBTX, schema string) *Repository {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Repository{
		db:    db,
		table: pgx.Identifier{schema, tableName}.Sanitize(),
	}
}

// EnsureSchema creates the schema and the entity table when missing.
func EnsureSchema(ctx context.Context, db DBTX, schema string) error {
	if schema == "" {
		schema = DefaultSchema
	}
	statements := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize()),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(256) NOT NULL UNIQUE,
			json JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, pgx.Identifier{schema, tableName}.Sanitize()),
	}
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare catalog schema: %w", err)
		}
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return catalog.ErrStorageServiceExists
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrStorageServiceNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreateStorageService(ctx context.Context, svc *catalog.StorageService) error {
	doc, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("failed to encode storage service: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, name, json, updated_at) VALUES ($1, $2, $3, now())`, r.table)
	if _, err := r.db.Exec(ctx, query, svc.ID, svc.Name, doc); err != nil {
		return r.handlePostgresError("create storage service", err)
	}
	return nil
}

func (r *Repository) GetStorageService(ctx context.Context, id string) (*catalog.StorageService, error) {
	query := fmt.Sprintf(`SELECT json FROM %s WHERE id = $1`, r.table)
	return r.getOne(ctx, "get storage service", query, id)
}

func (r *Repository) GetStorageServiceByName(ctx context.Context, name string) (*catalog.StorageService, error) {
	query := fmt.Sprintf(`SELECT json FROM %s WHERE name = $1`, r.table)
	return r.getOne(ctx, "get storage service by name", query, name)
}

func (r *Repository) getOne(ctx context.Context, operation, query string, arg string) (*catalog.StorageService, error) {
	var doc []byte
	if err := r.db.QueryRow(ctx, query, arg).Scan(&doc); err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	return decodeDocument(doc)
}

// UpdateStorageService rewrites the row only while the stored document still
// carries expectedVersion.
func (r *Repository) UpdateStorageService(ctx context.Context, svc *catalog.StorageService, expectedVersion float64) error {
	doc, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("failed to encode storage service: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET name = $2, json = $3, updated_at = now()
		WHERE id = $1 AND COALESCE((json->>'version')::float8, 0) = $4`, r.table)
	tag, err := r.db.Exec(ctx, query, svc.ID, svc.Name, doc, expectedVersion)
	if err != nil {
		return r.handlePostgresError("update storage service", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	query = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, r.table)
	if err := r.db.QueryRow(ctx, query, svc.ID).Scan(&exists); err != nil {
		return r.handlePostgresError("update storage service", err)
	}
	if !exists {
		return catalog.ErrStorageServiceNotFound
	}
	return catalog.ErrStorageServiceConflict
}

func (r *Repository) DeleteStorageService(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return r.handlePostgresError("delete storage service", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrStorageServiceNotFound
	}
	return nil
}

func (r *Repository) ListStorageServices(ctx context.Context, name string) ([]*catalog.StorageService, error) {
	query := fmt.Sprintf(`SELECT json FROM %s WHERE (name = $1 OR $1 = '') ORDER BY name`, r.table)

	rows, err := r.db.Query(ctx, query, name)
	if err != nil {
		return nil, r.handlePostgresError("list storage services", err)
	}
	defer rows.Close()

	var result []*catalog.StorageService
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, r.handlePostgresError("list storage services", err)
		}
		svc, err := decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list storage services", err)
	}

	return result, nil
}

func decodeDocument(doc []byte) (*catalog.StorageService, error) {
	svc, err := catalog.Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("stored storage service is invalid: %w", err)
	}
	return svc, nil
}
