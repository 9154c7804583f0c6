// Package postgres implements docstore.Store as a JSONB table keyed by
// (collection, id).
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rosie073/shopfinalcross/internal/docstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// insufficient_privilege
const codeInsufficientPrivilege = "42501"

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Store{db: db}, nil
}

func (s *Store) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(s.db, &migratepg.Config{
		MigrationsTable: "docstore_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetCollection(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	match := make(map[string]any, len(filters))
	for _, f := range filters {
		match[f.Field] = f.Value
	}
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("marshal filter: %w", err)
	}

	query := `SELECT id, data FROM documents
	          WHERE collection = $1 AND data @> $2::jsonb
	          ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, collection, string(matchJSON))
	if err != nil {
		return nil, mapError(fmt.Errorf("query %s: %w", collection, err))
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		data, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, docstore.Document{ID: id, Data: data})
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("row iteration error: %w", err))
	}
	return docs, nil
}

func (s *Store) GetDocument(ctx context.Context, ref docstore.Ref) (docstore.Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, ref.Collection, ref.ID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, mapError(fmt.Errorf("query %s: %w", ref.Path(), err))
	}

	data, err := decode(raw)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("decode %s: %w", ref.Path(), err)
	}
	return docstore.Document{ID: ref.ID, Data: data}, nil
}

func (s *Store) SetDocument(ctx context.Context, ref docstore.Ref, data map[string]any) error {
	return upsert(ctx, s.db, ref, data)
}

func (s *Store) AddDocument(ctx context.Context, collection string, data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	id := uuid.NewString()
	query := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, string(raw)); err != nil {
		return "", mapError(fmt.Errorf("insert into %s: %w", collection, err))
	}
	return id, nil
}

func (s *Store) UpdateDocument(ctx context.Context, ref docstore.Ref, partial map[string]any) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	query := `UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
	          WHERE collection = $1 AND id = $2`
	result, err := s.db.ExecContext(ctx, query, ref.Collection, ref.ID, string(raw))
	if err != nil {
		return mapError(fmt.Errorf("update %s: %w", ref.Path(), err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, ref docstore.Ref) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, ref.Collection, ref.ID); err != nil {
		return mapError(fmt.Errorf("delete %s: %w", ref.Path(), err))
	}
	return nil
}

// BatchWrite applies every write in one transaction.
func (s *Store) BatchWrite(ctx context.Context, writes []docstore.Write) (txErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(fmt.Errorf("begin tx: %w", err))
	}

	defer func() {
		if txErr != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	for _, w := range writes {
		if err := upsert(ctx, tx, w.Ref, w.Data); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return mapError(fmt.Errorf("commit: %w", err))
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, ref docstore.Ref, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	query := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
	          ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	if _, err := db.ExecContext(ctx, query, ref.Collection, ref.ID, string(raw)); err != nil {
		return mapError(fmt.Errorf("upsert %s: %w", ref.Path(), err))
	}
	return nil
}

func decode(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeInsufficientPrivilege {
		return fmt.Errorf("%w: %v", docstore.ErrPermissionDenied, err)
	}
	return err
}
