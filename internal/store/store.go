package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/eigenview/internal/snapshot"
)

//go:embed schema.sql
var schemaSQL string

// pragmas hold for the single pooled connection, so they are applied once.
var pragmas = []struct{ name, value string }{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// migrations[i] upgrades a database from user_version i to i+1.
//
//	v1: snapshots.digest column and its index
//	v2: digests recomputed from parsed content for rows imported before v2
var migrations = []func(ctx context.Context, tx *sql.Tx) error{
	addDigestColumn,
	backfillDigests,
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = len(migrations)

// Store keeps imported snapshot documents.
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot database at path and brings its schema
// up to SchemaVersion. Opening an up-to-date database changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	// One connection: SQLite has a single writer and the pragmas are
	// per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.init(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("open snapshot store %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return s.migrate(ctx)
}

// migrate runs each pending migration in its own transaction, recording the
// new user_version in the same transaction.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for ; version < len(migrations); version++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", version+1, err)
		}
		if err := migrations[version](ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", version+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", version+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", version+1, err)
		}
	}
	return nil
}

// Close closes the database. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// addDigestColumn adds snapshots.digest to databases created before it was
// part of schema.sql.
func addDigestColumn(ctx context.Context, tx *sql.Tx) error {
	var n int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info('snapshots') WHERE name = 'digest'",
	).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		if _, err := tx.ExecContext(ctx, "ALTER TABLE snapshots ADD COLUMN digest TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_snapshots_digest ON snapshots(digest)")
	return err
}

// backfillDigests computes the content digest of every row that has none.
// A stored source that no longer parses keeps an empty digest, so the next
// import under its name always rewrites it.
func backfillDigests(ctx context.Context, tx *sql.Tx) error {
	type pending struct {
		id     string
		format snapshot.Format
		source []byte
	}
	rows, err := tx.QueryContext(ctx, "SELECT id, format, source FROM snapshots WHERE digest = ''")
	if err != nil {
		return err
	}
	var todo []pending
	for rows.Next() {
		var (
			p      pending
			format string
		)
		if err := rows.Scan(&p.id, &format, &p.source); err != nil {
			rows.Close()
			return err
		}
		p.format = snapshot.Format(format)
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, p := range todo {
		doc, err := snapshot.Parse(p.source, p.format)
		if err != nil {
			continue
		}
		digest, err := Digest(doc)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", p.id, err)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE snapshots SET digest = ? WHERE id = ?", digest, p.id); err != nil {
			return err
		}
	}
	return nil
}
