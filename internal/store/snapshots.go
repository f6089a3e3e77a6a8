package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/eigenview/internal/canonical"
	"github.com/roach88/eigenview/internal/snapshot"
)

// ErrNotFound is returned when no snapshot has the requested name.
var ErrNotFound = errors.New("store: snapshot not found")

// Record is a stored snapshot document.
type Record struct {
	ID     string
	Name   string
	Format snapshot.Format
	Source []byte
	Seq    int64
	Digest string
	Values []ValueInfo
}

// ValueInfo names one value of a stored snapshot.
type ValueInfo struct {
	Name string
	Kind snapshot.Kind
}

// Document re-parses the stored source.
func (r Record) Document() (*snapshot.Document, error) {
	doc, err := snapshot.Parse(r.Source, r.Format)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", r.Name, err)
	}
	return doc, nil
}

// Digest returns the hex SHA-256 of doc's canonical encoding. It identifies
// content rather than source text: formatting, comments, the source format
// and Unicode normalization of names do not change it.
func Digest(doc *snapshot.Document) (string, error) {
	tree, err := doc.Tree()
	if err != nil {
		return "", err
	}
	b, err := canonical.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// SaveSnapshot validates source and stores it under name. Saving over an
// existing name replaces its source and values and keeps its ID; saving
// content equal to what is stored is a no-op. The returned bool reports
// whether anything changed.
func (s *Store) SaveSnapshot(ctx context.Context, name string, format snapshot.Format, source []byte) (Record, bool, error) {
	doc, err := snapshot.Parse(source, format)
	if err != nil {
		return Record{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	digest, err := Digest(doc)
	if err != nil {
		return Record{}, false, fmt.Errorf("save snapshot: %w", err)
	}

	existing, err := s.GetSnapshot(ctx, name)
	switch {
	case err == nil && existing.Digest == digest:
		return existing, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return Record{}, false, fmt.Errorf("save snapshot: %w", err)
	}

	id := existing.ID
	if id == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return Record{}, false, fmt.Errorf("save snapshot: generate id: %w", err)
		}
		id = u.String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, false, fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots").Scan(&seq); err != nil {
		return Record{}, false, fmt.Errorf("save snapshot: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, format, source, value_count, seq, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			format = excluded.format,
			source = excluded.source,
			value_count = excluded.value_count,
			seq = excluded.seq,
			digest = excluded.digest
	`, id, name, string(format), source, len(doc.Values), seq, digest)
	if err != nil {
		return Record{}, false, fmt.Errorf("save snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_values WHERE snapshot_id = ?", id); err != nil {
		return Record{}, false, fmt.Errorf("save snapshot values: %w", err)
	}
	values := make([]ValueInfo, 0, len(doc.Values))
	for i, v := range doc.Values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_values (snapshot_id, position, name, kind)
			VALUES (?, ?, ?, ?)
		`, id, i, v.Name, string(v.Kind))
		if err != nil {
			return Record{}, false, fmt.Errorf("save snapshot values: %w", err)
		}
		values = append(values, ValueInfo{Name: v.Name, Kind: v.Kind})
	}

	if err := tx.Commit(); err != nil {
		return Record{}, false, fmt.Errorf("save snapshot: commit: %w", err)
	}

	return Record{
		ID:     id,
		Name:   name,
		Format: format,
		Source: source,
		Seq:    seq,
		Digest: digest,
		Values: values,
	}, true, nil
}

// GetSnapshot returns the snapshot stored under name, or ErrNotFound.
func (s *Store) GetSnapshot(ctx context.Context, name string) (Record, error) {
	var (
		r      Record
		format string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, format, source, seq, digest
		FROM snapshots
		WHERE name = ?
	`, name).Scan(&r.ID, &r.Name, &format, &r.Source, &r.Seq, &r.Digest)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get snapshot: %w", err)
	}
	r.Format = snapshot.Format(format)

	if r.Values, err = s.snapshotValues(ctx, r.ID); err != nil {
		return Record{}, err
	}
	return r, nil
}

// ListSnapshots returns every stored snapshot without its source, ordered
// by seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListSnapshots(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, format, seq, digest
		FROM snapshots
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r      Record
			format string
		)
		if err := rows.Scan(&r.ID, &r.Name, &format, &r.Seq, &r.Digest); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		r.Format = snapshot.Format(format)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	rows.Close()

	for i := range records {
		if records[i].Values, err = s.snapshotValues(ctx, records[i].ID); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// DeleteSnapshot removes the named snapshot and its values.
func (s *Store) DeleteSnapshot(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *Store) snapshotValues(ctx context.Context, id string) ([]ValueInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind
		FROM snapshot_values
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query snapshot values: %w", err)
	}
	defer rows.Close()

	values := []ValueInfo{}
	for rows.Next() {
		var (
			v    ValueInfo
			kind string
		)
		if err := rows.Scan(&v.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan snapshot value: %w", err)
		}
		v.Kind = snapshot.Kind(kind)
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot values: %w", err)
	}
	return values, nil
}
