package authority

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sortbook/authors/internal/foundation/errors"
)

// SQLiteStore implements Store against a read-only OpenLibrary-derived
// SQLite database, indexed on name_normalized.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens the authority database at path in read-only mode.
// The caller owns the returned store and must Close it.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	// mode=ro guards against accidental mutation of the authority database;
	// this component never writes to it and never creates its schema.
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "open authority database").
			WithContext("path", path).Build()
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryConfig, "authority database unreachable").
			WithContext("path", path).Build()
	}

	return &SQLiteStore{db: db}, nil
}

// LookupExact implements Store.
func (s *SQLiteStore) LookupExact(ctx context.Context, normalized string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT author_id, name, name_normalized FROM authors WHERE name_normalized = ? LIMIT 1`,
		normalized,
	)

	var rec Record
	if err := row.Scan(&rec.AuthorID, &rec.Name, &rec.NameNormalized); err != nil {
		if err == sql.ErrNoRows {
			return Record{}, false, nil
		}
		return Record{}, false, errors.WrapError(err, errors.CategoryAuthority, "exact lookup").
			WithContext("query", normalized).Build()
	}
	return rec, true, nil
}

// Neighbors implements Store. It issues two bounded range scans against
// the name_normalized index: ascending from normalized (inclusive) and
// descending from just below it, each capped at NeighborWindowSize.
func (s *SQLiteStore) Neighbors(ctx context.Context, normalized string) ([]Record, error) {
	ascending, err := s.scan(ctx,
		`SELECT author_id, name, name_normalized FROM authors
		 WHERE name_normalized >= ? ORDER BY name_normalized ASC LIMIT ?`,
		normalized)
	if err != nil {
		return nil, err
	}

	descending, err := s.scan(ctx,
		`SELECT author_id, name, name_normalized FROM authors
		 WHERE name_normalized < ? ORDER BY name_normalized DESC LIMIT ?`,
		normalized)
	if err != nil {
		return nil, err
	}

	return append(ascending, descending...), nil
}

func (s *SQLiteStore) scan(ctx context.Context, query, normalized string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, normalized, NeighborWindowSize)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryAuthority, "neighbor scan").
			WithContext("query", normalized).Build()
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.AuthorID, &rec.Name, &rec.NameNormalized); err != nil {
			return nil, errors.WrapError(err, errors.CategoryAuthority, "scan neighbor row").Build()
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryAuthority, "iterate neighbor rows").Build()
	}
	return out, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
