package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"resdb-tools/internal/record"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "records.sqlite"

// SQLite is the local, single-file record store.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and migrates) <dir>/records.sqlite.
func OpenSQLite(ctx context.Context, dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, sqliteFileName))
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers (CLI and TUI at the same time);
	// busy_timeout avoids spurious "database is locked".
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			owner_id TEXT NOT NULL,
			record_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			asset_uri TEXT NOT NULL DEFAULT '',
			thumbnail_uri TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '[]',
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			PRIMARY KEY (owner_id, record_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_owner_path ON records(owner_id, path);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

const sqliteSelect = `SELECT owner_id, record_id, kind, name, path, asset_uri, thumbnail_uri, tags_json, created_at_unixms, updated_at_unixms FROM records`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (record.Record, error) {
	var (
		r                  record.Record
		kind, tagsJSON     string
		createdMs, updated int64
	)
	if err := row.Scan(&r.OwnerID, &r.RecordID, &kind, &r.Name, &r.Path, &r.AssetURI, &r.ThumbnailURI, &tagsJSON, &createdMs, &updated); err != nil {
		return record.Record{}, err
	}
	r.Kind = record.Kind(kind)
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
			return record.Record{}, err
		}
	}
	r.CreatedAt = time.UnixMilli(createdMs).UTC()
	r.UpdatedAt = time.UnixMilli(updated).UTC()
	return r, nil
}

func tagsJSON(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

func (s *SQLite) Fetch(ctx context.Context, id record.Identity) (record.Record, error) {
	row := s.db.QueryRowContext(ctx, sqliteSelect+` WHERE owner_id = ? AND record_id = ?`, id.OwnerID, id.RecordID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, notFound(id)
	}
	return r, err
}

func (s *SQLite) List(ctx context.Context, ownerID, path string) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelect+` WHERE owner_id = ? AND path = ?
		ORDER BY CASE kind WHEN 'directory' THEN 0 WHEN 'link' THEN 1 ELSE 2 END, lower(name), record_id`,
		ownerID, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []record.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	rec, err := prepareCreate(rec, s.now())
	if err != nil {
		return record.Record{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO records(owner_id, record_id, kind, name, path, asset_uri, thumbnail_uri, tags_json, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.OwnerID, rec.RecordID, string(rec.Kind), rec.Name, rec.Path, rec.AssetURI, rec.ThumbnailURI, tagsJSON(rec.Tags),
		rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli())
	if err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

func (s *SQLite) Persist(ctx context.Context, rec record.Record) error {
	rec, err := preparePersist(rec, s.now())
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	prev, err := scanRecord(tx.QueryRowContext(ctx, sqliteSelect+` WHERE owner_id = ? AND record_id = ?`, rec.OwnerID, rec.RecordID))
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(rec.Identity())
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE records SET kind = ?, name = ?, path = ?, asset_uri = ?, thumbnail_uri = ?, tags_json = ?, updated_at_unixms = ?
		WHERE owner_id = ? AND record_id = ?`,
		string(rec.Kind), rec.Name, rec.Path, rec.AssetURI, rec.ThumbnailURI, tagsJSON(rec.Tags), rec.UpdatedAt.UnixMilli(),
		rec.OwnerID, rec.RecordID); err != nil {
		return err
	}

	if oldPath, newPath, moved := movedChildPath(prev, rec); moved {
		n := utf8.RuneCountInString(oldPath)
		if _, err := tx.ExecContext(ctx, `UPDATE records SET path = ? || substr(path, ?)
			WHERE owner_id = ? AND (path = ? OR substr(path, 1, ?) = ?)`,
			newPath, n+1, rec.OwnerID, oldPath, n+1, oldPath+record.PathSeparator); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Delete(ctx context.Context, id record.Identity) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE owner_id = ? AND record_id = ?`, id.OwnerID, id.RecordID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}
