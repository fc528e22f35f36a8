package store

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"resdb-tools/internal/record"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a shared record store for multi-user deployments (usually behind
// `resdb serve`).
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := migratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool, now: time.Now}, nil
}

func migratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			owner_id TEXT NOT NULL,
			record_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			asset_uri TEXT NOT NULL DEFAULT '',
			thumbnail_uri TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (owner_id, record_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_owner_path ON records(owner_id, path)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

const pgSelect = `SELECT owner_id, record_id, kind, name, path, asset_uri, thumbnail_uri, tags, created_at, updated_at FROM records`

func scanPGRecord(row pgx.Row) (record.Record, error) {
	var (
		r    record.Record
		kind string
	)
	if err := row.Scan(&r.OwnerID, &r.RecordID, &kind, &r.Name, &r.Path, &r.AssetURI, &r.ThumbnailURI, &r.Tags, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return record.Record{}, err
	}
	r.Kind = record.Kind(kind)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func pgTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (p *Postgres) Fetch(ctx context.Context, id record.Identity) (record.Record, error) {
	r, err := scanPGRecord(p.pool.QueryRow(ctx, pgSelect+` WHERE owner_id = $1 AND record_id = $2`, id.OwnerID, id.RecordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return record.Record{}, notFound(id)
	}
	return r, err
}

func (p *Postgres) List(ctx context.Context, ownerID, path string) ([]record.Record, error) {
	rows, err := p.pool.Query(ctx, pgSelect+` WHERE owner_id = $1 AND path = $2
		ORDER BY CASE kind WHEN 'directory' THEN 0 WHEN 'link' THEN 1 ELSE 2 END, lower(name), record_id`,
		ownerID, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []record.Record{}
	for rows.Next() {
		r, err := scanPGRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	rec, err := prepareCreate(rec, p.now())
	if err != nil {
		return record.Record{}, err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO records(owner_id, record_id, kind, name, path, asset_uri, thumbnail_uri, tags, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.OwnerID, rec.RecordID, string(rec.Kind), rec.Name, rec.Path, rec.AssetURI, rec.ThumbnailURI, pgTags(rec.Tags),
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

func (p *Postgres) Persist(ctx context.Context, rec record.Record) error {
	rec, err := preparePersist(rec, p.now())
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		prev, err := scanPGRecord(tx.QueryRow(ctx, pgSelect+` WHERE owner_id = $1 AND record_id = $2 FOR UPDATE`, rec.OwnerID, rec.RecordID))
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(rec.Identity())
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE records SET kind = $1, name = $2, path = $3, asset_uri = $4, thumbnail_uri = $5, tags = $6, updated_at = $7
			WHERE owner_id = $8 AND record_id = $9`,
			string(rec.Kind), rec.Name, rec.Path, rec.AssetURI, rec.ThumbnailURI, pgTags(rec.Tags), rec.UpdatedAt,
			rec.OwnerID, rec.RecordID); err != nil {
			return err
		}
		if oldPath, newPath, moved := movedChildPath(prev, rec); moved {
			n := utf8.RuneCountInString(oldPath)
			if _, err := tx.Exec(ctx, `UPDATE records SET path = $1 || substr(path, $2)
				WHERE owner_id = $3 AND (path = $4 OR substr(path, 1, $5) = $6)`,
				newPath, n+1, rec.OwnerID, oldPath, n+1, oldPath+record.PathSeparator); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) Delete(ctx context.Context, id record.Identity) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM records WHERE owner_id = $1 AND record_id = $2`, id.OwnerID, id.RecordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}
