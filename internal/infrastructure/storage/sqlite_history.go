package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/history"
)

const (
	itemsTable     = "history_items"
	metaTable      = "history_meta"
	lastUpdateKey  = "last_update"
	fetchedAtStyle = time.RFC3339Nano
)

// SQLite persists history into a local SQLite database.
type SQLite struct {
	db *sql.DB
}

var _ history.Backend = (*SQLite)(nil)

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an already opened database; the schema is created if missing.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	s := &SQLite{db: db}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS history_items (
			kind        TEXT    NOT NULL,
			position    INTEGER NOT NULL,
			title       TEXT    NOT NULL,
			url         TEXT    NOT NULL,
			origin      TEXT    NOT NULL DEFAULT '',
			fetched_at  TEXT    NOT NULL DEFAULT '',
			fingerprint TEXT    NOT NULL,
			PRIMARY KEY (kind, position)
		);
		CREATE INDEX IF NOT EXISTS idx_history_items_fingerprint ON history_items(fingerprint);

		CREATE TABLE IF NOT EXISTS history_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initialize history schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads both sequences in stored order plus the last update stamp.
func (s *SQLite) Load(ctx context.Context) (domain.HistoryRecord, error) {
	record := domain.EmptyHistory()

	query, args, err := sq.Select("kind", "title", "url", "origin", "fetched_at", "fingerprint").
		From(itemsTable).
		OrderBy("kind", "position").
		ToSql()
	if err != nil {
		return record, fmt.Errorf("build history query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return record, fmt.Errorf("query history: %w", err)
	}

	for rows.Next() {
		var (
			it        domain.Item
			kind      string
			fetchedAt string
		)
		if err := rows.Scan(&kind, &it.Title, &it.URL, &it.Origin, &fetchedAt, &it.Fingerprint); err != nil {
			_ = rows.Close()
			return record, fmt.Errorf("scan history item: %w", err)
		}
		it.Kind = domain.Kind(kind)
		if fetchedAt != "" {
			if ts, err := time.Parse(fetchedAtStyle, fetchedAt); err == nil {
				it.FetchedAt = ts
			}
		}
		record.SetItems(it.Kind, append(record.Items(it.Kind), it))
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return record, fmt.Errorf("history rows: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return record, fmt.Errorf("close rows: %w", closeErr)
	}

	metaQuery, metaArgs, err := sq.Select("value").From(metaTable).Where(sq.Eq{"key": lastUpdateKey}).ToSql()
	if err != nil {
		return record, fmt.Errorf("build meta query: %w", err)
	}
	err = s.db.QueryRowContext(ctx, metaQuery, metaArgs...).Scan(&record.LastUpdate)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return record, fmt.Errorf("query last update: %w", err)
	}

	return record, nil
}

// Save replaces the stored history in a single transaction.
func (s *SQLite) Save(ctx context.Context, record domain.HistoryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	del, delArgs, err := sq.Delete(itemsTable).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	insert := sq.Insert(itemsTable).Columns("kind", "position", "title", "url", "origin", "fetched_at", "fingerprint")
	rows := 0
	for _, kind := range []domain.Kind{domain.KindArticle, domain.KindVideo} {
		for pos, it := range record.Items(kind) {
			fetchedAt := ""
			if !it.FetchedAt.IsZero() {
				fetchedAt = it.FetchedAt.UTC().Format(fetchedAtStyle)
			}
			insert = insert.Values(string(kind), pos, it.Title, it.URL, it.Origin, fetchedAt, it.Key())
			rows++
		}
	}
	if rows > 0 {
		ins, insArgs, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, ins, insArgs...); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}

	meta, metaArgs, err := sq.Insert(metaTable).
		Columns("key", "value").
		Values(lastUpdateKey, record.LastUpdate).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build meta upsert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, meta, metaArgs...); err != nil {
		return fmt.Errorf("upsert last update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}
