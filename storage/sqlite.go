package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS saves (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps saves in a single table of a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path and creates the table.
func NewSQLiteStore(ctx context.Context, path string, log *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log == nil {
		log = slog.Default()
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite db %s", path)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "pinging sqlite db %s", path)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating saves table")
	}
	return &SQLiteStore{db: db, log: log, now: time.Now}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saves (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, s.now().UnixMilli(),
	)
	if err != nil {
		return errors.Wrapf(err, "sqlite put %s", name)
	}
	s.log.Debug("save written", "backend", BackendSQLite, "name", name, "bytes", len(data))
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite get %s", name)
	}
	s.log.Debug("save read", "backend", BackendSQLite, "name", name, "bytes", len(data))
	return data, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM saves ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite list")
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "sqlite list")
		}
		names = append(names, name)
	}
	return names, errors.Wrap(rows.Err(), "sqlite list")
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "sqlite delete %s", name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "%s", name)
	}
	s.log.Debug("save deleted", "backend", BackendSQLite, "name", name)
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
