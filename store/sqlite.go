package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    fields TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (collection, id)
);
`

// SQLite 以单表 JSON 文档形式持久化
type SQLite struct {
	db *sql.DB
}

// OpenSQLite 打开数据库并建表
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := utils.EnsureFileDir(cleanPath); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// 合并写入是读后写，单连接避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close 关闭数据库
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, collection, id string) (Fields, bool, error) {
	return get(ctx, s.db, collection, id)
}

func (s *SQLite) Set(ctx context.Context, collection, id string, fields Fields, merge bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		doc := fields
		if merge {
			existing, ok, err := get(ctx, tx, collection, id)
			if err != nil {
				return err
			}
			if ok {
				doc = mergeFields(existing, fields)
			}
		}
		return put(ctx, tx, collection, id, doc)
	})
}

func (s *SQLite) Update(ctx context.Context, collection, id string, fields Fields) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		existing, ok, err := get(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return put(ctx, tx, collection, id, mergeFields(existing, fields))
	})
}

func (s *SQLite) BatchDelete(ctx context.Context, collection string, ids []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
				return fmt.Errorf("delete %s/%s: %w", collection, id, err)
			}
		}
		return nil
	})
}

func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q queryer, collection, id string) (Fields, bool, error) {
	var raw string
	err := q.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	fields := make(Fields)
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return fields, true, nil
}

func put(ctx context.Context, tx *sql.Tx, collection, id string, fields Fields) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
		collection, id, string(raw), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func mergeFields(base, patch Fields) Fields {
	out := base.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}
