// Package pgstore implements store.Store on a single Postgres table of JSONB
// documents keyed by (collection, id).
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salutdigital/portal/internal/platform/store"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type Store struct {
	pool *pgxpool.Pool
	db   queryable
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := uuid.NewString()
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(data))
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (store.Record, error) {
	var raw []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	doc, err := decode(raw)
	if err != nil {
		return store.Record{}, err
	}
	return store.Record{ID: id, Data: doc}, nil
}

const mergeSQL = `
	INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb - $4::text[])
	ON CONFLICT (collection, id) DO UPDATE
	SET data = (documents.data || EXCLUDED.data) - $4::text[], updated_at = NOW()`

const replaceSQL = `
	INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
	ON CONFLICT (collection, id) DO UPDATE
	SET data = EXCLUDED.data, updated_at = NOW()`

func (s *Store) Update(ctx context.Context, collection, id string, patch store.Patch, mode store.WriteMode) error {
	set, cleared := patch.Split()
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	if mode == store.Replace {
		_, err = s.db.Exec(ctx, replaceSQL, collection, id, string(data))
	} else {
		if cleared == nil {
			// jsonb - NULL is NULL, so an absent list must still be an array
			cleared = []string{}
		}
		_, err = s.db.Exec(ctx, mergeSQL, collection, id, string(data), cleared)
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Record, error) {
	sql, args, err := buildQuery(collection, filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, store.Record{ID: id, Data: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// buildQuery turns equality filters into JSONB containment predicates so the
// GIN index on data serves them.
func buildQuery(collection string, filters []store.Filter) (string, []interface{}, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []interface{}{collection}

	for _, f := range filters {
		if len(f.Values) == 0 {
			b.WriteString(` AND FALSE`)
			continue
		}
		preds := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			probe, err := json.Marshal(map[string]any{f.Field: v})
			if err != nil {
				return "", nil, fmt.Errorf("encode filter on %s: %w", f.Field, err)
			}
			args = append(args, string(probe))
			preds = append(preds, fmt.Sprintf(`data @> $%d::jsonb`, len(args)))
		}
		if len(preds) == 1 {
			b.WriteString(` AND ` + preds[0])
		} else {
			b.WriteString(` AND (` + strings.Join(preds, ` OR `) + `)`)
		}
	}
	b.WriteString(` ORDER BY created_at, id`)
	return b.String(), args, nil
}

func decode(raw []byte) (store.Document, error) {
	doc := store.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Pinger = (*Store)(nil)
)
