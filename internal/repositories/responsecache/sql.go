package responsecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/repositories"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

const table = "responses"

type SQL struct {
	db     *db.CacheDB
	logger logger.Logger
	now    func() time.Time
}

func NewSQL(cache *db.CacheDB, logger logger.Logger) *SQL {
	return &SQL{
		db:     cache,
		logger: logger.WithComponent("ResponseCacheRepo"),
		now:    time.Now,
	}
}

var _ Repository = (*SQL)(nil)

func (r *SQL) Put(ctx context.Context, entries ...domain.CachedResponse) error {
	if len(entries) == 0 {
		return nil
	}

	type stmt struct {
		query string
		args  []interface{}
	}
	stmts := make([]stmt, 0, len(entries))
	for _, e := range entries {
		header, err := json.Marshal(e.Header)
		if err != nil {
			return fmt.Errorf("failed to encode headers for %s: %w", e.Key, err)
		}
		storedAt := e.StoredAt
		if storedAt.IsZero() {
			storedAt = r.now()
		}

		query, args, err := r.db.Builder().
			Insert(table).
			Columns("generation", "request_key", "status", "header", "body", "stored_at").
			Values(e.Generation, e.Key, e.Status, string(header), e.Body, storedAt.UTC()).
			Suffix("ON CONFLICT (generation, request_key) DO UPDATE SET " +
				"status = excluded.status, header = excluded.header, " +
				"body = excluded.body, stored_at = excluded.stored_at").
			ToSql()
		if err != nil {
			return repositories.ErrBadQuery
		}
		stmts = append(stmts, stmt{query: query, args: args})
	}

	return db.InTx(ctx, r.db.Handle, func(tx *sql.Tx) error {
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s.query, s.args...); err != nil {
				return fmt.Errorf("failed to store response: %w", err)
			}
		}
		return nil
	})
}

func (r *SQL) Get(ctx context.Context, generation, key string) (domain.CachedResponse, bool, error) {
	query, args, err := r.db.Builder().
		Select("status", "header", "body", "stored_at").
		From(table).
		Where(sq.Eq{"generation": generation, "request_key": key}).
		ToSql()
	if err != nil {
		return domain.CachedResponse{}, false, repositories.ErrBadQuery
	}

	resp := domain.CachedResponse{Generation: generation, Key: key}
	var header string
	err = r.db.DB.QueryRowContext(ctx, query, args...).Scan(&resp.Status, &header, &resp.Body, &resp.StoredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CachedResponse{}, false, nil
		}
		return domain.CachedResponse{}, false, fmt.Errorf("failed to read cached response: %w", err)
	}

	resp.Header = make(http.Header)
	if err := json.Unmarshal([]byte(header), &resp.Header); err != nil {
		return domain.CachedResponse{}, false, fmt.Errorf("failed to decode cached headers: %w", err)
	}
	return resp, true, nil
}

func (r *SQL) DeleteOtherGenerations(ctx context.Context, keep string) (int64, error) {
	query, args, err := r.db.Builder().
		Delete(table).
		Where(sq.NotEq{"generation": keep}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	res, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale generations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted responses: %w", err)
	}
	return n, nil
}

func (r *SQL) Generations(ctx context.Context) ([]string, error) {
	query, args, err := r.db.Builder().
		Select("DISTINCT generation").
		From(table).
		OrderBy("generation").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
