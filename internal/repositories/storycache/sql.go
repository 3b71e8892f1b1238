package storycache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/repositories"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

const table = "stories_cache"

type SQL struct {
	db     *db.LocalDB
	logger logger.Logger
	now    func() time.Time
}

func NewSQL(local *db.LocalDB, logger logger.Logger) *SQL {
	return &SQL{
		db:     local,
		logger: logger.WithComponent("StoryCacheRepo"),
		now:    time.Now,
	}
}

var _ Repository = (*SQL)(nil)

// insertBatch keeps each INSERT well below SQLite's and Postgres' bound
// parameter limits.
const insertBatch = 500

func (r *SQL) Replace(ctx context.Context, stories []domain.Story) error {
	cachedAt := r.now().UTC()

	del, delArgs, err := r.db.Builder().Delete(table).ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	unique := dedupe(stories)
	type statement struct {
		query string
		args  []interface{}
	}
	inserts := make([]statement, 0, (len(unique)+insertBatch-1)/insertBatch)
	for start := 0; start < len(unique); start += insertBatch {
		end := min(start+insertBatch, len(unique))
		b := r.db.Builder().
			Insert(table).
			Columns("id", "position", "name", "description", "photo_url", "lat", "lon", "story_created_at", "cached_at")
		for i, s := range unique[start:end] {
			b = b.Values(s.ID, start+i, s.Name, s.Description, s.PhotoURL, s.Lat, s.Lon, s.CreatedAt.UTC(), cachedAt)
		}
		query, args, err := b.ToSql()
		if err != nil {
			return repositories.ErrBadQuery
		}
		inserts = append(inserts, statement{query: query, args: args})
	}

	err = db.InTx(ctx, r.db.Handle, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
			return fmt.Errorf("failed to clear story cache: %w", err)
		}
		for _, ins := range inserts {
			if _, err := tx.ExecContext(ctx, ins.query, ins.args...); err != nil {
				return fmt.Errorf("failed to write story cache: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Story cache replaced", "count", len(unique), "statements", len(inserts))
	return nil
}

func (r *SQL) List(ctx context.Context) ([]domain.CachedStory, error) {
	query, args, err := r.db.Builder().
		Select("id", "name", "description", "photo_url", "lat", "lon", "story_created_at", "cached_at").
		From(table).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query story cache: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CachedStory, 0)
	for rows.Next() {
		var c domain.CachedStory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.PhotoURL,
			&c.Lat, &c.Lon, &c.CreatedAt, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan cached story row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached story rows: %w", err)
	}

	return out, nil
}

// dedupe keeps the last occurrence of each story ID at its first position.
func dedupe(stories []domain.Story) []domain.Story {
	index := make(map[string]int, len(stories))
	out := make([]domain.Story, 0, len(stories))
	for _, s := range stories {
		if i, ok := index[s.ID]; ok {
			out[i] = s
			continue
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}
