package favorite

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/repositories"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

const table = "favorites"

var columns = []string{"id", "name", "description", "photo_url", "lat", "lon", "story_created_at", "created_at"}

type SQL struct {
	db     *db.LocalDB
	logger logger.Logger
	now    func() time.Time
}

func NewSQL(local *db.LocalDB, logger logger.Logger) *SQL {
	return &SQL{
		db:     local,
		logger: logger.WithComponent("FavoriteRepo"),
		now:    time.Now,
	}
}

var _ Repository = (*SQL)(nil)

func (r *SQL) Add(ctx context.Context, story domain.Story) (domain.FavoriteEntry, error) {
	entry := domain.FavoriteEntry{Story: story, FavoritedAt: r.now().UTC()}

	query, args, err := r.db.Builder().
		Insert(table).
		Columns(columns...).
		Values(story.ID, story.Name, story.Description, story.PhotoURL,
			story.Lat, story.Lon, story.CreatedAt.UTC(), entry.FavoritedAt).
		ToSql()
	if err != nil {
		return domain.FavoriteEntry{}, repositories.ErrBadQuery
	}

	if _, err := r.db.DB.ExecContext(ctx, query, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return domain.FavoriteEntry{}, apperrors.WrapWithCode(apperrors.ErrDuplicateKey,
				"duplicate_key", fmt.Sprintf("story %s is already a favorite", story.ID))
		}
		return domain.FavoriteEntry{}, fmt.Errorf("failed to add favorite: %w", err)
	}

	return entry, nil
}

func (r *SQL) Remove(ctx context.Context, id string) error {
	query, args, err := r.db.Builder().
		Delete(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := r.db.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove favorite %s: %w", id, err)
	}
	return nil
}

func (r *SQL) List(ctx context.Context) ([]domain.FavoriteEntry, error) {
	query, args, err := r.db.Builder().
		Select(columns...).
		From(table).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.FavoriteEntry, 0)
	for rows.Next() {
		var e domain.FavoriteEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.PhotoURL,
			&e.Lat, &e.Lon, &e.CreatedAt, &e.FavoritedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}

	return entries, nil
}

func (r *SQL) Exists(ctx context.Context, id string) (bool, error) {
	query, args, err := r.db.Builder().
		Select("COUNT(*)").
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var count int
	if err := r.db.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check favorite %s: %w", id, err)
	}
	return count > 0, nil
}

func (r *SQL) Clear(ctx context.Context) error {
	query, args, err := r.db.Builder().Delete(table).ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	res, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		r.logger.Info("Favorites cleared", "removed", n)
	}
	return nil
}
