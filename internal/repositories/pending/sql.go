package pending

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/repositories"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

const table = "pending_submissions"

type SQL struct {
	db     *db.LocalDB
	logger logger.Logger
	now    func() time.Time
}

func NewSQL(local *db.LocalDB, logger logger.Logger) *SQL {
	return &SQL{
		db:     local,
		logger: logger.WithComponent("PendingRepo"),
		now:    time.Now,
	}
}

var _ Repository = (*SQL)(nil)

func (r *SQL) Add(ctx context.Context, s domain.PendingSubmission) (domain.PendingSubmission, error) {
	s.Timestamp = r.now().UTC()
	s.Synced = false

	query, args, err := r.db.Builder().
		Insert(table).
		Columns("idempotency_key", "description", "photo", "photo_name", "lat", "lon",
			"token", "payload", "content_type", "synced", "created_at").
		Values(s.IdempotencyKey, s.Description, s.Photo, s.PhotoName, s.Lat, s.Lon,
			s.Token, s.Payload, s.ContentType, s.Synced, s.Timestamp).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.PendingSubmission{}, repositories.ErrBadQuery
	}

	if err := r.db.DB.QueryRowContext(ctx, query, args...).Scan(&s.ID); err != nil {
		return domain.PendingSubmission{}, fmt.Errorf("failed to queue submission: %w", err)
	}

	r.logger.Debug("Submission queued", "id", s.ID, "idempotency_key", s.IdempotencyKey)
	return s, nil
}

func (r *SQL) List(ctx context.Context) ([]domain.PendingSubmission, error) {
	query, args, err := r.db.Builder().
		Select("id", "idempotency_key", "description", "photo", "photo_name", "lat", "lon",
			"token", "payload", "content_type", "synced", "created_at").
		From(table).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending submissions: %w", err)
	}
	defer rows.Close()

	items := make([]domain.PendingSubmission, 0)
	for rows.Next() {
		var s domain.PendingSubmission
		if err := rows.Scan(&s.ID, &s.IdempotencyKey, &s.Description, &s.Photo, &s.PhotoName,
			&s.Lat, &s.Lon, &s.Token, &s.Payload, &s.ContentType, &s.Synced, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan pending submission row: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending submission rows: %w", err)
	}

	return items, nil
}

func (r *SQL) Remove(ctx context.Context, id int64) error {
	query, args, err := r.db.Builder().
		Delete(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := r.db.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove pending submission %d: %w", id, err)
	}
	return nil
}

func (r *SQL) Clear(ctx context.Context) error {
	query, args, err := r.db.Builder().Delete(table).ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := r.db.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear pending submissions: %w", err)
	}
	return nil
}
