package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/output"
)

var _ output.OptionRepository = (*OptionRepository)(nil)

const (
	activityColumns = `id, hangout_id, activity_ref, display_name, display_order,
	suggested_by_kind, suggested_by_id, created_at`
	timeOptionColumns = `id, hangout_id, starts_at, ends_at, display_order,
	suggested_by_kind, suggested_by_id, created_at`
)

// OptionRepository assigns display orders under a row lock on the parent
// hangout, so it needs the TxManager to open one when the caller has not.
type OptionRepository struct {
	db *DB
	tx *TxManager
}

func NewOptionRepository(db *DB, tx *TxManager) *OptionRepository {
	return &OptionRepository{db: db, tx: tx}
}

func scanActivity(row pgx.Row) (*entities.ActivityOption, error) {
	var o entities.ActivityOption
	var order int32
	var kind string
	var createdAt pgtype.Timestamptz
	err := row.Scan(&o.ID, &o.HangoutID, &o.ActivityRef, &o.DisplayName, &order,
		&kind, &o.SuggestedBy.ID, &createdAt)
	if err != nil {
		return nil, err
	}
	o.DisplayOrder = int(order)
	o.SuggestedBy.Kind = entities.IdentityKind(kind)
	o.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return &o, nil
}

func scanTimeOption(row pgx.Row) (*entities.TimeOption, error) {
	var o entities.TimeOption
	var order int32
	var kind string
	var startsAt, endsAt, createdAt pgtype.Timestamptz
	err := row.Scan(&o.ID, &o.HangoutID, &startsAt, &endsAt, &order,
		&kind, &o.SuggestedBy.ID, &createdAt)
	if err != nil {
		return nil, err
	}
	o.StartsAt = pgtypeTimestamptzToTime(startsAt)
	o.EndsAt = pgtypeTimestamptzToPtr(endsAt)
	o.DisplayOrder = int(order)
	o.SuggestedBy.Kind = entities.IdentityKind(kind)
	o.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return &o, nil
}

// lockHangout serializes option inserts per hangout without blocking the
// key-share locks taken by foreign keys. The lock waits for a concurrent
// resolution to commit, so the status read here is the committed one.
func (r *OptionRepository) lockHangout(ctx context.Context, hangoutID string) error {
	var status string
	err := r.db.q(ctx).QueryRow(ctx, `SELECT status FROM hangouts WHERE id = $1 FOR NO KEY UPDATE`, hangoutID).Scan(&status)
	if isNoRows(err) {
		return domain.ErrHangoutNotFound
	}
	if err != nil {
		return fmt.Errorf("lock hangout: %w", err)
	}
	if !entities.Status(status).AcceptsOptions() {
		return domain.ErrVotingClosed
	}
	return nil
}

func (r *OptionRepository) CreateActivity(ctx context.Context, o *entities.ActivityOption) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.lockHangout(ctx, o.HangoutID); err != nil {
			return err
		}
		var order int32
		err := r.db.q(ctx).QueryRow(ctx, `
			INSERT INTO activity_options (`+activityColumns+`)
			SELECT $1, $2, $3, $4, COALESCE(MAX(display_order) + 1, 0), $5, $6, $7
			FROM activity_options WHERE hangout_id = $2
			RETURNING display_order`,
			o.ID, o.HangoutID, o.ActivityRef, o.DisplayName,
			string(o.SuggestedBy.Kind), o.SuggestedBy.ID, timeToTimestamptz(o.CreatedAt),
		).Scan(&order)
		if err != nil {
			return fmt.Errorf("insert activity option: %w", err)
		}
		o.DisplayOrder = int(order)
		return nil
	})
}

func (r *OptionRepository) FindActivityByID(ctx context.Context, id string) (*entities.ActivityOption, error) {
	o, err := scanActivity(r.db.q(ctx).QueryRow(ctx, `SELECT `+activityColumns+` FROM activity_options WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, domain.ErrOptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity option: %w", err)
	}
	return o, nil
}

func (r *OptionRepository) ListActivityByHangout(ctx context.Context, hangoutID string) ([]entities.ActivityOption, error) {
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT `+activityColumns+` FROM activity_options
		WHERE hangout_id = $1 ORDER BY display_order, id`, hangoutID)
	if err != nil {
		return nil, fmt.Errorf("list activity options: %w", err)
	}
	defer rows.Close()
	var out []entities.ActivityOption
	for rows.Next() {
		o, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity option: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *OptionRepository) CreateTime(ctx context.Context, o *entities.TimeOption) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.lockHangout(ctx, o.HangoutID); err != nil {
			return err
		}
		var order int32
		err := r.db.q(ctx).QueryRow(ctx, `
			INSERT INTO time_options (`+timeOptionColumns+`)
			SELECT $1, $2, $3, $4, COALESCE(MAX(display_order) + 1, 0), $5, $6, $7
			FROM time_options WHERE hangout_id = $2
			RETURNING display_order`,
			o.ID, o.HangoutID, timeToTimestamptz(o.StartsAt), ptrToTimestamptz(o.EndsAt),
			string(o.SuggestedBy.Kind), o.SuggestedBy.ID, timeToTimestamptz(o.CreatedAt),
		).Scan(&order)
		if err != nil {
			return fmt.Errorf("insert time option: %w", err)
		}
		o.DisplayOrder = int(order)
		return nil
	})
}

func (r *OptionRepository) FindTimeByID(ctx context.Context, id string) (*entities.TimeOption, error) {
	o, err := scanTimeOption(r.db.q(ctx).QueryRow(ctx, `SELECT `+timeOptionColumns+` FROM time_options WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, domain.ErrOptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get time option: %w", err)
	}
	return o, nil
}

func (r *OptionRepository) ListTimeByHangout(ctx context.Context, hangoutID string) ([]entities.TimeOption, error) {
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT `+timeOptionColumns+` FROM time_options
		WHERE hangout_id = $1 ORDER BY display_order, id`, hangoutID)
	if err != nil {
		return nil, fmt.Errorf("list time options: %w", err)
	}
	defer rows.Close()
	var out []entities.TimeOption
	for rows.Next() {
		o, err := scanTimeOption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time option: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
