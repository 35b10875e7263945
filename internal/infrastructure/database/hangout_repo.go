package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/output"
)

var _ output.HangoutRepository = (*HangoutRepository)(nil)

const hangoutColumns = `id, title, description, creator_kind, creator_id, status, consensus_threshold,
	allow_participant_suggestions, voting_ends_at, final_option_id, final_time_option_id,
	scheduled_at, created_at, updated_at`

type HangoutRepository struct {
	db *DB
}

func NewHangoutRepository(db *DB) *HangoutRepository {
	return &HangoutRepository{db: db}
}

func scanHangout(row pgx.Row) (*entities.Hangout, error) {
	var (
		h                       entities.Hangout
		creatorKind, status     string
		threshold               int32
		votingEndsAt, scheduled pgtype.Timestamptz
		finalOption, finalTime  pgtype.Text
		createdAt, updatedAt    pgtype.Timestamptz
	)
	err := row.Scan(
		&h.ID, &h.Title, &h.Description, &creatorKind, &h.Creator.ID, &status, &threshold,
		&h.AllowParticipantSuggestions, &votingEndsAt, &finalOption, &finalTime,
		&scheduled, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	h.Creator.Kind = entities.IdentityKind(creatorKind)
	h.Status = entities.Status(status)
	h.ConsensusThreshold = int(threshold)
	h.VotingEndsAt = pgtypeTimestamptzToPtr(votingEndsAt)
	h.FinalOptionID = textToString(finalOption)
	h.FinalTimeOptionID = textToString(finalTime)
	h.ScheduledAt = pgtypeTimestamptzToPtr(scheduled)
	h.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	h.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &h, nil
}

func (r *HangoutRepository) Create(ctx context.Context, h *entities.Hangout) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO hangouts (`+hangoutColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		h.ID, h.Title, h.Description, string(h.Creator.Kind), h.Creator.ID, string(h.Status),
		int32(h.ConsensusThreshold), h.AllowParticipantSuggestions, ptrToTimestamptz(h.VotingEndsAt),
		stringToText(h.FinalOptionID), stringToText(h.FinalTimeOptionID), ptrToTimestamptz(h.ScheduledAt),
		timeToTimestamptz(h.CreatedAt), timeToTimestamptz(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert hangout: %w", err)
	}
	return nil
}

func (r *HangoutRepository) FindByID(ctx context.Context, id string) (*entities.Hangout, error) {
	return r.find(ctx, `SELECT `+hangoutColumns+` FROM hangouts WHERE id = $1`, id)
}

func (r *HangoutRepository) FindByIDForUpdate(ctx context.Context, id string) (*entities.Hangout, error) {
	return r.find(ctx, `SELECT `+hangoutColumns+` FROM hangouts WHERE id = $1 FOR UPDATE`, id)
}

func (r *HangoutRepository) find(ctx context.Context, query, id string) (*entities.Hangout, error) {
	h, err := scanHangout(r.db.q(ctx).QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, domain.ErrHangoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get hangout: %w", err)
	}
	return h, nil
}

func (r *HangoutRepository) UpdateIfStatus(ctx context.Context, h *entities.Hangout, expected entities.Status) error {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE hangouts SET
			title = $2, description = $3, status = $4, consensus_threshold = $5,
			allow_participant_suggestions = $6, voting_ends_at = $7, final_option_id = $8,
			final_time_option_id = $9, scheduled_at = $10, updated_at = $11
		WHERE id = $1 AND status = $12`,
		h.ID, h.Title, h.Description, string(h.Status), int32(h.ConsensusThreshold),
		h.AllowParticipantSuggestions, ptrToTimestamptz(h.VotingEndsAt), stringToText(h.FinalOptionID),
		stringToText(h.FinalTimeOptionID), ptrToTimestamptz(h.ScheduledAt), timeToTimestamptz(h.UpdatedAt),
		string(expected),
	)
	if err != nil {
		return fmt.Errorf("update hangout: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.FindByID(ctx, h.ID); err != nil {
		return err
	}
	return domain.ErrResolutionConflict
}

func (r *HangoutRepository) ListVotingExpired(ctx context.Context, now time.Time) ([]entities.Hangout, error) {
	return r.list(ctx, `
		SELECT `+hangoutColumns+` FROM hangouts
		WHERE status = 'VOTING' AND voting_ends_at <= $1
		ORDER BY voting_ends_at, id`, now)
}

func (r *HangoutRepository) ListConfirmedDue(ctx context.Context, now time.Time) ([]entities.Hangout, error) {
	return r.list(ctx, `
		SELECT `+hangoutColumns+` FROM hangouts
		WHERE status = 'CONFIRMED' AND scheduled_at <= $1
		ORDER BY scheduled_at, id`, now)
}

func (r *HangoutRepository) list(ctx context.Context, query string, args ...any) ([]entities.Hangout, error) {
	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list hangouts: %w", err)
	}
	defer rows.Close()
	var out []entities.Hangout
	for rows.Next() {
		h, err := scanHangout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hangout: %w", err)
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}
