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

var _ output.InviteRepository = (*InviteRepository)(nil)

type InviteRepository struct {
	db *DB
}

func NewInviteRepository(db *DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func scanInvite(row pgx.Row) (entities.InviteToken, error) {
	var inv entities.InviteToken
	var kind string
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&inv.HangoutID, &inv.Token, &kind, &inv.CreatedBy.ID, &createdAt); err != nil {
		return entities.InviteToken{}, err
	}
	inv.CreatedBy.Kind = entities.IdentityKind(kind)
	inv.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	return inv, nil
}

// GetOrCreate relies on the hangout_id primary key: the insert is a no-op when
// a token already exists, and the stored row is read back either way.
func (r *InviteRepository) GetOrCreate(ctx context.Context, inv entities.InviteToken) (entities.InviteToken, error) {
	q := r.db.q(ctx)
	_, err := q.Exec(ctx, `
		INSERT INTO invite_tokens (hangout_id, token, created_by_kind, created_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (hangout_id) DO NOTHING`,
		inv.HangoutID, inv.Token, string(inv.CreatedBy.Kind), inv.CreatedBy.ID, timeToTimestamptz(inv.CreatedAt),
	)
	if err != nil {
		return entities.InviteToken{}, fmt.Errorf("insert invite token: %w", err)
	}
	stored, err := scanInvite(q.QueryRow(ctx, `
		SELECT hangout_id, token, created_by_kind, created_by_id, created_at
		FROM invite_tokens WHERE hangout_id = $1`, inv.HangoutID))
	if err != nil {
		return entities.InviteToken{}, fmt.Errorf("get invite token: %w", err)
	}
	return stored, nil
}

func (r *InviteRepository) FindByToken(ctx context.Context, token string) (*entities.InviteToken, error) {
	inv, err := scanInvite(r.db.q(ctx).QueryRow(ctx, `
		SELECT hangout_id, token, created_by_kind, created_by_id, created_at
		FROM invite_tokens WHERE token = $1`, token))
	if isNoRows(err) {
		return nil, domain.ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invite token: %w", err)
	}
	return &inv, nil
}
