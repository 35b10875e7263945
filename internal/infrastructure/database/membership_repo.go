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

var _ output.MembershipRepository = (*MembershipRepository)(nil)

const membershipColumns = `id, hangout_id, participant_kind, participant_id, role, is_mandatory,
	rsvp_status, responded_at, created_at, updated_at`

type MembershipRepository struct {
	db *DB
}

func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func scanMembership(row pgx.Row) (*entities.Membership, error) {
	var m entities.Membership
	var kind, role string
	var rsvp pgtype.Text
	var respondedAt, createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&m.ID, &m.HangoutID, &kind, &m.Participant.ID, &role, &m.IsMandatory,
		&rsvp, &respondedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.Participant.Kind = entities.IdentityKind(kind)
	m.Role = entities.Role(role)
	m.RsvpStatus = entities.RsvpStatus(textToString(rsvp))
	m.RespondedAt = pgtypeTimestamptzToTime(respondedAt)
	m.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	m.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &m, nil
}

func (r *MembershipRepository) Create(ctx context.Context, m *entities.Membership) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO memberships (`+membershipColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.HangoutID, string(m.Participant.Kind), m.Participant.ID, string(m.Role), m.IsMandatory,
		stringToText(string(m.RsvpStatus)), timeToTimestamptz(m.RespondedAt),
		timeToTimestamptz(m.CreatedAt), timeToTimestamptz(m.UpdatedAt),
	)
	switch {
	case isUniqueViolation(err, "memberships_hangout_participant_key"):
		return domain.ErrAlreadyMember
	case isUniqueViolation(err, "memberships_one_creator_idx"):
		return domain.ErrCreatorExists
	case err != nil:
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) FindByID(ctx context.Context, id string) (*entities.Membership, error) {
	return r.find(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
}

func (r *MembershipRepository) FindByHangoutAndParticipant(ctx context.Context, hangoutID string, p entities.ParticipantRef) (*entities.Membership, error) {
	return r.find(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		WHERE hangout_id = $1 AND participant_kind = $2 AND participant_id = $3`,
		hangoutID, string(p.Kind), p.ID)
}

func (r *MembershipRepository) find(ctx context.Context, query string, args ...any) (*entities.Membership, error) {
	m, err := scanMembership(r.db.q(ctx).QueryRow(ctx, query, args...))
	if isNoRows(err) {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

func (r *MembershipRepository) ListByHangout(ctx context.Context, hangoutID string) ([]entities.Membership, error) {
	return r.list(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		WHERE hangout_id = $1 ORDER BY created_at, id`, hangoutID)
}

func (r *MembershipRepository) ListByParticipant(ctx context.Context, p entities.ParticipantRef) ([]entities.Membership, error) {
	return r.list(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		WHERE participant_kind = $1 AND participant_id = $2 ORDER BY created_at, id`,
		string(p.Kind), p.ID)
}

func (r *MembershipRepository) list(ctx context.Context, query string, args ...any) ([]entities.Membership, error) {
	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()
	var out []entities.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MembershipRepository) Update(ctx context.Context, m *entities.Membership) error {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE memberships
		SET role = $2, is_mandatory = $3, rsvp_status = $4, responded_at = $5, updated_at = $6
		WHERE id = $1`,
		m.ID, string(m.Role), m.IsMandatory, stringToText(string(m.RsvpStatus)),
		timeToTimestamptz(m.RespondedAt), timeToTimestamptz(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.q(ctx).Exec(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// Reassign drops the memberships that would collide with one of to's, then
// moves the rest. Both statements must share a transaction.
func (r *MembershipRepository) Reassign(ctx context.Context, from, to entities.ParticipantRef) error {
	q := r.db.q(ctx)
	_, err := q.Exec(ctx, `
		DELETE FROM memberships m
		WHERE m.participant_kind = $1 AND m.participant_id = $2
		  AND EXISTS (
			SELECT 1 FROM memberships o
			WHERE o.hangout_id = m.hangout_id AND o.participant_kind = $3 AND o.participant_id = $4
		  )`,
		string(from.Kind), from.ID, string(to.Kind), to.ID)
	if err != nil {
		return fmt.Errorf("drop colliding memberships: %w", err)
	}
	_, err = q.Exec(ctx, `
		UPDATE memberships SET participant_kind = $3, participant_id = $4
		WHERE participant_kind = $1 AND participant_id = $2`,
		string(from.Kind), from.ID, string(to.Kind), to.ID)
	if err != nil {
		return fmt.Errorf("reassign memberships: %w", err)
	}
	return nil
}
