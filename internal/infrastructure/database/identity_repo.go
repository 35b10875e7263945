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

var (
	_ output.ProfileRepository = (*ProfileRepository)(nil)
	_ output.GuestRepository   = (*GuestRepository)(nil)
)

type ProfileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, external_key, display_name, avatar_url, created_at, updated_at`

func scanProfile(row pgx.Row) (*entities.RegisteredProfile, error) {
	var p entities.RegisteredProfile
	var createdAt, updatedAt pgtype.Timestamptz
	if err := row.Scan(&p.ID, &p.ExternalKey, &p.DisplayName, &p.AvatarURL, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	p.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entities.RegisteredProfile) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.ExternalKey, p.DisplayName, p.AvatarURL,
		timeToTimestamptz(p.CreatedAt), timeToTimestamptz(p.UpdatedAt),
	)
	if isUniqueViolation(err, "profiles_external_key_key") {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*entities.RegisteredProfile, error) {
	return r.find(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (r *ProfileRepository) FindByExternalKey(ctx context.Context, externalKey string) (*entities.RegisteredProfile, error) {
	return r.find(ctx, `SELECT `+profileColumns+` FROM profiles WHERE external_key = $1`, externalKey)
}

func (r *ProfileRepository) find(ctx context.Context, query, arg string) (*entities.RegisteredProfile, error) {
	p, err := scanProfile(r.db.q(ctx).QueryRow(ctx, query, arg))
	if isNoRows(err) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *entities.RegisteredProfile) error {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE profiles SET display_name = $2, avatar_url = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.DisplayName, p.AvatarURL, timeToTimestamptz(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

type GuestRepository struct {
	db *DB
}

func NewGuestRepository(db *DB) *GuestRepository {
	return &GuestRepository{db: db}
}

const guestColumns = `id, token, display_name, expires_at, converted_to_profile_id,
	join_hangout_id, join_key, created_at, updated_at`

func scanGuest(row pgx.Row) (*entities.GuestProfile, error) {
	var g entities.GuestProfile
	var converted, joinHangout, joinKey pgtype.Text
	var expiresAt, createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&g.ID, &g.Token, &g.DisplayName, &expiresAt, &converted,
		&joinHangout, &joinKey, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	g.ExpiresAt = pgtypeTimestamptzToTime(expiresAt)
	g.ConvertedToProfileID = textToString(converted)
	g.JoinHangoutID = textToString(joinHangout)
	g.JoinKey = textToString(joinKey)
	g.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	g.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return &g, nil
}

func (r *GuestRepository) Create(ctx context.Context, g *entities.GuestProfile) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO guest_profiles (`+guestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		g.ID, g.Token, g.DisplayName, timeToTimestamptz(g.ExpiresAt), stringToText(g.ConvertedToProfileID),
		stringToText(g.JoinHangoutID), stringToText(g.JoinKey),
		timeToTimestamptz(g.CreatedAt), timeToTimestamptz(g.UpdatedAt),
	)
	switch {
	case isUniqueViolation(err, "guest_profiles_join_key"):
		return domain.ErrDuplicateJoin
	case isUniqueViolation(err, ""):
		return domain.ErrAlreadyExists
	case err != nil:
		return fmt.Errorf("insert guest: %w", err)
	}
	return nil
}

func (r *GuestRepository) FindByID(ctx context.Context, id string) (*entities.GuestProfile, error) {
	return r.find(ctx, `SELECT `+guestColumns+` FROM guest_profiles WHERE id = $1`, id)
}

func (r *GuestRepository) FindByToken(ctx context.Context, token string) (*entities.GuestProfile, error) {
	return r.find(ctx, `SELECT `+guestColumns+` FROM guest_profiles WHERE token = $1`, token)
}

func (r *GuestRepository) FindByJoinKey(ctx context.Context, hangoutID, joinKey string) (*entities.GuestProfile, error) {
	return r.find(ctx, `SELECT `+guestColumns+` FROM guest_profiles WHERE join_hangout_id = $1 AND join_key = $2`, hangoutID, joinKey)
}

func (r *GuestRepository) find(ctx context.Context, query string, args ...any) (*entities.GuestProfile, error) {
	g, err := scanGuest(r.db.q(ctx).QueryRow(ctx, query, args...))
	if isNoRows(err) {
		return nil, domain.ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return g, nil
}

func (r *GuestRepository) Update(ctx context.Context, g *entities.GuestProfile) error {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE guest_profiles
		SET display_name = $2, expires_at = $3, converted_to_profile_id = $4, updated_at = $5
		WHERE id = $1`,
		g.ID, g.DisplayName, timeToTimestamptz(g.ExpiresAt), stringToText(g.ConvertedToProfileID),
		timeToTimestamptz(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGuestNotFound
	}
	return nil
}
