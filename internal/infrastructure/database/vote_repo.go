package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/output"
)

var _ output.VoteRepository = (*VoteRepository)(nil)

// voteTable describes one of the two vote tables; activity and time votes
// share every statement except for names.
type voteTable struct {
	table      string
	optionCol  string
	options    string
	constraint string
}

var (
	activityVotes = voteTable{table: "votes", optionCol: "option_id", options: "activity_options", constraint: "votes_option_voter_key"}
	timeVotes     = voteTable{table: "time_votes", optionCol: "time_option_id", options: "time_options", constraint: "time_votes_option_voter_key"}
)

type VoteRepository struct {
	db *DB
}

func NewVoteRepository(db *DB) *VoteRepository {
	return &VoteRepository{db: db}
}

type voteRow struct {
	id, hangoutID, optionID string
	voter                   entities.ParticipantRef
	value                   int
	createdAt, updatedAt    pgtype.Timestamptz
}

// upsert writes the vote only while the hangout accepts votes. The share lock
// on the hangout row waits for a concurrent resolution to commit, after which
// the status predicate is re-checked and the write is refused.
func (r *VoteRepository) upsert(ctx context.Context, t voteTable, v voteRow) error {
	q := r.db.q(ctx)
	tag, err := q.Exec(ctx, `
		WITH target AS (
			SELECT o.id, o.hangout_id
			FROM `+t.options+` o JOIN hangouts h ON h.id = o.hangout_id
			WHERE o.id = $2 AND h.status IN ('PLANNING', 'VOTING')
			FOR SHARE OF h
		)
		INSERT INTO `+t.table+` (id, hangout_id, `+t.optionCol+`, voter_kind, voter_id, value, created_at, updated_at)
		SELECT $1, target.hangout_id, target.id, $3, $4, $5, $6, $7 FROM target
		ON CONFLICT ON CONSTRAINT `+t.constraint+`
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		v.id, v.optionID, string(v.voter.Kind), v.voter.ID, int32(v.value), v.createdAt, v.updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", t.table, err)
	}
	if tag.RowsAffected() == 0 {
		return r.whyRefused(ctx, t, v.optionID)
	}
	return nil
}

func (r *VoteRepository) delete(ctx context.Context, t voteTable, optionID string, voter entities.ParticipantRef) error {
	tag, err := r.db.q(ctx).Exec(ctx, `
		DELETE FROM `+t.table+` v
		USING hangouts h
		WHERE h.id = v.hangout_id AND h.status IN ('PLANNING', 'VOTING')
		  AND v.`+t.optionCol+` = $1 AND v.voter_kind = $2 AND v.voter_id = $3`,
		optionID, string(voter.Kind), voter.ID,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.table, err)
	}
	if tag.RowsAffected() == 0 {
		// Either nothing to delete or voting closed; only the latter is an error.
		if err := r.whyRefused(ctx, t, optionID); errors.Is(err, domain.ErrVotingClosed) {
			return err
		}
	}
	return nil
}

func (r *VoteRepository) whyRefused(ctx context.Context, t voteTable, optionID string) error {
	var status string
	err := r.db.q(ctx).QueryRow(ctx, `
		SELECT h.status FROM `+t.options+` o JOIN hangouts h ON h.id = o.hangout_id
		WHERE o.id = $1`, optionID).Scan(&status)
	if isNoRows(err) {
		return domain.ErrOptionNotFound
	}
	if err != nil {
		return fmt.Errorf("check option: %w", err)
	}
	if !entities.Status(status).AcceptsOptions() {
		return domain.ErrVotingClosed
	}
	return nil
}

func (r *VoteRepository) list(ctx context.Context, t voteTable, hangoutID string) ([]voteRow, error) {
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT id, hangout_id, `+t.optionCol+`, voter_kind, voter_id, value, created_at, updated_at
		FROM `+t.table+` WHERE hangout_id = $1 ORDER BY created_at, id`, hangoutID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (voteRow, error) {
		var v voteRow
		var kind string
		var value int32
		err := row.Scan(&v.id, &v.hangoutID, &v.optionID, &kind, &v.voter.ID, &value, &v.createdAt, &v.updatedAt)
		v.voter.Kind = entities.IdentityKind(kind)
		v.value = int(value)
		return v, err
	})
}

// tally includes options without votes as zero.
func (r *VoteRepository) tally(ctx context.Context, t voteTable, hangoutID string) (map[string]int, error) {
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT o.id, COALESCE(SUM(v.value), 0)
		FROM `+t.options+` o LEFT JOIN `+t.table+` v ON v.`+t.optionCol+` = o.id
		WHERE o.hangout_id = $1
		GROUP BY o.id`, hangoutID)
	if err != nil {
		return nil, fmt.Errorf("tally %s: %w", t.table, err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var id string
		var sum int64
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		out[id] = int(sum)
	}
	return out, rows.Err()
}

func (r *VoteRepository) reassign(ctx context.Context, t voteTable, from, to entities.ParticipantRef) error {
	q := r.db.q(ctx)
	_, err := q.Exec(ctx, `
		DELETE FROM `+t.table+` v
		WHERE v.voter_kind = $1 AND v.voter_id = $2
		  AND EXISTS (
			SELECT 1 FROM `+t.table+` o
			WHERE o.`+t.optionCol+` = v.`+t.optionCol+` AND o.voter_kind = $3 AND o.voter_id = $4
		  )`,
		string(from.Kind), from.ID, string(to.Kind), to.ID)
	if err != nil {
		return fmt.Errorf("drop colliding %s: %w", t.table, err)
	}
	_, err = q.Exec(ctx, `
		UPDATE `+t.table+` SET voter_kind = $3, voter_id = $4
		WHERE voter_kind = $1 AND voter_id = $2`,
		string(from.Kind), from.ID, string(to.Kind), to.ID)
	if err != nil {
		return fmt.Errorf("reassign %s: %w", t.table, err)
	}
	return nil
}

func (r *VoteRepository) Upsert(ctx context.Context, v *entities.Vote) error {
	return r.upsert(ctx, activityVotes, voteRow{
		id: v.ID, optionID: v.OptionID, voter: v.Voter, value: v.Value,
		createdAt: timeToTimestamptz(v.CreatedAt), updatedAt: timeToTimestamptz(v.UpdatedAt),
	})
}

func (r *VoteRepository) Delete(ctx context.Context, optionID string, voter entities.ParticipantRef) error {
	return r.delete(ctx, activityVotes, optionID, voter)
}

func (r *VoteRepository) ListByHangout(ctx context.Context, hangoutID string) ([]entities.Vote, error) {
	rows, err := r.list(ctx, activityVotes, hangoutID)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Vote, 0, len(rows))
	for _, v := range rows {
		out = append(out, entities.Vote{
			ID: v.id, HangoutID: v.hangoutID, OptionID: v.optionID, Voter: v.voter, Value: v.value,
			CreatedAt: pgtypeTimestamptzToTime(v.createdAt), UpdatedAt: pgtypeTimestamptzToTime(v.updatedAt),
		})
	}
	return out, nil
}

func (r *VoteRepository) Tally(ctx context.Context, hangoutID string) (map[string]int, error) {
	return r.tally(ctx, activityVotes, hangoutID)
}

func (r *VoteRepository) UpsertTime(ctx context.Context, v *entities.TimeVote) error {
	return r.upsert(ctx, timeVotes, voteRow{
		id: v.ID, optionID: v.TimeOptionID, voter: v.Voter, value: v.Value,
		createdAt: timeToTimestamptz(v.CreatedAt), updatedAt: timeToTimestamptz(v.UpdatedAt),
	})
}

func (r *VoteRepository) DeleteTime(ctx context.Context, timeOptionID string, voter entities.ParticipantRef) error {
	return r.delete(ctx, timeVotes, timeOptionID, voter)
}

func (r *VoteRepository) ListTimeByHangout(ctx context.Context, hangoutID string) ([]entities.TimeVote, error) {
	rows, err := r.list(ctx, timeVotes, hangoutID)
	if err != nil {
		return nil, err
	}
	out := make([]entities.TimeVote, 0, len(rows))
	for _, v := range rows {
		out = append(out, entities.TimeVote{
			ID: v.id, HangoutID: v.hangoutID, TimeOptionID: v.optionID, Voter: v.voter, Value: v.value,
			CreatedAt: pgtypeTimestamptzToTime(v.createdAt), UpdatedAt: pgtypeTimestamptzToTime(v.updatedAt),
		})
	}
	return out, nil
}

func (r *VoteRepository) TallyTime(ctx context.Context, hangoutID string) (map[string]int, error) {
	return r.tally(ctx, timeVotes, hangoutID)
}

// ReassignVoter must run inside a transaction.
func (r *VoteRepository) ReassignVoter(ctx context.Context, from, to entities.ParticipantRef) error {
	if err := r.reassign(ctx, activityVotes, from, to); err != nil {
		return err
	}
	return r.reassign(ctx, timeVotes, from, to)
}
