package database

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every Postgres-backed output port over one pool.
type Repositories struct {
	Tx            *TxManager
	Hangouts      *HangoutRepository
	Profiles      *ProfileRepository
	Guests        *GuestRepository
	Memberships   *MembershipRepository
	Options       *OptionRepository
	Votes         *VoteRepository
	Invites       *InviteRepository
	Notifications *NotificationQueue
}

func NewRepositories(pool *pgxpool.Pool, logger *slog.Logger) *Repositories {
	db := NewDB(pool)
	tx := NewTxManager(db, logger)
	return &Repositories{
		Tx:            tx,
		Hangouts:      NewHangoutRepository(db),
		Profiles:      NewProfileRepository(db),
		Guests:        NewGuestRepository(db),
		Memberships:   NewMembershipRepository(db),
		Options:       NewOptionRepository(db, tx),
		Votes:         NewVoteRepository(db),
		Invites:       NewInviteRepository(db),
		Notifications: NewNotificationQueue(db),
	}
}
