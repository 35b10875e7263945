// Package memory is an in-process implementation of every output port. It
// backs the engine in tests and in single-node setups without Postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"hangout/internal/domain/entities"
	"hangout/internal/ports/output"
)

var (
	_ output.HangoutRepository    = (*Store)(nil)
	_ output.ProfileRepository    = (*Profiles)(nil)
	_ output.GuestRepository      = (*Guests)(nil)
	_ output.MembershipRepository = (*Memberships)(nil)
	_ output.OptionRepository     = (*Store)(nil)
	_ output.VoteRepository       = (*Votes)(nil)
	_ output.InviteRepository     = (*Store)(nil)
	_ output.NotificationQueue    = (*Store)(nil)
	_ output.TxManager            = (*Store)(nil)
)

type memberKey struct {
	hangoutID string
	ref       entities.ParticipantRef
}

type voteKey struct {
	optionID string
	voter    entities.ParticipantRef
}

type joinKey struct {
	hangoutID string
	key       string
}

// Store keeps every aggregate in maps guarded by mu. Transactions are
// serialized by txMu and rolled back through an undo log; writes outside a
// transaction take txMu too, so they never interleave with one.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	hangouts map[string]entities.Hangout

	profiles     map[string]entities.RegisteredProfile
	profileByKey map[string]string

	guests       map[string]entities.GuestProfile
	guestByToken map[string]string
	guestByJoin  map[joinKey]string

	memberships map[string]entities.Membership
	memberIndex map[memberKey]string

	activities  map[string]entities.ActivityOption
	timeOptions map[string]entities.TimeOption

	votes     map[voteKey]entities.Vote
	timeVotes map[voteKey]entities.TimeVote

	invites       map[string]entities.InviteToken
	inviteByToken map[string]string

	notifications map[string]entities.Notification
	outbox        []string
}

func NewStore() *Store {
	return &Store{
		hangouts:      make(map[string]entities.Hangout),
		profiles:      make(map[string]entities.RegisteredProfile),
		profileByKey:  make(map[string]string),
		guests:        make(map[string]entities.GuestProfile),
		guestByToken:  make(map[string]string),
		guestByJoin:   make(map[joinKey]string),
		memberships:   make(map[string]entities.Membership),
		memberIndex:   make(map[memberKey]string),
		activities:    make(map[string]entities.ActivityOption),
		timeOptions:   make(map[string]entities.TimeOption),
		votes:         make(map[voteKey]entities.Vote),
		timeVotes:     make(map[voteKey]entities.TimeVote),
		invites:       make(map[string]entities.InviteToken),
		inviteByToken: make(map[string]string),
		notifications: make(map[string]entities.Notification),
	}
}

// Repository views that need their own method set because their port names
// collide with another port's (Create, FindByID, Update...).
type (
	Profiles    struct{ s *Store }
	Guests      struct{ s *Store }
	Memberships struct{ s *Store }
	Votes       struct{ s *Store }
)

func (s *Store) Profiles() *Profiles       { return &Profiles{s: s} }
func (s *Store) Guests() *Guests           { return &Guests{s: s} }
func (s *Store) Memberships() *Memberships { return &Memberships{s: s} }
func (s *Store) Votes() *Votes             { return &Votes{s: s} }

type txKey struct{}

type memTx struct {
	undo []func()
}

// WithinTx runs fn with exclusive write access. A nested call joins the
// transaction already carried by ctx.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*memTx); ok {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.mu.Lock()
		rollback(tx.undo)
		s.mu.Unlock()
		return err
	}
	return nil
}

// WithinSerializableTx is WithinTx: the store has no weaker isolation level.
func (s *Store) WithinSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.WithinTx(ctx, fn)
}

// mutate applies fn under the write lock and records its undo steps in the
// surrounding transaction, if any. A failing fn is rolled back immediately.
func (s *Store) mutate(ctx context.Context, fn func() ([]func(), error)) error {
	tx, inTx := ctx.Value(txKey{}).(*memTx)
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	undo, err := fn()
	if err != nil {
		rollback(undo)
		return err
	}
	if inTx {
		tx.undo = append(tx.undo, undo...)
	}
	return nil
}

func rollback(undo []func()) {
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

func put[K comparable, V any](m map[K]V, k K, v V) func() {
	old, existed := m[k]
	m[k] = v
	return func() {
		if existed {
			m[k] = old
		} else {
			delete(m, k)
		}
	}
}

func remove[K comparable, V any](m map[K]V, k K) func() {
	old, existed := m[k]
	if !existed {
		return func() {}
	}
	delete(m, k)
	return func() { m[k] = old }
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Clock is a settable output.Clock for tests and simulations.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
