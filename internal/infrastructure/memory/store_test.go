package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

var (
	alice = entities.Registered("alice")
	bob   = entities.Registered("bob")
	guest = entities.Guest("g1")
)

func seedHangout(t *testing.T, s *Store, id string, status entities.Status) {
	t.Helper()
	err := s.Create(context.Background(), &entities.Hangout{
		ID:        id,
		Title:     "Friday",
		Creator:   alice,
		Status:    status,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed hangout: %v", err)
	}
}

func TestWithinTxRollsBackEveryWriteOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusPlanning)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Guests().Create(ctx, &entities.GuestProfile{ID: "g1", Token: "tok"}); err != nil {
			return err
		}
		if err := s.Memberships().Create(ctx, &entities.Membership{ID: "m1", HangoutID: "h1", Participant: guest}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := s.Guests().FindByID(ctx, "g1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("guest survived rollback: %v", err)
	}
	if _, err := s.Guests().FindByToken(ctx, "tok"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("guest token index survived rollback: %v", err)
	}
	if _, err := s.Memberships().FindByHangoutAndParticipant(ctx, "h1", guest); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("membership survived rollback: %v", err)
	}
}

func TestNestedWithinTxJoinsOuterTransaction(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusPlanning)

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		inner := s.WithinTx(ctx, func(ctx context.Context) error {
			return s.Memberships().Create(ctx, &entities.Membership{ID: "m1", HangoutID: "h1", Participant: bob})
		})
		if inner != nil {
			return inner
		}
		return domain.ErrInvalidTransition
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Memberships().FindByID(ctx, "m1"); err == nil {
		t.Fatal("inner write should roll back with the outer transaction")
	}
}

func TestMembershipCreateRejectsDuplicates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusPlanning)

	if err := s.Memberships().Create(ctx, &entities.Membership{ID: "m1", HangoutID: "h1", Participant: bob}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := s.Memberships().Create(ctx, &entities.Membership{ID: "m2", HangoutID: "h1", Participant: bob})
	if !errors.Is(err, domain.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestCreateActivityAssignsIncreasingDisplayOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusPlanning)

	for i, id := range []string{"o1", "o2", "o3"} {
		opt := &entities.ActivityOption{ID: id, HangoutID: "h1", ActivityRef: id}
		if err := s.CreateActivity(ctx, opt); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
		if opt.DisplayOrder != i {
			t.Fatalf("option %s: expected order %d, got %d", id, i, opt.DisplayOrder)
		}
	}
	list, _ := s.ListActivityByHangout(ctx, "h1")
	if len(list) != 3 || list[0].ID != "o1" || list[2].ID != "o3" {
		t.Fatalf("unexpected listing order: %+v", list)
	}
}

func TestVoteUpsertOverwritesAndTallyIncludesZeros(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusVoting)
	for _, id := range []string{"o1", "o2"} {
		if err := s.CreateActivity(ctx, &entities.ActivityOption{ID: id, HangoutID: "h1", ActivityRef: id}); err != nil {
			t.Fatalf("create option: %v", err)
		}
	}
	votes := s.Votes()
	if err := votes.Upsert(ctx, &entities.Vote{ID: "v1", OptionID: "o1", Voter: bob, Value: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := votes.Upsert(ctx, &entities.Vote{ID: "v2", OptionID: "o1", Voter: bob, Value: 3}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	tally, _ := votes.Tally(ctx, "h1")
	if tally["o1"] != 3 {
		t.Fatalf("expected last write to win with 3, got %d", tally["o1"])
	}
	if v, ok := tally["o2"]; !ok || v != 0 {
		t.Fatalf("expected zero entry for o2, got %v (present=%v)", v, ok)
	}
	list, _ := votes.ListByHangout(ctx, "h1")
	if len(list) != 1 || list[0].ID != "v1" {
		t.Fatalf("expected one vote keeping its first id, got %+v", list)
	}
}

func TestVoteUpsertRefusedOnceHangoutConfirmed(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusVoting)
	if err := s.CreateActivity(ctx, &entities.ActivityOption{ID: "o1", HangoutID: "h1", ActivityRef: "o1"}); err != nil {
		t.Fatalf("create option: %v", err)
	}
	confirm(t, s, "h1")
	err := s.Votes().Upsert(ctx, &entities.Vote{ID: "v1", OptionID: "o1", Voter: bob, Value: 1})
	if !errors.Is(err, domain.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed, got %v", err)
	}
}

func confirm(t *testing.T, s *Store, id string) {
	t.Helper()
	h, err := s.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("find hangout: %v", err)
	}
	h.Status = entities.StatusConfirmed
	if err := s.UpdateIfStatus(context.Background(), h, entities.StatusVoting); err != nil {
		t.Fatalf("confirm hangout: %v", err)
	}
}

func TestOptionCreateRefusedOnceHangoutConfirmed(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusVoting)
	confirm(t, s, "h1")

	err := s.CreateActivity(ctx, &entities.ActivityOption{ID: "o1", HangoutID: "h1", ActivityRef: "o1"})
	if !errors.Is(err, domain.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed for activity, got %v", err)
	}
	err = s.CreateTime(ctx, &entities.TimeOption{ID: "t1", HangoutID: "h1", StartsAt: time.Now()})
	if !errors.Is(err, domain.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed for time option, got %v", err)
	}
	if list, _ := s.ListActivityByHangout(ctx, "h1"); len(list) != 0 {
		t.Fatalf("refused option was stored: %+v", list)
	}
}

func TestUpdateIfStatusDetectsConflict(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusConfirmed)

	h, _ := s.FindByID(ctx, "h1")
	h.Status = entities.StatusConfirmed
	h.FinalOptionID = "other"
	err := s.UpdateIfStatus(ctx, h, entities.StatusVoting)
	if !errors.Is(err, domain.ErrResolutionConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	stored, _ := s.FindByID(ctx, "h1")
	if stored.FinalOptionID != "" {
		t.Fatalf("conflicting write leaked: %+v", stored)
	}
}

func TestReassignMovesMembershipsAndDropsCollisions(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusVoting)
	seedHangout(t, s, "h2", entities.StatusVoting)
	m := s.Memberships()
	for _, row := range []entities.Membership{
		{ID: "m1", HangoutID: "h1", Participant: guest},
		{ID: "m2", HangoutID: "h2", Participant: guest},
		{ID: "m3", HangoutID: "h2", Participant: bob},
	} {
		row := row
		if err := m.Create(ctx, &row); err != nil {
			t.Fatalf("create membership: %v", err)
		}
	}
	if err := m.Reassign(ctx, guest, bob); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	moved, err := m.FindByHangoutAndParticipant(ctx, "h1", bob)
	if err != nil || moved.ID != "m1" {
		t.Fatalf("expected m1 moved to bob, got %+v %v", moved, err)
	}
	if _, err := m.FindByID(ctx, "m2"); err == nil {
		t.Fatal("colliding guest membership should be dropped")
	}
	if rows, _ := m.ListByParticipant(ctx, guest); len(rows) != 0 {
		t.Fatalf("guest still holds memberships: %+v", rows)
	}
}

func TestGetOrCreateInviteIsStable(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedHangout(t, s, "h1", entities.StatusPlanning)

	first, err := s.GetOrCreate(ctx, entities.InviteToken{HangoutID: "h1", Token: "t1"})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := s.GetOrCreate(ctx, entities.InviteToken{HangoutID: "h1", Token: "t2"})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Token != "t1" || second.Token != "t1" {
		t.Fatalf("expected stable token t1, got %q then %q", first.Token, second.Token)
	}
	if _, err := s.FindByToken(ctx, "t2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("losing token must not be stored: %v", err)
	}
}

func TestNotificationQueueDrain(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for _, id := range []string{"n1", "n2", "n3"} {
		if err := s.Notify(ctx, entities.Notification{ID: id, Recipient: bob}); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	pending, _ := s.ListPending(ctx, time.Now(), 2)
	if len(pending) != 2 || pending[0].ID != "n1" {
		t.Fatalf("unexpected pending page: %+v", pending)
	}
	if err := s.MarkDelivered(ctx, "n1", time.Now()); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	pending, _ = s.ListPending(ctx, time.Now(), 0)
	if len(pending) != 2 || pending[0].ID != "n2" {
		t.Fatalf("expected n2,n3 pending, got %+v", pending)
	}
}
