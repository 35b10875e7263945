package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"hangout/internal/application"
	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/infrastructure/idgen"
	"hangout/internal/ports/output"
)

func TestCastVoteLastWriteWinsAndNoVoteDeletes(t *testing.T) {
	h := newHarness(t)
	alice, bob := h.profile(t, "alice"), h.profile(t, "bob")
	hg := h.hangout(t, alice, false)
	h.join(t, hg.ID, bob)
	a := h.option(t, hg.ID, "a", alice)

	h.vote(t, a.ID, bob, 1)
	h.vote(t, a.ID, bob, 5)
	tally, err := h.engine.Votes.Tally(h.ctx, hg.ID)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if tally[a.ID] != 5 {
		t.Fatalf("expected 5 after overwrite, got %d", tally[a.ID])
	}

	h.vote(t, a.ID, bob, entities.NoVote)
	tally, _ = h.engine.Votes.Tally(h.ctx, hg.ID)
	if tally[a.ID] != 0 {
		t.Fatalf("expected vote removed, got %d", tally[a.ID])
	}
	status, _ := h.engine.Status.Status(h.ctx, hg.ID)
	if len(status.Options[0].Ballots) != 0 {
		t.Fatalf("expected no ballots, got %+v", status.Options[0].Ballots)
	}
}

func TestCastVoteRules(t *testing.T) {
	h := newHarness(t)
	alice, bob, mallory := h.profile(t, "alice"), h.profile(t, "bob"), h.profile(t, "mallory")
	hg := h.hangout(t, alice, false)
	h.join(t, hg.ID, bob)
	a := h.option(t, hg.ID, "a", alice)

	if err := h.engine.Votes.CastVote(h.ctx, a.ID, mallory, 1); !errors.Is(err, domain.ErrNotAMember) {
		t.Fatalf("non-member vote: expected ErrNotAMember, got %v", err)
	}
	if err := h.engine.Votes.CastVote(h.ctx, "missing", bob, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing option: expected not found, got %v", err)
	}

	h.openVoting(t, hg.ID, alice, nil)
	if _, err := h.engine.Resolution.EndVoting(h.ctx, hg.ID, alice); err != nil {
		t.Fatalf("end voting: %v", err)
	}
	if err := h.engine.Votes.CastVote(h.ctx, a.ID, bob, 1); !errors.Is(err, domain.ErrVotingClosed) {
		t.Fatalf("vote after confirmation: expected ErrVotingClosed, got %v", err)
	}
}

func TestVoterMaySupportSeveralOptions(t *testing.T) {
	h := newHarness(t)
	alice := h.profile(t, "alice")
	hg := h.hangout(t, alice, false)
	a := h.option(t, hg.ID, "a", alice)
	b := h.option(t, hg.ID, "b", alice)
	h.vote(t, a.ID, alice, 1)
	h.vote(t, b.ID, alice, 1)

	tally, _ := h.engine.Votes.Tally(h.ctx, hg.ID)
	if tally[a.ID] != 1 || tally[b.ID] != 1 {
		t.Fatalf("expected both options supported, got %+v", tally)
	}
}

func TestAddOptionPermissions(t *testing.T) {
	h := newHarness(t)
	alice, bob := h.profile(t, "alice"), h.profile(t, "bob")

	closed := h.hangout(t, alice, false)
	h.join(t, closed.ID, bob)
	if _, err := h.engine.Options.AddOption(h.ctx, closed.ID, "x", "", bob); !errors.Is(err, domain.ErrSuggestionsDisabled) {
		t.Fatalf("expected suggestions disabled, got %v", err)
	}

	open := h.hangout(t, alice, true)
	h.join(t, open.ID, bob)
	opt, err := h.engine.Options.AddOption(h.ctx, open.ID, "x", "", bob)
	if err != nil {
		t.Fatalf("member suggestion: %v", err)
	}
	if opt.DisplayName != "x" || opt.SuggestedBy != bob {
		t.Fatalf("unexpected option: %+v", opt)
	}
	if _, err := h.engine.Options.AddOption(h.ctx, open.ID, " ", "", alice); !errors.Is(err, domain.ErrEmptyActivityRef) {
		t.Fatalf("expected empty activity ref, got %v", err)
	}

	h.openVoting(t, open.ID, alice, nil)
	if _, err := h.engine.Resolution.EndVoting(h.ctx, open.ID, alice); err != nil {
		t.Fatalf("end voting: %v", err)
	}
	if _, err := h.engine.Options.AddOption(h.ctx, open.ID, "late", "", alice); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state after confirmation, got %v", err)
	}
}

func TestSetRsvpRejectsInvalidStatusWithoutMutation(t *testing.T) {
	h := newHarness(t)
	alice, bob := h.profile(t, "alice"), h.profile(t, "bob")
	hg := h.hangout(t, alice, false)
	h.join(t, hg.ID, bob)

	before, _ := h.store.Memberships().FindByHangoutAndParticipant(h.ctx, hg.ID, bob)
	_, err := h.engine.Rsvp.SetRsvp(h.ctx, hg.ID, bob, entities.RsvpStatus("PERHAPS"))
	if !errors.Is(err, domain.ErrInvalidRsvp) {
		t.Fatalf("expected invalid rsvp, got %v", err)
	}
	after, _ := h.store.Memberships().FindByHangoutAndParticipant(h.ctx, hg.ID, bob)
	if *before != *after {
		t.Fatalf("membership mutated: before=%+v after=%+v", before, after)
	}
}

func TestSetRsvpStampsRespondedAt(t *testing.T) {
	h := newHarness(t)
	alice, bob, carol := h.profile(t, "alice"), h.profile(t, "bob"), h.profile(t, "carol")
	hg := h.hangout(t, alice, false)
	h.join(t, hg.ID, bob)
	h.join(t, hg.ID, carol)

	h.clock.Advance(5 * time.Minute)
	m, err := h.engine.Rsvp.SetRsvp(h.ctx, hg.ID, bob, entities.RsvpNotGoing)
	if err != nil {
		t.Fatalf("set rsvp: %v", err)
	}
	if !m.RespondedAt.Equal(t0.Add(5 * time.Minute)) {
		t.Fatalf("unexpected respondedAt %v", m.RespondedAt)
	}
	summary, _ := h.engine.Rsvp.Summary(h.ctx, hg.ID)
	if summary.Going != 1 || summary.NotGoing != 1 || summary.Pending != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := h.engine.Rsvp.SetRsvp(h.ctx, hg.ID, h.profile(t, "dave"), entities.RsvpGoing); !errors.Is(err, domain.ErrNotAMember) {
		t.Fatalf("expected not a member, got %v", err)
	}
}

func TestMembershipManagement(t *testing.T) {
	h := newHarness(t)
	alice, bob := h.profile(t, "alice"), h.profile(t, "bob")
	hg := h.hangout(t, alice, false)
	h.join(t, hg.ID, bob)

	existing, err := h.engine.Memberships.Join(h.ctx, hg.ID, bob, entities.RoleMember, entities.RsvpUnset)
	if !errors.Is(err, domain.ErrAlreadyMember) || existing == nil {
		t.Fatalf("duplicate join should return the existing membership, got %+v %v", existing, err)
	}
	if _, err := h.engine.Memberships.SetMandatory(h.ctx, existing.ID, bob, true); !errors.Is(err, domain.ErrNotCreator) {
		t.Fatalf("expected not creator, got %v", err)
	}
	m, err := h.engine.Memberships.SetMandatory(h.ctx, existing.ID, alice, true)
	if err != nil || !m.IsMandatory {
		t.Fatalf("set mandatory: %v %+v", err, m)
	}
	if err := h.engine.Memberships.Leave(h.ctx, hg.ID, alice); !errors.Is(err, domain.ErrCreatorCannotLeave) {
		t.Fatalf("creator leave: %v", err)
	}
	if err := h.engine.Memberships.Leave(h.ctx, hg.ID, bob); err != nil {
		t.Fatalf("leave: %v", err)
	}
	members, _ := h.engine.Memberships.ListMembers(h.ctx, hg.ID)
	if len(members) != 1 {
		t.Fatalf("expected only the creator left, got %d", len(members))
	}
}

func TestInviteTokenIsMemberOnlyAndStable(t *testing.T) {
	h := newHarness(t)
	alice, mallory := h.profile(t, "alice"), h.profile(t, "mallory")
	hg := h.hangout(t, alice, false)

	if _, err := h.engine.Invites.GetOrCreateInviteToken(h.ctx, hg.ID, mallory); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	first, err := h.engine.Invites.GetOrCreateInviteToken(h.ctx, hg.ID, alice)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	second, _ := h.engine.Invites.GetOrCreateInviteToken(h.ctx, hg.ID, alice)
	if first == "" || first != second {
		t.Fatalf("token not stable: %q vs %q", first, second)
	}
}

func TestJoinAsGuestIsIdempotentPerKey(t *testing.T) {
	h := newHarness(t)
	alice := h.profile(t, "alice")
	hg := h.hangout(t, alice, false)
	token, _ := h.engine.Invites.GetOrCreateInviteToken(h.ctx, hg.ID, alice)

	const attempts = 8
	var wg sync.WaitGroup
	guestIDs := make([]string, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			join, err := h.engine.Invites.JoinAsGuest(h.ctx, token, "Gus", entities.RsvpGoing, "device-42")
			errs[i] = err
			if err == nil {
				guestIDs[i] = join.Guest.ID
			}
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if guestIDs[i] != guestIDs[0] {
			t.Fatalf("attempt %d created guest %s, want %s", i, guestIDs[i], guestIDs[0])
		}
	}
	members, _ := h.engine.Memberships.ListMembers(h.ctx, hg.ID)
	if len(members) != 2 {
		t.Fatalf("expected creator plus one guest, got %d memberships", len(members))
	}

	other, err := h.engine.Invites.JoinAsGuest(h.ctx, token, "Gus", entities.RsvpGoing, "device-43")
	if err != nil || other.Guest.ID == guestIDs[0] || other.Replayed {
		t.Fatalf("a new key must create a new guest: %+v %v", other, err)
	}
}

func TestJoinAsGuestFailures(t *testing.T) {
	h := newHarness(t)
	alice := h.profile(t, "alice")
	hg := h.hangout(t, alice, false)
	token, _ := h.engine.Invites.GetOrCreateInviteToken(h.ctx, hg.ID, alice)

	if _, err := h.engine.Invites.JoinAsGuest(h.ctx, "nope", "Gus", entities.RsvpGoing, ""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := h.engine.Invites.JoinAsGuest(h.ctx, token, "Gus", entities.RsvpStatus("SOON"), ""); !errors.Is(err, domain.ErrInvalidRsvp) {
		t.Fatalf("expected invalid rsvp, got %v", err)
	}
	if _, err := h.engine.Invites.JoinAsGuest(h.ctx, token, "", entities.RsvpGoing, ""); !errors.Is(err, domain.ErrEmptyDisplayName) {
		t.Fatalf("expected empty display name, got %v", err)
	}
	members, _ := h.engine.Memberships.ListMembers(h.ctx, hg.ID)
	if len(members) != 1 {
		t.Fatalf("failed joins must not create memberships, got %d", len(members))
	}
}

func TestGuestBearerLifecycle(t *testing.T) {
	h := newHarness(t)
	alice := h.profile(t, "alice")
	hg := h.hangout(t, alice, false)
	token, _ := h.engine.Invites.GetOrCreateInviteToken(h.ctx, hg.ID, alice)
	join, err := h.engine.Invites.JoinAsGuest(h.ctx, token, "Gus", entities.RsvpMaybe, "")
	if err != nil {
		t.Fatalf("join as guest: %v", err)
	}

	rename := "Gustavo"
	bearer, err := h.engine.Invites.Claim(h.ctx, hg.ID, join.Guest.ID, &rename)
	if err != nil || bearer != join.Guest.Token {
		t.Fatalf("claim: %q %v", bearer, err)
	}
	ref, err := h.engine.Identity.ResolveBearer(h.ctx, bearer)
	if err != nil || ref != join.Guest.Ref() {
		t.Fatalf("resolve bearer: %+v %v", ref, err)
	}
	ident, _ := h.engine.Identity.Lookup(h.ctx, ref)
	if ident.Name() != "Gustavo" {
		t.Fatalf("expected renamed guest, got %q", ident.Name())
	}

	other := h.hangout(t, alice, false)
	if _, err := h.engine.Invites.Claim(h.ctx, other.ID, join.Guest.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("claim on foreign hangout: expected not found, got %v", err)
	}

	if got, err := h.engine.Invites.ClaimWithInvite(h.ctx, token, join.Guest.ID, nil); err != nil || got != bearer {
		t.Fatalf("claim with invite: %q %v", got, err)
	}
	otherToken, _ := h.engine.Invites.GetOrCreateInviteToken(h.ctx, other.ID, alice)
	if _, err := h.engine.Invites.ClaimWithInvite(h.ctx, otherToken, join.Guest.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("claim through another hangout's invite: expected not found, got %v", err)
	}
	if _, err := h.engine.Invites.ClaimWithInvite(h.ctx, "forged", join.Guest.ID, nil); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("claim with unknown invite: expected invalid token, got %v", err)
	}

	h.clock.Advance(31 * 24 * time.Hour)
	if _, err := h.engine.Identity.ResolveBearer(h.ctx, bearer); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestUpgradeGuestMovesMembershipsAndVotes(t *testing.T) {
	h := newHarness(t)
	alice := h.profile(t, "alice")
	hg := h.hangout(t, alice, false)
	a := h.option(t, hg.ID, "a", alice)
	token, _ := h.engine.Invites.GetOrCreateInviteToken(h.ctx, hg.ID, alice)
	join, err := h.engine.Invites.JoinAsGuest(h.ctx, token, "Gus", entities.RsvpGoing, "")
	if err != nil {
		t.Fatalf("join as guest: %v", err)
	}
	h.vote(t, a.ID, join.Guest.Ref(), 1)

	gus, err := h.engine.Identity.ResolveRegistered(h.ctx, "discord:gus", "Gus", "")
	if err != nil {
		t.Fatalf("resolve registered: %v", err)
	}
	if _, err := h.engine.Invites.UpgradeGuest(h.ctx, join.Guest.Token, gus.ID); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if _, err := h.engine.Invites.UpgradeGuest(h.ctx, join.Guest.Token, gus.ID); err != nil {
		t.Fatalf("repeat upgrade should be a no-op: %v", err)
	}

	if _, err := h.store.Memberships().FindByHangoutAndParticipant(h.ctx, hg.ID, gus.Ref()); err != nil {
		t.Fatalf("membership not moved: %v", err)
	}
	votes, _ := h.store.Votes().ListByHangout(h.ctx, hg.ID)
	if len(votes) != 1 || votes[0].Voter != gus.Ref() {
		t.Fatalf("vote not moved: %+v", votes)
	}
	ref, err := h.engine.Identity.ResolveBearer(h.ctx, join.Guest.Token)
	if err != nil || ref != gus.Ref() {
		t.Fatalf("converted bearer should resolve to the profile: %+v %v", ref, err)
	}
}

func TestJoinWithInviteTreatsExistingMembershipAsSuccess(t *testing.T) {
	h := newHarness(t)
	alice, bob := h.profile(t, "alice"), h.profile(t, "bob")
	hg := h.hangout(t, alice, false)
	token, _ := h.engine.Invites.GetOrCreateInviteToken(h.ctx, hg.ID, alice)

	first, err := h.engine.Invites.JoinWithInvite(h.ctx, token, bob, entities.RsvpGoing)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	second, err := h.engine.Invites.JoinWithInvite(h.ctx, token, bob, entities.RsvpGoing)
	if err != nil || second.ID != first.ID {
		t.Fatalf("rejoin should be idempotent: %+v %v", second, err)
	}
}

func TestStatusViewCarriesBallotsAndMembers(t *testing.T) {
	h := newHarness(t)
	alice, bob := h.profile(t, "alice"), h.profile(t, "bob")
	hg := h.hangout(t, alice, false)
	h.clock.Advance(time.Minute)
	h.join(t, hg.ID, bob)
	a := h.option(t, hg.ID, "a", alice)
	b := h.option(t, hg.ID, "b", alice)
	h.vote(t, a.ID, alice, 1)
	h.vote(t, a.ID, bob, 2)
	h.vote(t, b.ID, bob, 1)

	status, err := h.engine.Status.Status(h.ctx, hg.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status.Members) != 2 || status.Members[0].DisplayName != "alice" {
		t.Fatalf("unexpected members: %+v", status.Members)
	}
	if len(status.Options) != 2 || status.Options[0].ID != a.ID {
		t.Fatalf("options out of order: %+v", status.Options)
	}
	if status.Options[0].Score != 3 || len(status.Options[0].Ballots) != 2 {
		t.Fatalf("unexpected option a: %+v", status.Options[0])
	}
	if status.Options[1].Score != 1 {
		t.Fatalf("unexpected option b score %d", status.Options[1].Score)
	}
	if _, err := h.engine.Status.Status(h.ctx, "missing"); !errors.Is(err, domain.ErrHangoutNotFound) {
		t.Fatalf("expected hangout not found, got %v", err)
	}
}

func TestMembershipLookup(t *testing.T) {
	h := newHarness(t)
	alice := h.profile(t, "alice")
	bob := h.profile(t, "bob")
	hg := h.hangout(t, alice, false)

	m, err := h.engine.Memberships.Membership(h.ctx, hg.ID, alice)
	if err != nil || !m.IsCreator() {
		t.Fatalf("creator membership: %+v %v", m, err)
	}
	if _, err := h.engine.Memberships.Membership(h.ctx, hg.ID, bob); !errors.Is(err, domain.ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
	if _, err := h.engine.Memberships.Membership(h.ctx, "missing", alice); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// resolvingHangouts resolves the hangout right after the first FindByID, the
// window between AddOption's status check and its insert.
type resolvingHangouts struct {
	output.HangoutRepository
	resolve func(ctx context.Context, id string)
	fired   bool
}

func (r *resolvingHangouts) FindByID(ctx context.Context, id string) (*entities.Hangout, error) {
	h, err := r.HangoutRepository.FindByID(ctx, id)
	if err == nil && r.resolve != nil && !r.fired {
		r.fired = true
		r.resolve(ctx, id)
	}
	return h, err
}

func TestAddOptionRacingResolutionIsRefused(t *testing.T) {
	h := newHarness(t)
	alice := h.profile(t, "alice")
	hg := h.hangout(t, alice, false)
	h.option(t, hg.ID, "activity:bowling", alice)
	h.openVoting(t, hg.ID, alice, nil)

	racing := &resolvingHangouts{HangoutRepository: h.store}
	engine := application.NewEngine(application.Deps{
		Hangouts:    racing,
		Profiles:    h.store.Profiles(),
		Guests:      h.store.Guests(),
		Memberships: h.store.Memberships(),
		Options:     h.store,
		Votes:       h.store.Votes(),
		Invites:     h.store,
		Tx:          h.store,
		Notifier:    h.store,
		Clock:       h.clock,
		IDs:         idgen.UUIDGenerator{},
		Tokens:      idgen.TokenGenerator{},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	racing.resolve = func(ctx context.Context, id string) {
		if _, err := engine.Resolution.EndVoting(ctx, id, alice); err != nil {
			t.Errorf("end voting: %v", err)
		}
	}

	_, err := engine.Options.AddOption(h.ctx, hg.ID, "activity:museum", "Museum", alice)
	if !errors.Is(err, domain.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed, got %v", err)
	}
	got, _ := h.engine.Hangouts.GetHangout(h.ctx, hg.ID)
	options, _ := h.engine.Options.ListOptions(h.ctx, hg.ID)
	if got.Status != entities.StatusConfirmed || len(options) != 1 {
		t.Fatalf("confirmed hangout gained an option: status=%s options=%d", got.Status, len(options))
	}
}
