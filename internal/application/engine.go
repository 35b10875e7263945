package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
	"hangout/internal/ports/output"
)

// DefaultGuestTTL is the lifetime of a guest profile from its creation.
const DefaultGuestTTL = 30 * 24 * time.Hour

// Deps wires the output ports shared by every service.
type Deps struct {
	Hangouts    output.HangoutRepository
	Profiles    output.ProfileRepository
	Guests      output.GuestRepository
	Memberships output.MembershipRepository
	Options     output.OptionRepository
	Votes       output.VoteRepository
	Invites     output.InviteRepository
	Tx          output.TxManager
	Notifier    output.Notifier
	Translator  output.T
	Clock       output.Clock
	IDs         output.IDGenerator
	Tokens      output.TokenGenerator

	Locale      string
	LinkBaseURL string
	GuestTTL    time.Duration
	Logger      *slog.Logger
}

// Engine groups the use cases of the consensus engine. Services share one
// Deps value and hold no other state, so an Engine is safe for concurrent use.
type Engine struct {
	Identity    *IdentityService
	Hangouts    *HangoutService
	Memberships *MembershipService
	Rsvp        *RsvpService
	Options     *OptionService
	Votes       *VoteService
	Resolution  *ResolutionService
	Invites     *InviteService
	Status      *StatusService
}

var (
	_ input.IdentityUseCase   = (*IdentityService)(nil)
	_ input.HangoutUseCase    = (*HangoutService)(nil)
	_ input.MembershipUseCase = (*MembershipService)(nil)
	_ input.RsvpUseCase       = (*RsvpService)(nil)
	_ input.OptionUseCase     = (*OptionService)(nil)
	_ input.VoteUseCase       = (*VoteService)(nil)
	_ input.ResolutionUseCase = (*ResolutionService)(nil)
	_ input.InviteUseCase     = (*InviteService)(nil)
	_ input.StatusUseCase     = (*StatusService)(nil)
)

func NewEngine(deps Deps) *Engine {
	d := deps
	if d.Clock == nil {
		d.Clock = systemClock{}
	}
	if d.GuestTTL <= 0 {
		d.GuestTTL = DefaultGuestTTL
	}
	if d.Notifier == nil {
		d.Notifier = discardNotifier{}
	}
	if d.Translator == nil {
		d.Translator = keyTranslator{}
	}
	if d.Locale == "" {
		d.Locale = "en"
	}
	d.Logger = ResolveLogger(d.Logger)

	b := base{d: &d}
	identity := &IdentityService{base: b}
	memberships := &MembershipService{base: b}
	return &Engine{
		Identity:    identity,
		Hangouts:    &HangoutService{base: b},
		Memberships: memberships,
		Rsvp:        &RsvpService{base: b},
		Options:     &OptionService{base: b},
		Votes:       &VoteService{base: b},
		Resolution:  &ResolutionService{base: b},
		Invites:     &InviteService{base: b, identity: identity, memberships: memberships},
		Status:      &StatusService{base: b},
	}
}

// UseCases exposes the engine through its input ports.
func (e *Engine) UseCases() input.UseCases {
	return input.UseCases{
		Identity:    e.Identity,
		Hangouts:    e.Hangouts,
		Memberships: e.Memberships,
		Rsvp:        e.Rsvp,
		Options:     e.Options,
		Votes:       e.Votes,
		Resolution:  e.Resolution,
		Invites:     e.Invites,
		Status:      e.Status,
	}
}

type base struct {
	d *Deps
}

func (b base) now() time.Time {
	return b.d.Clock.Now().UTC()
}

func (b base) log() *slog.Logger {
	return b.d.Logger
}

// loadOpenHangout returns the hangout unless it is cancelled or completed.
func (b base) loadOpenHangout(ctx context.Context, hangoutID string) (*entities.Hangout, error) {
	h, err := b.d.Hangouts.FindByID(ctx, hangoutID)
	if err != nil {
		return nil, err
	}
	if h.Status.IsClosed() {
		return nil, domain.ErrHangoutClosed
	}
	return h, nil
}

func (b base) requireMember(ctx context.Context, hangoutID string, ref entities.ParticipantRef) (*entities.Membership, error) {
	m, err := b.d.Memberships.FindByHangoutAndParticipant(ctx, hangoutID, ref)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotAMember
		}
		return nil, err
	}
	return m, nil
}

// notifyMembers fans out one HANGOUT_UPDATE per member, skipping actor.
// Failures are logged and never undo the change that triggered them.
func (b base) notifyMembers(ctx context.Context, hangoutID string, actor *entities.ParticipantRef, content string) {
	members, err := b.d.Memberships.ListByHangout(ctx, hangoutID)
	if err != nil {
		b.log().Error("notification fan-out skipped",
			"event", "notify_list_members_failed",
			"hangout_id", hangoutID,
			"error", err.Error(),
		)
		return
	}
	link := hangoutLink(b.d.LinkBaseURL, hangoutID)
	now := b.now()
	for _, m := range members {
		if actor != nil && m.Participant == *actor {
			continue
		}
		n := entities.Notification{
			ID:        b.d.IDs.NewID(),
			Recipient: m.Participant,
			HangoutID: hangoutID,
			Kind:      entities.NotificationHangoutUpdate,
			Content:   content,
			Link:      link,
			CreatedAt: now,
		}
		if err := b.d.Notifier.Notify(ctx, n); err != nil {
			b.log().Error("notification failed",
				"event", "notify_failed",
				"hangout_id", hangoutID,
				"recipient", m.Participant.String(),
				"error", err.Error(),
			)
		}
	}
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, domain.ErrNotFound)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, entities.Notification) error { return nil }

type keyTranslator struct{}

func (keyTranslator) T(_, key string, _ map[string]any) string { return key }
