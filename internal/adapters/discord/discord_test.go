package discord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
	"hangout/internal/ports/output"
)

type keyTranslator struct{}

func (keyTranslator) T(_, key string, _ map[string]any) string { return key }
func (keyTranslator) Error(_ string, err error) string       { return "error." + domain.Code(err) }

func newTestHandler(uc input.UseCases) *Handler {
	return NewHandler(uc, keyTranslator{}, HandlerOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestCustomIDRoundTrip(t *testing.T) {
	id := customID(actionRsvp, string(entities.RsvpNotGoing), "h-1")
	action, args := parseCustomID(id)
	if action != actionRsvp || len(args) != 2 || args[0] != "NOT_GOING" || args[1] != "h-1" {
		t.Fatalf("unexpected parse of %q: %s %v", id, action, args)
	}
}

func TestBallotChanges(t *testing.T) {
	me := entities.Registered("me")
	other := entities.Registered("other")
	options := []input.OptionStatus{
		{ActivityOption: entities.ActivityOption{ID: "keep"}, Ballots: []entities.Ballot{{Value: 1, Voter: me}}},
		{ActivityOption: entities.ActivityOption{ID: "drop"}, Ballots: []entities.Ballot{{Value: 1, Voter: me}, {Value: 1, Voter: other}}},
		{ActivityOption: entities.ActivityOption{ID: "add"}, Ballots: []entities.Ballot{{Value: 1, Voter: other}}},
		{ActivityOption: entities.ActivityOption{ID: "ignore"}},
	}
	changes := ballotChanges(options, []string{"keep", "add"}, me)
	if len(changes) != 2 || changes["add"] != 1 || changes["drop"] != entities.NoVote {
		t.Fatalf("unexpected changes: %v", changes)
	}
	if _, ok := changes["keep"]; ok {
		t.Fatal("unchanged vote must not be rewritten")
	}
}

func TestCreateInputFromModal(t *testing.T) {
	in, err := createInputFromModal(map[string]string{"title": "Friday", "desc": "Bowling?", "threshold": "60%", "suggestions": "Non"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if in.Title != "Friday" || in.ConsensusThreshold != 60 || in.AllowParticipantSuggestions {
		t.Fatalf("unexpected input: %+v", in)
	}
	in, _ = createInputFromModal(map[string]string{"title": "Picnic"})
	if !in.AllowParticipantSuggestions || in.ConsensusThreshold != 0 {
		t.Fatalf("unexpected defaults: %+v", in)
	}
	if _, err := createInputFromModal(map[string]string{"title": "x", "threshold": "lots"}); !errors.Is(err, domain.ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
}

func TestBuildComponentsFollowsLifecycle(t *testing.T) {
	h := newTestHandler(input.UseCases{})
	st := &input.HangoutStatus{
		Hangout: entities.Hangout{ID: "h1", Status: entities.StatusVoting},
		Options: []input.OptionStatus{
			{ActivityOption: entities.ActivityOption{ID: "o1", DisplayName: "Bowling"}},
			{ActivityOption: entities.ActivityOption{ID: "o2", ActivityRef: "activity:museum"}},
		},
	}
	rows := h.buildComponents(st, "en")
	if len(rows) != 3 {
		t.Fatalf("expected vote, rsvp and control rows, got %d", len(rows))
	}
	menu := rows[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	if menu.CustomID != "vote:h1" || menu.MaxValues != 2 || menu.Options[1].Label != "activity:museum" {
		t.Fatalf("unexpected select menu: %+v", menu)
	}
	controls := rows[2].(discordgo.ActionsRow).Components
	if len(controls) != 2 || controls[1].(discordgo.Button).CustomID != "end:h1" {
		t.Fatalf("expected end voting control, got %+v", controls)
	}

	st.Hangout.Status = entities.StatusCancelled
	rows = h.buildComponents(st, "en")
	if len(rows) != 1 {
		t.Fatalf("cancelled hangout should only offer refresh, got %d rows", len(rows))
	}
}

func TestCommandsDescribeEverySubcommand(t *testing.T) {
	h := newTestHandler(input.UseCases{})
	cmds := h.Commands("en")
	if len(cmds) != 1 || cmds[0].Name != commandName {
		t.Fatalf("unexpected commands: %+v", cmds)
	}
	names := map[string]bool{}
	for _, sub := range cmds[0].Options {
		names[sub.Name] = true
		if sub.Description == "" || len(sub.Description) > 100 {
			t.Errorf("%s: bad description %q", sub.Name, sub.Description)
		}
	}
	for _, want := range []string{subCreate, subStatus, subJoin, subOption, subTime, subOpen, subRsvp, subEnd, subCancel, subInvite} {
		if !names[want] {
			t.Errorf("missing subcommand %s", want)
		}
	}
}

func TestSubcommandOptions(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Name: commandName,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{{
			Name: subOption,
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "id", Type: discordgo.ApplicationCommandOptionString, Value: "h1"},
				{Name: "activity", Type: discordgo.ApplicationCommandOptionString, Value: "activity:bowling"},
			},
		}},
	}
	name, opts := subcommand(data)
	if name != subOption || opts["id"] != "h1" || opts["activity"] != "activity:bowling" {
		t.Fatalf("unexpected parse: %s %v", name, opts)
	}
}

func TestHangoutIDFromMessage(t *testing.T) {
	msg := &discordgo.Message{Embeds: []*discordgo.MessageEmbed{{Footer: &discordgo.MessageEmbedFooter{Text: " h1 "}}}}
	if id, ok := hangoutIDFromMessage(msg); !ok || id != "h1" {
		t.Fatalf("got %q %v", id, ok)
	}
	if _, ok := hangoutIDFromMessage(&discordgo.Message{}); ok {
		t.Fatal("message without embed is not a status message")
	}
}

type fakeIdentity struct {
	input.IdentityUseCase
	profiles map[string]entities.RegisteredProfile
}

func (f fakeIdentity) Lookup(_ context.Context, ref entities.ParticipantRef) (entities.Identity, error) {
	p, ok := f.profiles[ref.ID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

type fakeDMSession struct {
	sent      map[string]string
	sendErr   error
	createErr error
}

func (f *fakeDMSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeDMSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent[channelID] = data.Content
	return &discordgo.Message{}, nil
}

func TestDMNotifierDelivers(t *testing.T) {
	session := &fakeDMSession{sent: map[string]string{}}
	notifier := &DMNotifier{session: session, identity: fakeIdentity{profiles: map[string]entities.RegisteredProfile{
		"p1": {ID: "p1", ExternalKey: "discord:42"},
		"p2": {ID: "p2", ExternalKey: "github:7"},
	}}}
	ctx := context.Background()

	err := notifier.Deliver(ctx, entities.Notification{Recipient: entities.Registered("p1"), Content: "Bowling won", Link: "https://hangout.test/hangouts/h1"})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if got := session.sent["dm-42"]; !strings.HasPrefix(got, "Bowling won\n") || !strings.HasSuffix(got, "/hangouts/h1") {
		t.Fatalf("unexpected DM %q", got)
	}

	for _, ref := range []entities.ParticipantRef{entities.Guest("g1"), entities.Registered("p2"), entities.Registered("deleted")} {
		if err := notifier.Deliver(ctx, entities.Notification{Recipient: ref}); !errors.Is(err, output.ErrRecipientUnreachable) {
			t.Errorf("%s: expected unreachable, got %v", ref, err)
		}
	}

	session.sendErr = &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeCannotSendMessagesToThisUser},
	}
	if err := notifier.Deliver(ctx, entities.Notification{Recipient: entities.Registered("p1")}); !errors.Is(err, output.ErrRecipientUnreachable) {
		t.Fatalf("closed DMs should be unreachable, got %v", err)
	}

	session.sendErr = nil
	session.createErr = &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownUser},
	}
	if err := notifier.Deliver(ctx, entities.Notification{Recipient: entities.Registered("p1")}); !errors.Is(err, output.ErrRecipientUnreachable) {
		t.Fatalf("unknown Discord user should be unreachable, got %v", err)
	}

	session.createErr = errors.New("connection reset")
	err = notifier.Deliver(ctx, entities.Notification{Recipient: entities.Registered("p1")})
	if err == nil || errors.Is(err, output.ErrRecipientUnreachable) {
		t.Fatalf("transient errors must stay retryable, got %v", err)
	}
}

func TestResolutionContent(t *testing.T) {
	h := newTestHandler(input.UseCases{})
	winner := &entities.ActivityOption{ActivityRef: "activity:bowling"}
	cases := map[input.ResolutionOutcome]string{
		input.OutcomeResolved:        "command.end.done",
		input.OutcomeAlreadyResolved: "command.end.already",
		input.OutcomeNotApplicable:   "command.end.not_applicable",
	}
	for outcome, want := range cases {
		if got := h.resolutionContent("en", input.ResolutionResult{Outcome: outcome, Winner: winner}); got != want {
			t.Errorf("%s: got %q, want %q", outcome, got, want)
		}
	}
	if got := inviteLink("https://hangout.test/", "tok"); got != "https://hangout.test/invite/tok" {
		t.Errorf("unexpected invite link %q", got)
	}
}
