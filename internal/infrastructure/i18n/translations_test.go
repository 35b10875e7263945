package i18n

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"hangout/internal/domain"
)

func newTestTranslator(locale string) *Translator {
	return NewTranslator(locale, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTranslatorRendersTemplateData(t *testing.T) {
	tr := newTestTranslator("en")
	got := tr.T("en", "notification.hangout_confirmed", map[string]any{"Title": "Friday", "Winner": "Bowling"})
	want := "\"Friday\" is on: Bowling won the vote."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTranslatorFallsBackToDefaultLocaleThenKey(t *testing.T) {
	tr := newTestTranslator("fr")
	if got := tr.T("de", "error.voting_closed", nil); got != "Le vote est clos pour cette sortie." {
		t.Fatalf("expected French fallback, got %q", got)
	}
	if got := tr.T("en", "missing.key", nil); got != "missing.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
	if got := tr.T("en", "", nil); got != "" {
		t.Fatalf("empty key should render empty, got %q", got)
	}
}

func TestErrorUsesDomainCode(t *testing.T) {
	tr := newTestTranslator("en")
	if got := tr.Error("en", domain.ErrNotCreator); got != "Only the organizer can do that." {
		t.Fatalf("got %q", got)
	}
	if got := tr.Error("en", errors.New("disk on fire")); got != "Something went wrong. Please try again." {
		t.Fatalf("got %q", got)
	}
}

func TestEveryDomainErrorHasEnglishAndFrenchMessages(t *testing.T) {
	tr := newTestTranslator("en")
	for _, err := range []error{
		domain.ErrHangoutNotFound, domain.ErrOptionNotFound, domain.ErrMembershipNotFound,
		domain.ErrProfileNotFound, domain.ErrGuestNotFound, domain.ErrInviteNotFound,
		domain.ErrNotCreator, domain.ErrNotAMember, domain.ErrSuggestionsDisabled,
		domain.ErrCreatorCannotLeave, domain.ErrVotingClosed, domain.ErrInvalidTransition,
		domain.ErrHangoutClosed, domain.ErrNotYetDue, domain.ErrNotScheduled, domain.ErrInvalidRsvp,
		domain.ErrInvalidThreshold, domain.ErrEmptyTitle, domain.ErrEmptyDisplayName,
		domain.ErrEmptyActivityRef, domain.ErrInvalidTimeRange, domain.ErrDeadlineInPast, domain.ErrInvalidDateTime,
		domain.ErrAlreadyMember, domain.ErrGuestAlreadyConverted, domain.ErrDuplicateJoin,
		domain.ErrCreatorExists, domain.ErrEmptyOptionSet, domain.ErrTokenInvalid,
		domain.ErrTokenExpired, domain.ErrResolutionConflict,
	} {
		key := "error." + domain.Code(err)
		for _, locale := range []string{"en", "fr"} {
			if got := tr.T(locale, key, nil); got == key {
				t.Errorf("%s: missing %s translation", key, locale)
			}
		}
	}
}
