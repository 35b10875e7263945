package domain

import "errors"

// Error kinds. Every domain error wraps exactly one of these, so callers can
// branch on the kind with errors.Is without knowing the specific sentinel.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidState  = errors.New("invalid state")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
	ErrNoOptions     = errors.New("no options")
	ErrInvalidToken  = errors.New("invalid token")
	ErrConflict      = errors.New("conflict")
)

// Error is a coded domain error. Code is stable and used for i18n keys and
// transport mapping; Message is for logs.
type Error struct {
	Code    string
	Message string
	Kind    error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind so errors.Is(err, ErrNotFound) matches.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, code, message string) *Error {
	return &Error{Code: code, Message: message, Kind: kind}
}

// Domain errors.
var (
	ErrHangoutNotFound    = newError(ErrNotFound, "hangout_not_found", "hangout not found")
	ErrOptionNotFound     = newError(ErrNotFound, "option_not_found", "option not found")
	ErrMembershipNotFound = newError(ErrNotFound, "membership_not_found", "membership not found")
	ErrProfileNotFound    = newError(ErrNotFound, "profile_not_found", "profile not found")
	ErrGuestNotFound      = newError(ErrNotFound, "guest_not_found", "guest not found")
	ErrInviteNotFound     = newError(ErrNotFound, "invite_not_found", "invite token not found")

	ErrNotCreator            = newError(ErrForbidden, "not_creator", "only the hangout creator can perform this action")
	ErrNotAMember            = newError(ErrForbidden, "not_a_member", "identity is not a member of this hangout")
	ErrSuggestionsDisabled   = newError(ErrForbidden, "suggestions_disabled", "participant suggestions are disabled for this hangout")
	ErrCreatorCannotLeave    = newError(ErrForbidden, "creator_cannot_leave", "the creator cannot leave or be removed")
	ErrVotingClosed          = newError(ErrInvalidState, "voting_closed", "hangout no longer accepts options or votes")
	ErrInvalidTransition     = newError(ErrInvalidState, "invalid_transition", "status transition not allowed")
	ErrHangoutClosed         = newError(ErrInvalidState, "hangout_closed", "hangout is cancelled or completed")
	ErrNotYetDue             = newError(ErrInvalidState, "not_yet_due", "scheduled time has not elapsed")
	ErrNotScheduled          = newError(ErrInvalidState, "not_scheduled", "hangout has no scheduled time to complete against")
	ErrInvalidRsvp           = newError(ErrInvalidInput, "invalid_rsvp", "rsvp status must be GOING, MAYBE or NOT_GOING")
	ErrInvalidThreshold      = newError(ErrInvalidInput, "invalid_threshold", "consensus threshold must be between 0 and 100")
	ErrEmptyTitle            = newError(ErrInvalidInput, "empty_title", "title is required")
	ErrEmptyDisplayName      = newError(ErrInvalidInput, "empty_display_name", "display name is required")
	ErrEmptyActivityRef      = newError(ErrInvalidInput, "empty_activity_ref", "activity reference is required")
	ErrInvalidTimeRange      = newError(ErrInvalidInput, "invalid_time_range", "time option must end after it starts")
	ErrDeadlineInPast        = newError(ErrInvalidInput, "deadline_in_past", "voting deadline must be in the future")
	ErrInvalidDateTime       = newError(ErrInvalidInput, "invalid_datetime", "date must be DD/MM/YYYY and time HH:MM")
	ErrAlreadyMember         = newError(ErrAlreadyExists, "already_member", "identity is already a member of this hangout")
	ErrGuestAlreadyConverted = newError(ErrAlreadyExists, "guest_already_converted", "guest has already been converted")
	ErrDuplicateJoin         = newError(ErrAlreadyExists, "duplicate_join", "guest join already recorded for this idempotency key")
	ErrCreatorExists         = newError(ErrAlreadyExists, "creator_exists", "hangout already has a creator")
	ErrEmptyOptionSet        = newError(ErrNoOptions, "no_options", "hangout has no activity options to resolve")
	ErrTokenInvalid          = newError(ErrInvalidToken, "invalid_token", "token is unknown")
	ErrTokenExpired          = newError(ErrInvalidToken, "token_expired", "token has expired")
	ErrResolutionConflict    = newError(ErrConflict, "resolution_conflict", "hangout was modified concurrently")
)

// Code returns the stable code of a domain error, or "" when err is not one.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
