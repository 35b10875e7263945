package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

// OptionService is the registry of candidate activities and time slots.
type OptionService struct {
	base
}

// AddOption appends a candidate activity. Only PLANNING and VOTING hangouts
// accept options, and non-creators need participant suggestions enabled.
func (s *OptionService) AddOption(ctx context.Context, hangoutID, activityRef, displayName string, requester entities.ParticipantRef) (*entities.ActivityOption, error) {
	activityRef = strings.TrimSpace(activityRef)
	if activityRef == "" {
		return nil, domain.ErrEmptyActivityRef
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = activityRef
	}
	if err := s.checkCanSuggest(ctx, hangoutID, requester); err != nil {
		return nil, err
	}
	option := &entities.ActivityOption{
		ID:          s.d.IDs.NewID(),
		HangoutID:   hangoutID,
		ActivityRef: activityRef,
		DisplayName: displayName,
		SuggestedBy: requester,
		CreatedAt:   s.now(),
	}
	if err := s.d.Options.CreateActivity(ctx, option); err != nil {
		return nil, fmt.Errorf("create activity option: %w", err)
	}
	s.log().Info("activity option added",
		"event", "option_added",
		"hangout_id", hangoutID,
		"option_id", option.ID,
		"display_order", option.DisplayOrder,
	)
	return option, nil
}

// ListOptions returns the hangout's options ordered by DisplayOrder.
func (s *OptionService) ListOptions(ctx context.Context, hangoutID string) ([]entities.ActivityOption, error) {
	if _, err := s.d.Hangouts.FindByID(ctx, hangoutID); err != nil {
		return nil, err
	}
	return s.d.Options.ListActivityByHangout(ctx, hangoutID)
}

// AddTimeOption appends a candidate time slot under the AddOption rules.
func (s *OptionService) AddTimeOption(ctx context.Context, hangoutID string, startsAt time.Time, endsAt *time.Time, requester entities.ParticipantRef) (*entities.TimeOption, error) {
	if startsAt.IsZero() || (endsAt != nil && !endsAt.After(startsAt)) {
		return nil, domain.ErrInvalidTimeRange
	}
	if err := s.checkCanSuggest(ctx, hangoutID, requester); err != nil {
		return nil, err
	}
	option := &entities.TimeOption{
		ID:          s.d.IDs.NewID(),
		HangoutID:   hangoutID,
		StartsAt:    startsAt.UTC(),
		SuggestedBy: requester,
		CreatedAt:   s.now(),
	}
	if endsAt != nil {
		end := endsAt.UTC()
		option.EndsAt = &end
	}
	if err := s.d.Options.CreateTime(ctx, option); err != nil {
		return nil, fmt.Errorf("create time option: %w", err)
	}
	return option, nil
}

func (s *OptionService) ListTimeOptions(ctx context.Context, hangoutID string) ([]entities.TimeOption, error) {
	if _, err := s.d.Hangouts.FindByID(ctx, hangoutID); err != nil {
		return nil, err
	}
	return s.d.Options.ListTimeByHangout(ctx, hangoutID)
}

func (s *OptionService) checkCanSuggest(ctx context.Context, hangoutID string, requester entities.ParticipantRef) error {
	h, err := s.d.Hangouts.FindByID(ctx, hangoutID)
	if err != nil {
		return err
	}
	if !h.Status.AcceptsOptions() {
		return domain.ErrVotingClosed
	}
	if h.IsCreator(requester) {
		return nil
	}
	if !h.AllowParticipantSuggestions {
		return domain.ErrSuggestionsDisabled
	}
	_, err = s.requireMember(ctx, hangoutID, requester)
	return err
}
