package output

import (
	"context"

	"hangout/internal/domain/entities"
)

type OptionRepository interface {
	// CreateActivity assigns option.DisplayOrder past every existing option of
	// the hangout and inserts the row.
	CreateActivity(ctx context.Context, option *entities.ActivityOption) error
	FindActivityByID(ctx context.Context, id string) (*entities.ActivityOption, error)
	ListActivityByHangout(ctx context.Context, hangoutID string) ([]entities.ActivityOption, error)

	CreateTime(ctx context.Context, option *entities.TimeOption) error
	FindTimeByID(ctx context.Context, id string) (*entities.TimeOption, error)
	ListTimeByHangout(ctx context.Context, hangoutID string) ([]entities.TimeOption, error)
}
