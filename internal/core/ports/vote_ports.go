package ports

import (
	"context"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

type VoteRepository interface {
	SeedOptions(ctx context.Context, options []domain.Option) error
	ListOptions(ctx context.Context) ([]domain.Option, error)
	// SaveVote returns domain.ErrInvalidOption when vote.OptionID is unknown.
	SaveVote(ctx context.Context, vote *domain.Vote) error
	Tally(ctx context.Context) ([]domain.Result, error)
}
