package ports

import (
	"context"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

type GetVotingOptionsRequest struct{}

type GetVotingOptionsResponse struct {
	Topic   string          `json:"topic"`
	Options []domain.Option `json:"options"`
}

type VoteRequest struct {
	OptionID string `json:"optionId"`
}

type VoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type GetResultsRequest struct{}

type GetResultsResponse struct {
	Results []domain.Result `json:"results"`
}

// VotingService is implemented by the backend and by the remote client that
// talks to it.
type VotingService interface {
	GetVotingOptions(ctx context.Context, req GetVotingOptionsRequest) (*GetVotingOptionsResponse, error)
	Vote(ctx context.Context, req VoteRequest) (*VoteResponse, error)
	GetResults(ctx context.Context, req GetResultsRequest) (*GetResultsResponse, error)
}
