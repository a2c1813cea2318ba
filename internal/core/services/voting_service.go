package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

const (
	MessageVoteRecorded  = "vote recorded"
	MessageInvalidOption = "invalid option id"
)

type voterIPKey struct{}

// ContextWithVoterIP attaches the caller address recorded with each vote.
func ContextWithVoterIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, voterIPKey{}, ip)
}

func voterIP(ctx context.Context) string {
	ip, _ := ctx.Value(voterIPKey{}).(string)
	return ip
}

type votingService struct {
	topic  string
	repo   ports.VoteRepository
	logger *slog.Logger
}

func NewVotingService(topic string, repo ports.VoteRepository, logger *slog.Logger) ports.VotingService {
	return &votingService{
		topic:  topic,
		repo:   repo,
		logger: ResolveLogger(logger),
	}
}

func (s *votingService) GetVotingOptions(ctx context.Context, _ ports.GetVotingOptionsRequest) (*ports.GetVotingOptionsResponse, error) {
	options, err := s.repo.ListOptions(ctx)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = []domain.Option{}
	}

	return &ports.GetVotingOptionsResponse{
		Topic:   s.topic,
		Options: options,
	}, nil
}

// Vote records one vote. An unknown option is an unsuccessful answer, not an
// error.
func (s *votingService) Vote(ctx context.Context, req ports.VoteRequest) (*ports.VoteResponse, error) {
	optionID := strings.TrimSpace(req.OptionID)
	if optionID == "" {
		return &ports.VoteResponse{Success: false, Message: MessageInvalidOption}, nil
	}

	vote := &domain.Vote{
		ID:        uuid.New(),
		OptionID:  optionID,
		VoterIP:   voterIP(ctx),
		CreatedAt: time.Now(),
	}

	if err := s.repo.SaveVote(ctx, vote); err != nil {
		if errors.Is(err, domain.ErrInvalidOption) {
			s.logger.Info("vote rejected", "option_id", optionID)
			return &ports.VoteResponse{Success: false, Message: MessageInvalidOption}, nil
		}
		return nil, err
	}

	s.logger.Info("vote recorded", "option_id", optionID, "vote_id", vote.ID)
	return &ports.VoteResponse{Success: true, Message: MessageVoteRecorded}, nil
}

func (s *votingService) GetResults(ctx context.Context, _ ports.GetResultsRequest) (*ports.GetResultsResponse, error) {
	results, err := s.repo.Tally(ctx)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.Result{}
	}
	return &ports.GetResultsResponse{Results: results}, nil
}
