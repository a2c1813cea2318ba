package memory

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

// VoteStore keeps options and per-option counts in process memory.
type VoteStore struct {
	mu      sync.RWMutex
	options []domain.Option
	counts  map[string]int64
}

func NewVoteStore() *VoteStore {
	return &VoteStore{
		counts: make(map[string]int64),
	}
}

var _ ports.VoteRepository = (*VoteStore)(nil)

// SeedOptions adds options that are not known yet. Existing counts are kept.
func (s *VoteStore) SeedOptions(_ context.Context, options []domain.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, opt := range options {
		if opt.ID == "" {
			return domain.ErrEmptyOptionID
		}
		if _, exists := s.counts[opt.ID]; exists {
			continue
		}
		s.options = append(s.options, opt)
		s.counts[opt.ID] = 0
	}
	return nil
}

func (s *VoteStore) ListOptions(_ context.Context) ([]domain.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	options := make([]domain.Option, len(s.options))
	copy(options, s.options)
	return options, nil
}

func (s *VoteStore) SaveVote(_ context.Context, vote *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.counts[vote.OptionID]; !exists {
		return domain.ErrInvalidOption
	}
	s.counts[vote.OptionID]++
	return nil
}

func (s *VoteStore) Tally(_ context.Context) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.Result, 0, len(s.options))
	for _, opt := range s.options {
		results = append(results, domain.Result{
			OptionID:   opt.ID,
			OptionText: opt.Text,
			Votes:      s.counts[opt.ID],
		})
	}
	return results, nil
}
