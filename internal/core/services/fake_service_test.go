package services

import (
	"context"
	"errors"
	"sync"

	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

// fakeVotingService answers with the configured funcs and counts calls.
type fakeVotingService struct {
	mu sync.Mutex

	getVotingOptions func(ctx context.Context) (*ports.GetVotingOptionsResponse, error)
	vote             func(ctx context.Context, req ports.VoteRequest) (*ports.VoteResponse, error)
	getResults       func(ctx context.Context) (*ports.GetResultsResponse, error)

	optionsCalls int
	voteCalls    []ports.VoteRequest
	resultsCalls int
}

var errUnexpectedCall = errors.New("unexpected call")

func newFakeVotingService() *fakeVotingService {
	return &fakeVotingService{
		getVotingOptions: func(context.Context) (*ports.GetVotingOptionsResponse, error) {
			return nil, errUnexpectedCall
		},
		vote: func(context.Context, ports.VoteRequest) (*ports.VoteResponse, error) {
			return nil, errUnexpectedCall
		},
		getResults: func(context.Context) (*ports.GetResultsResponse, error) {
			return nil, errUnexpectedCall
		},
	}
}

func (f *fakeVotingService) GetVotingOptions(ctx context.Context, _ ports.GetVotingOptionsRequest) (*ports.GetVotingOptionsResponse, error) {
	f.mu.Lock()
	f.optionsCalls++
	fn := f.getVotingOptions
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeVotingService) Vote(ctx context.Context, req ports.VoteRequest) (*ports.VoteResponse, error) {
	f.mu.Lock()
	f.voteCalls = append(f.voteCalls, req)
	fn := f.vote
	f.mu.Unlock()
	return fn(ctx, req)
}

func (f *fakeVotingService) GetResults(ctx context.Context, _ ports.GetResultsRequest) (*ports.GetResultsResponse, error) {
	f.mu.Lock()
	f.resultsCalls++
	fn := f.getResults
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeVotingService) calls() (options, votes, results int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.optionsCalls, len(f.voteCalls), f.resultsCalls
}
