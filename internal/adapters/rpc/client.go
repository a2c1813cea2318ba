package rpc

import (
	"context"

	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

// Client is the typed voting API on top of a Transport. It adds nothing to
// the calls: no caching, batching or local validation.
type Client struct {
	transport ports.Transport
}

func NewClient(transport ports.Transport) *Client {
	return &Client{
		transport: transport,
	}
}

var _ ports.VotingService = (*Client)(nil)

func (c *Client) GetVotingOptions(ctx context.Context, req ports.GetVotingOptionsRequest) (*ports.GetVotingOptionsResponse, error) {
	var resp ports.GetVotingOptionsResponse
	if err := c.transport.Send(ctx, ports.OpGetVotingOptions, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Vote(ctx context.Context, req ports.VoteRequest) (*ports.VoteResponse, error) {
	var resp ports.VoteResponse
	if err := c.transport.Send(ctx, ports.OpVote, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetResults(ctx context.Context, req ports.GetResultsRequest) (*ports.GetResultsResponse, error) {
	var resp ports.GetResultsResponse
	if err := c.transport.Send(ctx, ports.OpGetResults, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
