package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/vncsmyrnk/livepoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/livepoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/livepoll/internal/adapters/rpc"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

// testBackend is the real voting backend behind httptest. The first
// failOptions GetVotingOptions calls answer 500.
type testBackend struct {
	store        *memory.VoteStore
	server       *httptest.Server
	client       ports.VotingService
	failOptions  atomic.Int64
	optionsCalls atomic.Int64
	resultsCalls atomic.Int64
}

func newTestBackend(t *testing.T, failOptions int64) *testBackend {
	t.Helper()

	store := memory.NewVoteStore()
	require.NoError(t, store.SeedOptions(context.Background(), []domain.Option{
		{ID: "go", Text: "Go"},
		{ID: "rs", Text: "Rust"},
	}))
	router := handler.NewHandler(handler.NewVotingHandler(services.NewVotingService("Pick a language", store, nil), nil), nil)

	b := &testBackend{store: store}
	b.failOptions.Store(failOptions)
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ports.ProcedurePath(ports.OpGetVotingOptions):
			b.optionsCalls.Add(1)
			if b.failOptions.Add(-1) >= 0 {
				http.Error(w, `{"code":"internal","message":"store offline"}`, http.StatusInternalServerError)
				return
			}
		case ports.ProcedurePath(ports.OpGetResults):
			b.resultsCalls.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(b.server.Close)

	b.client = rpc.NewClient(rpc.NewHTTPTransport(b.server.URL))
	return b
}

func (b *testBackend) votes(t *testing.T) map[string]int64 {
	t.Helper()

	results, err := b.store.Tally(context.Background())
	require.NoError(t, err)
	votes := make(map[string]int64, len(results))
	for _, r := range results {
		votes[r.OptionID] = r.Votes
	}
	return votes
}

func TestRunOptions(t *testing.T) {
	backend := newTestBackend(t, 0)

	err := runOptions(context.Background(), backend.client)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), backend.optionsCalls.Load())
}

func TestRunOptions_BackendFailure(t *testing.T) {
	backend := newTestBackend(t, 1)

	err := runOptions(context.Background(), backend.client)
	assert.ErrorIs(t, err, errSessionFailed)
}

func TestRunVote(t *testing.T) {
	backend := newTestBackend(t, 0)

	err := runVote(context.Background(), backend.client, "rs")
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"go": 0, "rs": 1}, backend.votes(t))
	assert.Equal(t, int64(1), backend.resultsCalls.Load())
}

func TestRunVote_NotRecorded(t *testing.T) {
	testCases := []struct {
		name     string
		optionID string
	}{
		{name: "empty id", optionID: ""},
		{name: "blank id", optionID: "   "},
		{name: "unknown id", optionID: "cobol"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			backend := newTestBackend(t, 0)

			err := runVote(context.Background(), backend.client, tc.optionID)
			assert.Error(t, err)
			assert.Equal(t, map[string]int64{"go": 0, "rs": 0}, backend.votes(t))
		})
	}
}

func TestRunVote_EmptyIDNeverReachesBackend(t *testing.T) {
	backend := newTestBackend(t, 0)

	err := runVote(context.Background(), backend.client, "")
	assert.ErrorIs(t, err, errOptionRequired)
	assert.Zero(t, backend.optionsCalls.Load())
}

func TestRunVote_BackendFailure(t *testing.T) {
	backend := newTestBackend(t, 1)

	err := runVote(context.Background(), backend.client, "go")
	assert.ErrorIs(t, err, errSessionFailed)
	assert.Equal(t, map[string]int64{"go": 0, "rs": 0}, backend.votes(t))
}

func TestRunResults(t *testing.T) {
	backend := newTestBackend(t, 0)

	err := runResults(context.Background(), backend.client, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), backend.resultsCalls.Load())
}

func TestRunResults_FailedStartKeepsError(t *testing.T) {
	backend := newTestBackend(t, 1)

	session := newSession(backend.client)
	startResults(context.Background(), session)

	state := session.State()
	assert.NotEmpty(t, state.Error)
	assert.Empty(t, state.Results)
	assert.Zero(t, backend.resultsCalls.Load())

	err := runResults(context.Background(), newTestBackend(t, 1).client, 0)
	assert.ErrorIs(t, err, errSessionFailed)
}

func TestWatchResults(t *testing.T) {
	backend := newTestBackend(t, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := runResults(ctx, backend.client, 20*time.Millisecond)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, backend.resultsCalls.Load(), int64(3))
}

func TestWatchResults_RecoversThroughRetry(t *testing.T) {
	backend := newTestBackend(t, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := watchResults(ctx, backend.client, 20*time.Millisecond)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, backend.optionsCalls.Load(), int64(3))
	assert.Positive(t, backend.resultsCalls.Load())
}

func TestWatchResults_EndsInErrorState(t *testing.T) {
	backend := newTestBackend(t, 1_000)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := watchResults(ctx, backend.client, 20*time.Millisecond)
	assert.ErrorIs(t, err, errSessionFailed)
	assert.Zero(t, backend.resultsCalls.Load())
}
