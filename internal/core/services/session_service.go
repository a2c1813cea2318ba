package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

const (
	NoticeSelectFirst  = "select an option first"
	NoticeVoteRecorded = "vote recorded"
	NoticeVoteFailed   = "vote failed"
	NoticeReconnecting = "reconnecting..."

	NoticeOptionsFailed = "could not load voting options, check that the voting service is running"
	NoticeSubmitFailed  = "vote submission failed, check the network connection and the voting service"
	NoticeResultsFailed = "could not load results"
)

var errEmptyResponse = errors.New("empty response")

// SessionState is everything the presentation needs to draw one voting
// session. Values returned by Session are copies.
type SessionState struct {
	Topic     string
	Options   []domain.Option
	Results   []domain.Result
	Selection string
	Busy      bool
	Error     string
	Notice    domain.Notice

	// bumped on every change, orders snapshots
	version uint64
}

// VisibleNotice returns the notice to display. An active error hides it.
func (s SessionState) VisibleNotice() domain.Notice {
	if s.Error != "" {
		return domain.Notice{}
	}
	return s.Notice
}

// Controls reports which user intents may be triggered right now. The
// presentation disables everything else.
type Controls struct {
	CanSelect  bool
	CanSubmit  bool
	CanRefresh bool
	CanRetry   bool
}

func (s SessionState) Controls() Controls {
	return Controls{
		CanSelect:  !s.Busy,
		CanSubmit:  !s.Busy && s.Selection != "" && s.Error == "",
		CanRefresh: !s.Busy && s.Error == "",
		CanRetry:   s.Error != "",
	}
}

func (s SessionState) clone() SessionState {
	s.Options = slices.Clone(s.Options)
	s.Results = slices.Clone(s.Results)
	return s
}

type SessionOption func(*Session)

func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = ResolveLogger(logger)
	}
}

// WithOnChange registers fn to be called with a copy of the state after
// every change. Calls are serialised and never go back in time: a snapshot
// older than one already delivered is skipped. fn may read State but must not
// trigger a transition.
func WithOnChange(fn func(SessionState)) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

// Session is the client-side voting state machine. Its transitions never
// return errors: failures are reported through State().Error and
// State().Notice.
type Session struct {
	client   ports.VotingService
	logger   *slog.Logger
	onChange func(SessionState)

	mu             sync.Mutex
	notifyMu       sync.Mutex
	delivered      uint64
	state          SessionState
	resultsIssued  uint64
	resultsApplied uint64
}

func NewSession(client ports.VotingService, opts ...SessionOption) *Session {
	s := &Session{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Session) Controls() Controls {
	return s.State().Controls()
}

// Start bootstraps the session by loading the poll options.
func (s *Session) Start(ctx context.Context) {
	s.LoadOptions(ctx)
}

func (s *Session) LoadOptions(ctx context.Context) {
	s.update(func(st *SessionState) {
		st.Busy = true
		st.Error = ""
	})
	defer s.update(func(st *SessionState) { st.Busy = false })

	s.logger.Debug("loading voting options")

	var resp *ports.GetVotingOptionsResponse
	err := invoke(func() (err error) {
		resp, err = s.client.GetVotingOptions(ctx, ports.GetVotingOptionsRequest{})
		if err == nil && resp == nil {
			err = errEmptyResponse
		}
		return err
	})
	if err != nil {
		s.logger.Warn("failed to load voting options", "error", err)
		s.update(func(st *SessionState) {
			st.Error = fmt.Sprintf("failed to load voting options: %v", err)
			st.Notice = domain.Notice{Text: NoticeOptionsFailed, Kind: domain.NoticeWarning}
		})
		return
	}

	s.logger.Debug("voting options loaded", "topic", resp.Topic, "options", len(resp.Options))
	s.update(func(st *SessionState) {
		st.Topic = resp.Topic
		st.Options = slices.Clone(resp.Options)
		st.Notice = domain.Notice{}
	})
}

// SelectOption marks id as the voter's choice. It is ignored while an
// operation is in flight and reports whether the selection was applied.
func (s *Session) SelectOption(id string) bool {
	applied := false
	s.update(func(st *SessionState) {
		if st.Busy {
			return
		}
		st.Selection = id
		st.Notice = domain.Notice{}
		st.Error = ""
		applied = true
	})
	return applied
}

func (s *Session) SubmitVote(ctx context.Context) {
	var optionID string
	s.update(func(st *SessionState) {
		if st.Selection == "" {
			st.Notice = domain.Notice{Text: NoticeSelectFirst, Kind: domain.NoticeWarning}
			return
		}
		optionID = st.Selection
		st.Busy = true
		st.Error = ""
	})
	if optionID == "" {
		return
	}
	defer s.update(func(st *SessionState) { st.Busy = false })

	s.logger.Debug("submitting vote", "option_id", optionID)

	var resp *ports.VoteResponse
	err := invoke(func() (err error) {
		resp, err = s.client.Vote(ctx, ports.VoteRequest{OptionID: optionID})
		if err == nil && resp == nil {
			err = errEmptyResponse
		}
		return err
	})
	if err != nil {
		s.logger.Warn("failed to submit vote", "option_id", optionID, "error", err)
		s.update(func(st *SessionState) {
			st.Error = fmt.Sprintf("failed to submit vote: %v", err)
			st.Notice = domain.Notice{Text: NoticeSubmitFailed, Kind: domain.NoticeWarning}
		})
		return
	}

	if !resp.Success {
		message := resp.Message
		if message == "" {
			message = NoticeVoteFailed
		}
		s.logger.Info("vote rejected", "option_id", optionID, "message", resp.Message)
		s.update(func(st *SessionState) {
			st.Notice = domain.Notice{Text: message, Kind: domain.NoticeWarning}
		})
		return
	}

	s.logger.Info("vote recorded", "option_id", optionID)
	s.update(func(st *SessionState) {
		st.Notice = domain.Notice{Text: NoticeVoteRecorded, Kind: domain.NoticeSuccess}
		st.Selection = ""
	})

	s.LoadResults(ctx)
}

// LoadResults fetches the current tally. It does not take the busy flag, so
// it may run alongside LoadOptions or SubmitVote. Answers to requests older
// than the last applied one are dropped.
func (s *Session) LoadResults(ctx context.Context) {
	var seq uint64
	s.update(func(st *SessionState) {
		s.resultsIssued++
		seq = s.resultsIssued
		st.Error = ""
	})

	s.logger.Debug("loading results", "seq", seq)

	var resp *ports.GetResultsResponse
	err := invoke(func() (err error) {
		resp, err = s.client.GetResults(ctx, ports.GetResultsRequest{})
		if err == nil && resp == nil {
			err = errEmptyResponse
		}
		return err
	})

	stale := false
	s.update(func(st *SessionState) {
		if seq < s.resultsApplied {
			stale = true
			return
		}
		s.resultsApplied = seq
		if err != nil {
			st.Error = fmt.Sprintf("failed to load results: %v", err)
			st.Notice = domain.Notice{Text: NoticeResultsFailed, Kind: domain.NoticeWarning}
			return
		}
		st.Results = slices.Clone(resp.Results)
	})

	switch {
	case stale:
		s.logger.Debug("dropping stale results", "seq", seq)
	case err != nil:
		s.logger.Warn("failed to load results", "seq", seq, "error", err)
	default:
		s.logger.Debug("results loaded", "seq", seq, "results", len(resp.Results))
	}
}

// Retry is the single recovery path: it re-runs the bootstrap.
func (s *Session) Retry(ctx context.Context) {
	s.update(func(st *SessionState) {
		st.Error = ""
		st.Notice = domain.Notice{Text: NoticeReconnecting, Kind: domain.NoticeInfo}
	})
	s.LoadOptions(ctx)
}

func (s *Session) update(fn func(st *SessionState)) {
	s.mu.Lock()
	fn(&s.state)
	s.state.version++
	snapshot := s.state.clone()
	s.mu.Unlock()

	if s.onChange == nil {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if snapshot.version <= s.delivered {
		return
	}
	s.delivered = snapshot.version
	s.onChange(snapshot)
}

// invoke runs a remote call and turns a panic into an error.
func invoke(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("remote call panicked: %v", r)
		}
	}()
	return call()
}
