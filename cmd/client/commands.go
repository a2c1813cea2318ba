package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

var errOptionRequired = errors.New("an option id is required")

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show the poll topic and its options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOptions(cmd.Context(), votingClient)
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote <option-id>",
	Short: "Cast a vote for an option and show the results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVote(cmd.Context(), votingClient, args[0])
	},
}

var watchInterval time.Duration

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the current results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResults(cmd.Context(), votingClient, watchInterval)
	},
}

func init() {
	resultsCmd.Flags().DurationVarP(&watchInterval, "watch", "w", 0, "refresh the results every interval until interrupted")

	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(resultsCmd)
}

func runOptions(ctx context.Context, client ports.VotingService) error {
	session := newSession(client)
	withSpinner("loading voting options...", func() { session.Start(ctx) })
	return printState(session.State())
}

// runVote fails unless the backend recorded the vote.
func runVote(ctx context.Context, client ports.VotingService, optionID string) error {
	optionID = strings.TrimSpace(optionID)
	if optionID == "" {
		return errOptionRequired
	}

	session := newSession(client)
	withSpinner("loading voting options...", func() { session.Start(ctx) })
	if session.State().Error != "" {
		return printState(session.State())
	}

	if !session.SelectOption(optionID) {
		return fmt.Errorf("could not select option %q", optionID)
	}
	withSpinner("submitting vote...", func() { session.SubmitVote(ctx) })

	state := session.State()
	if err := printState(state); err != nil {
		return err
	}
	if state.Notice.Kind != domain.NoticeSuccess {
		return fmt.Errorf("vote for %q was not recorded: %s", optionID, state.Notice.Text)
	}
	return nil
}

func runResults(ctx context.Context, client ports.VotingService, interval time.Duration) error {
	if interval > 0 {
		return watchResults(ctx, client, interval)
	}

	session := newSession(client)
	withSpinner("loading results...", func() { startResults(ctx, session) })
	return printState(session.State())
}

// startResults bootstraps the session and loads the results. A failed
// bootstrap leaves the error in place: only Retry may clear it.
func startResults(ctx context.Context, session *services.Session) {
	session.Start(ctx)
	if session.Controls().CanRefresh {
		session.LoadResults(ctx)
	}
}

// refreshResults runs Retry while an error is active, then reloads the results.
func refreshResults(ctx context.Context, session *services.Session) {
	if session.Controls().CanRetry {
		session.Retry(ctx)
	}
	if session.Controls().CanRefresh {
		session.LoadResults(ctx)
	}
}

// watchResults redraws on every session change and refreshes every interval
// until ctx is done. It fails when the last refresh that ran to completion
// left the session in an error state.
func watchResults(ctx context.Context, client ports.VotingService, interval time.Duration) error {
	area, err := pterm.DefaultArea.Start(renderer.Render(services.SessionState{}))
	if err != nil {
		return err
	}
	defer area.Stop()

	session := newSession(client, services.WithOnChange(func(state services.SessionState) {
		area.Update(renderer.Render(state))
	}))

	failed := false
	settle := func() {
		if ctx.Err() == nil {
			failed = session.State().Error != ""
		}
	}

	startResults(ctx, session)
	settle()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if failed {
				return errSessionFailed
			}
			return nil
		case <-ticker.C:
		}
		refreshResults(ctx, session)
		settle()
	}
}

func printState(state services.SessionState) error {
	pterm.Println(renderer.Render(state))
	if state.Error != "" {
		return errSessionFailed
	}
	return nil
}

func withSpinner(text string, fn func()) {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	fn()
	if spinner != nil {
		spinner.Stop()
	}
}
