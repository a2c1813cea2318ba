package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

const (
	actionSelect  = "Select an option"
	actionSubmit  = "Submit vote"
	actionRefresh = "Refresh results"
	actionRetry   = "Retry"
	actionQuit    = "Quit"
)

func runInteractive(ctx context.Context, session *services.Session) error {
	withSpinner("loading voting options...", func() { session.Start(ctx) })

	for {
		state := session.State()
		pterm.Println(renderer.Render(state))

		choice, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("What next?").
			WithOptions(availableActions(state)).
			Show()
		if err != nil {
			return err
		}

		switch choice {
		case actionSelect:
			id, err := chooseOption(state.Options)
			if err != nil {
				return err
			}
			session.SelectOption(id)
		case actionSubmit:
			withSpinner("submitting vote...", func() { session.SubmitVote(ctx) })
		case actionRefresh:
			withSpinner("loading results...", func() { session.LoadResults(ctx) })
		case actionRetry:
			withSpinner("reconnecting...", func() { session.Retry(ctx) })
		case actionQuit:
			if session.State().Error != "" {
				return errSessionFailed
			}
			return nil
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// availableActions lists only the intents the session allows right now.
func availableActions(state services.SessionState) []string {
	controls := state.Controls()

	var actions []string
	if controls.CanSelect && len(state.Options) > 0 {
		actions = append(actions, actionSelect)
	}
	if controls.CanSubmit {
		actions = append(actions, actionSubmit)
	}
	if controls.CanRefresh {
		actions = append(actions, actionRefresh)
	}
	if controls.CanRetry {
		actions = append(actions, actionRetry)
	}
	return append(actions, actionQuit)
}

func chooseOption(options []domain.Option) (string, error) {
	labels, index := optionLabels(options)
	if len(labels) == 0 {
		return "", errors.New("no options to choose from")
	}

	label, err := pterm.DefaultInteractiveSelect.
		WithDefaultText("Your choice").
		WithOptions(labels).
		Show()
	if err != nil {
		return "", err
	}
	i, ok := index[label]
	if !ok {
		return "", fmt.Errorf("unknown choice %q", label)
	}
	return options[i].ID, nil
}

// optionLabels builds one unique select label per option and maps each label
// back to the option's index. Duplicate texts get their id appended, and a
// label that is still taken gets a counter.
func optionLabels(options []domain.Option) ([]string, map[string]int) {
	seen := make(map[string]int, len(options))
	for _, opt := range options {
		seen[opt.Text]++
	}

	labels := make([]string, 0, len(options))
	index := make(map[string]int, len(options))
	for i, opt := range options {
		label := opt.Text
		if seen[opt.Text] > 1 || label == "" {
			label = fmt.Sprintf("%s (%s)", opt.Text, opt.ID)
		}
		base := label
		for n := 2; ; n++ {
			if _, taken := index[label]; !taken {
				break
			}
			label = fmt.Sprintf("%s #%d", base, n)
		}
		labels = append(labels, label)
		index[label] = i
	}
	return labels, index
}
