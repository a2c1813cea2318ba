package terminal

import (
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

func render(t *testing.T, state services.SessionState) string {
	t.Helper()
	return pterm.RemoveColorFromString(NewRenderer().Render(state))
}

func TestRenderer_LoadingTopic(t *testing.T) {
	out := render(t, services.SessionState{Busy: true})

	assert.Contains(t, out, "loading topic...")
	assert.Contains(t, out, "working...")
	assert.NotContains(t, out, "Results")
}

func TestRenderer_ErrorHidesNotice(t *testing.T) {
	out := render(t, services.SessionState{
		Error:  "failed to load voting options: connection refused",
		Notice: domain.Notice{Text: "could not load voting options", Kind: domain.NoticeWarning},
	})

	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "failed to load voting options: connection refused")
	assert.Contains(t, out, "retry")
	assert.NotContains(t, out, "could not load voting options,")
	assert.NotContains(t, out, "! ")
}

func TestRenderer_NoticeKinds(t *testing.T) {
	testCases := []struct {
		kind   domain.NoticeKind
		prefix string
	}{
		{kind: domain.NoticeSuccess, prefix: "✔ "},
		{kind: domain.NoticeWarning, prefix: "! "},
		{kind: domain.NoticeInfo, prefix: "i "},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			out := render(t, services.SessionState{
				Topic:  "Favorite language?",
				Notice: domain.Notice{Text: "hello", Kind: tc.kind},
			})
			assert.Contains(t, out, tc.prefix+"hello")
		})
	}
}

func TestRenderer_OptionsMarkSelection(t *testing.T) {
	out := render(t, services.SessionState{
		Topic:     "Favorite language?",
		Options:   []domain.Option{{ID: "go", Text: "Go"}, {ID: "rs", Text: "Rust"}},
		Selection: "rs",
	})

	assert.Contains(t, out, "○ Go")
	assert.Contains(t, out, "● Rust")
}

func TestRenderer_ResultsSortedWithLeader(t *testing.T) {
	out := render(t, services.SessionState{
		Topic: "Favorite language?",
		Results: []domain.Result{
			{OptionID: "go", OptionText: "Go", Votes: 3},
			{OptionID: "rs", OptionText: "Rust", Votes: 4},
		},
	})

	rustLine := lineContaining(t, out, "Rust")
	goLine := lineContaining(t, out, "Go ")
	assert.Less(t, strings.Index(out, rustLine), strings.Index(out, goLine))

	assert.Contains(t, rustLine, "leading")
	assert.NotContains(t, goLine, "leading")
	assert.Equal(t, 30, strings.Count(rustLine, "█"))
	assert.Equal(t, 23, strings.Count(goLine, "█"))
	assert.Contains(t, out, "Total votes: 7")
}

func TestRenderer_ZeroVotesNoLeader(t *testing.T) {
	out := render(t, services.SessionState{
		Topic: "Favorite language?",
		Results: []domain.Result{
			{OptionID: "go", OptionText: "Go", Votes: 0},
			{OptionID: "rs", OptionText: "Rust", Votes: 0},
		},
	})

	assert.NotContains(t, out, "leading")
	assert.Equal(t, 4, strings.Count(out, "█"))
	assert.Contains(t, out, "Total votes: 0")
}

func lineContaining(t *testing.T, out, needle string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, needle) {
			return line
		}
	}
	require.Failf(t, "line not found", "no line contains %q", needle)
	return ""
}

func TestRenderer_LargeCountsGrouped(t *testing.T) {
	out := render(t, services.SessionState{
		Topic: "Favorite language?",
		Results: []domain.Result{
			{OptionID: "go", OptionText: "Go", Votes: 1200},
			{OptionID: "rs", OptionText: "Rust", Votes: 34},
		},
	})

	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "Total votes: 1,234")
}
