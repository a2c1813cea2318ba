package terminal

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/services"
)

const (
	defaultBarCells = 30
	loadingTopic    = "loading topic..."
	retryHint       = "choose \"retry\" to reconnect"
	busyText        = "working..."
	leaderBadge     = "leading"
)

// Renderer draws a session snapshot as terminal text. It holds no state of
// its own; every call renders from scratch.
type Renderer struct {
	// width of a full bar in cells
	BarCells int
}

func NewRenderer() *Renderer {
	return &Renderer{BarCells: defaultBarCells}
}

func (r *Renderer) Render(state services.SessionState) string {
	var b strings.Builder

	b.WriteString(r.header(state))
	b.WriteString("\n")

	if state.Error != "" {
		b.WriteString(r.errorPanel(state.Error))
		b.WriteString("\n")
	}
	if state.Busy {
		b.WriteString(pterm.Gray(busyText))
		b.WriteString("\n")
	}
	if notice := r.notice(state.VisibleNotice()); notice != "" {
		b.WriteString(notice)
		b.WriteString("\n")
	}

	if len(state.Options) > 0 {
		b.WriteString("\n")
		b.WriteString(r.options(state))
	}
	if len(state.Results) > 0 {
		b.WriteString("\n")
		b.WriteString(r.results(services.BuildView(state)))
	}

	return b.String()
}

func (r *Renderer) header(state services.SessionState) string {
	if state.Topic == "" {
		return pterm.Gray(loadingTopic)
	}
	return pterm.Bold.Sprint(state.Topic)
}

func (r *Renderer) errorPanel(message string) string {
	box := pterm.DefaultBox.
		WithHorizontalPadding(2).
		WithTitle(pterm.LightRed("|ERROR|")).
		WithTitleTopLeft()
	return box.Sprintf("%s\n%s", message, pterm.Gray(retryHint))
}

// notice styles a notice by kind. Empty notices render nothing.
func (r *Renderer) notice(n domain.Notice) string {
	if n.IsZero() {
		return ""
	}
	switch n.Kind {
	case domain.NoticeSuccess:
		return pterm.LightGreen("✔ " + n.Text)
	case domain.NoticeWarning:
		return pterm.LightYellow("! " + n.Text)
	default:
		return pterm.LightCyan("i " + n.Text)
	}
}

func (r *Renderer) options(state services.SessionState) string {
	var b strings.Builder
	b.WriteString(pterm.Bold.Sprint("Options"))
	b.WriteString("\n")
	for _, opt := range state.Options {
		marker := "○"
		text := opt.Text
		if opt.ID == state.Selection {
			marker = pterm.LightCyan("●")
			text = pterm.LightCyan(text)
		}
		fmt.Fprintf(&b, "  %s %s\n", marker, text)
	}
	return b.String()
}

func (r *Renderer) results(view services.View) string {
	width := 0
	for _, row := range view.Rows {
		width = max(width, len([]rune(row.OptionText)))
	}

	var b strings.Builder
	b.WriteString(pterm.Bold.Sprint("Results"))
	b.WriteString("\n")
	for _, row := range view.Rows {
		text := row.OptionText
		padding := strings.Repeat(" ", width-len([]rune(text)))
		bar := strings.Repeat("█", r.cells(row.BarWidth))

		line := fmt.Sprintf("  %s%s  %s %s", text, padding, bar, humanize.Comma(row.Votes))
		if row.Leader {
			line = pterm.LightGreen(line) + " " + pterm.BgGreen.Sprint(pterm.Black(" "+leaderBadge+" "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal votes: %s\n", humanize.Comma(view.TotalVotes))
	return b.String()
}

// cells converts a bar width percentage into a count of terminal cells.
// Any non-zero width gets at least one cell.
func (r *Renderer) cells(percent float64) int {
	full := r.BarCells
	if full <= 0 {
		full = defaultBarCells
	}
	return max(1, int(math.Round(percent/100*float64(full))))
}
