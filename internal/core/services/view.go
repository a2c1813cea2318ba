package services

import (
	"slices"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

const minBarWidthPercent = 5.0

// ResultRow is one line of the results panel.
type ResultRow struct {
	domain.Result
	Leader   bool
	BarWidth float64
}

// View holds the display facts derived from a SessionState. It is rebuilt on
// every render and never stored back into the session.
type View struct {
	Rows       []ResultRow
	LeaderID   string
	TotalVotes int64
}

func BuildView(state SessionState) View {
	sorted := SortedResults(state.Results)
	leader, _ := LeaderID(sorted)
	most := maxVotes(sorted)

	rows := make([]ResultRow, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, ResultRow{
			Result:   r,
			Leader:   leader != "" && r.OptionID == leader,
			BarWidth: barWidth(r.Votes, most),
		})
	}

	return View{
		Rows:       rows,
		LeaderID:   leader,
		TotalVotes: TotalVotes(sorted),
	}
}

// SortedResults orders results by votes, most first. Equal counts keep their
// input order.
func SortedResults(results []domain.Result) []domain.Result {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b domain.Result) int {
		switch {
		case a.Votes > b.Votes:
			return -1
		case a.Votes < b.Votes:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

// LeaderID reports the option with the most votes. There is no leader while
// every option is at zero.
func LeaderID(results []domain.Result) (string, bool) {
	sorted := SortedResults(results)
	if len(sorted) == 0 || sorted[0].Votes <= 0 {
		return "", false
	}
	return sorted[0].OptionID, true
}

func TotalVotes(results []domain.Result) int64 {
	var total int64
	for _, r := range results {
		total += r.Votes
	}
	return total
}

// BarWidthPercent scales r against the largest count in results. Every bar
// is at least 5% wide so zero counts stay visible.
func BarWidthPercent(r domain.Result, results []domain.Result) float64 {
	return barWidth(r.Votes, maxVotes(results))
}

func barWidth(votes, most int64) float64 {
	return max(minBarWidthPercent, float64(votes)/float64(max(1, most))*100)
}

func maxVotes(results []domain.Result) int64 {
	var most int64
	for _, r := range results {
		most = max(most, r.Votes)
	}
	return most
}
