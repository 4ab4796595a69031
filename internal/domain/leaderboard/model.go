package leaderboard

import (
	"strconv"
	"time"

	"github.com/riskibarqy/golf-ingest/internal/domain/result"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
)

const SportGolf = "golf"

// Summary is the one-row digest of a tournament leaderboard.
type Summary struct {
	TournamentID int64  `validate:"gt=0"`
	Sport        string `validate:"required"`
	Status       tournament.Status
	WinnerID     *int64
	WinningScore *float64
	PlayerCount  int `validate:"gte=0"`
	UpdatedAt    time.Time
}

func (s Summary) Key() string {
	return strconv.FormatInt(s.TournamentID, 10)
}

// Summarize picks the winner as the player flagged Win, otherwise the lowest
// standing, otherwise the first entry. Ties keep provider order.
func Summarize(tournamentID int64, status tournament.Status, entries []result.Result, now time.Time) Summary {
	summary := Summary{
		TournamentID: tournamentID,
		Sport:        SportGolf,
		Status:       status,
		PlayerCount:  len(entries),
		UpdatedAt:    now.UTC(),
	}
	if len(entries) == 0 {
		return summary
	}

	winner := pickWinner(entries)
	winnerID := winner.PlayerID
	summary.WinnerID = &winnerID
	if winner.TotalScore != nil {
		score := *winner.TotalScore
		summary.WinningScore = &score
	}
	return summary
}

func pickWinner(entries []result.Result) result.Result {
	for _, entry := range entries {
		if entry.Win {
			return entry
		}
	}

	best := -1
	bestStanding := 0
	for idx, entry := range entries {
		standing, ok := entry.Standing()
		if !ok {
			continue
		}
		if best < 0 || standing < bestStanding {
			best = idx
			bestStanding = standing
		}
	}
	if best < 0 {
		return entries[0]
	}
	return entries[best]
}
