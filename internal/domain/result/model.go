package result

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Result is one player's line on a tournament leaderboard.
type Result struct {
	TournamentID        int64 `validate:"gt=0"`
	PlayerID            int64 `validate:"gt=0"`
	PlayerTournamentID  int64
	Name                string
	Position            string
	Rank                *int
	TotalScore          *float64
	TotalStrokes        *int
	Earnings            *float64
	FedExPoints         *float64
	FantasyPoints       *float64
	MadeCut             bool
	Win                 bool
	PositionDescription string
	// RoundScores holds the provider's Round1..Round4 totals as reported.
	RoundScores [4]*float64
	Rounds      []Round
	CreatedAt   time.Time
}

func (r Result) Key() string {
	return fmt.Sprintf("%d:%d", r.TournamentID, r.PlayerID)
}

// RoundScore returns the score of round n (1-based) when the player has one.
// The provider's round total wins over the per-round detail.
func (r Result) RoundScore(n int) *float64 {
	if n >= 1 && n <= len(r.RoundScores) && r.RoundScores[n-1] != nil {
		score := *r.RoundScores[n-1]
		return &score
	}
	for idx := range r.Rounds {
		if r.Rounds[idx].Number == n && r.Rounds[idx].Score != nil {
			score := *r.Rounds[idx].Score
			return &score
		}
	}
	return nil
}

// Standing returns the numeric leaderboard place, preferring Rank and
// falling back to Position ("T3" -> 3). ok is false when neither is usable.
func (r Result) Standing() (int, bool) {
	if r.Rank != nil && *r.Rank > 0 {
		return *r.Rank, true
	}
	return ParsePosition(r.Position)
}

func ParsePosition(raw string) (int, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "T")
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Round is one player's 18 holes within a tournament.
type Round struct {
	PlayerRoundID           int64
	PlayerTournamentID      int64 `validate:"gt=0"`
	PlayerID                int64
	Number                  int `validate:"gt=0"`
	Par                     *int
	Score                   *float64
	TeeTime                 *time.Time
	BogeyFree               bool
	Birdies                 *int
	Pars                    *int
	Bogeys                  *int
	DoubleBogeys            *int
	WorseThanDoubleBogey    *int
	TripleBogeys            *int
	HoleInOnes              *int
	BounceBackCount         *int
	LongestBirdieStreak     *int
	IncludesFivePlusBirdies bool
	Holes                   []Hole
	CreatedAt               time.Time
}

func (r Round) Key() string {
	return fmt.Sprintf("%d:%d", r.PlayerTournamentID, r.Number)
}

// Hole is a single hole played within a round.
type Hole struct {
	PlayerRoundID        int64 `validate:"gt=0"`
	PlayerID             int64
	Number               int `validate:"gte=1,lte=18"`
	Par                  *int
	Score                *int
	ToPar                *int
	IsPar                bool
	Birdie               bool
	Bogey                bool
	DoubleBogey          bool
	WorseThanDoubleBogey bool
	HoleInOne            bool
	Eagle                bool
	DoubleEagle          bool
}

func (h Hole) Key() string {
	return fmt.Sprintf("%d:%d", h.PlayerRoundID, h.Number)
}
