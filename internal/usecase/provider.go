package usecase

import (
	"context"
	"time"
)

// GolfDataProvider is the read side of the pipeline.
type GolfDataProvider interface {
	FetchPlayers(ctx context.Context) ([]ExternalPlayer, error)
	FetchTournaments(ctx context.Context, year int) ([]ExternalTournament, error)
	// FetchLeaderboard reads the final leaderboard when final is true and the
	// live one otherwise.
	FetchLeaderboard(ctx context.Context, tournamentID int64, final bool) (ExternalLeaderboard, error)
}

type ExternalPlayer struct {
	ID        int64
	FirstName string
	LastName  string
	Country   string
}

type ExternalTournament struct {
	ID        int64
	Name      string
	Tour      string
	Season    int
	StartDate *time.Time
	EndDate   *time.Time
	Venue     string
	Location  string
	City      string
	State     string
	Country   string
	Par       *int
	Yards     *int
	Purse     *float64
	IsOver    bool
	Canceled  bool
}

type ExternalLeaderboard struct {
	Tournament ExternalTournament
	Players    []ExternalLeaderboardPlayer
}

type ExternalLeaderboardPlayer struct {
	PlayerTournamentID int64
	PlayerID           int64
	Name               string
	Country            string
	// Position is the provider's display position ("1", "T3", "CUT"), if any.
	Position         string
	Rank             *int
	TotalScore       *float64
	TotalStrokes     *int
	Earnings         *float64
	FedExPoints      *float64
	FantasyPoints    *float64
	MadeCut          bool
	Win              bool
	TournamentStatus string
	// RoundScores are the top-level Round1..Round4 values.
	RoundScores [4]*float64
	Rounds      []ExternalRound
}

type ExternalRound struct {
	PlayerRoundID           int64
	Number                  int
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
	Holes                   []ExternalHole
}

type ExternalHole struct {
	Number               int
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
