package memory

import "github.com/riskibarqy/golf-ingest/internal/domain/storage"

// Store bundles the in-memory writers for dry runs and tests.
type Store struct {
	Players      *PlayerRepository
	Tournaments  *TournamentRepository
	Results      *ResultRepository
	Leaderboards *LeaderboardRepository
}

func NewStore() *Store {
	return &Store{
		Players:      NewPlayerRepository(),
		Tournaments:  NewTournamentRepository(),
		Results:      NewResultRepository(),
		Leaderboards: NewLeaderboardRepository(),
	}
}

// Counts reports row counts keyed by storage table name.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		storage.Players.Name:      s.Players.players.len(),
		storage.Tournaments.Name:  s.Tournaments.tournaments.len(),
		storage.Results.Name:      s.Results.results.len(),
		storage.PlayerRounds.Name: s.Results.rounds.len(),
		storage.PlayerHoles.Name:  s.Results.holes.len(),
		storage.Leaderboard.Name:  s.Leaderboards.summaries.len(),
	}
}
