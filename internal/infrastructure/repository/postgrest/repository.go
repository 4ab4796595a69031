package postgrest

import (
	"context"

	"github.com/riskibarqy/golf-ingest/internal/domain/leaderboard"
	"github.com/riskibarqy/golf-ingest/internal/domain/player"
	"github.com/riskibarqy/golf-ingest/internal/domain/result"
	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
	"github.com/riskibarqy/golf-ingest/internal/infrastructure/repository/schema"
)

type PlayerRepository struct {
	client *Client
}

func NewPlayerRepository(client *Client) *PlayerRepository {
	return &PlayerRepository{client: client}
}

func (r *PlayerRepository) UpsertPlayers(ctx context.Context, items []player.Player) (storage.Result, error) {
	return insertRows(ctx, r.client, storage.Players, schema.PlayerRows(items), keysOf(items))
}

type TournamentRepository struct {
	client *Client
}

func NewTournamentRepository(client *Client) *TournamentRepository {
	return &TournamentRepository{client: client}
}

func (r *TournamentRepository) UpsertTournaments(ctx context.Context, items []tournament.Tournament) (storage.Result, error) {
	return insertRows(ctx, r.client, storage.Tournaments, schema.TournamentRows(items, r.client.now()), keysOf(items))
}

type ResultRepository struct {
	client *Client
}

func NewResultRepository(client *Client) *ResultRepository {
	return &ResultRepository{client: client}
}

func (r *ResultRepository) UpsertResults(ctx context.Context, items []result.Result) (storage.Result, error) {
	return insertRows(ctx, r.client, storage.Results, schema.ResultRows(items), keysOf(items))
}

func (r *ResultRepository) UpsertRounds(ctx context.Context, items []result.Round) (storage.Result, error) {
	return insertRows(ctx, r.client, storage.PlayerRounds, schema.RoundRows(items), keysOf(items))
}

func (r *ResultRepository) UpsertHoles(ctx context.Context, items []result.Hole) (storage.Result, error) {
	return insertRows(ctx, r.client, storage.PlayerHoles, schema.HoleRows(items), keysOf(items))
}

type LeaderboardRepository struct {
	client *Client
}

func NewLeaderboardRepository(client *Client) *LeaderboardRepository {
	return &LeaderboardRepository{client: client}
}

func (r *LeaderboardRepository) UpsertSummaries(ctx context.Context, items []leaderboard.Summary) (storage.Result, error) {
	return insertRows(ctx, r.client, storage.Leaderboard, schema.LeaderboardRows(items), keysOf(items))
}

func keysOf[T interface{ Key() string }](items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Key())
	}
	return out
}
