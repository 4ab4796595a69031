package memory

import (
	"context"

	"github.com/riskibarqy/golf-ingest/internal/domain/player"
	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
)

type PlayerRepository struct {
	players *table[player.Player]
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{players: newTable[player.Player](storage.Players.Resolution)}
}

func (r *PlayerRepository) UpsertPlayers(ctx context.Context, items []player.Player) (storage.Result, error) {
	return r.players.upsert(ctx, items)
}

func (r *PlayerRepository) List() []player.Player {
	return r.players.list()
}
