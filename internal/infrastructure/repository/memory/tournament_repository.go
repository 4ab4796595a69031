package memory

import (
	"context"
	"strconv"

	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
)

type TournamentRepository struct {
	tournaments *table[tournament.Tournament]
}

func NewTournamentRepository() *TournamentRepository {
	return &TournamentRepository{tournaments: newTable[tournament.Tournament](storage.Tournaments.Resolution)}
}

func (r *TournamentRepository) UpsertTournaments(ctx context.Context, items []tournament.Tournament) (storage.Result, error) {
	return r.tournaments.upsert(ctx, items)
}

func (r *TournamentRepository) GetByID(id int64) (tournament.Tournament, bool) {
	return r.tournaments.get(strconv.FormatInt(id, 10))
}

func (r *TournamentRepository) List() []tournament.Tournament {
	return r.tournaments.list()
}
