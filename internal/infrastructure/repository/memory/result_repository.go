package memory

import (
	"context"

	"github.com/riskibarqy/golf-ingest/internal/domain/result"
	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
)

type ResultRepository struct {
	results *table[result.Result]
	rounds  *table[result.Round]
	holes   *table[result.Hole]
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{
		results: newTable[result.Result](storage.Results.Resolution),
		rounds:  newTable[result.Round](storage.PlayerRounds.Resolution),
		holes:   newTable[result.Hole](storage.PlayerHoles.Resolution),
	}
}

func (r *ResultRepository) UpsertResults(ctx context.Context, items []result.Result) (storage.Result, error) {
	return r.results.upsert(ctx, items)
}

func (r *ResultRepository) UpsertRounds(ctx context.Context, items []result.Round) (storage.Result, error) {
	return r.rounds.upsert(ctx, items)
}

func (r *ResultRepository) UpsertHoles(ctx context.Context, items []result.Hole) (storage.Result, error) {
	return r.holes.upsert(ctx, items)
}

func (r *ResultRepository) Results() []result.Result { return r.results.list() }

func (r *ResultRepository) Rounds() []result.Round { return r.rounds.list() }

func (r *ResultRepository) Holes() []result.Hole { return r.holes.list() }
