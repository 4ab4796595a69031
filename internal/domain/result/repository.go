package result

import (
	"context"

	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
)

// Writer persists leaderboard detail rows. Each table has its own conflict
// target: (tournament_id, player_id), (player_tournament_id, round_number)
// and (player_round_id, hole_number).
type Writer interface {
	UpsertResults(ctx context.Context, items []Result) (storage.Result, error)
	UpsertRounds(ctx context.Context, items []Round) (storage.Result, error)
	UpsertHoles(ctx context.Context, items []Hole) (storage.Result, error)
}
