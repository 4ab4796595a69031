package leaderboard

import (
	"context"

	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
)

// Writer persists one summary per tournament_id, refreshing existing rows.
type Writer interface {
	UpsertSummaries(ctx context.Context, items []Summary) (storage.Result, error)
}
