package tournament

import (
	"context"

	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
)

// Writer persists tournaments keyed by tournament_id. Existing rows are
// refreshed so their status follows the calendar.
type Writer interface {
	UpsertTournaments(ctx context.Context, items []Tournament) (storage.Result, error)
}
