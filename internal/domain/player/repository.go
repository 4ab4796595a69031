package player

import (
	"context"
	"strconv"

	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
)

// Writer persists players keyed by player_id.
type Writer interface {
	UpsertPlayers(ctx context.Context, items []Player) (storage.Result, error)
}

func keyOf(id int64) string {
	return strconv.FormatInt(id, 10)
}
