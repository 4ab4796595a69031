package memory

import (
	"context"
	"strconv"

	"github.com/riskibarqy/golf-ingest/internal/domain/leaderboard"
	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
)

type LeaderboardRepository struct {
	summaries *table[leaderboard.Summary]
}

func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{summaries: newTable[leaderboard.Summary](storage.Leaderboard.Resolution)}
}

func (r *LeaderboardRepository) UpsertSummaries(ctx context.Context, items []leaderboard.Summary) (storage.Result, error) {
	return r.summaries.upsert(ctx, items)
}

func (r *LeaderboardRepository) GetByTournamentID(id int64) (leaderboard.Summary, bool) {
	return r.summaries.get(strconv.FormatInt(id, 10))
}

func (r *LeaderboardRepository) List() []leaderboard.Summary {
	return r.summaries.list()
}
