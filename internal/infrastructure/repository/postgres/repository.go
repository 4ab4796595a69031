package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-ingest/internal/domain/leaderboard"
	"github.com/riskibarqy/golf-ingest/internal/domain/player"
	"github.com/riskibarqy/golf-ingest/internal/domain/result"
	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
	"github.com/riskibarqy/golf-ingest/internal/infrastructure/repository/schema"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	qb "github.com/riskibarqy/golf-ingest/internal/platform/querybuilder"
)

const defaultBatchSize = 100

// Store writes every table through one sqlx handle with
// INSERT ... ON CONFLICT statements.
type Store struct {
	db        *sqlx.DB
	batchSize int
	logger    *logging.Logger
	now       func() time.Time
}

func NewStore(db *sqlx.DB, batchSize int, logger *logging.Logger) *Store {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		db:        db,
		batchSize: batchSize,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) UpsertPlayers(ctx context.Context, items []player.Player) (storage.Result, error) {
	return insertRows(ctx, s, storage.Players, schema.PlayerRows(items), keysOf(items))
}

func (s *Store) UpsertTournaments(ctx context.Context, items []tournament.Tournament) (storage.Result, error) {
	return insertRows(ctx, s, storage.Tournaments, schema.TournamentRows(items, s.now()), keysOf(items))
}

func (s *Store) UpsertResults(ctx context.Context, items []result.Result) (storage.Result, error) {
	return insertRows(ctx, s, storage.Results, schema.ResultRows(items), keysOf(items))
}

func (s *Store) UpsertRounds(ctx context.Context, items []result.Round) (storage.Result, error) {
	return insertRows(ctx, s, storage.PlayerRounds, schema.RoundRows(items), keysOf(items))
}

func (s *Store) UpsertHoles(ctx context.Context, items []result.Hole) (storage.Result, error) {
	return insertRows(ctx, s, storage.PlayerHoles, schema.HoleRows(items), keysOf(items))
}

func (s *Store) UpsertSummaries(ctx context.Context, items []leaderboard.Summary) (storage.Result, error) {
	return insertRows(ctx, s, storage.Leaderboard, schema.LeaderboardRows(items), keysOf(items))
}

// insertRows writes rows in multi-row statements. Rows affected tells
// inserted rows apart from ignored conflicts; merged rows count as written.
// A batch failing on row content is replayed row by row.
func insertRows[T any](ctx context.Context, s *Store, table storage.Table, rows []T, keys []string) (storage.Result, error) {
	var out storage.Result
	for start := 0; start < len(rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		end := min(start+s.batchSize, len(rows))

		res, err := execBatch(ctx, s.db, table, rows[start:end])
		if err == nil {
			out.Add(res)
			continue
		}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if !isRowLevelError(err) {
			return out, fmt.Errorf("insert %s batch: %w", table.Name, err)
		}

		s.logger.WarnContext(ctx, "postgres batch rejected, retrying row by row", "table", table.Name, "rows", end-start, "error", err)
		for idx := start; idx < end; idx++ {
			res, err := execBatch(ctx, s.db, table, rows[idx:idx+1])
			switch {
			case err == nil:
				out.Add(res)
			case isUniqueViolation(err):
				out.Duplicates++
			case isRowLevelError(err):
				out.Failed++
				s.logger.WarnContext(ctx, "postgres row rejected", "table", table.Name, "key", keyAt(keys, idx), "error", err)
			default:
				return out, fmt.Errorf("insert %s row %s: %w", table.Name, keyAt(keys, idx), err)
			}
		}
	}
	return out, nil
}

func execBatch[T any](ctx context.Context, db *sqlx.DB, table storage.Table, rows []T) (storage.Result, error) {
	builder, err := qb.InsertModels(table.Name, rows)
	if err != nil {
		return storage.Result{}, fmt.Errorf("build insert %s query: %w", table.Name, err)
	}
	if table.Resolution == storage.MergeDuplicates {
		builder.OnConflictDoUpdate(table.ConflictColumns...)
	} else {
		builder.OnConflictDoNothing(table.ConflictColumns...)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return storage.Result{}, fmt.Errorf("build insert %s query: %w", table.Name, err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Result{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storage.Result{}, fmt.Errorf("read rows affected: %w", err)
	}

	sent := len(rows)
	written := min(int(affected), sent)
	if table.Resolution == storage.MergeDuplicates {
		written = sent
	}
	return storage.Result{Written: written, Duplicates: sent - written}, nil
}

func keysOf[T interface{ Key() string }](items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Key())
	}
	return out
}

func keyAt(keys []string, idx int) string {
	if idx < 0 || idx >= len(keys) {
		return strconv.Itoa(idx)
	}
	return keys[idx]
}
