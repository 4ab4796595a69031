package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/golf-ingest/internal/domain/leaderboard"
	"github.com/riskibarqy/golf-ingest/internal/domain/player"
	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
)

func newMockStore(t *testing.T, batchSize int) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewStore(sqlx.NewDb(db, "postgres"), batchSize, logging.NewNop()), mock
}

func testPlayers(ids ...int64) []player.Player {
	out := make([]player.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, player.Player{ID: id, FullName: "Player", Status: player.StatusActive})
	}
	return out
}

func TestStore_UpsertPlayers_IgnoresConflicts(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, 10)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO players (player_id, full_name, country, status) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8) ON CONFLICT (player_id) DO NOTHING",
	)).
		WithArgs(int64(1), "Player", nil, "Active", int64(2), "Player", nil, "Active").
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := store.UpsertPlayers(context.Background(), testPlayers(1, 2))
	if err != nil {
		t.Fatalf("upsert players: %v", err)
	}
	if got != (storage.Result{Written: 1, Duplicates: 1}) {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestStore_UpsertSummaries_MergesOnConflict(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, 10)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO leaderboard (tournament_id, sport, status, winner_id, winning_score, players_count, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) " +
			"ON CONFLICT (tournament_id) DO UPDATE SET sport = EXCLUDED.sport, status = EXCLUDED.status, winner_id = EXCLUDED.winner_id, " +
			"winning_score = EXCLUDED.winning_score, players_count = EXCLUDED.players_count, updated_at = EXCLUDED.updated_at",
	)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := store.UpsertSummaries(context.Background(), []leaderboard.Summary{{TournamentID: 612, Sport: leaderboard.SportGolf, PlayerCount: 90}})
	if err != nil {
		t.Fatalf("upsert summaries: %v", err)
	}
	if got.Written != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestStore_BatchesRows(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, 2)
	for _, affected := range []int64{2, 2, 1} {
		mock.ExpectExec("INSERT INTO players").WillReturnResult(sqlmock.NewResult(0, affected))
	}

	got, err := store.UpsertPlayers(context.Background(), testPlayers(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("upsert players: %v", err)
	}
	if got.Written != 5 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestStore_RowLevelErrorReplaysRows(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, 10)
	mock.ExpectExec("INSERT INTO players").WillReturnError(&pq.Error{Code: "22001", Message: "value too long"})
	mock.ExpectExec("INSERT INTO players").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO players").WillReturnError(&pq.Error{Code: uniqueViolation, Message: "duplicate key"})
	mock.ExpectExec("INSERT INTO players").WillReturnError(&pq.Error{Code: "22001", Message: "value too long"})

	got, err := store.UpsertPlayers(context.Background(), testPlayers(1, 2, 3))
	if err != nil {
		t.Fatalf("upsert players: %v", err)
	}
	if got != (storage.Result{Written: 1, Duplicates: 1, Failed: 1}) {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestStore_ConnectionErrorAborts(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t, 10)
	connErr := errors.New("connection refused")
	mock.ExpectExec("INSERT INTO players").WillReturnError(connErr)

	_, err := store.UpsertPlayers(context.Background(), testPlayers(1, 2))
	if !errors.Is(err, connErr) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestIsRowLevelError(t *testing.T) {
	t.Parallel()

	if !isRowLevelError(&pq.Error{Code: "23503"}) {
		t.Fatalf("foreign key violation should be row level")
	}
	if isRowLevelError(&pq.Error{Code: "08006"}) {
		t.Fatalf("connection failure should not be row level")
	}
	if isRowLevelError(errors.New("plain")) {
		t.Fatalf("non-pq errors should not be row level")
	}
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatalf("23505 should be a unique violation")
	}
}
