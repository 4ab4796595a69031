package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
	"github.com/riskibarqy/golf-ingest/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/golf-ingest/internal/mocks/domain/player"
	tournamentmock "github.com/riskibarqy/golf-ingest/internal/mocks/domain/tournament"
	"github.com/stretchr/testify/mock"
)

type stubGolfProvider struct {
	players      []ExternalPlayer
	playersErr   error
	tournaments  map[int][]ExternalTournament
	yearErrs     map[int]error
	boards       map[int64]ExternalLeaderboard
	boardErrs    map[int64]error
	mu           sync.Mutex
	finalByBoard map[int64]bool
}

func (s *stubGolfProvider) FetchPlayers(context.Context) ([]ExternalPlayer, error) {
	return s.players, s.playersErr
}

func (s *stubGolfProvider) FetchTournaments(_ context.Context, year int) ([]ExternalTournament, error) {
	if err := s.yearErrs[year]; err != nil {
		return nil, err
	}
	return s.tournaments[year], nil
}

func (s *stubGolfProvider) FetchLeaderboard(_ context.Context, tournamentID int64, final bool) (ExternalLeaderboard, error) {
	s.mu.Lock()
	if s.finalByBoard == nil {
		s.finalByBoard = make(map[int64]bool)
	}
	s.finalByBoard[tournamentID] = final
	s.mu.Unlock()

	if err := s.boardErrs[tournamentID]; err != nil {
		return ExternalLeaderboard{}, err
	}
	return s.boards[tournamentID], nil
}

func date(year int, month time.Month, day int) *time.Time {
	value := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &value
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func fixtureProvider() *stubGolfProvider {
	return &stubGolfProvider{
		players: []ExternalPlayer{
			{ID: 1, FirstName: "Scottie", LastName: "Scheffler", Country: "USA"},
			{ID: 2, FirstName: "Rory", LastName: "McIlroy", Country: "NIR"},
			{ID: 3, FirstName: "Ludvig", LastName: "Aberg", Country: "SWE"},
		},
		tournaments: map[int][]ExternalTournament{
			2026: {
				{ID: 100, Name: "Masters", StartDate: date(2026, 4, 9), EndDate: date(2026, 4, 12), IsOver: true},
				{ID: 101, Name: "US Open", StartDate: date(2026, 6, 18), EndDate: date(2026, 6, 21)},
				{ID: 102, Name: "Open Championship", StartDate: date(2026, 7, 16), EndDate: date(2026, 7, 19)},
			},
		},
		boards: map[int64]ExternalLeaderboard{
			100: {Players: []ExternalLeaderboardPlayer{
				{
					PlayerTournamentID: 9001, PlayerID: 2, Rank: intPtr(2), TotalScore: floatPtr(-9),
					Rounds: []ExternalRound{{
						PlayerRoundID: 7001, Number: 1, Score: floatPtr(70),
						Holes: []ExternalHole{{Number: 1, Par: intPtr(4), Score: intPtr(4), IsPar: true}},
					}},
				},
				{
					PlayerTournamentID: 9000, PlayerID: 1, Rank: intPtr(1), TotalScore: floatPtr(-11), Win: true,
					Rounds: []ExternalRound{
						{PlayerRoundID: 7000, Number: 1, Score: floatPtr(68)},
						{PlayerRoundID: 7002, Number: 2, Score: floatPtr(67)},
					},
				},
			}},
			101: {Players: []ExternalLeaderboardPlayer{
				{PlayerTournamentID: 9100, PlayerID: 3, Rank: intPtr(1), TotalScore: floatPtr(-4)},
			}},
		},
	}
}

func newTestSyncService(provider GolfDataProvider, store *memory.Store) *GolfSyncService {
	return NewGolfSyncService(provider, newMemoryIngestion(store), nil)
}

func TestGolfSyncService_Sync_WritesEveryTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := fixtureProvider()
	store := memory.NewStore()
	service := newTestSyncService(provider, store)

	got, err := service.Sync(ctx, SyncInput{
		Years:         []int{2026},
		IncludeRounds: true,
		IncludeHoles:  true,
		Workers:       2,
		Today:         time.Date(2026, 6, 19, 15, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	if got.Players.Written != 3 {
		t.Fatalf("expected 3 players written, got %+v", got.Players)
	}
	if got.TournamentsFetched != 3 || got.TournamentsSelected != 3 {
		t.Fatalf("unexpected tournament counts: fetched=%d selected=%d", got.TournamentsFetched, got.TournamentsSelected)
	}
	if got.LeaderboardsSynced != 2 || got.LeaderboardsEmpty != 1 || got.LeaderboardsFailed != 0 {
		t.Fatalf("unexpected leaderboard counts: %+v", got)
	}
	if got.Results.Written != 3 || got.Rounds.Written != 3 || got.Holes.Written != 1 || got.Summaries.Written != 2 {
		t.Fatalf("unexpected tallies: results=%+v rounds=%+v holes=%+v summaries=%+v", got.Results, got.Rounds, got.Holes, got.Summaries)
	}
	if len(got.Runs) != 3 || got.Runs[0].TournamentID != 100 || got.Runs[2].Outcome != runStatusSkipped {
		t.Fatalf("unexpected runs: %+v", got.Runs)
	}

	if !provider.finalByBoard[100] || provider.finalByBoard[101] {
		t.Fatalf("expected final leaderboard only for completed tournament, got %+v", provider.finalByBoard)
	}

	masters, ok := store.Tournaments.GetByID(100)
	if !ok || masters.Status != tournament.StatusCompleted || masters.Season != 2026 {
		t.Fatalf("unexpected stored tournament: %+v ok=%v", masters, ok)
	}
	summary, ok := store.Leaderboards.GetByTournamentID(100)
	if !ok || summary.WinnerID == nil || *summary.WinnerID != 1 || summary.PlayerCount != 2 {
		t.Fatalf("unexpected summary: %+v ok=%v", summary, ok)
	}
	if summary.WinningScore == nil || *summary.WinningScore != -11 {
		t.Fatalf("unexpected winning score: %+v", summary.WinningScore)
	}
}

func TestGolfSyncService_Sync_RerunWritesNoDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	service := newTestSyncService(fixtureProvider(), store)
	input := SyncInput{
		Years:         []int{2026},
		IncludeRounds: true,
		Today:         time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC),
	}

	first, err := service.Sync(ctx, input)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	before := store.Counts()

	got, err := service.Sync(ctx, input)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if got.Results.Written != 0 || got.Results.Duplicates != 3 {
		t.Fatalf("expected results to be duplicates on rerun, got %+v", got.Results)
	}
	if got.Players.Duplicates != 3 {
		t.Fatalf("expected players to be duplicates on rerun, got %+v", got.Players)
	}
	if first.RunID == "" || got.RunID == "" || first.RunID == got.RunID {
		t.Fatalf("expected a fresh run id per sync, got %q and %q", first.RunID, got.RunID)
	}

	after := store.Counts()
	for table, count := range before {
		if after[table] != count {
			t.Fatalf("table %s grew on rerun: before=%d after=%d", table, count, after[table])
		}
	}
	if got := len(store.Results.Holes()); got != 0 {
		t.Fatalf("holes require IncludeHoles, got %d rows", got)
	}
}

func TestGolfSyncService_Sync_FiltersByStatus(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	provider := fixtureProvider()
	service := newTestSyncService(provider, store)

	got, err := service.Sync(context.Background(), SyncInput{
		Years:    []int{2026},
		Statuses: []tournament.Status{tournament.StatusCompleted},
		Today:    time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got.TournamentsSelected != 1 || got.Runs[0].TournamentID != 100 {
		t.Fatalf("expected only the completed tournament, got %+v", got.Runs)
	}
	if _, ok := store.Tournaments.GetByID(101); ok {
		t.Fatalf("filtered tournament should not be stored")
	}
}

func TestGolfSyncService_Sync_SkipsFailedLeaderboard(t *testing.T) {
	t.Parallel()

	provider := fixtureProvider()
	provider.boardErrs = map[int64]error{100: errors.New("upstream 503")}
	store := memory.NewStore()
	service := newTestSyncService(provider, store)

	got, err := service.Sync(context.Background(), SyncInput{
		Years: []int{2026},
		Today: time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("sync should continue past a failed leaderboard: %v", err)
	}
	if got.LeaderboardsFailed != 1 || got.LeaderboardsSynced != 1 {
		t.Fatalf("unexpected leaderboard counts: %+v", got)
	}
	if got.Runs[0].Outcome != runStatusFailed || got.Runs[0].Message == "" {
		t.Fatalf("expected failed run with message, got %+v", got.Runs[0])
	}
	if _, ok := store.Leaderboards.GetByTournamentID(101); !ok {
		t.Fatalf("expected the healthy tournament summary to be stored")
	}
}

func TestGolfSyncService_Sync_HaltsWhenPlayersFail(t *testing.T) {
	t.Parallel()

	provider := fixtureProvider()
	provider.playersErr = errors.New("401 unauthorized")
	store := memory.NewStore()
	service := newTestSyncService(provider, store)

	_, err := service.Sync(context.Background(), SyncInput{Years: []int{2026}})
	if !errors.Is(err, ErrSyncHalted) {
		t.Fatalf("expected ErrSyncHalted, got %v", err)
	}
	if len(store.Tournaments.List()) != 0 {
		t.Fatalf("nothing should be written after a halted sync")
	}
}

func TestGolfSyncService_Sync_ContinuesWhenPlayerWriteFails(t *testing.T) {
	t.Parallel()

	provider := fixtureProvider()
	store := memory.NewStore()
	players := playermock.NewWriter(t)
	players.
		On("UpsertPlayers", mock.Anything, mock.Anything).
		Return(storage.Result{Failed: 3}, ErrDependencyUnavailable).
		Once()
	ingestion := NewIngestionService(players, store.Tournaments, store.Results, store.Leaderboards, nil)
	service := NewGolfSyncService(provider, ingestion, nil)

	got, err := service.Sync(context.Background(), SyncInput{
		Years: []int{2026},
		Today: time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("a storage failure on players should not halt the sync: %v", err)
	}
	if got.Players.Failed != 3 || got.Players.Written != 0 {
		t.Fatalf("unexpected player tally: %+v", got.Players)
	}
	if got.TournamentsFetched != 3 || got.LeaderboardsSynced != 2 {
		t.Fatalf("expected tournaments and leaderboards to run, got %+v", got)
	}
	if _, ok := store.Leaderboards.GetByTournamentID(100); !ok {
		t.Fatalf("expected leaderboard summary to be stored")
	}
}

func TestGolfSyncService_Sync_ContinuesWhenTournamentWriteFails(t *testing.T) {
	t.Parallel()

	provider := fixtureProvider()
	store := memory.NewStore()
	tournaments := tournamentmock.NewWriter(t)
	tournaments.
		On("UpsertTournaments", mock.Anything, mock.Anything).
		Return(storage.Result{}, errors.New("connection reset by peer")).
		Once()
	ingestion := NewIngestionService(store.Players, tournaments, store.Results, store.Leaderboards, nil)
	service := NewGolfSyncService(provider, ingestion, nil)

	got, err := service.Sync(context.Background(), SyncInput{
		Years: []int{2026},
		Today: time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("a storage failure on tournaments should not halt the sync: %v", err)
	}
	if got.Tournaments.Failed != 3 {
		t.Fatalf("expected every unaccounted tournament row to count as failed, got %+v", got.Tournaments)
	}
	if got.LeaderboardsSynced != 2 || got.Results.Written != 3 {
		t.Fatalf("expected leaderboards to run, got %+v", got)
	}
}

func TestGolfSyncService_Sync_StopsOnCanceledContextDuringPlayerWrite(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	provider := fixtureProvider()
	store := memory.NewStore()
	players := playermock.NewWriter(t)
	players.
		On("UpsertPlayers", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(storage.Result{}, context.Canceled).
		Once()
	ingestion := NewIngestionService(players, store.Tournaments, store.Results, store.Leaderboards, nil)
	service := NewGolfSyncService(provider, ingestion, nil)

	got, err := service.Sync(ctx, SyncInput{Years: []int{2026}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got.TournamentsFetched != 0 {
		t.Fatalf("expected the sync to stop before tournaments, got %+v", got)
	}
}

func TestGolfSyncService_Sync_YearFailures(t *testing.T) {
	t.Parallel()

	provider := fixtureProvider()
	provider.tournaments[2025] = []ExternalTournament{
		{ID: 50, Name: "Tour Championship", StartDate: date(2025, 8, 21), EndDate: date(2025, 8, 24)},
	}
	provider.yearErrs = map[int]error{2026: errors.New("timeout")}
	service := newTestSyncService(provider, memory.NewStore())

	got, err := service.Sync(context.Background(), SyncInput{
		Years: []int{2026, 2025},
		Today: time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("one failed year should not halt sync: %v", err)
	}
	if len(got.YearsFailed) != 1 || got.YearsFailed[0] != 2026 {
		t.Fatalf("unexpected failed years: %v", got.YearsFailed)
	}
	if got.TournamentsSelected != 1 {
		t.Fatalf("expected the 2025 tournament only, got %d", got.TournamentsSelected)
	}

	provider.yearErrs[2025] = errors.New("timeout")
	_, err = service.Sync(context.Background(), SyncInput{Years: []int{2026, 2025}})
	if !errors.Is(err, ErrSyncHalted) {
		t.Fatalf("expected ErrSyncHalted when every year fails, got %v", err)
	}
}

func TestGolfSyncService_Sync_InvalidInput(t *testing.T) {
	t.Parallel()

	service := newTestSyncService(fixtureProvider(), memory.NewStore())
	cases := map[string]SyncInput{
		"no years":        {},
		"negative year":   {Years: []int{-1}},
		"inverted window": {Years: []int{2026}, From: date(2026, 5, 1), To: date(2026, 4, 1)},
	}
	for name, input := range cases {
		if _, err := service.Sync(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestGolfSyncService_ListTournaments(t *testing.T) {
	t.Parallel()

	service := newTestSyncService(fixtureProvider(), memory.NewStore())
	got, err := service.ListTournaments(context.Background(), []int{2026}, time.Date(2026, 6, 19, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list tournaments: %v", err)
	}
	want := []tournament.Status{tournament.StatusCompleted, tournament.StatusInProgress, tournament.StatusUpcoming}
	if len(got) != len(want) {
		t.Fatalf("unexpected tournament count: %d", len(got))
	}
	for idx, status := range want {
		if got[idx].Status != status {
			t.Fatalf("tournament %d: got status %s want %s", got[idx].ID, got[idx].Status, status)
		}
	}
}
