package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/golf-ingest/internal/domain/leaderboard"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
	idgen "github.com/riskibarqy/golf-ingest/internal/platform/id"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultSyncWorkers = 4
	maxSyncWorkers     = 32

	runStatusSuccess = "success"
	runStatusFailed  = "failed"
	runStatusSkipped = "skipped"
)

type SyncInput struct {
	Years         []int
	Statuses      []tournament.Status
	From          *time.Time
	To            *time.Time
	IncludeRounds bool
	// IncludeHoles only applies when IncludeRounds is set; holes reference rounds.
	IncludeHoles bool
	Workers      int
	// Today drives classification; zero means the current UTC date.
	Today time.Time
}

type SyncResult struct {
	RunID               string              `json:"run_id"`
	StartedAt           time.Time           `json:"started_at"`
	DurationMs          int64               `json:"duration_ms"`
	Years               []int               `json:"years"`
	YearsFailed         []int               `json:"years_failed"`
	WorkerCount         int                 `json:"worker_count"`
	TournamentsFetched  int                 `json:"tournaments_fetched"`
	TournamentsSelected int                 `json:"tournaments_selected"`
	LeaderboardsSynced  int                 `json:"leaderboards_synced"`
	LeaderboardsFailed  int                 `json:"leaderboards_failed"`
	LeaderboardsEmpty   int                 `json:"leaderboards_empty"`
	Players             Tally               `json:"players"`
	Tournaments         Tally               `json:"tournaments"`
	Results             Tally               `json:"results"`
	Rounds              Tally               `json:"rounds"`
	Holes               Tally               `json:"holes"`
	Summaries           Tally               `json:"summaries"`
	Runs                []TournamentSyncRun `json:"runs"`
}

// TournamentSyncRun reports the leaderboard step for one tournament.
type TournamentSyncRun struct {
	TournamentID int64             `json:"tournament_id"`
	Name         string            `json:"name"`
	Status       tournament.Status `json:"status"`
	Outcome      string            `json:"outcome"`
	Players      int               `json:"players"`
	DurationMs   int64             `json:"duration_ms"`
	Message      string            `json:"message,omitempty"`
}

type GolfSyncService struct {
	provider  GolfDataProvider
	ingestion *IngestionService
	logger    *logging.Logger
	ids       idgen.Generator
	now       func() time.Time
}

func NewGolfSyncService(provider GolfDataProvider, ingestion *IngestionService, logger *logging.Logger) *GolfSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GolfSyncService{
		provider:  provider,
		ingestion: ingestion,
		logger:    logger,
		ids:       idgen.NewRandomGenerator(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Sync runs the whole pipeline: players, tournaments for every year,
// classification and filtering, then leaderboards fanned out over a worker
// pool. Only a failed player fetch or every year failing halts the run;
// everything else is logged, skipped and tallied.
func (s *GolfSyncService) Sync(ctx context.Context, input SyncInput) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GolfSyncService.Sync", attribute.IntSlice("years", input.Years))
	defer span.End()

	if s.provider == nil || s.ingestion == nil {
		return SyncResult{}, fmt.Errorf("%w: golf sync is not fully configured", ErrDependencyUnavailable)
	}
	input, err := normalizeSyncInput(input, s.now())
	if err != nil {
		return SyncResult{}, err
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return SyncResult{}, fmt.Errorf("generate run id: %w", err)
	}
	span.SetAttributes(attribute.String("run_id", runID))

	started := s.now()
	out := SyncResult{
		RunID:       runID,
		StartedAt:   started,
		Years:       append([]int(nil), input.Years...),
		YearsFailed: []int{},
		WorkerCount: input.Workers,
		Runs:        []TournamentSyncRun{},
	}
	done := func(err error) (SyncResult, error) {
		out.DurationMs = s.now().Sub(started).Milliseconds()
		return out, err
	}

	externalPlayers, err := s.provider.FetchPlayers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "fetch players failed, halting sync", "error", err)
		return done(fmt.Errorf("%w: fetch players: %w", ErrSyncHalted, err))
	}
	s.logger.InfoContext(ctx, "players fetched", "count", len(externalPlayers))

	out.Players, err = s.ingestion.UpsertPlayers(ctx, mapExternalPlayersToDomain(externalPlayers))
	if err != nil {
		if ctx.Err() != nil {
			return done(ctx.Err())
		}
		s.logger.WarnContext(ctx, "player write failed, continuing", "failed", out.Players.Failed, "error", err)
	}

	externalTournaments, failedYears := s.fetchTournamentYears(ctx, input.Years)
	out.YearsFailed = failedYears
	if len(failedYears) == len(input.Years) {
		if ctx.Err() != nil {
			return done(ctx.Err())
		}
		s.logger.ErrorContext(ctx, "fetch tournaments failed for every year, halting sync", "years", input.Years)
		return done(fmt.Errorf("%w: tournaments could not be fetched for any year", ErrSyncHalted))
	}

	classified := mapExternalTournamentsToDomain(externalTournaments, input.Today)
	filter := tournament.Filter{
		Statuses: input.Statuses,
		Window:   tournament.Window{From: input.From, To: input.To},
	}
	selected := filter.Apply(classified)
	out.TournamentsFetched = len(classified)
	out.TournamentsSelected = len(selected)
	s.logger.InfoContext(ctx, "tournaments selected",
		"fetched", len(classified),
		"selected", len(selected),
		"statuses", input.Statuses,
	)

	out.Tournaments, err = s.ingestion.UpsertTournaments(ctx, selected)
	if err != nil {
		if ctx.Err() != nil {
			return done(ctx.Err())
		}
		s.logger.WarnContext(ctx, "tournament write failed, continuing", "failed", out.Tournaments.Failed, "error", err)
	}

	if err := s.syncLeaderboards(ctx, input, selected, &out); err != nil {
		return done(err)
	}

	s.logger.InfoContext(ctx, "sync finished",
		"run_id", out.RunID,
		"players_written", out.Players.Written,
		"tournaments_selected", out.TournamentsSelected,
		"results_written", out.Results.Written,
		"results_duplicates", out.Results.Duplicates,
		"results_failed", out.Results.Failed,
		"leaderboards_synced", out.LeaderboardsSynced,
		"leaderboards_failed", out.LeaderboardsFailed,
	)
	return done(nil)
}

// ListTournaments fetches and classifies tournaments without writing anything.
func (s *GolfSyncService) ListTournaments(ctx context.Context, years []int, today time.Time) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GolfSyncService.ListTournaments", attribute.IntSlice("years", years))
	defer span.End()

	if s.provider == nil {
		return nil, fmt.Errorf("%w: golf data provider is not configured", ErrDependencyUnavailable)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: at least one year is required", ErrInvalidInput)
	}
	if today.IsZero() {
		today = s.now()
	}

	items, failedYears := s.fetchTournamentYears(ctx, years)
	if len(failedYears) == len(years) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: tournaments could not be fetched for any year", ErrDependencyUnavailable)
	}
	return mapExternalTournamentsToDomain(items, today), nil
}

type tournamentYearFetch struct {
	year  int
	items []ExternalTournament
	err   error
}

func (s *GolfSyncService) fetchTournamentYears(ctx context.Context, years []int) ([]ExternalTournament, []int) {
	p := pool.NewWithResults[tournamentYearFetch]().WithMaxGoroutines(len(years))
	for _, year := range years {
		year := year
		p.Go(func() tournamentYearFetch {
			items, err := s.provider.FetchTournaments(ctx, year)
			return tournamentYearFetch{year: year, items: items, err: err}
		})
	}
	fetched := p.Wait()
	sort.Slice(fetched, func(i, j int) bool { return fetched[i].year < fetched[j].year })

	var out []ExternalTournament
	failed := make([]int, 0)
	for _, item := range fetched {
		if item.err != nil {
			s.logger.WarnContext(ctx, "skip tournament year", "year", item.year, "error", item.err)
			failed = append(failed, item.year)
			continue
		}
		for idx := range item.items {
			if item.items[idx].Season == 0 {
				item.items[idx].Season = item.year
			}
		}
		out = append(out, item.items...)
	}
	return out, failed
}

type leaderboardTallies struct {
	results   Tally
	rounds    Tally
	holes     Tally
	summaries Tally
}

func (s *GolfSyncService) syncLeaderboards(ctx context.Context, input SyncInput, selected []tournament.Tournament, out *SyncResult) error {
	if len(selected) == 0 {
		return nil
	}

	workerCount := input.Workers
	if workerCount > len(selected) {
		workerCount = len(selected)
	}
	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		synced  atomic.Int32
		failed  atomic.Int32
		empty   atomic.Int32
		totals  leaderboardTallies
		runRows = make([]TournamentSyncRun, 0, len(selected))
	)

	for _, item := range selected {
		if ctx.Err() != nil {
			break
		}
		item := item
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			run, tallies := s.syncLeaderboard(ctx, input, item)
			switch run.Outcome {
			case runStatusSuccess:
				synced.Add(1)
			case runStatusSkipped:
				empty.Add(1)
			default:
				failed.Add(1)
			}

			mu.Lock()
			totals.results.Add(tallies.results)
			totals.rounds.Add(tallies.rounds)
			totals.holes.Add(tallies.holes)
			totals.summaries.Add(tallies.summaries)
			runRows = append(runRows, run)
			mu.Unlock()
		}); err != nil {
			wg.Done()
			return fmt.Errorf("submit leaderboard task to worker pool: %w", err)
		}
	}
	wg.Wait()

	sort.SliceStable(runRows, func(i, j int) bool { return runRows[i].TournamentID < runRows[j].TournamentID })
	out.Runs = runRows
	out.Results = totals.results
	out.Rounds = totals.rounds
	out.Holes = totals.holes
	out.Summaries = totals.summaries
	out.LeaderboardsSynced = int(synced.Load())
	out.LeaderboardsFailed = int(failed.Load())
	out.LeaderboardsEmpty = int(empty.Load())

	return ctx.Err()
}

func (s *GolfSyncService) syncLeaderboard(ctx context.Context, input SyncInput, item tournament.Tournament) (TournamentSyncRun, leaderboardTallies) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GolfSyncService.syncLeaderboard", attribute.Int64("tournament_id", item.ID))
	defer span.End()

	started := s.now()
	run := TournamentSyncRun{TournamentID: item.ID, Name: item.Name, Status: item.Status}
	var tallies leaderboardTallies
	finish := func(outcome, message string) (TournamentSyncRun, leaderboardTallies) {
		run.Outcome = outcome
		run.Message = message
		run.DurationMs = s.now().Sub(started).Milliseconds()
		return run, tallies
	}

	if ctx.Err() != nil {
		return finish(runStatusFailed, ctx.Err().Error())
	}

	board, err := s.provider.FetchLeaderboard(ctx, item.ID, item.Status == tournament.StatusCompleted)
	if err != nil {
		s.logger.WarnContext(ctx, "skip tournament leaderboard", "tournament_id", item.ID, "error", err)
		return finish(runStatusFailed, err.Error())
	}
	if len(board.Players) == 0 {
		s.logger.WarnContext(ctx, "leaderboard has no players", "tournament_id", item.ID)
		return finish(runStatusSkipped, "leaderboard has no players")
	}
	run.Players = len(board.Players)

	now := s.now()
	results := mapExternalLeaderboardToResults(item.ID, board.Players, now)
	tallies.results, err = s.ingestion.UpsertResults(ctx, results)
	if err != nil {
		return finish(runStatusFailed, err.Error())
	}

	if input.IncludeRounds {
		rounds := flattenRounds(results)
		tallies.rounds, err = s.ingestion.UpsertRounds(ctx, rounds)
		if err != nil {
			return finish(runStatusFailed, err.Error())
		}
		if input.IncludeHoles {
			tallies.holes, err = s.ingestion.UpsertHoles(ctx, flattenHoles(rounds))
			if err != nil {
				return finish(runStatusFailed, err.Error())
			}
		}
	}

	summary := leaderboard.Summarize(item.ID, item.Status, results, now)
	tallies.summaries, err = s.ingestion.UpsertLeaderboardSummary(ctx, summary)
	if err != nil {
		return finish(runStatusFailed, err.Error())
	}

	return finish(runStatusSuccess, "")
}

func normalizeSyncInput(input SyncInput, now time.Time) (SyncInput, error) {
	if len(input.Years) == 0 {
		return SyncInput{}, fmt.Errorf("%w: at least one year is required", ErrInvalidInput)
	}
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return SyncInput{}, fmt.Errorf("%w: date window end is before its start", ErrInvalidInput)
	}

	seen := make(map[int]struct{}, len(input.Years))
	years := make([]int, 0, len(input.Years))
	for _, year := range input.Years {
		if year <= 0 {
			return SyncInput{}, fmt.Errorf("%w: invalid year %d", ErrInvalidInput, year)
		}
		if _, ok := seen[year]; ok {
			continue
		}
		seen[year] = struct{}{}
		years = append(years, year)
	}
	sort.Ints(years)
	input.Years = years

	if input.Workers <= 0 {
		input.Workers = defaultSyncWorkers
	}
	if input.Workers > maxSyncWorkers {
		input.Workers = maxSyncWorkers
	}
	if input.Today.IsZero() {
		input.Today = now
	}
	input.Today = tournament.Day(input.Today)
	return input, nil
}
