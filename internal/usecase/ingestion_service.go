package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/golf-ingest/internal/domain/leaderboard"
	"github.com/riskibarqy/golf-ingest/internal/domain/player"
	"github.com/riskibarqy/golf-ingest/internal/domain/result"
	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// Tally counts the outcome of one ingest call. Attempted always equals
// Written + Duplicates + Failed + Invalid.
type Tally struct {
	Attempted  int `json:"attempted"`
	Written    int `json:"written"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
	Invalid    int `json:"invalid"`
}

func (t *Tally) Add(other Tally) {
	t.Attempted += other.Attempted
	t.Written += other.Written
	t.Duplicates += other.Duplicates
	t.Failed += other.Failed
	t.Invalid += other.Invalid
}

// Succeeded counts rows that are now present in storage.
func (t Tally) Succeeded() int {
	return t.Written + t.Duplicates
}

// IngestionService is the per-table write loop: validate, drop repeats
// within the batch, hand the rest to the writer and tally the outcome.
type IngestionService struct {
	players     player.Writer
	tournaments tournament.Writer
	results     result.Writer
	summaries   leaderboard.Writer
	validate    *validator.Validate
	logger      *logging.Logger
}

func NewIngestionService(
	players player.Writer,
	tournaments tournament.Writer,
	results result.Writer,
	summaries leaderboard.Writer,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		players:     players,
		tournaments: tournaments,
		results:     results,
		summaries:   summaries,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (s *IngestionService) UpsertPlayers(ctx context.Context, items []player.Player) (Tally, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertPlayers", attribute.Int("rows", len(items)))
	defer span.End()

	if s.players == nil {
		return Tally{}, fmt.Errorf("%w: player writer is not configured", ErrDependencyUnavailable)
	}
	return ingest(ctx, s, storage.Players.Name, items, s.players.UpsertPlayers)
}

func (s *IngestionService) UpsertTournaments(ctx context.Context, items []tournament.Tournament) (Tally, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertTournaments", attribute.Int("rows", len(items)))
	defer span.End()

	if s.tournaments == nil {
		return Tally{}, fmt.Errorf("%w: tournament writer is not configured", ErrDependencyUnavailable)
	}
	return ingest(ctx, s, storage.Tournaments.Name, items, s.tournaments.UpsertTournaments)
}

func (s *IngestionService) UpsertResults(ctx context.Context, items []result.Result) (Tally, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertResults", attribute.Int("rows", len(items)))
	defer span.End()

	if s.results == nil {
		return Tally{}, fmt.Errorf("%w: result writer is not configured", ErrDependencyUnavailable)
	}
	return ingest(ctx, s, storage.Results.Name, items, s.results.UpsertResults)
}

func (s *IngestionService) UpsertRounds(ctx context.Context, items []result.Round) (Tally, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertRounds", attribute.Int("rows", len(items)))
	defer span.End()

	if s.results == nil {
		return Tally{}, fmt.Errorf("%w: result writer is not configured", ErrDependencyUnavailable)
	}
	return ingest(ctx, s, storage.PlayerRounds.Name, items, s.results.UpsertRounds)
}

func (s *IngestionService) UpsertHoles(ctx context.Context, items []result.Hole) (Tally, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertHoles", attribute.Int("rows", len(items)))
	defer span.End()

	if s.results == nil {
		return Tally{}, fmt.Errorf("%w: result writer is not configured", ErrDependencyUnavailable)
	}
	return ingest(ctx, s, storage.PlayerHoles.Name, items, s.results.UpsertHoles)
}

func (s *IngestionService) UpsertLeaderboardSummary(ctx context.Context, summary leaderboard.Summary) (Tally, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertLeaderboardSummary", attribute.Int64("tournament_id", summary.TournamentID))
	defer span.End()

	if s.summaries == nil {
		return Tally{}, fmt.Errorf("%w: leaderboard writer is not configured", ErrDependencyUnavailable)
	}
	return ingest(ctx, s, storage.Leaderboard.Name, []leaderboard.Summary{summary}, s.summaries.UpsertSummaries)
}

type keyedRow interface {
	Key() string
}

func ingest[T keyedRow](
	ctx context.Context,
	s *IngestionService,
	table string,
	items []T,
	write func(context.Context, []T) (storage.Result, error),
) (Tally, error) {
	tally := Tally{Attempted: len(items)}
	if len(items) == 0 {
		return tally, nil
	}

	seen := make(map[string]struct{}, len(items))
	cleaned := make([]T, 0, len(items))
	for _, item := range items {
		if err := s.validate.StructCtx(ctx, item); err != nil {
			tally.Invalid++
			s.logger.WarnContext(ctx, "skip invalid row", "table", table, "key", item.Key(), "error", err)
			continue
		}
		key := item.Key()
		if _, ok := seen[key]; ok {
			tally.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, item)
	}
	if len(cleaned) == 0 {
		return tally, nil
	}

	res, err := write(ctx, cleaned)
	tally.Written += res.Written
	tally.Duplicates += res.Duplicates
	tally.Failed += res.Failed
	if unaccounted := len(cleaned) - res.Total(); unaccounted > 0 {
		tally.Failed += unaccounted
	}
	if err != nil {
		return tally, fmt.Errorf("upsert %s: %w", table, err)
	}
	if res.Failed > 0 {
		s.logger.WarnContext(ctx, "some rows were not written", "table", table, "failed", res.Failed, "sent", len(cleaned))
	}
	return tally, nil
}
