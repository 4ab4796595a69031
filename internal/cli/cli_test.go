package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/golf-ingest/internal/app"
	"github.com/riskibarqy/golf-ingest/internal/config"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/riskibarqy/golf-ingest/internal/usecase"
)

type fakeSyncer struct {
	mu      sync.Mutex
	inputs  []usecase.SyncInput
	years   []int
	result  usecase.SyncResult
	err     error
	listing []tournament.Tournament
}

func (f *fakeSyncer) Sync(ctx context.Context, input usecase.SyncInput) (usecase.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	return f.result, f.err
}

func (f *fakeSyncer) ListTournaments(ctx context.Context, years []int, today time.Time) ([]tournament.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.years = years
	return f.listing, nil
}

type fakeMigrator struct {
	calls   []string
	version app.MigrationVersion
	closed  bool
}

func (m *fakeMigrator) Up() error { m.calls = append(m.calls, "up"); return nil }
func (m *fakeMigrator) Down(steps int) error {
	m.calls = append(m.calls, "down:"+strings.Repeat("x", steps))
	return nil
}
func (m *fakeMigrator) Version() (app.MigrationVersion, error) { return m.version, nil }
func (m *fakeMigrator) Force(version int) error {
	m.calls = append(m.calls, "force")
	return nil
}
func (m *fakeMigrator) Goto(target uint) error {
	m.calls = append(m.calls, "goto")
	return nil
}
func (m *fakeMigrator) Close() { m.closed = true }

func testConfig() config.Config {
	return config.Config{
		ServiceName:         "golf-ingest",
		StorageDriver:       config.StorageDriverMemory,
		IngestYears:         []int{2025, 2026},
		IngestStatuses:      []tournament.Status{tournament.StatusCompleted},
		IngestIncludeRounds: true,
		IngestIncludeHoles:  true,
		IngestWorkers:       4,
		IngestSchedule:      "@every 1h",
	}
}

func newTestDeps(syncer *fakeSyncer, out *bytes.Buffer) (*deps, *[]app.Options) {
	var opts []app.Options
	d := &deps{
		stdout:      out,
		stderr:      &bytes.Buffer{},
		logger:      logging.NewNop(),
		now:         func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) },
		loadConfig:  func() (config.Config, error) { return testConfig(), nil },
		loadMigrate: func() (config.Config, error) { return testConfig(), nil },
		newSession: func(cfg config.Config, o app.Options, logger *logging.Logger) (*session, error) {
			opts = append(opts, o)
			return &session{syncer: syncer}, nil
		},
	}
	return d, &opts
}

func execute(t *testing.T, d *deps, args ...string) error {
	t.Helper()
	root := newRootCmd(d)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestRunCmd_AppliesFlagsAndPrintsSummary(t *testing.T) {
	t.Parallel()

	syncer := &fakeSyncer{result: usecase.SyncResult{TournamentsSelected: 3, LeaderboardsSynced: 2}}
	var out bytes.Buffer
	d, opts := newTestDeps(syncer, &out)

	err := execute(t, d, "run", "--years", "2024", "--status", "all", "--from", "2024-02-01", "--no-rounds", "--workers", "8", "--dry-run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(syncer.inputs) != 1 {
		t.Fatalf("expected one sync, got %d", len(syncer.inputs))
	}
	input := syncer.inputs[0]
	if len(input.Years) != 1 || input.Years[0] != 2024 {
		t.Fatalf("unexpected years: %v", input.Years)
	}
	if input.Statuses != nil {
		t.Fatalf("expected all statuses, got %v", input.Statuses)
	}
	if input.From == nil || input.From.Format(dateLayout) != "2024-02-01" || input.To != nil {
		t.Fatalf("unexpected window: %v %v", input.From, input.To)
	}
	if input.IncludeRounds || input.IncludeHoles {
		t.Fatalf("expected --no-rounds to drop rounds and holes")
	}
	if input.Workers != 8 {
		t.Fatalf("expected 8 workers, got %d", input.Workers)
	}
	if len(*opts) != 1 || !(*opts)[0].DryRun {
		t.Fatalf("expected dry run session, got %+v", *opts)
	}

	var printed usecase.SyncResult
	if err := jsoniter.Unmarshal(out.Bytes(), &printed); err != nil {
		t.Fatalf("decode summary: %v (%s)", err, out.String())
	}
	if printed.TournamentsSelected != 3 || printed.LeaderboardsSynced != 2 {
		t.Fatalf("unexpected printed summary: %+v", printed)
	}
}

func TestRunCmd_DefaultsFromConfig(t *testing.T) {
	t.Parallel()

	syncer := &fakeSyncer{}
	var out bytes.Buffer
	d, opts := newTestDeps(syncer, &out)

	if err := execute(t, d, "run"); err != nil {
		t.Fatalf("run: %v", err)
	}
	input := syncer.inputs[0]
	if len(input.Years) != 2 || len(input.Statuses) != 1 || !input.IncludeHoles || input.Workers != 4 {
		t.Fatalf("expected config defaults, got %+v", input)
	}
	if (*opts)[0].DryRun {
		t.Fatalf("expected configured sink")
	}
}

func TestRunCmd_HaltedRunReturnsError(t *testing.T) {
	t.Parallel()

	syncer := &fakeSyncer{err: usecase.ErrDependencyUnavailable}
	var out bytes.Buffer
	d, _ := newTestDeps(syncer, &out)

	err := execute(t, d, "run")
	if !errors.Is(err, ErrRunHalted) || !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected halted error wrapping cause, got %v", err)
	}
	if !strings.Contains(out.String(), "tournaments_selected") {
		t.Fatalf("expected summary to be printed on halt, got %q", out.String())
	}
}

func TestRunCmd_RejectsInvalidFlags(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"run", "--years", "abc"},
		{"run", "--status", "finished"},
		{"run", "--from", "2026-13-01"},
		{"run", "--from", "2026-03-10", "--to", "2026-03-01"},
		{"run", "--workers", "0"},
	}
	for _, args := range cases {
		syncer := &fakeSyncer{}
		d, _ := newTestDeps(syncer, &bytes.Buffer{})
		if err := execute(t, d, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
		if len(syncer.inputs) != 0 {
			t.Fatalf("expected no sync for %v", args)
		}
	}
}

func TestRunCmd_ConfigError(t *testing.T) {
	t.Parallel()

	d, _ := newTestDeps(&fakeSyncer{}, &bytes.Buffer{})
	d.loadConfig = func() (config.Config, error) { return config.Config{}, errors.New("SPORTSDATA_API_KEY is required") }

	err := execute(t, d, "run")
	if err == nil || !strings.Contains(err.Error(), "SPORTSDATA_API_KEY") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestTournamentsCmd_TextAndJSON(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	syncer := &fakeSyncer{listing: []tournament.Tournament{
		{ID: 601, Name: "Arnold Palmer Invitational", Season: 2026, StartDate: &start, EndDate: &end, Status: tournament.StatusCompleted},
		{ID: 602, Name: "Players Championship", Season: 2026, Status: tournament.StatusUnknown, IsCanceled: true},
	}}

	var text bytes.Buffer
	d, opts := newTestDeps(syncer, &text)
	if err := execute(t, d, "tournaments", "--years", "2026"); err != nil {
		t.Fatalf("tournaments: %v", err)
	}
	if len(syncer.years) != 1 || syncer.years[0] != 2026 {
		t.Fatalf("unexpected years: %v", syncer.years)
	}
	if !(*opts)[0].DryRun {
		t.Fatalf("expected listing to use the in-memory sink")
	}
	got := text.String()
	for _, want := range []string{"ID", "601", "2026-03-05", "completed", "unknown (canceled)", "Players Championship"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in table output:\n%s", want, got)
		}
	}

	var js bytes.Buffer
	d, _ = newTestDeps(syncer, &js)
	if err := execute(t, d, "tournaments", "--format", "json"); err != nil {
		t.Fatalf("tournaments json: %v", err)
	}
	var views []tournamentView
	if err := jsoniter.Unmarshal(js.Bytes(), &views); err != nil {
		t.Fatalf("decode tournaments: %v", err)
	}
	if len(views) != 2 || views[0].StartDate != "2026-03-05" || views[1].EndDate != "" {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestTournamentsCmd_InvalidFormat(t *testing.T) {
	t.Parallel()

	d, _ := newTestDeps(&fakeSyncer{}, &bytes.Buffer{})
	if err := execute(t, d, "tournaments", "--format", "xml"); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestMigrateCmd_Subcommands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		args []string
		want string
	}{
		{args: []string{"migrate", "up"}, want: "up"},
		{args: []string{"migrate", "down"}, want: "down:x"},
		{args: []string{"migrate", "down", "2"}, want: "down:xx"},
		{args: []string{"migrate", "force", "1772323205"}, want: "force"},
		{args: []string{"migrate", "goto", "1772323200"}, want: "goto"},
	}
	for _, tc := range cases {
		m := &fakeMigrator{}
		d, _ := newTestDeps(&fakeSyncer{}, &bytes.Buffer{})
		d.newMigrator = func(cfg config.Config, logger *logging.Logger) (migrator, error) { return m, nil }

		if err := execute(t, d, tc.args...); err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if len(m.calls) != 1 || m.calls[0] != tc.want {
			t.Fatalf("%v: expected %q, got %v", tc.args, tc.want, m.calls)
		}
		if !m.closed {
			t.Fatalf("%v: expected migrator to be closed", tc.args)
		}
	}
}

func TestMigrateCmd_VersionAndBadArgs(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	m := &fakeMigrator{version: app.MigrationVersion{Version: 1772323205, Dirty: true}}
	d, _ := newTestDeps(&fakeSyncer{}, &out)
	d.newMigrator = func(cfg config.Config, logger *logging.Logger) (migrator, error) { return m, nil }

	if err := execute(t, d, "migrate", "version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "version: 1772323205") || !strings.Contains(out.String(), "dirty: true") {
		t.Fatalf("unexpected version output: %q", out.String())
	}

	out.Reset()
	m.version = app.MigrationVersion{None: true}
	if err := execute(t, d, "migrate", "version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "version: none") {
		t.Fatalf("unexpected version output: %q", out.String())
	}

	for _, args := range [][]string{{"migrate", "down", "0"}, {"migrate", "force", "-2"}, {"migrate", "goto", "abc"}, {"migrate", "force"}} {
		if err := execute(t, d, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestRunSchedule_RejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	err := runSchedule(context.Background(), "not a cron", false, func() {}, logging.NewNop())
	if err == nil || !strings.Contains(err.Error(), "invalid cron spec") {
		t.Fatalf("expected invalid spec error, got %v", err)
	}
}

func TestRunSchedule_ImmediateRunThenStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var runs int
	job := func() {
		runs++
		cancel()
	}

	done := make(chan error, 1)
	go func() { done <- runSchedule(ctx, "@every 1h", true, job, logging.NewNop()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runSchedule: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduler did not stop")
	}
	if runs != 1 {
		t.Fatalf("expected one immediate run, got %d", runs)
	}
}

func TestScheduleCmd_RequiresSpec(t *testing.T) {
	t.Parallel()

	d, _ := newTestDeps(&fakeSyncer{}, &bytes.Buffer{})
	d.loadConfig = func() (config.Config, error) {
		cfg := testConfig()
		cfg.IngestSchedule = ""
		return cfg, nil
	}
	if err := execute(t, d, "schedule"); err == nil || !strings.Contains(err.Error(), "INGEST_SCHEDULE") {
		t.Fatalf("expected missing schedule error, got %v", err)
	}
}

func TestTickInput_RollsDefaultYearsWithClock(t *testing.T) {
	t.Parallel()

	base := app.SyncInput(testConfig())
	newYear := time.Date(2027, 1, 1, 0, 5, 0, 0, time.UTC)

	got := tickInput(base, true, newYear)
	if len(got.Years) != 2 || got.Years[0] != 2026 || got.Years[1] != 2027 {
		t.Fatalf("expected seasons to follow the clock, got %v", got.Years)
	}
	if len(base.Years) != 2 || base.Years[1] != 2026 {
		t.Fatalf("base input must not change, got %v", base.Years)
	}

	pinned := tickInput(base, false, newYear)
	if len(pinned.Years) != 2 || pinned.Years[0] != 2025 || pinned.Years[1] != 2026 {
		t.Fatalf("explicit years must stay pinned, got %v", pinned.Years)
	}
}
