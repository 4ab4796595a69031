package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/golf-ingest/internal/config"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
)

// Migrator drives golang-migrate against DB_URL using the SQL files in db/migrations.
type Migrator struct {
	m         *migrate.Migrate
	sourceURL string
	logger    *logging.Logger
}

// MigrationVersion is the schema state reported by Version.
type MigrationVersion struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	// None is set when no migration has been applied yet.
	None bool `json:"none"`
}

func NewMigrator(cfg config.Config, logger *logging.Logger) (*Migrator, error) {
	if logger == nil {
		logger = logging.Default()
	}
	dbURL := strings.TrimSpace(cfg.DBURL)
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	dbURL = normalizeDBURL(dbURL, cfg.DBDisablePreparedBinary)

	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m, sourceURL: sourceURL, logger: logger}, nil
}

func (g *Migrator) Up() error {
	if err := g.handle(g.m.Up()); err != nil {
		return err
	}
	g.logger.Info("migrations applied", "source", g.sourceURL)
	return nil
}

func (g *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("down steps must be > 0")
	}
	if err := g.handle(g.m.Steps(-steps)); err != nil {
		return err
	}
	g.logger.Info("migrations rolled back", "steps", steps)
	return nil
}

func (g *Migrator) Version() (MigrationVersion, error) {
	version, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationVersion{None: true}, nil
	}
	if err != nil {
		return MigrationVersion{}, fmt.Errorf("read version: %w", err)
	}
	return MigrationVersion{Version: version, Dirty: dirty}, nil
}

func (g *Migrator) Force(version int) error {
	if err := g.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	g.logger.Info("migration version forced", "version", version)
	return nil
}

func (g *Migrator) Goto(target uint) error {
	if err := g.handle(g.m.Migrate(target)); err != nil {
		return err
	}
	g.logger.Info("migrated to version", "version", target)
	return nil
}

func (g *Migrator) Close() {
	srcErr, dbErr := g.m.Close()
	if srcErr != nil {
		g.logger.Warn("close migration source failed", "error", srcErr)
	}
	if dbErr != nil {
		g.logger.Warn("close migration db failed", "error", dbErr)
	}
}

func (g *Migrator) handle(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, migrate.ErrNoChange) {
		g.logger.Info("no migration changes")
		return nil
	}
	return err
}

// ParseSteps reads the optional step count for "down"; it defaults to one.
func ParseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func ParseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func ParseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		strings.TrimSpace(os.Getenv("MIGRATIONS_PATH")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, MIGRATIONS_PATH, ./db/migrations, /app/db/migrations)")
}
