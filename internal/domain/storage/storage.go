package storage

// Resolution mirrors the PostgREST Prefer resolution for a conflict target.
type Resolution string

const (
	IgnoreDuplicates Resolution = "ignore-duplicates"
	MergeDuplicates  Resolution = "merge-duplicates"
)

// Table describes one destination table and its idempotency key.
type Table struct {
	Name            string
	ConflictColumns []string
	Resolution      Resolution
}

var (
	Players      = Table{Name: "players", ConflictColumns: []string{"player_id"}, Resolution: IgnoreDuplicates}
	Tournaments  = Table{Name: "tournaments", ConflictColumns: []string{"tournament_id"}, Resolution: MergeDuplicates}
	Results      = Table{Name: "results", ConflictColumns: []string{"tournament_id", "player_id"}, Resolution: IgnoreDuplicates}
	PlayerRounds = Table{Name: "player_rounds", ConflictColumns: []string{"player_tournament_id", "round_number"}, Resolution: IgnoreDuplicates}
	PlayerHoles  = Table{Name: "player_holes", ConflictColumns: []string{"player_round_id", "hole_number"}, Resolution: IgnoreDuplicates}
	Leaderboard  = Table{Name: "leaderboard", ConflictColumns: []string{"tournament_id"}, Resolution: MergeDuplicates}
)

// Result is the outcome of one write call. Merged rows count as written.
type Result struct {
	Written    int
	Duplicates int
	Failed     int
}

func (r *Result) Add(other Result) {
	r.Written += other.Written
	r.Duplicates += other.Duplicates
	r.Failed += other.Failed
}

func (r Result) Total() int {
	return r.Written + r.Duplicates + r.Failed
}
