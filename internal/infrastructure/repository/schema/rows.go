// Package schema holds the storage row shapes shared by the REST and SQL
// sinks. Field tags name the table columns.
package schema

import (
	"time"

	"github.com/riskibarqy/golf-ingest/internal/domain/leaderboard"
	"github.com/riskibarqy/golf-ingest/internal/domain/player"
	"github.com/riskibarqy/golf-ingest/internal/domain/result"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
)

type PlayerRow struct {
	PlayerID int64   `db:"player_id" json:"player_id"`
	FullName string  `db:"full_name" json:"full_name"`
	Country  *string `db:"country" json:"country"`
	Status   string  `db:"status" json:"status"`
}

type TournamentRow struct {
	TournamentID int64      `db:"tournament_id" json:"tournament_id"`
	Name         string     `db:"name" json:"name"`
	Tour         *string    `db:"tour" json:"tour"`
	Season       *int       `db:"season" json:"season"`
	StartDate    *time.Time `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date"`
	Venue        *string    `db:"venue" json:"venue"`
	Location     *string    `db:"location" json:"location"`
	City         *string    `db:"city" json:"city"`
	State        *string    `db:"state" json:"state"`
	Country      *string    `db:"country" json:"country"`
	Par          *int       `db:"par" json:"par"`
	Yards        *int       `db:"yards" json:"yards"`
	Purse        *float64   `db:"purse" json:"purse"`
	IsOver       bool       `db:"is_over" json:"is_over"`
	IsCanceled   bool       `db:"is_canceled" json:"is_canceled"`
	Status       string     `db:"status" json:"status"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type ResultRow struct {
	TournamentID        int64     `db:"tournament_id" json:"tournament_id"`
	PlayerID            int64     `db:"player_id" json:"player_id"`
	Position            *string   `db:"position" json:"position"`
	Score               *float64  `db:"score" json:"score"`
	Earnings            *float64  `db:"earnings" json:"earnings"`
	Round1Score         *float64  `db:"round_1_score" json:"round_1_score"`
	Round2Score         *float64  `db:"round_2_score" json:"round_2_score"`
	Round3Score         *float64  `db:"round_3_score" json:"round_3_score"`
	Round4Score         *float64  `db:"round_4_score" json:"round_4_score"`
	PlayerTournamentID  *int64    `db:"player_tournament_id" json:"player_tournament_id"`
	TotalStrokes        *int      `db:"total_strokes" json:"total_strokes"`
	FantasyPoints       *float64  `db:"fantasy_points" json:"fantasy_points"`
	FedExPoints         *float64  `db:"fedex_points" json:"fedex_points"`
	MadeCut             bool      `db:"made_cut" json:"made_cut"`
	Win                 bool      `db:"win" json:"win"`
	PositionDescription *string   `db:"position_description" json:"position_description"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

type RoundRow struct {
	PlayerTournamentID      int64      `db:"player_tournament_id" json:"player_tournament_id"`
	RoundNumber             int        `db:"round_number" json:"round_number"`
	PlayerRoundID           *int64     `db:"player_round_id" json:"player_round_id"`
	PlayerID                int64      `db:"player_id" json:"player_id"`
	Par                     *int       `db:"par" json:"par"`
	Score                   *float64   `db:"score" json:"score"`
	TeeTime                 *time.Time `db:"tee_time" json:"tee_time"`
	BogeyFree               bool       `db:"bogey_free" json:"bogey_free"`
	Birdies                 *int       `db:"birdies" json:"birdies"`
	Pars                    *int       `db:"pars" json:"pars"`
	Bogeys                  *int       `db:"bogeys" json:"bogeys"`
	DoubleBogeys            *int       `db:"double_bogeys" json:"double_bogeys"`
	WorseThanDoubleBogey    *int       `db:"worse_than_double_bogey" json:"worse_than_double_bogey"`
	TripleBogeys            *int       `db:"triple_bogeys" json:"triple_bogeys"`
	HoleInOnes              *int       `db:"hole_in_ones" json:"hole_in_ones"`
	BounceBackCount         *int       `db:"bounce_back_count" json:"bounce_back_count"`
	LongestBirdieStreak     *int       `db:"longest_birdie_streak" json:"longest_birdie_streak"`
	IncludesFivePlusBirdies bool       `db:"includes_five_plus_birdies" json:"includes_five_plus_birdies"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
}

type HoleRow struct {
	PlayerRoundID        int64 `db:"player_round_id" json:"player_round_id"`
	HoleNumber           int   `db:"hole_number" json:"hole_number"`
	PlayerID             int64 `db:"player_id" json:"player_id"`
	Par                  *int  `db:"par" json:"par"`
	Score                *int  `db:"score" json:"score"`
	ToPar                *int  `db:"to_par" json:"to_par"`
	IsPar                bool  `db:"is_par" json:"is_par"`
	Birdie               bool  `db:"birdie" json:"birdie"`
	Bogey                bool  `db:"bogey" json:"bogey"`
	DoubleBogey          bool  `db:"double_bogey" json:"double_bogey"`
	WorseThanDoubleBogey bool  `db:"worse_than_double_bogey" json:"worse_than_double_bogey"`
	HoleInOne            bool  `db:"hole_in_one" json:"hole_in_one"`
	Eagle                bool  `db:"eagle" json:"eagle"`
	DoubleEagle          bool  `db:"double_eagle" json:"double_eagle"`
}

type LeaderboardRow struct {
	TournamentID int64     `db:"tournament_id" json:"tournament_id"`
	Sport        string    `db:"sport" json:"sport"`
	Status       string    `db:"status" json:"status"`
	WinnerID     *int64    `db:"winner_id" json:"winner_id"`
	WinningScore *float64  `db:"winning_score" json:"winning_score"`
	PlayersCount int       `db:"players_count" json:"players_count"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func PlayerRows(items []player.Player) []PlayerRow {
	out := make([]PlayerRow, 0, len(items))
	for _, item := range items {
		out = append(out, PlayerRow{
			PlayerID: item.ID,
			FullName: item.FullName,
			Country:  nullableString(item.Country),
			Status:   item.Status,
		})
	}
	return out
}

// TournamentRows stamps every row with updatedAt so merges refresh it.
func TournamentRows(items []tournament.Tournament, updatedAt time.Time) []TournamentRow {
	out := make([]TournamentRow, 0, len(items))
	for _, item := range items {
		row := TournamentRow{
			TournamentID: item.ID,
			Name:         item.Name,
			Tour:         nullableString(item.Tour),
			StartDate:    dateOnly(item.StartDate),
			EndDate:      dateOnly(item.EndDate),
			Venue:        nullableString(item.Venue),
			Location:     nullableString(item.Location),
			City:         nullableString(item.City),
			State:        nullableString(item.State),
			Country:      nullableString(item.Country),
			Par:          item.Par,
			Yards:        item.Yards,
			Purse:        item.Purse,
			IsOver:       item.IsOver,
			IsCanceled:   item.IsCanceled,
			Status:       string(item.Status),
			UpdatedAt:    updatedAt.UTC(),
		}
		if item.Season > 0 {
			season := item.Season
			row.Season = &season
		}
		out = append(out, row)
	}
	return out
}

func ResultRows(items []result.Result) []ResultRow {
	out := make([]ResultRow, 0, len(items))
	for _, item := range items {
		row := ResultRow{
			TournamentID:        item.TournamentID,
			PlayerID:            item.PlayerID,
			Position:            nullableString(item.Position),
			Score:               item.TotalScore,
			Earnings:            item.Earnings,
			Round1Score:         item.RoundScore(1),
			Round2Score:         item.RoundScore(2),
			Round3Score:         item.RoundScore(3),
			Round4Score:         item.RoundScore(4),
			TotalStrokes:        item.TotalStrokes,
			FantasyPoints:       item.FantasyPoints,
			FedExPoints:         item.FedExPoints,
			MadeCut:             item.MadeCut,
			Win:                 item.Win,
			PositionDescription: nullableString(item.PositionDescription),
			CreatedAt:           item.CreatedAt.UTC(),
		}
		row.PlayerTournamentID = nullableID(item.PlayerTournamentID)
		out = append(out, row)
	}
	return out
}

func RoundRows(items []result.Round) []RoundRow {
	out := make([]RoundRow, 0, len(items))
	for _, item := range items {
		out = append(out, RoundRow{
			PlayerTournamentID:      item.PlayerTournamentID,
			RoundNumber:             item.Number,
			PlayerRoundID:           nullableID(item.PlayerRoundID),
			PlayerID:                item.PlayerID,
			Par:                     item.Par,
			Score:                   item.Score,
			TeeTime:                 item.TeeTime,
			BogeyFree:               item.BogeyFree,
			Birdies:                 item.Birdies,
			Pars:                    item.Pars,
			Bogeys:                  item.Bogeys,
			DoubleBogeys:            item.DoubleBogeys,
			WorseThanDoubleBogey:    item.WorseThanDoubleBogey,
			TripleBogeys:            item.TripleBogeys,
			HoleInOnes:              item.HoleInOnes,
			BounceBackCount:         item.BounceBackCount,
			LongestBirdieStreak:     item.LongestBirdieStreak,
			IncludesFivePlusBirdies: item.IncludesFivePlusBirdies,
			CreatedAt:               item.CreatedAt.UTC(),
		})
	}
	return out
}

func HoleRows(items []result.Hole) []HoleRow {
	out := make([]HoleRow, 0, len(items))
	for _, item := range items {
		out = append(out, HoleRow{
			PlayerRoundID:        item.PlayerRoundID,
			HoleNumber:           item.Number,
			PlayerID:             item.PlayerID,
			Par:                  item.Par,
			Score:                item.Score,
			ToPar:                item.ToPar,
			IsPar:                item.IsPar,
			Birdie:               item.Birdie,
			Bogey:                item.Bogey,
			DoubleBogey:          item.DoubleBogey,
			WorseThanDoubleBogey: item.WorseThanDoubleBogey,
			HoleInOne:            item.HoleInOne,
			Eagle:                item.Eagle,
			DoubleEagle:          item.DoubleEagle,
		})
	}
	return out
}

func LeaderboardRows(items []leaderboard.Summary) []LeaderboardRow {
	out := make([]LeaderboardRow, 0, len(items))
	for _, item := range items {
		out = append(out, LeaderboardRow{
			TournamentID: item.TournamentID,
			Sport:        item.Sport,
			Status:       string(item.Status),
			WinnerID:     item.WinnerID,
			WinningScore: item.WinningScore,
			PlayersCount: item.PlayerCount,
			UpdatedAt:    item.UpdatedAt.UTC(),
		})
	}
	return out
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func nullableID(value int64) *int64 {
	if value <= 0 {
		return nil
	}
	return &value
}

func dateOnly(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	day := tournament.Day(*value)
	return &day
}
