package usecase

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/golf-ingest/internal/domain/player"
	"github.com/riskibarqy/golf-ingest/internal/domain/result"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
)

func mapExternalPlayersToDomain(items []ExternalPlayer) []player.Player {
	out := make([]player.Player, 0, len(items))
	for _, item := range items {
		out = append(out, player.Player{
			ID:       item.ID,
			FullName: player.FullName(item.FirstName, item.LastName),
			Country:  strings.TrimSpace(item.Country),
			Status:   player.StatusActive,
		})
	}
	return out
}

func mapExternalTournamentToDomain(item ExternalTournament, today time.Time) tournament.Tournament {
	out := tournament.Tournament{
		ID:         item.ID,
		Name:       strings.TrimSpace(item.Name),
		Tour:       strings.TrimSpace(item.Tour),
		Season:     item.Season,
		StartDate:  cloneTimePtr(item.StartDate),
		EndDate:    cloneTimePtr(item.EndDate),
		Venue:      strings.TrimSpace(item.Venue),
		Location:   strings.TrimSpace(item.Location),
		City:       strings.TrimSpace(item.City),
		State:      strings.TrimSpace(item.State),
		Country:    strings.TrimSpace(item.Country),
		Par:        cloneIntPtr(item.Par),
		Yards:      cloneIntPtr(item.Yards),
		Purse:      cloneFloatPtr(item.Purse),
		IsOver:     item.IsOver,
		IsCanceled: item.Canceled,
	}
	return out.Classified(today)
}

// mapExternalTournamentsToDomain classifies every tournament and keeps the
// first occurrence of each id across years, ordered by start date.
func mapExternalTournamentsToDomain(items []ExternalTournament, today time.Time) []tournament.Tournament {
	seen := make(map[int64]struct{}, len(items))
	out := make([]tournament.Tournament, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, mapExternalTournamentToDomain(item, today))
	}

	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i].StartDate, out[j].StartDate
		switch {
		case left == nil && right == nil:
			return out[i].ID < out[j].ID
		case left == nil:
			return false
		case right == nil:
			return true
		case !left.Equal(*right):
			return left.Before(*right)
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// mapExternalLeaderboardToResults builds result rows. Without a provider
// position, tied ranks render as "T<n>".
func mapExternalLeaderboardToResults(tournamentID int64, items []ExternalLeaderboardPlayer, now time.Time) []result.Result {
	rankCounts := make(map[int]int, len(items))
	for _, item := range items {
		if item.Rank != nil && *item.Rank > 0 {
			rankCounts[*item.Rank]++
		}
	}

	out := make([]result.Result, 0, len(items))
	for _, item := range items {
		row := result.Result{
			TournamentID:        tournamentID,
			PlayerID:            item.PlayerID,
			PlayerTournamentID:  item.PlayerTournamentID,
			Name:                strings.TrimSpace(item.Name),
			Rank:                cloneIntPtr(item.Rank),
			TotalScore:          cloneFloatPtr(item.TotalScore),
			TotalStrokes:        cloneIntPtr(item.TotalStrokes),
			Earnings:            cloneFloatPtr(item.Earnings),
			FedExPoints:         cloneFloatPtr(item.FedExPoints),
			FantasyPoints:       cloneFloatPtr(item.FantasyPoints),
			MadeCut:             item.MadeCut,
			Win:                 item.Win,
			PositionDescription: strings.TrimSpace(item.TournamentStatus),
			CreatedAt:           now.UTC(),
		}
		row.Position = strings.TrimSpace(item.Position)
		if row.Position == "" && item.Rank != nil && *item.Rank > 0 {
			row.Position = strconv.Itoa(*item.Rank)
			if rankCounts[*item.Rank] > 1 {
				row.Position = "T" + row.Position
			}
		}
		for idx, score := range item.RoundScores {
			row.RoundScores[idx] = cloneFloatPtr(score)
		}
		row.Rounds = mapExternalRounds(item, now)
		out = append(out, row)
	}
	return out
}

func mapExternalRounds(item ExternalLeaderboardPlayer, now time.Time) []result.Round {
	if len(item.Rounds) == 0 {
		return nil
	}
	out := make([]result.Round, 0, len(item.Rounds))
	for _, source := range item.Rounds {
		round := result.Round{
			PlayerRoundID:           source.PlayerRoundID,
			PlayerTournamentID:      item.PlayerTournamentID,
			PlayerID:                item.PlayerID,
			Number:                  source.Number,
			Par:                     cloneIntPtr(source.Par),
			Score:                   cloneFloatPtr(source.Score),
			TeeTime:                 cloneTimePtr(source.TeeTime),
			BogeyFree:               source.BogeyFree,
			Birdies:                 cloneIntPtr(source.Birdies),
			Pars:                    cloneIntPtr(source.Pars),
			Bogeys:                  cloneIntPtr(source.Bogeys),
			DoubleBogeys:            cloneIntPtr(source.DoubleBogeys),
			WorseThanDoubleBogey:    cloneIntPtr(source.WorseThanDoubleBogey),
			TripleBogeys:            cloneIntPtr(source.TripleBogeys),
			HoleInOnes:              cloneIntPtr(source.HoleInOnes),
			BounceBackCount:         cloneIntPtr(source.BounceBackCount),
			LongestBirdieStreak:     cloneIntPtr(source.LongestBirdieStreak),
			IncludesFivePlusBirdies: source.IncludesFivePlusBirdies,
			CreatedAt:               now.UTC(),
		}
		for _, hole := range source.Holes {
			round.Holes = append(round.Holes, result.Hole{
				PlayerRoundID:        source.PlayerRoundID,
				PlayerID:             item.PlayerID,
				Number:               hole.Number,
				Par:                  cloneIntPtr(hole.Par),
				Score:                cloneIntPtr(hole.Score),
				ToPar:                cloneIntPtr(hole.ToPar),
				IsPar:                hole.IsPar,
				Birdie:               hole.Birdie,
				Bogey:                hole.Bogey,
				DoubleBogey:          hole.DoubleBogey,
				WorseThanDoubleBogey: hole.WorseThanDoubleBogey,
				HoleInOne:            hole.HoleInOne,
				Eagle:                hole.Eagle,
				DoubleEagle:          hole.DoubleEagle,
			})
		}
		out = append(out, round)
	}
	return out
}

func flattenRounds(results []result.Result) []result.Round {
	var out []result.Round
	for _, item := range results {
		out = append(out, item.Rounds...)
	}
	return out
}

func flattenHoles(rounds []result.Round) []result.Hole {
	var out []result.Hole
	for _, item := range rounds {
		out = append(out, item.Holes...)
	}
	return out
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}

func cloneFloatPtr(value *float64) *float64 {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}
