package sportsdata

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/golf-ingest/internal/usecase"
)

// providerTime accepts the provider's zoneless timestamps and treats them as UTC.
type providerTime struct {
	Time  time.Time
	Valid bool
}

var providerTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339,
	"2006-01-02",
}

func (p *providerTime) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = providerTime{}
		return nil
	}

	var raw string
	if err := sonic.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	parsed := parseProviderDateTime(raw)
	if parsed == nil {
		*p = providerTime{}
		return nil
	}
	*p = providerTime{Time: *parsed, Valid: true}
	return nil
}

func (p providerTime) ptr() *time.Time {
	if !p.Valid {
		return nil
	}
	v := p.Time
	return &v
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	for _, layout := range providerTimeLayouts {
		parsed, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

// flag decodes booleans the provider sends as true/false, 1/0 or 1.0/0.0.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch strings.ToLower(strings.Trim(trimmed, `"`)) {
	case "", "null", "false":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	}
	value, err := strconv.ParseFloat(strings.Trim(trimmed, `"`), 64)
	if err != nil {
		return err
	}
	*f = value != 0
	return nil
}

type playerDTO struct {
	PlayerID  int64  `json:"PlayerID"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Country   string `json:"Country"`
}

func (p playerDTO) toExternal() usecase.ExternalPlayer {
	return usecase.ExternalPlayer{
		ID:        p.PlayerID,
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Country:   strings.TrimSpace(p.Country),
	}
}

type tournamentDTO struct {
	TournamentID int64        `json:"TournamentID"`
	Name         string       `json:"Name"`
	Tour         string       `json:"Tour"`
	StartDate    providerTime `json:"StartDate"`
	EndDate      providerTime `json:"EndDate"`
	IsOver       flag         `json:"IsOver"`
	Canceled     flag         `json:"Canceled"`
	Venue        string       `json:"Venue"`
	Location     string       `json:"Location"`
	City         string       `json:"City"`
	State        string       `json:"State"`
	Country      string       `json:"Country"`
	Par          *int         `json:"Par"`
	Yards        *int         `json:"Yards"`
	Purse        *float64     `json:"Purse"`
}

func (t tournamentDTO) toExternal() usecase.ExternalTournament {
	return usecase.ExternalTournament{
		ID:        t.TournamentID,
		Name:      strings.TrimSpace(t.Name),
		Tour:      strings.TrimSpace(t.Tour),
		StartDate: t.StartDate.ptr(),
		EndDate:   t.EndDate.ptr(),
		Venue:     strings.TrimSpace(t.Venue),
		Location:  strings.TrimSpace(t.Location),
		City:      strings.TrimSpace(t.City),
		State:     strings.TrimSpace(t.State),
		Country:   strings.TrimSpace(t.Country),
		Par:       t.Par,
		Yards:     t.Yards,
		Purse:     t.Purse,
		IsOver:    bool(t.IsOver),
		Canceled:  bool(t.Canceled),
	}
}

type leaderboardDTO struct {
	Tournament tournamentDTO          `json:"Tournament"`
	Players    []leaderboardPlayerDTO `json:"Players"`
}

func (l leaderboardDTO) toExternal() usecase.ExternalLeaderboard {
	out := usecase.ExternalLeaderboard{
		Tournament: l.Tournament.toExternal(),
		Players:    make([]usecase.ExternalLeaderboardPlayer, 0, len(l.Players)),
	}
	for _, item := range l.Players {
		if item.PlayerID <= 0 {
			continue
		}
		out.Players = append(out.Players, item.toExternal())
	}
	return out
}

type leaderboardPlayerDTO struct {
	PlayerTournamentID int64      `json:"PlayerTournamentID"`
	PlayerID           int64      `json:"PlayerID"`
	Name               string     `json:"Name"`
	Country            string     `json:"Country"`
	Position           *string    `json:"Position"`
	Rank               *int       `json:"Rank"`
	TotalScore         *float64   `json:"TotalScore"`
	TotalStrokes       *int       `json:"TotalStrokes"`
	Earnings           *float64   `json:"Earnings"`
	FedExPoints        *float64   `json:"FedExPoints"`
	FantasyPoints      *float64   `json:"FantasyPoints"`
	MadeCut            flag       `json:"MadeCut"`
	Win                flag       `json:"Win"`
	TournamentStatus   *string    `json:"TournamentStatus"`
	Round1             *float64   `json:"Round1"`
	Round2             *float64   `json:"Round2"`
	Round3             *float64   `json:"Round3"`
	Round4             *float64   `json:"Round4"`
	Rounds             []roundDTO `json:"Rounds"`
}

func (p leaderboardPlayerDTO) toExternal() usecase.ExternalLeaderboardPlayer {
	out := usecase.ExternalLeaderboardPlayer{
		PlayerTournamentID: p.PlayerTournamentID,
		PlayerID:           p.PlayerID,
		Name:               strings.TrimSpace(p.Name),
		Country:            strings.TrimSpace(p.Country),
		Position:           derefString(p.Position),
		Rank:               p.Rank,
		TotalScore:         p.TotalScore,
		TotalStrokes:       p.TotalStrokes,
		Earnings:           p.Earnings,
		FedExPoints:        p.FedExPoints,
		FantasyPoints:      p.FantasyPoints,
		MadeCut:            bool(p.MadeCut),
		Win:                bool(p.Win),
		TournamentStatus:   derefString(p.TournamentStatus),
		RoundScores:        [4]*float64{p.Round1, p.Round2, p.Round3, p.Round4},
	}
	for _, round := range p.Rounds {
		if round.Number <= 0 {
			continue
		}
		out.Rounds = append(out.Rounds, round.toExternal())
	}
	return out
}

type roundDTO struct {
	PlayerRoundID                     int64        `json:"PlayerRoundID"`
	Number                            int          `json:"Number"`
	Par                               *int         `json:"Par"`
	Score                             *float64     `json:"Score"`
	TeeTime                           providerTime `json:"TeeTime"`
	BogeyFree                         flag         `json:"BogeyFree"`
	Birdies                           *int         `json:"Birdies"`
	Pars                              *int         `json:"Pars"`
	Bogeys                            *int         `json:"Bogeys"`
	DoubleBogeys                      *int         `json:"DoubleBogeys"`
	WorseThanDoubleBogey              *int         `json:"WorseThanDoubleBogey"`
	TripleBogeys                      *int         `json:"TripleBogeys"`
	HoleInOnes                        *int         `json:"HoleInOnes"`
	BounceBackCount                   *int         `json:"BounceBackCount"`
	LongestBirdieOrBetterStreak       *int         `json:"LongestBirdieOrBetterStreak"`
	IncludesFiveOrMoreBirdiesOrBetter flag         `json:"IncludesFiveOrMoreBirdiesOrBetter"`
	Holes                             []holeDTO    `json:"Holes"`
}

func (r roundDTO) toExternal() usecase.ExternalRound {
	out := usecase.ExternalRound{
		PlayerRoundID:           r.PlayerRoundID,
		Number:                  r.Number,
		Par:                     r.Par,
		Score:                   r.Score,
		TeeTime:                 r.TeeTime.ptr(),
		BogeyFree:               bool(r.BogeyFree),
		Birdies:                 r.Birdies,
		Pars:                    r.Pars,
		Bogeys:                  r.Bogeys,
		DoubleBogeys:            r.DoubleBogeys,
		WorseThanDoubleBogey:    r.WorseThanDoubleBogey,
		TripleBogeys:            r.TripleBogeys,
		HoleInOnes:              r.HoleInOnes,
		BounceBackCount:         r.BounceBackCount,
		LongestBirdieStreak:     r.LongestBirdieOrBetterStreak,
		IncludesFivePlusBirdies: bool(r.IncludesFiveOrMoreBirdiesOrBetter),
	}
	for _, hole := range r.Holes {
		if hole.Number <= 0 {
			continue
		}
		out.Holes = append(out.Holes, hole.toExternal())
	}
	return out
}

type holeDTO struct {
	Number               int  `json:"Number"`
	Par                  *int `json:"Par"`
	Score                *int `json:"Score"`
	ToPar                *int `json:"ToPar"`
	IsPar                flag `json:"IsPar"`
	Birdie               flag `json:"Birdie"`
	Bogey                flag `json:"Bogey"`
	DoubleBogey          flag `json:"DoubleBogey"`
	WorseThanDoubleBogey flag `json:"WorseThanDoubleBogey"`
	HoleInOne            flag `json:"HoleInOne"`
	Eagle                flag `json:"Eagle"`
	DoubleEagle          flag `json:"DoubleEagle"`
}

func (h holeDTO) toExternal() usecase.ExternalHole {
	return usecase.ExternalHole{
		Number:               h.Number,
		Par:                  h.Par,
		Score:                h.Score,
		ToPar:                h.ToPar,
		IsPar:                bool(h.IsPar),
		Birdie:               bool(h.Birdie),
		Bogey:                bool(h.Bogey),
		DoubleBogey:          bool(h.DoubleBogey),
		WorseThanDoubleBogey: bool(h.WorseThanDoubleBogey),
		HoleInOne:            bool(h.HoleInOne),
		Eagle:                bool(h.Eagle),
		DoubleEagle:          bool(h.DoubleEagle),
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
