package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
)

// OutputFormat specifies how listings are printed.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

const dateLayout = "2006-01-02"

type tournamentView struct {
	TournamentID int64             `json:"tournament_id"`
	Name         string            `json:"name"`
	Tour         string            `json:"tour,omitempty"`
	Season       int               `json:"season"`
	StartDate    string            `json:"start_date,omitempty"`
	EndDate      string            `json:"end_date,omitempty"`
	Venue        string            `json:"venue,omitempty"`
	Location     string            `json:"location,omitempty"`
	Status       tournament.Status `json:"status"`
	IsCanceled   bool              `json:"is_canceled"`
}

func newTournamentView(item tournament.Tournament) tournamentView {
	return tournamentView{
		TournamentID: item.ID,
		Name:         item.Name,
		Tour:         item.Tour,
		Season:       item.Season,
		StartDate:    formatDate(item.StartDate),
		EndDate:      formatDate(item.EndDate),
		Venue:        item.Venue,
		Location:     item.Location,
		Status:       item.Status,
		IsCanceled:   item.IsCanceled,
	}
}

func writeJSON(w io.Writer, payload any) error {
	encoder := sonic.ConfigDefault.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func writeTournaments(w io.Writer, items []tournament.Tournament, format OutputFormat) error {
	views := make([]tournamentView, 0, len(items))
	for _, item := range items {
		views = append(views, newTournamentView(item))
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, views)
	case FormatText:
		return writeTournamentTable(w, views)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeTournamentTable(w io.Writer, views []tournamentView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No tournaments found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEASON\tSTART\tEND\tSTATUS\tNAME")
	for _, v := range views {
		status := string(v.Status)
		if v.IsCanceled {
			status += " (canceled)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			strconv.FormatInt(v.TournamentID, 10),
			v.Season,
			dashIfEmpty(v.StartDate),
			dashIfEmpty(v.EndDate),
			status,
			v.Name,
		)
	}
	return tw.Flush()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func dashIfEmpty(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
