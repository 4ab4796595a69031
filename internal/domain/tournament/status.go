package tournament

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusUnknown    Status = "unknown"
)

var AllStatuses = []Status{StatusUpcoming, StatusInProgress, StatusCompleted, StatusUnknown}

func ParseStatus(raw string) (Status, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "-", "_")
	for _, status := range AllStatuses {
		if string(status) == value {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid tournament status %q: valid values are upcoming, in_progress, completed, unknown", raw)
}

// Classify derives a tournament status from its scheduled dates.
// All comparisons happen on UTC calendar days. A started tournament with no
// end date is in progress; an end date without a start, or an end before the
// start, is unknown.
func Classify(start, end *time.Time, today time.Time) Status {
	if start == nil && end == nil {
		return StatusUnknown
	}

	day := Day(today)
	var startDay, endDay time.Time
	if start != nil {
		startDay = Day(*start)
	}
	if end != nil {
		endDay = Day(*end)
	}

	if start != nil && end != nil && endDay.Before(startDay) {
		return StatusUnknown
	}
	if start != nil && day.Before(startDay) {
		return StatusUpcoming
	}
	if end != nil && day.After(endDay) {
		return StatusCompleted
	}
	if start != nil {
		return StatusInProgress
	}
	return StatusUnknown
}

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
