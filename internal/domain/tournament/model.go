package tournament

import (
	"strconv"
	"time"
)

// Tournament is one event on a tour calendar.
type Tournament struct {
	ID         int64  `validate:"gt=0"`
	Name       string `validate:"required"`
	Tour       string
	Season     int
	StartDate  *time.Time
	EndDate    *time.Time
	Venue      string
	Location   string
	City       string
	State      string
	Country    string
	Par        *int
	Yards      *int
	Purse      *float64
	IsOver     bool
	IsCanceled bool
	Status     Status `validate:"required"`
}

func (t Tournament) Key() string {
	return strconv.FormatInt(t.ID, 10)
}

// Classified returns a copy whose Status reflects today.
func (t Tournament) Classified(today time.Time) Tournament {
	t.Status = Classify(t.StartDate, t.EndDate, today)
	return t
}
