package tournament

import "time"

// Window is an inclusive date range; a nil bound is open.
type Window struct {
	From *time.Time
	To   *time.Time
}

func (w Window) IsZero() bool {
	return w.From == nil && w.To == nil
}

// Overlaps reports whether the tournament's dates intersect the window.
// Undated tournaments never match a bounded window.
func (w Window) Overlaps(t Tournament) bool {
	if w.IsZero() {
		return true
	}
	start, end := t.StartDate, t.EndDate
	if start == nil && end == nil {
		return false
	}
	if start == nil {
		start = end
	}
	if end == nil {
		end = start
	}

	if w.From != nil && Day(*end).Before(Day(*w.From)) {
		return false
	}
	if w.To != nil && Day(*start).After(Day(*w.To)) {
		return false
	}
	return true
}

// Filter selects tournaments for ingestion. Empty Statuses matches every status.
type Filter struct {
	Statuses []Status
	Window   Window
}

func (f Filter) Match(t Tournament) bool {
	if len(f.Statuses) > 0 {
		matched := false
		for _, status := range f.Statuses {
			if t.Status == status {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return f.Window.Overlaps(t)
}

func (f Filter) Apply(items []Tournament) []Tournament {
	out := make([]Tournament, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}
