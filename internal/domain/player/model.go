package player

import "strings"

const StatusActive = "Active"

// Player is one golfer from the provider's player list.
type Player struct {
	ID       int64  `validate:"gt=0"`
	FullName string `validate:"required"`
	Country  string
	Status   string `validate:"required"`
}

func (p Player) Key() string {
	return keyOf(p.ID)
}

// FullName joins first and last name, tolerating either being blank.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
