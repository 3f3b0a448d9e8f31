package models

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the physical medium a mixtape is recorded to.
type Mode string

const (
	ModeCD       Mode = "cd"
	ModeCassette Mode = "cassette"
	ModeFocus    Mode = "focus"
)

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCD, ModeCassette, ModeFocus:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Capacity returns the medium's duration budget in seconds.
func (m Mode) Capacity() int {
	switch m {
	case ModeCassette:
		return 60 * 60
	case ModeFocus:
		return 25 * 60
	default:
		return 74 * 60
	}
}

// Label returns the short label printed on the medium, e.g. "74min".
func (m Mode) Label() string {
	return fmt.Sprintf("%dmin", m.Capacity()/60)
}

// Playlist is the persisted record a playlist's tracks hang off.
type Playlist struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Mode          Mode      `json:"mode"`
	TotalDuration int       `json:"totalDuration"`
	Public        bool      `json:"public"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
