package models

import "time"

// TournamentStatus соответствует ENUM в БД.
type TournamentStatus string

const (
	StatusPlanned   TournamentStatus = "Planned"
	StatusActive    TournamentStatus = "Active"
	StatusCompleted TournamentStatus = "Completed"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// Tournament представляет турнир.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	GameType  string           `json:"game_type" db:"game_type"`
	Date      time.Time        `json:"date" db:"date"`
	Status    TournamentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	LogoKey   *string          `json:"-" db:"logo_key"`
	LogoURL   *string          `json:"logo_url,omitempty" db:"-"`

	// Количество команд в составе, подсчитывается при выборке.
	TeamCount int `json:"team_count" db:"-"`
}
