package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Денормализованные поля для глобального списка команд (не хранятся).
	TournamentIDs   []int    `json:"tournament_ids,omitempty" db:"-"`
	TournamentNames []string `json:"tournament_names,omitempty" db:"-"`
}
