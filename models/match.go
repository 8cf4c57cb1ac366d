package models

type Match struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	Team1ID      int     `json:"team1_id" db:"team1_id"`
	Team2ID      int     `json:"team2_id" db:"team2_id"`
	WinnerID     *int    `json:"winner_id" db:"winner_id"`
	Score        *string `json:"score" db:"score"`
	RoundNumber  int     `json:"round_number" db:"round_number"`

	// Поля расписания хранятся свободным текстом, как вводит организатор.
	ScheduledDate *string `json:"scheduled_date" db:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time" db:"scheduled_time"`
	Location      *string `json:"location" db:"location"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Team1          *Team   `json:"team1,omitempty" db:"-"`
	Team2          *Team   `json:"team2,omitempty" db:"-"`
	TournamentName *string `json:"tournament_name,omitempty" db:"-"`
}
