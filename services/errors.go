package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурсы не найдены
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Ошибки валидации и бизнес-правил
	ErrTournamentNameRequired     = errors.New("tournament name is required")
	ErrTournamentGameTypeRequired = errors.New("tournament game type is required")
	ErrTournamentInvalidStatus    = errors.New("invalid tournament status provided")
	ErrTournamentInvalidDate      = errors.New("tournament date must be a valid ISO-8601 timestamp")
	ErrTeamNameRequired           = errors.New("team name is required")
	ErrTeamLinkRequired           = errors.New("either team_id or name is required")
	ErrMatchTeamsRequired         = errors.New("both team1_id and team2_id are required")
	ErrMatchSameTeam              = errors.New("match teams must be different")
	ErrMatchInvalidWinner         = errors.New("winner must be one of the match teams")
	ErrInsufficientTeams          = errors.New("not enough teams to generate matches")

	// Ошибки конфликтов
	ErrTeamInUse = errors.New("team is referenced by existing matches")

	// Инфраструктура
	ErrLogoStorageDisabled = errors.New("logo storage is not configured")
)
