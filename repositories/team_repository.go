package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mkarsky/brain-battle/models"
)

var (
	ErrTeamNotFound              = errors.New("team not found")
	ErrTeamInUse                 = errors.New("team is referenced by existing matches")
	ErrTeamLinkTournamentInvalid = errors.New("team link references unknown tournament")
	ErrTeamLinkTeamInvalid       = errors.New("team link references unknown team")
)

// TeamTournamentLink — строка таблицы связей, обогащённая именем турнира
// для денормализованного глобального списка команд.
type TeamTournamentLink struct {
	TeamID         int
	TournamentID   int
	TournamentName string
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListAll(ctx context.Context) ([]models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
	ListLinks(ctx context.Context) ([]TeamTournamentLink, error)
	Link(ctx context.Context, tournamentID, teamID int) error
	Unlink(ctx context.Context, tournamentID, teamID int) error
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `INSERT INTO teams (name) VALUES ($1) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, team.Name).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, created_at FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListAll(ctx context.Context) ([]models.Team, error) {
	query := `SELECT id, name, created_at FROM teams ORDER BY name, id`
	return r.queryTeams(ctx, query)
}

// ListByTournament возвращает состав турнира в порядке добавления команд.
func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	query := `
		SELECT t.id, t.name, t.created_at
		FROM teams t
		JOIN tournament_teams tt ON tt.team_id = t.id
		WHERE tt.tournament_id = $1
		ORDER BY tt.created_at, t.id`
	return r.queryTeams(ctx, query, tournamentID)
}

func (r *postgresTeamRepository) ListLinks(ctx context.Context) ([]TeamTournamentLink, error) {
	query := `
		SELECT tt.team_id, tt.tournament_id, tr.name
		FROM tournament_teams tt
		JOIN tournaments tr ON tr.id = tt.tournament_id
		ORDER BY tt.team_id, tt.created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list team tournament links: %w", err)
	}
	defer rows.Close()

	links := make([]TeamTournamentLink, 0)
	for rows.Next() {
		var l TeamTournamentLink
		if scanErr := rows.Scan(&l.TeamID, &l.TournamentID, &l.TournamentName); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team link row: %w", scanErr)
		}
		links = append(links, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team link rows: %w", err)
	}
	return links, nil
}

// Link идемпотентна: повторное добавление уже состоящей в турнире команды — no-op.
func (r *postgresTeamRepository) Link(ctx context.Context, tournamentID, teamID int) error {
	query := `
		INSERT INTO tournament_teams (tournament_id, team_id)
		VALUES ($1, $2)
		ON CONFLICT (tournament_id, team_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, tournamentID, teamID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "tournament_teams_tournament_id_fkey":
				return ErrTeamLinkTournamentInvalid
			case "tournament_teams_team_id_fkey":
				return ErrTeamLinkTeamInvalid
			}
		}
		return fmt.Errorf("failed to link team %d to tournament %d: %w", teamID, tournamentID, err)
	}
	return nil
}

// Unlink убирает команду из состава, не трогая саму запись команды.
// Отсутствующая связь не считается ошибкой.
func (r *postgresTeamRepository) Unlink(ctx context.Context, tournamentID, teamID int) error {
	query := `DELETE FROM tournament_teams WHERE tournament_id = $1 AND team_id = $2`
	_, err := r.db.ExecContext(ctx, query, tournamentID, teamID)
	if err != nil {
		return fmt.Errorf("failed to unlink team %d from tournament %d: %w", teamID, tournamentID, err)
	}
	return nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.ID)
	if err != nil {
		return fmt.Errorf("failed to update team %d: %w", team.ID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// Delete отклоняется с ErrTeamInUse, пока на команду ссылаются матчи
// (FK RESTRICT в схеме). Связи с турнирами удаляются каскадно.
func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTeamInUse
		}
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) queryTeams(ctx context.Context, query string, args ...interface{}) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}
